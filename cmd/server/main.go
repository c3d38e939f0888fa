// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"portfolio-chat-go/internal/config"
	"portfolio-chat-go/internal/handler"
	"portfolio-chat-go/internal/middleware"
	"portfolio-chat-go/internal/repository"
	"portfolio-chat-go/internal/service"
	"portfolio-chat-go/pkg/database"
	"portfolio-chat-go/pkg/kafka"
	"portfolio-chat-go/pkg/log"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 和 Kafka 生产者
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	profileCacheTTL := time.Duration(cfg.Chat.ProfileCacheTTLMinutes) * time.Minute
	portfolioRepo := repository.NewPortfolioRepository(database.DB, database.RDB, profileCacheTTL)
	conversationRepo := repository.NewConversationRepository(database.DB)

	// 5. 初始化 Service (依赖注入)
	responder := service.NewResponder()
	registry := service.NewSessionRegistry()
	chatService := service.NewChatService(conversationRepo, portfolioRepo, responder, cfg.Chat.HistoryLimit)
	portfolioService := service.NewPortfolioService(portfolioRepo, conversationRepo)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 7. 注册路由
	portfolioHandler := handler.NewPortfolioHandler(portfolioService)
	chatHandler := handler.NewChatHandler(chatService, registry)

	r.GET("/health", portfolioHandler.Health)

	api := r.Group("/api")
	{
		api.GET("/portfolio", portfolioHandler.GetPortfolio)
		api.GET("/projects/featured", portfolioHandler.GetFeaturedProjects)
		api.GET("/skills", portfolioHandler.GetSkills)
		api.GET("/conversations/:sessionId", portfolioHandler.GetConversation)
	}

	// Chat 路由 (WebSocket)
	r.GET("/ws/chat", chatHandler.Handle)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
