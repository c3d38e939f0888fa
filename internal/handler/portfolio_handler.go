// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"portfolio-chat-go/internal/model"
	"portfolio-chat-go/internal/service"
	"portfolio-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler 处理展示层消费的只读 API 请求。
type PortfolioHandler struct {
	portfolioService service.PortfolioService
}

// NewPortfolioHandler 创建一个新的 PortfolioHandler。
func NewPortfolioHandler(portfolioService service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// Health 健康检查。
func (h *PortfolioHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "AI Portfolio Chatbot Backend is running",
	})
}

// GetPortfolio 返回完整的档案数据（含技能、经历、项目）。
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	user, err := h.portfolioService.GetPortfolio(c.Request.Context())
	if err != nil {
		log.Errorf("获取档案失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Internal server error",
			"data":    nil,
		})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"message": "Portfolio not found",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    user,
	})
}

// GetFeaturedProjects 返回精选项目列表。
func (h *PortfolioHandler) GetFeaturedProjects(c *gin.Context) {
	projects, err := h.portfolioService.GetFeaturedProjects(c.Request.Context())
	if err != nil {
		log.Errorf("获取精选项目失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Internal server error",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    projects,
	})
}

// GetSkills 返回按分类分组的技能。
func (h *PortfolioHandler) GetSkills(c *gin.Context) {
	grouped, err := h.portfolioService.GetSkillsByCategory(c.Request.Context())
	if err != nil {
		log.Errorf("获取技能失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Internal server error",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    grouped,
	})
}

// GetConversation 按 sessionId 返回完整对话记录，供页面重载时恢复历史。
// 会话不存在时返回空消息列表而不是 404，与前端的首次加载逻辑对齐。
func (h *PortfolioHandler) GetConversation(c *gin.Context) {
	sessionID := c.Param("sessionId")

	conv, err := h.portfolioService.GetTranscript(c.Request.Context(), sessionID)
	if err != nil {
		log.Errorf("获取对话记录失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Internal server error",
			"data":    nil,
		})
		return
	}
	if conv == nil {
		c.JSON(http.StatusOK, gin.H{
			"code":    http.StatusOK,
			"message": "success",
			"data":    gin.H{"messages": []model.Message{}},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    conv,
	})
}
