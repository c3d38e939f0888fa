// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"portfolio-chat-go/internal/model"
	"portfolio-chat-go/internal/repository"
	"portfolio-chat-go/pkg/kafka"
	"portfolio-chat-go/pkg/log"
)

// ChatService 定义了访客会话的编排操作。
type ChatService interface {
	// JoinSession 返回 sessionID 对应的会话及其完整历史，不存在时创建空会话。
	JoinSession(ctx context.Context, sessionID string) (*model.Conversation, error)
	// HandleMessage 处理一条访客消息：先持久化访客消息，再生成并持久化助手回复，
	// 按此顺序返回两条落库后的记录。助手回复写入失败时访客消息不回滚。
	HandleMessage(ctx context.Context, sessionID, content string) (*model.Message, *model.Message, error)
}

type chatService struct {
	conversationRepo repository.ConversationRepository
	portfolioRepo    repository.PortfolioRepository
	responder        *Responder
	historyLimit     int
}

// NewChatService 创建一个新的 ChatService 实例。
// historyLimit 是生成回复时回看的最近消息条数。
func NewChatService(conversationRepo repository.ConversationRepository, portfolioRepo repository.PortfolioRepository, responder *Responder, historyLimit int) ChatService {
	return &chatService{
		conversationRepo: conversationRepo,
		portfolioRepo:    portfolioRepo,
		responder:        responder,
		historyLimit:     historyLimit,
	}
}

// JoinSession 获取或创建会话，返回会话与按时间升序的全部消息。
func (s *chatService) JoinSession(ctx context.Context, sessionID string) (*model.Conversation, error) {
	return s.conversationRepo.GetOrCreateBySessionID(ctx, sessionID)
}

// HandleMessage 完成一轮完整的问答。
func (s *chatService) HandleMessage(ctx context.Context, sessionID, content string) (*model.Message, *model.Message, error) {
	conv, err := s.conversationRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	userMessage, err := s.conversationRepo.AppendMessage(ctx, conv.ID, model.RoleUser, content)
	if err != nil {
		return nil, nil, err
	}
	s.publishEvent(ctx, sessionID, userMessage)

	// 档案或历史读取失败不中断本轮问答：Responder 对缺失档案会降级为固定道歉文案
	profile, err := s.portfolioRepo.GetProfile(ctx)
	if err != nil {
		log.Errorf("读取档案快照失败: %v", err)
		profile = nil
	}
	recent, err := s.conversationRepo.RecentMessages(ctx, sessionID, s.historyLimit)
	if err != nil {
		log.Errorf("读取最近消息失败: %v", err)
		recent = nil
	}

	reply := s.responder.Reply(profile, recent, content)

	assistantMessage, err := s.conversationRepo.AppendMessage(ctx, conv.ID, model.RoleAssistant, reply)
	if err != nil {
		// 访客消息已经落库，此处不回滚，保持与追加顺序一致的至少一次语义
		return userMessage, nil, err
	}
	s.publishEvent(ctx, sessionID, assistantMessage)

	return userMessage, assistantMessage, nil
}

// publishEvent 发送消息落库事件到 Kafka，失败只记录日志，不影响问答流程。
func (s *chatService) publishEvent(ctx context.Context, sessionID string, message *model.Message) {
	event := kafka.ChatMessageEvent{
		SessionID: sessionID,
		MessageID: message.ID,
		Role:      message.Role,
		Timestamp: message.Timestamp.UnixMilli(),
	}
	if err := kafka.ProduceChatMessageEvent(ctx, event); err != nil {
		log.Errorf("发送聊天消息事件失败: %v", err)
	}
}
