// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"errors"
	"fmt"
	"portfolio-chat-go/internal/model"

	"gorm.io/gorm"
)

// ErrConversationNotFound 表示目标会话在数据库中不存在。
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository 接口定义了对话记录的持久化操作。
type ConversationRepository interface {
	// GetOrCreateBySessionID 返回 sessionID 对应的会话（含按时间升序的全部消息）；
	// 不存在时创建一个空会话。sessionID 上的唯一索引保证并发调用不会产生重复会话。
	GetOrCreateBySessionID(ctx context.Context, sessionID string) (*model.Conversation, error)
	// FindBySessionID 返回 sessionID 对应的会话及其全部消息，不存在时返回 ErrConversationNotFound。
	FindBySessionID(ctx context.Context, sessionID string) (*model.Conversation, error)
	// AppendMessage 向会话追加一条消息并返回落库后的记录。
	AppendMessage(ctx context.Context, conversationID uint, role, content string) (*model.Message, error)
	// RecentMessages 返回会话最近的消息，按时间从新到旧，最多 limit 条。
	// 会话不存在时返回空切片，仅用于生成回复时的上下文回看。
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.Message, error)
}

// gormConversationRepository 是 ConversationRepository 接口的 GORM 实现。
type gormConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// GetOrCreateBySessionID 获取或创建 sessionID 对应的会话。
func (r *gormConversationRepository) GetOrCreateBySessionID(ctx context.Context, sessionID string) (*model.Conversation, error) {
	conv, err := r.findWithMessages(ctx, sessionID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	created := &model.Conversation{SessionID: sessionID, Messages: []model.Message{}}
	if createErr := r.db.WithContext(ctx).Omit("Messages").Create(created).Error; createErr != nil {
		// 并发创建撞上唯一索引时回读既有记录，保证同一 sessionID 只有一个会话
		if conv, findErr := r.findWithMessages(ctx, sessionID); findErr == nil {
			return conv, nil
		}
		return nil, fmt.Errorf("failed to create conversation: %w", createErr)
	}
	return created, nil
}

// FindBySessionID 按 sessionID 查找会话及其全部消息。
func (r *gormConversationRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.Conversation, error) {
	conv, err := r.findWithMessages(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	return conv, nil
}

// AppendMessage 向指定会话追加一条消息。
func (r *gormConversationRepository) AppendMessage(ctx context.Context, conversationID uint, role, content string) (*model.Message, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Conversation{}).Where("id = ?", conversationID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if count == 0 {
		return nil, ErrConversationNotFound
	}

	message := &model.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return message, nil
}

// RecentMessages 返回会话最近的 limit 条消息，从新到旧。
func (r *gormConversationRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	var messages []model.Message
	// 同一秒内落库的消息用 id 兜底排序，保证读回顺序与追加顺序一致
	err = r.db.WithContext(ctx).
		Where("conversation_id = ?", conv.ID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	return messages, nil
}

// findWithMessages 查找会话并预载其按时间升序排列的全部消息。
func (r *gormConversationRepository) findWithMessages(ctx context.Context, sessionID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC, id ASC")
		}).
		Where("session_id = ?", sessionID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	if conv.Messages == nil {
		conv.Messages = []model.Message{}
	}
	return &conv, nil
}
