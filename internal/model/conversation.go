// Package model 包含了应用的数据模型定义。
package model

import "time"

// 消息角色常量，与前端约定的取值保持一致。
const (
	RoleUser      = "USER"
	RoleAssistant = "ASSISTANT"
)

// Conversation 代表一个会话的完整对话聚合，与 sessionId 一一对应。
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"sessionId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	// Messages 按时间升序排列；删除会话时级联删除全部消息。
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message 代表对话中的单条消息，创建后不可变更。
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversationId"`
	Role           string    `gorm:"type:varchar(20);not null" json:"role"` // USER 或 ASSISTANT
	Content        string    `gorm:"type:text;not null" json:"content"`
	Timestamp      time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (Message) TableName() string {
	return "messages"
}
