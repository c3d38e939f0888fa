// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"portfolio-chat-go/internal/model"
	"portfolio-chat-go/internal/repository"
	"portfolio-chat-go/internal/service"
	"portfolio-chat-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// 协议事件类型。入站事件与出站事件共用一个 type 字段区分。
const (
	eventJoinSession   = "join_session"
	eventChatMessage   = "chat_message"
	eventSessionJoined = "session_joined"
	eventMessageSaved  = "message_saved"
	eventAIResponse    = "ai_response"
	eventError         = "error"
)

// inboundEvent 是客户端发来的事件信封。
type inboundEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// sessionJoinedEvent 在加入会话成功后下发，携带完整历史。
type sessionJoinedEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Messages  []model.Message `json:"messages"`
}

// messageEvent 携带一条已落库的消息（message_saved / ai_response）。
type messageEvent struct {
	Type    string         `json:"type"`
	Message *model.Message `json:"message"`
}

// errorEvent 向客户端通告一次处理失败。
type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChatHandler 负责处理 WebSocket 聊天连接。
type ChatHandler struct {
	chatService service.ChatService
	registry    *service.SessionRegistry
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, registry *service.SessionRegistry) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		registry:    registry,
	}
}

// Handle 处理一个传入的 WebSocket 连接。
// 单个 goroutine 顺序读取并处理该连接的全部事件，保证同一连接上
// USER/ASSISTANT 消息对严格按提交顺序落库；不同连接之间互不阻塞。
func (h *ChatHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer func() {
		// 断开只解除注册表绑定，对话数据保持可重连
		h.registry.Release(conn)
		_ = conn.Close()
	}()

	log.Info("WebSocket 连接已建立")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			break
		}

		var event inboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			h.writeError(conn, "Invalid event payload")
			continue
		}

		switch event.Type {
		case eventJoinSession:
			h.handleJoin(c, conn, event.SessionID)
		case eventChatMessage:
			h.handleChatMessage(c, conn, event.Message)
		default:
			log.Warnf("收到未知的事件类型: %s", event.Type)
		}
	}
}

// handleJoin 绑定会话并下发完整历史。
func (h *ChatHandler) handleJoin(c *gin.Context, conn *websocket.Conn, requested string) {
	sessionID := h.registry.Join(conn, requested)

	conv, err := h.chatService.JoinSession(c.Request.Context(), sessionID)
	if err != nil {
		log.Errorf("加入会话失败: %v", err)
		h.writeError(conn, "Failed to join session")
		return
	}

	log.Infof("访客加入会话: %s", sessionID)
	h.writeJSON(conn, sessionJoinedEvent{
		Type:      eventSessionJoined,
		SessionID: sessionID,
		Messages:  conv.Messages,
	})
}

// handleChatMessage 处理一轮问答，依次下发 message_saved 和 ai_response。
func (h *ChatHandler) handleChatMessage(c *gin.Context, conn *websocket.Conn, content string) {
	sessionID, ok := h.registry.Resolve(conn)
	if !ok {
		h.writeError(conn, "No session found")
		return
	}

	userMessage, assistantMessage, err := h.chatService.HandleMessage(c.Request.Context(), sessionID, content)
	if err != nil {
		log.Errorf("处理聊天消息失败: %v", err)
		if errors.Is(err, repository.ErrConversationNotFound) {
			h.writeError(conn, "Conversation not found")
			return
		}
		h.writeError(conn, "Failed to process message")
		return
	}

	h.writeJSON(conn, messageEvent{Type: eventMessageSaved, Message: userMessage})
	h.writeJSON(conn, messageEvent{Type: eventAIResponse, Message: assistantMessage})
}

// writeJSON 把事件序列化后写入连接，写失败只记录日志（连接随后会在读侧关闭）。
func (h *ChatHandler) writeJSON(conn *websocket.Conn, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Errorf("序列化下发事件失败: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Warnf("写入 WebSocket 消息失败: %v", err)
	}
}

func (h *ChatHandler) writeError(conn *websocket.Conn, message string) {
	h.writeJSON(conn, errorEvent{Type: eventError, Message: message})
}
