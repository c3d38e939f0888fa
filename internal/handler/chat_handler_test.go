package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"portfolio-chat-go/internal/model"
	"portfolio-chat-go/internal/repository"
	"portfolio-chat-go/internal/service"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubPortfolioRepo 提供固定的档案快照。
type stubPortfolioRepo struct {
	profile *model.User
}

func (r *stubPortfolioRepo) GetProfile(ctx context.Context) (*model.User, error) {
	return r.profile, nil
}

func (r *stubPortfolioRepo) FindFeaturedProjects(ctx context.Context) ([]model.Project, error) {
	return nil, nil
}

func (r *stubPortfolioRepo) FindSkills(ctx context.Context) ([]model.Skill, error) {
	return nil, nil
}

// receivedEvent 是测试侧解析下发事件用的宽松信封。
type receivedEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Message   json.RawMessage `json:"message"`
	Messages  []model.Message `json:"messages"`
}

func newChatTestServer(t *testing.T) (*httptest.Server, repository.ConversationRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Conversation{}, &model.Message{}))

	convRepo := repository.NewConversationRepository(db)
	profile := &model.User{
		Name:  "Jane",
		Title: "Full Stack Developer",
		Email: "jane@x.com",
		Bio:   "Builds things for the web.",
		Skills: []model.Skill{
			{Name: "React", Category: "Frontend", Level: "Expert"},
			{Name: "Python", Category: "Language", Level: "Advanced"},
		},
	}
	chatService := service.NewChatService(convRepo, &stubPortfolioRepo{profile: profile}, service.NewResponder(), 5)

	r := gin.New()
	r.GET("/ws/chat", NewChatHandler(chatService, service.NewSessionRegistry()).Handle)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, convRepo
}

func dialChat(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func readEvent(t *testing.T, conn *websocket.Conn) receivedEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var event receivedEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func errorText(t *testing.T, event receivedEvent) string {
	t.Helper()
	var text string
	require.NoError(t, json.Unmarshal(event.Message, &text))
	return text
}

func TestJoinWithoutSessionIDGeneratesFreshSession(t *testing.T) {
	srv, _ := newChatTestServer(t)
	conn := dialChat(t, srv)

	sendEvent(t, conn, map[string]string{"type": "join_session"})
	event := readEvent(t, conn)

	assert.Equal(t, "session_joined", event.Type)
	assert.NotEmpty(t, event.SessionID)
	assert.Empty(t, event.Messages)
}

func TestChatBeforeJoinEmitsError(t *testing.T) {
	srv, convRepo := newChatTestServer(t)
	conn := dialChat(t, srv)

	sendEvent(t, conn, map[string]string{"type": "chat_message", "message": "hello"})
	event := readEvent(t, conn)

	assert.Equal(t, "error", event.Type)
	assert.Equal(t, "No session found", errorText(t, event))

	// 没有任何消息落库
	_, err := convRepo.FindBySessionID(context.Background(), "")
	assert.ErrorIs(t, err, repository.ErrConversationNotFound)
}

func TestChatTurnEmitsSavedThenResponse(t *testing.T) {
	srv, _ := newChatTestServer(t)
	conn := dialChat(t, srv)

	sendEvent(t, conn, map[string]string{"type": "join_session", "sessionId": "visitor-1"})
	joined := readEvent(t, conn)
	require.Equal(t, "session_joined", joined.Type)
	require.Equal(t, "visitor-1", joined.SessionID)

	sendEvent(t, conn, map[string]string{"type": "chat_message", "message": "What are your skills?"})

	saved := readEvent(t, conn)
	require.Equal(t, "message_saved", saved.Type)
	var userMsg model.Message
	require.NoError(t, json.Unmarshal(saved.Message, &userMsg))
	assert.Equal(t, model.RoleUser, userMsg.Role)
	assert.Equal(t, "What are your skills?", userMsg.Content)

	response := readEvent(t, conn)
	require.Equal(t, "ai_response", response.Type)
	var aiMsg model.Message
	require.NoError(t, json.Unmarshal(response.Message, &aiMsg))
	assert.Equal(t, model.RoleAssistant, aiMsg.Role)
	assert.Contains(t, aiMsg.Content, "**Frontend**: React (Expert)")
	assert.Contains(t, aiMsg.Content, "**Language**: Python (Advanced)")
}

func TestRejoinReturnsPersistedTranscript(t *testing.T) {
	srv, _ := newChatTestServer(t)

	first := dialChat(t, srv)
	sendEvent(t, first, map[string]string{"type": "join_session", "sessionId": "visitor-2"})
	readEvent(t, first)
	sendEvent(t, first, map[string]string{"type": "chat_message", "message": "hello"})
	readEvent(t, first) // message_saved
	readEvent(t, first) // ai_response
	first.Close()

	// 新连接未加入会话前发消息只会收到错误
	second := dialChat(t, srv)
	sendEvent(t, second, map[string]string{"type": "chat_message", "message": "still there?"})
	event := readEvent(t, second)
	require.Equal(t, "error", event.Type)
	assert.Equal(t, "No session found", errorText(t, event))

	// 重新加入后拿回断开前的完整对话，顺序不变
	sendEvent(t, second, map[string]string{"type": "join_session", "sessionId": "visitor-2"})
	joined := readEvent(t, second)
	require.Equal(t, "session_joined", joined.Type)
	require.Len(t, joined.Messages, 2)
	assert.Equal(t, model.RoleUser, joined.Messages[0].Role)
	assert.Equal(t, "hello", joined.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, joined.Messages[1].Role)
}

func TestInvalidPayloadEmitsError(t *testing.T) {
	srv, _ := newChatTestServer(t)
	conn := dialChat(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	event := readEvent(t, conn)

	assert.Equal(t, "error", event.Type)
	assert.Equal(t, "Invalid event payload", errorText(t, event))
}
