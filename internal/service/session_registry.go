// Package service 包含了应用的业务逻辑层。
package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionRegistry 维护活动连接到 sessionId 的内存映射，只负责请求路由，
// 不承担任何持久化职责；对话数据的事实来源始终是数据库中的会话记录。
// 多条连接（例如同一访客的两个标签页）可以绑定到同一个 sessionId。
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[*websocket.Conn]string
}

// NewSessionRegistry 创建一个新的 SessionRegistry。
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[*websocket.Conn]string),
	}
}

// Join 把连接绑定到 requested 指定的 sessionId；requested 为空时生成一个新的。
// 同一连接重复 Join 时，后一次绑定覆盖前一次。返回最终生效的 sessionId。
func (r *SessionRegistry) Join(conn *websocket.Conn, requested string) string {
	sessionID := requested
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r.mu.Lock()
	r.sessions[conn] = sessionID
	r.mu.Unlock()

	return sessionID
}

// Resolve 返回连接当前绑定的 sessionId；尚未 Join 时第二个返回值为 false。
func (r *SessionRegistry) Resolve(conn *websocket.Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessionID, ok := r.sessions[conn]
	return sessionID, ok
}

// Release 解除连接的绑定，在连接断开时调用。不触碰任何持久化数据。
func (r *SessionRegistry) Release(conn *websocket.Conn) {
	r.mu.Lock()
	delete(r.sessions, conn)
	r.mu.Unlock()
}
