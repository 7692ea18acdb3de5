// Package ws owns the realtime side of the service: the WebSocket
// connection lifecycle, the online-user broadcast, and live message
// delivery. Persistence stays in the HTTP layer; this package only ever
// pushes already-committed data.
package ws

import (
	"log"

	"github.com/Shekhu04/Whispr/internal/presence"
)

// Hub 管理连接的注册/注销，并在每次在线名单变化时
// 把完整的在线用户列表广播给所有连接（全量快照，不发增量）。
type Hub struct {
	registry *presence.Registry
}

func NewHub(registry *presence.Registry) *Hub {
	return &Hub{registry: registry}
}

// Registry exposes the presence table for the dispatcher and handlers.
func (h *Hub) Registry() *presence.Registry {
	return h.registry
}

// Join registers an authenticated client. If the user already had a
// live connection, the old one is closed: last connection wins, and the
// loser must not linger and keep receiving broadcasts.
func (h *Hub) Join(c *Client) {
	if prev := h.registry.Register(c.userID, c); prev != nil {
		prev.Close()
	}
	log.Printf("ws: user %d connected", c.userID)
	h.broadcastOnlineUsers()
}

// Leave removes the client and re-broadcasts the snapshot. A stale or
// duplicate disconnect is a no-op, so the path is idempotent.
func (h *Hub) Leave(c *Client) {
	if !h.registry.Unregister(c.userID, c) {
		return
	}
	log.Printf("ws: user %d disconnected", c.userID)
	h.broadcastOnlineUsers()
}

// broadcastOnlineUsers 把当前完整在线列表发给每一个在线连接。
// 发送失败按掉线处理，不中断其它连接的广播。
func (h *Hub) broadcastOnlineUsers() {
	ids := h.registry.Snapshot()

	payload, err := marshalEvent(EventOnlineUsers, ids)
	if err != nil {
		log.Printf("ws: marshal online users: %v", err)
		return
	}

	var missed []uint
	for _, id := range ids {
		conn, ok := h.registry.Lookup(id)
		if !ok {
			// 快照之后刚好下线，正常情况
			continue
		}
		if !conn.Send(payload) {
			missed = append(missed, id)
		}
	}
	if len(missed) > 0 {
		log.Printf("ws: online-users broadcast missed users %v", missed)
	}
}
