package ws

import (
	"log"

	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/presence"
)

// Dispatcher 负责把刚落库的消息实时推给接收方。
// 尽力而为：接收方不在线、或推送失败，都静默放弃——
// 消息已经持久化，对方回来拉会话记录就能看到。
type Dispatcher struct {
	registry *presence.Registry
}

func NewDispatcher(registry *presence.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Deliver pushes msg to the receiver's live connection, if any. It
// never blocks the caller (the send is a buffered, non-blocking queue)
// and never reports an error to the sender.
func (d *Dispatcher) Deliver(msg *models.Message) {
	conn, ok := d.registry.Lookup(msg.ReceiverID)
	if !ok {
		return
	}

	payload, err := marshalEvent(EventNewMessage, msg)
	if err != nil {
		log.Printf("ws: marshal message %d: %v", msg.ID, err)
		return
	}

	if !conn.Send(payload) {
		// 连接可能正在断开，按离线处理
		log.Printf("ws: push to user %d failed, message %d stays in store", msg.ReceiverID, msg.ID)
	}
}
