package ws

import "encoding/json"

// 推送给客户端的事件名，与前端约定保持一致
const (
	EventOnlineUsers = "getOnlineUsers"
	EventNewMessage  = "newMessage"
)

// Event 是 WebSocket 下行消息的统一信封
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func marshalEvent(name string, data interface{}) ([]byte, error) {
	return json.Marshal(Event{Event: name, Data: data})
}
