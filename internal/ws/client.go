package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 给单次写操作的期限
	writeWait = 10 * time.Second
	// 读这边多久没收到 pong 就认为连接死了
	pongWait = 60 * time.Second
	// ping 周期，必须小于 pongWait
	pingPeriod = 54 * time.Second
	// 客户端上行消息大小上限（本服务不处理上行业务消息，只收控制帧）
	maxMessageSize = 512
	// 下行发送缓冲条数
	sendBufferSize = 256
)

// Client 包装一条已鉴权的 WebSocket 连接。
// 它实现 presence.Conn，在线表里存的就是它。
type Client struct {
	userID uint
	conn   *websocket.Conn
	hub    *Hub

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn, userID uint, hub *Hub) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues a payload without blocking. A full buffer or an already
// closed connection reports false; the caller treats that as offline.
func (c *Client) Send(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close tears the transport down. Idempotent; the read pump notices the
// closed socket and runs the normal disconnect path.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("ws: close connection for user %d: %v", c.userID, err)
		}
	})
}

// readPump 只负责探测断开：本服务所有业务请求走 HTTP，
// socket 上行只有 ping/pong/close 控制帧，数据帧一律丢弃。
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) && !isExpectedCloseError(err) {
				log.Printf("ws: read error for user %d: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("ws: write error for user %d: %v", c.userID, err)
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
