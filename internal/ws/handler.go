package ws

import (
	"log"
	"net/http"

	"github.com/Shekhu04/Whispr/internal/middleware"
	"github.com/Shekhu04/Whispr/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 鉴权靠 SameSite cookie / token，跨源页面拿不到凭证
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS 处理 WebSocket 握手。路由上挂了 AuthMiddleware，
// 走到这里的连接一定已经带上了 currentUser；拿不到说明配置错了。
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade 已经写了失败响应
			log.Printf("ws: upgrade for user %d: %v", user.ID, err)
			return
		}

		client := newClient(conn, user.ID, hub)
		hub.Join(client)

		go client.writePump()
		go client.readPump()
	}
}
