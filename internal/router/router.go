package router

import (
	"github.com/Shekhu04/Whispr/internal/config"
	"github.com/Shekhu04/Whispr/internal/handler"
	"github.com/Shekhu04/Whispr/internal/middleware"
	"github.com/Shekhu04/Whispr/internal/store"
	"github.com/Shekhu04/Whispr/internal/upload"
	"github.com/Shekhu04/Whispr/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures Gin engine, API routes and the WebSocket endpoint.
func SetupRouter(cfg *config.Config, db *gorm.DB, hub *ws.Hub, storage upload.Storage) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 本地图片存储对外的静态路由
	r.Static(cfg.Upload.BaseURL, cfg.Upload.Dir)

	messageStore := store.NewMessageStore(db)
	dispatcher := ws.NewDispatcher(hub.Registry())

	// ====== API ======
	api := r.Group("/api")

	// 注册/登录接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(db, cfg.JWT, cfg.Security.BcryptCost)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.GET("/users", handler.ListUsers(db))

	messageHandler := handler.NewMessageHandler(db, messageStore, dispatcher, storage)
	protected.GET("/messages/:id", messageHandler.GetMessages)
	protected.POST("/messages/:id", messageHandler.SendMessage)

	protected.PUT("/profile", handler.UpdateProfile(db, storage))
	protected.GET("/logs", handler.ListLogs(db))

	// WebSocket 握手同样经过鉴权中间件，不审计（长连接没有请求体）
	r.GET("/ws", middleware.AuthMiddleware(cfg.JWT, db), ws.ServeWS(hub))

	return r
}
