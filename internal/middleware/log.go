package middleware

import (
	"bytes"
	"io"

	"github.com/Shekhu04/Whispr/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditMiddleware 记录登录用户的 API 操作
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 读取请求体
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// 执行请求
		c.Next()

		// 获取用户 ID（AuthMiddleware 在本中间件之前执行）
		var userID uint
		if user, ok := CurrentUser(c); ok {
			userID = user.ID
		}

		// 只记录登录用户的操作
		if userID == 0 {
			return
		}

		// 构造 action
		path := c.Request.URL.Path
		action := c.Request.Method + " " + path

		// 消息体可能带 base64 图片，只记录小请求体
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		entry := models.AuditLog{
			RequestID: uuid.NewString(),
			UserID:    &userID,
			Path:      path,
			Method:    c.Request.Method,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&entry).Error
	}
}
