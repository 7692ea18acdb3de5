package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Shekhu04/Whispr/internal/config"
	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 用户查库的超时上限；超时按鉴权失败处理
const userLookupTimeout = 2 * time.Second

// AuthMiddleware 校验 JWT，并在 context 里放入当前用户。
// 所有入口（HTTP 接口和 WebSocket 握手）都走这一层，
// 失败直接短路，后面的业务逻辑不会被调用。
func AuthMiddleware(cfg config.JWTConfig, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Cookie（前端默认方式，HTTP-only）
		if cookie, err := c.Cookie(cfg.CookieName); err == nil {
			tokenStr = cookie
		}

		// 2) Header: Authorization: Bearer xxx
		if tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenStr = parts[1]
				}
			}
		}

		// 3) URL 查询参数 ?token=xxx（WebSocket 握手带不了自定义 Header）
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(cfg.Secret, tokenStr)
		if err != nil {
			// 不区分具体失败原因，统一回 401
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登录已失效，请重新登录")
			c.Abort()
			return
		}

		// token 合法还要确认账号仍然存在
		ctx, cancel := context.WithTimeout(c.Request.Context(), userLookupTimeout)
		defer cancel()

		var user models.User
		if err := db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "用户不存在")
			case errors.Is(err, context.DeadlineExceeded):
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登录已失效，请重新登录")
			default:
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
			}
			c.Abort()
			return
		}

		c.Set("currentUser", &user)
		c.Next()
	}
}

// CurrentUser 取出 AuthMiddleware 放入的当前用户
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
