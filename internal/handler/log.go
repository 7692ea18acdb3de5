package handler

import (
	"net/http"
	"strconv"

	"github.com/Shekhu04/Whispr/internal/middleware"
	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListLogs 返回当前用户最近的操作记录
func ListLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
			return
		}

		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}

		var logs []models.AuditLog
		if err := db.Where("user_id = ?", user.ID).
			Order("created_at DESC, id DESC").
			Limit(limit).
			Find(&logs).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询日志失败")
			return
		}

		util.Success(c, util.Response{
			"logs": logs,
		})
	}
}
