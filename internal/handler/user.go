package handler

import (
	"net/http"

	"github.com/Shekhu04/Whispr/internal/middleware"
	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMe 返回当前登录用户信息（需要经过 AuthMiddleware）
func GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return
	}

	util.Success(c, util.Response{
		"user": userPayload(user),
	})
}

// ListUsers 返回除自己以外的全部用户，给侧边栏用
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
			return
		}

		var users []models.User
		if err := db.Where("id <> ?", me.ID).
			Order("full_name ASC").
			Find(&users).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
			return
		}

		list := make([]gin.H, 0, len(users))
		for i := range users {
			list = append(list, userPayload(&users[i]))
		}

		util.Success(c, util.Response{
			"users": list,
		})
	}
}
