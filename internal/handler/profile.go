package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Shekhu04/Whispr/internal/middleware"
	"github.com/Shekhu04/Whispr/internal/upload"
	"github.com/Shekhu04/Whispr/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type updateProfileReq struct {
	ProfilePic string `json:"profilePic" binding:"required"` // data URL 或裸 base64
}

// UpdateProfile 更新头像：图片传给外部存储，用户表只存 URL
func UpdateProfile(db *gorm.DB, storage upload.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
			return
		}

		var req updateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
			return
		}

		data, contentType, err := upload.DecodeDataURL(req.ProfilePic)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "图片数据不合法")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		url, err := storage.Upload(ctx, data, contentType)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "图片上传失败")
			return
		}

		user.ProfilePic = url
		if err := db.Model(user).Update("profile_pic", url).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "更新头像失败")
			return
		}

		util.Success(c, util.Response{
			"user": userPayload(user),
		})
	}
}
