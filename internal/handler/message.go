package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Shekhu04/Whispr/internal/middleware"
	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/store"
	"github.com/Shekhu04/Whispr/internal/upload"
	"github.com/Shekhu04/Whispr/internal/util"
	"github.com/Shekhu04/Whispr/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 图片上传给外部存储的时间上限
const uploadTimeout = 10 * time.Second

// MessageHandler 负责会话记录查询和发消息
type MessageHandler struct {
	DB         *gorm.DB
	Store      *store.MessageStore
	Dispatcher *ws.Dispatcher
	Storage    upload.Storage
}

func NewMessageHandler(db *gorm.DB, st *store.MessageStore, d *ws.Dispatcher, storage upload.Storage) *MessageHandler {
	return &MessageHandler{
		DB:         db,
		Store:      st,
		Dispatcher: d,
		Storage:    storage,
	}
}

func otherUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GetMessages 返回当前用户和 :id 用户之间的全部消息
func (h *MessageHandler) GetMessages(c *gin.Context) {
	me, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return
	}
	otherID, ok := otherUserID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "用户 ID 不合法")
		return
	}

	messages, err := h.Store.ListConversation(me.ID, otherID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询消息失败")
		return
	}

	util.Success(c, util.Response{
		"messages": messages,
	})
}

// ---------- 发消息 ----------

type sendMessageReq struct {
	Text  string `json:"text"`
	Image string `json:"image"` // data URL 或裸 base64
}

// SendMessage 落库之后尽力实时推给接收方。
// 推送失败不影响返回：消息已经持久化，对方上线自然能拉到。
func (h *MessageHandler) SendMessage(c *gin.Context) {
	me, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return
	}
	receiverID, ok := otherUserID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "用户 ID 不合法")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	// 接收方必须存在
	var receiver models.User
	if err := h.DB.First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "用户不存在")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
		}
		return
	}

	// 带图先传外部存储，换成 URL 再落库
	var imageURL string
	if req.Image != "" {
		data, contentType, err := upload.DecodeDataURL(req.Image)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "图片数据不合法")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
		defer cancel()

		imageURL, err = h.Storage.Upload(ctx, data, contentType)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "图片上传失败")
			return
		}
	}

	msg, err := h.Store.Append(me.ID, receiverID, req.Text, imageURL)
	if err != nil {
		if errors.Is(err, store.ErrInvalidMessage) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "消息需要文本或图片")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "保存消息失败")
		}
		return
	}

	h.Dispatcher.Deliver(msg)

	util.Created(c, util.Response{
		"message": msg,
	})
}
