// Package store owns message persistence: an append-only log per
// sender/receiver pair. Messages are never updated or deleted once
// written.
package store

import (
	"errors"
	"fmt"

	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/util"

	"gorm.io/gorm"
)

// ErrInvalidMessage 消息内容校验失败（如文本和图片都为空）
var ErrInvalidMessage = errors.New("message must contain text or image")

// MessageStore 基于 gorm 的消息读写
type MessageStore struct {
	DB *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{DB: db}
}

// Append 持久化一条消息并返回落库后的完整记录
func (s *MessageStore) Append(senderID, receiverID uint, text, image string) (*models.Message, error) {
	if err := util.ValidateMessageBody(text, image); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      image,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &msg, nil
}

// ListConversation 返回两个用户之间的全部消息（双向），
// 按创建时间升序，时间相同按插入顺序（主键）排
func (s *MessageStore) ListConversation(userA, userB uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return messages, nil
}
