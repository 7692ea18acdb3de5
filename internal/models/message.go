package models

import "time"

// Message 表示一条私信
// Text 和 Image 至少要有一个；创建之后不可修改（没有编辑/删除）
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"index:idx_conversation;not null" json:"senderId"`
	ReceiverID uint      `gorm:"index:idx_conversation;not null" json:"receiverId"`
	Text       string    `gorm:"type:text" json:"text,omitempty"`
	Image      string    `gorm:"size:512" json:"image,omitempty"` // 图片 URL
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`

	Sender   User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
}
