package models

import "time"

// User represents application user.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:64;not null" json:"fullName"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ProfilePic   string    `gorm:"size:512" json:"profilePic"` // 头像 URL，由外部存储返回
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	LastLoginAt *time.Time `json:"-"` // 最近登录时间
	LastLoginIP string     `gorm:"size:64" json:"-"`
}
