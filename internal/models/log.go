package models

import "time"

// AuditLog records important operations for auditing.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	RequestID string    `gorm:"size:64"` // UUID，方便和服务端日志对账
	UserID    *uint     `gorm:"index"`
	Path      string    `gorm:"size:255"`
	Method    string    `gorm:"size:16"`
	Action    string    `gorm:"size:2048"` // 方法 + 路由 + 请求体摘要
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time
}
