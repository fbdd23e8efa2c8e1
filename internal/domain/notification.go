package domain

import "time"

const (
	NotificationQrBatchReady        = "QrBatchReadyNotification"
	NotificationWishExportCompleted = "WishImageExportCompletedNotification"
)

type Notification struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	UserID    uint                   `json:"-"`
	Data      map[string]interface{} `json:"data"`
	ReadAt    *time.Time             `json:"read_at"`
	CreatedAt time.Time              `json:"created_at"`
}

type NotificationFeed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}
