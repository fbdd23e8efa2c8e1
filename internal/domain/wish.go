package domain

import "time"

type WishStatus string

const (
	WishPending  WishStatus = "pending"
	WishAccepted WishStatus = "accepted"
	WishRejected WishStatus = "rejected"
)

var WishStatuses = []interface{}{string(WishPending), string(WishAccepted), string(WishRejected)}

// NormalizeWishStatus maps the retired new/seen/done values onto the
// current ones.
func NormalizeWishStatus(s string) WishStatus {
	switch s {
	case "new":
		return WishPending
	case "seen", "done":
		return WishAccepted
	}

	return WishStatus(s)
}

type Wish struct {
	ID           uint       `json:"id"`
	QrID         uint       `json:"qr_id"`
	Message      string     `json:"message"`
	Status       WishStatus `json:"status"`
	ImagePath    string     `json:"image_path"`
	IsDownloaded bool       `json:"is_downloaded"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type WishFilter struct {
	Search string
	Status string
}
