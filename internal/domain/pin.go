package domain

import "time"

type QrPin struct {
	ID        uint      `json:"id"`
	QrID      uint      `json:"qr_id"`
	PinNumber string    `json:"pin_number"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}

type PinFilter struct {
	Search string
	IsUsed *bool
}
