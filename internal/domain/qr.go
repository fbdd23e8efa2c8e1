package domain

import "time"

type QrStatus string

const (
	QrActive   QrStatus = "active"
	QrInactive QrStatus = "inactive"
	QrArchived QrStatus = "archived"
)

var QrStatuses = []interface{}{string(QrActive), string(QrInactive), string(QrArchived)}

type Qr struct {
	ID        uint      `json:"id"`
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	Status    QrStatus  `json:"status"`
	CreatedBy *uint     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q Qr) IsActive() bool {
	return q.Status == QrActive
}

// QrSummary is a QR row of the admin index with its relation counters.
type QrSummary struct {
	Qr
	QuestionsCount int64 `json:"questions_count"`
	ItemsCount     int64 `json:"items_count"`
	ResponsesCount int64 `json:"responses_count"`
	WishesCount    int64 `json:"wishes_count"`
	PinsCount      int64 `json:"pins_count"`
}

type QrFilter struct {
	Search string
	Status string
}

// QrDetail is the admin manage page payload.
type QrDetail struct {
	Qr        Qr         `json:"qr"`
	Questions []Question `json:"questions"`
	Items     []Item     `json:"items"`
}
