package response

import (
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type Message struct {
	Message string `json:"message"`
}

type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

type Paginated[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPaginated[T any](page domain.Page[T]) Paginated[T] {
	return Paginated[T]{
		Data: page.Items,
		Meta: Meta{
			CurrentPage: page.Page,
			PerPage:     page.PerPage,
			From:        page.From(),
			To:          page.To(),
			Total:       page.Total,
			LastPage:    page.LastPage(),
		},
	}
}

type OK struct {
	OK bool `json:"ok"`
}

type GeneratedPins struct {
	Message string   `json:"message"`
	Pins    []string `json:"pins"`
}

type ExportRequested struct {
	Message        string                     `json:"message"`
	Export         domain.WishImageExportView `json:"export"`
	AlreadyRunning bool                       `json:"already_running"`
}

type Submitted struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type PinCheck struct {
	Exists bool `json:"exists"`
}

// EntryErr is shown by the public landing page instead of the generic
// error body.
type EntryErr struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Health struct {
	Status string `json:"status"`
}
