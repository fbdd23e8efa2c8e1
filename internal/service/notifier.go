package service

import (
	"context"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

// Notifier stores a notification for a user and pushes it to live clients.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind string, data map[string]interface{}) error
}

type AdminLister interface {
	FindAdmins(ctx context.Context) ([]domain.User, error)
}
