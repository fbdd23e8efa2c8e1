package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrNotificationNotFound = dao.ErrNotificationNotFound

type NotificationDAO interface {
	Insert(ctx context.Context, n dao.Notification) (dao.Notification, error)
	FindByID(ctx context.Context, id string) (dao.Notification, error)
	FindLatest(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]dao.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID uint, at time.Time) error
}

type NotificationRepository struct {
	dao NotificationDAO
}

func NewNotificationRepository(dao NotificationDAO) *NotificationRepository {
	return &NotificationRepository{dao: dao}
}

func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	created, err := r.dao.Insert(ctx, dao.Notification{
		ID:     n.ID,
		Type:   n.Type,
		UserID: n.UserID,
		Data:   datatypes.JSONMap(n.Data),
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return notificationToDomain(created), nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (domain.Notification, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return notificationToDomain(found), nil
}

func (r *NotificationRepository) FindLatest(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]domain.Notification, error) {
	rows, err := r.dao.FindLatest(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLatest -> %w", err)
	}

	notifications := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, notificationToDomain(row))
	}

	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	count, err := r.dao.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountUnread -> %w", err)
	}

	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	if err := r.dao.MarkRead(ctx, id, at); err != nil {
		return fmt.Errorf("r.dao.MarkRead -> %w", err)
	}

	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint, at time.Time) error {
	if err := r.dao.MarkAllRead(ctx, userID, at); err != nil {
		return fmt.Errorf("r.dao.MarkAllRead -> %w", err)
	}

	return nil
}

func notificationToDomain(n dao.Notification) domain.Notification {
	return domain.Notification{
		ID:        n.ID,
		Type:      n.Type,
		UserID:    n.UserID,
		Data:      map[string]interface{}(n.Data),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
