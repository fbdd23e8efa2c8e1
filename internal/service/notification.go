package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const (
	feedLimit = 20
	pollLimit = 10
)

var (
	ErrNotificationNotFound  = repository.ErrNotificationNotFound
	ErrNotificationForbidden = errors.New("notification belongs to another user")
)

type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	FindByID(ctx context.Context, id string) (domain.Notification, error)
	FindLatest(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID uint, at time.Time) error
}

// Pusher delivers a stored notification to the user's live connections.
type Pusher interface {
	Push(userID uint, n domain.Notification)
}

type NotificationService struct {
	repo   NotificationRepository
	pusher Pusher
	now    func() time.Time
}

func NewNotificationService(repo NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher, now: time.Now}
}

func (s *NotificationService) Notify(ctx context.Context, userID uint, kind string, data map[string]interface{}) error {
	n, err := s.repo.Create(ctx, domain.Notification{
		ID:     uuid.NewString(),
		Type:   kind,
		UserID: userID,
		Data:   data,
	})
	if err != nil {
		return fmt.Errorf("s.repo.Create -> %w", err)
	}

	if s.pusher != nil {
		s.pusher.Push(userID, n)
	}

	return nil
}

func (s *NotificationService) Feed(ctx context.Context, userID uint) (domain.NotificationFeed, error) {
	return s.feed(ctx, userID, false, feedLimit)
}

// Poll returns the newest unread notifications only.
func (s *NotificationService) Poll(ctx context.Context, userID uint) (domain.NotificationFeed, error) {
	return s.feed(ctx, userID, true, pollLimit)
}

func (s *NotificationService) feed(ctx context.Context, userID uint, unreadOnly bool, limit int) (domain.NotificationFeed, error) {
	list, err := s.repo.FindLatest(ctx, userID, unreadOnly, limit)
	if err != nil {
		return domain.NotificationFeed{}, fmt.Errorf("s.repo.FindLatest -> %w", err)
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return domain.NotificationFeed{}, fmt.Errorf("s.repo.CountUnread -> %w", err)
	}

	return domain.NotificationFeed{Notifications: list, UnreadCount: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id string, userID uint) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if n.UserID != userID {
		return ErrNotificationForbidden
	}
	if n.ReadAt != nil {
		return nil
	}

	if err = s.repo.MarkRead(ctx, id, s.now()); err != nil {
		return fmt.Errorf("s.repo.MarkRead -> %w", err)
	}

	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.repo.MarkAllRead(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("s.repo.MarkAllRead -> %w", err)
	}

	return nil
}
