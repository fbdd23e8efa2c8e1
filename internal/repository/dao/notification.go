package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID        string            `gorm:"type:uuid;primaryKey"`
	Type      string            `gorm:"size:128;not null"`
	UserID    uint              `gorm:"not null;index:idx_notifications_user_read,priority:1"`
	User      User              `gorm:"constraint:OnDelete:CASCADE"`
	Data      datatypes.JSONMap `gorm:"type:jsonb;not null"`
	ReadAt    *time.Time        `gorm:"index:idx_notifications_user_read,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{db: db}
}

func (d *NotificationDAO) Insert(ctx context.Context, n Notification) (Notification, error) {
	if err := d.db.WithContext(ctx).Omit("User").Create(&n).Error; err != nil {
		return Notification{}, err
	}

	return n, nil
}

func (d *NotificationDAO) FindByID(ctx context.Context, id string) (Notification, error) {
	var n Notification
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Notification{}, ErrNotificationNotFound
		}

		return Notification{}, err
	}

	return n, nil
}

func (d *NotificationDAO) FindLatest(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]Notification, error) {
	query := d.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func (d *NotificationDAO) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (d *NotificationDAO) MarkRead(ctx context.Context, id string, at time.Time) error {
	return d.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

func (d *NotificationDAO) MarkAllRead(ctx context.Context, userID uint, at time.Time) error {
	return d.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at).Error
}
