package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrPinExists      = errors.New("pin already exists for this qr")
	ErrPinUnavailable = errors.New("pin unknown or already used")
)

type QrPin struct {
	ID        uint   `gorm:"primaryKey"`
	QrID      uint   `gorm:"not null;uniqueIndex:uni_qr_pins_qr_pin,priority:1"`
	Qr        Qr     `gorm:"constraint:OnDelete:CASCADE"`
	PinNumber string `gorm:"size:6;not null;uniqueIndex:uni_qr_pins_qr_pin,priority:2"`
	IsUsed    bool   `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PinDAO struct {
	db *gorm.DB
}

func NewPinDAO(db *gorm.DB) *PinDAO {
	return &PinDAO{db: db}
}

// InsertAll stores every pin or none of them.
func (d *PinDAO) InsertAll(ctx context.Context, pins []QrPin) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Qr").CreateInBatches(&pins, 500).Error
	})
	if err != nil {
		if isUniqueViolation(err, "uni_qr_pins_qr_pin") {
			return ErrPinExists
		}

		return err
	}

	return nil
}

// ExistingNumbers returns the subset of numbers already issued for the QR.
func (d *PinDAO) ExistingNumbers(ctx context.Context, qrID uint, numbers []string) ([]string, error) {
	var existing []string
	if len(numbers) == 0 {
		return existing, nil
	}

	err := d.db.WithContext(ctx).Model(&QrPin{}).
		Where("qr_id = ? AND pin_number IN ?", qrID, numbers).
		Pluck("pin_number", &existing).Error
	if err != nil {
		return nil, err
	}

	return existing, nil
}

func (d *PinDAO) List(ctx context.Context, qrID uint, search string, isUsed *bool, offset, limit int) ([]QrPin, int64, error) {
	query := d.db.WithContext(ctx).Model(&QrPin{}).Where("qr_id = ?", qrID)
	if search != "" {
		query = query.Where("pin_number LIKE ?", likePattern(search))
	}
	if isUsed != nil {
		query = query.Where("is_used = ?", *isUsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pins []QrPin
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&pins).Error; err != nil {
		return nil, 0, err
	}

	return pins, total, nil
}

// Each walks the QR pins in id order, size rows at a time.
func (d *PinDAO) Each(ctx context.Context, qrID uint, size int, fn func([]QrPin) error) error {
	var afterID uint
	for {
		var pins []QrPin
		err := d.db.WithContext(ctx).
			Where("qr_id = ? AND id > ?", qrID, afterID).
			Order("id").
			Limit(size).
			Find(&pins).Error
		if err != nil {
			return err
		}
		if len(pins) == 0 {
			return nil
		}
		if err = fn(pins); err != nil {
			return err
		}
		if len(pins) < size {
			return nil
		}
		afterID = pins[len(pins)-1].ID
	}
}

// Consume flips an unused pin to used. It reports false when the pin does
// not exist or was already used.
func (d *PinDAO) Consume(ctx context.Context, qrID uint, pinNumber string) (bool, error) {
	result := d.db.WithContext(ctx).Model(&QrPin{}).
		Where("qr_id = ? AND pin_number = ? AND is_used = ?", qrID, pinNumber, false).
		Update("is_used", true)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
