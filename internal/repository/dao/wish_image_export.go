package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrWishImageExportNotFound = errors.New("wish image export not found")

type WishImageExport struct {
	ID           uint    `gorm:"primaryKey"`
	QrID         uint    `gorm:"not null;index:idx_wish_exports_qr_user_status,priority:1"`
	Qr           Qr      `gorm:"constraint:OnDelete:CASCADE"`
	UserID       uint    `gorm:"not null;index:idx_wish_exports_qr_user_status,priority:2"`
	User         User    `gorm:"constraint:OnDelete:CASCADE"`
	Status       string  `gorm:"size:16;not null;default:queued;index:idx_wish_exports_qr_user_status,priority:3"`
	FilePath     *string `gorm:"size:255"`
	TotalImages  int     `gorm:"not null;default:0"`
	ErrorMessage *string `gorm:"type:text"`
	StartedAt    *time.Time
	FinishedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type WishImageExportDAO struct {
	db *gorm.DB
}

func NewWishImageExportDAO(db *gorm.DB) *WishImageExportDAO {
	return &WishImageExportDAO{db: db}
}

func (d *WishImageExportDAO) Insert(ctx context.Context, export WishImageExport) (WishImageExport, error) {
	if err := d.db.WithContext(ctx).Omit("Qr", "User").Create(&export).Error; err != nil {
		return WishImageExport{}, err
	}

	return export, nil
}

func (d *WishImageExportDAO) FindByID(ctx context.Context, id uint) (WishImageExport, error) {
	var export WishImageExport
	if err := d.db.WithContext(ctx).First(&export, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WishImageExport{}, ErrWishImageExportNotFound
		}

		return WishImageExport{}, err
	}

	return export, nil
}

// FindLatestWithStatus returns the newest export of the user for the QR in
// one of statuses.
func (d *WishImageExportDAO) FindLatestWithStatus(ctx context.Context, qrID, userID uint, statuses []string) (WishImageExport, error) {
	var export WishImageExport
	err := d.db.WithContext(ctx).
		Where("qr_id = ? AND user_id = ? AND status IN ?", qrID, userID, statuses).
		Order("id DESC").
		First(&export).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WishImageExport{}, ErrWishImageExportNotFound
		}

		return WishImageExport{}, err
	}

	return export, nil
}

func (d *WishImageExportDAO) FindRecent(ctx context.Context, qrID, userID uint, limit int) ([]WishImageExport, error) {
	var exports []WishImageExport
	err := d.db.WithContext(ctx).
		Where("qr_id = ? AND user_id = ?", qrID, userID).
		Order("id DESC").
		Limit(limit).
		Find(&exports).Error
	if err != nil {
		return nil, err
	}

	return exports, nil
}

func (d *WishImageExportDAO) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := d.db.WithContext(ctx).Model(&WishImageExport{ID: id}).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWishImageExportNotFound
	}

	return nil
}
