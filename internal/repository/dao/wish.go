package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrWishNotFound = errors.New("wish not found")

type Wish struct {
	ID           uint      `gorm:"primaryKey"`
	QrID         uint      `gorm:"not null;index:idx_wishes_qr_created,priority:1"`
	Qr           Qr        `gorm:"constraint:OnDelete:CASCADE"`
	Message      string    `gorm:"type:text;not null"`
	Status       string    `gorm:"size:16;not null;default:pending;index"`
	ImagePath    *string   `gorm:"size:255"`
	IsDownloaded bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"index:idx_wishes_qr_created,priority:2"`
	UpdatedAt    time.Time
}

type WishDAO struct {
	db *gorm.DB
}

func NewWishDAO(db *gorm.DB) *WishDAO {
	return &WishDAO{db: db}
}

func (d *WishDAO) Insert(ctx context.Context, wish Wish) (Wish, error) {
	if err := d.db.WithContext(ctx).Omit("Qr").Create(&wish).Error; err != nil {
		return Wish{}, err
	}

	return wish, nil
}

func (d *WishDAO) FindByID(ctx context.Context, id uint) (Wish, error) {
	var wish Wish
	if err := d.db.WithContext(ctx).First(&wish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Wish{}, ErrWishNotFound
		}

		return Wish{}, err
	}

	return wish, nil
}

func (d *WishDAO) List(ctx context.Context, qrID uint, search string, statuses []string, offset, limit int) ([]Wish, int64, error) {
	query := d.db.WithContext(ctx).Model(&Wish{}).Where("qr_id = ?", qrID)
	if search != "" {
		query = query.Where("message ILIKE ?", likePattern(search))
	}
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var wishes []Wish
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&wishes).Error; err != nil {
		return nil, 0, err
	}

	return wishes, total, nil
}

func (d *WishDAO) UpdateStatus(ctx context.Context, id uint, status string) (Wish, error) {
	result := d.db.WithContext(ctx).Model(&Wish{ID: id}).Update("status", status)
	if result.Error != nil {
		return Wish{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Wish{}, ErrWishNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *WishDAO) UpdateImagePath(ctx context.Context, id uint, path string) error {
	result := d.db.WithContext(ctx).Model(&Wish{ID: id}).Update("image_path", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWishNotFound
	}

	return nil
}

func (d *WishDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Wish{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWishNotFound
	}

	return nil
}

// NextExportable returns up to limit accepted, not yet downloaded wishes of
// the QR that carry an image, with ids above afterID in id order.
func (d *WishDAO) NextExportable(ctx context.Context, qrID, afterID uint, statuses []string, limit int) ([]Wish, error) {
	var wishes []Wish
	err := d.db.WithContext(ctx).
		Where("qr_id = ? AND id > ?", qrID, afterID).
		Where("status IN ?", statuses).
		Where("is_downloaded = ?", false).
		Where("image_path IS NOT NULL AND image_path <> ''").
		Order("id").
		Limit(limit).
		Find(&wishes).Error
	if err != nil {
		return nil, err
	}

	return wishes, nil
}

func (d *WishDAO) MarkDownloaded(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	return d.db.WithContext(ctx).Model(&Wish{}).Where("id IN ?", ids).Update("is_downloaded", true).Error
}
