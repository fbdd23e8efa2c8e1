package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrQrBatchNotFound = errors.New("qr batch not found")

type QrBatch struct {
	ID              uint            `gorm:"primaryKey"`
	Quantity        int             `gorm:"not null"`
	Status          string          `gorm:"size:32;not null;default:pending;index"`
	BaseURL         string          `gorm:"column:base_url;type:text;not null"`
	PageFormat      string          `gorm:"size:16;not null;default:A4"`
	MarginMM        decimal.Decimal `gorm:"column:margin_mm;type:numeric(6,2);not null;default:8"`
	GapMM           decimal.Decimal `gorm:"column:gap_mm;type:numeric(6,2);not null;default:4"`
	Cols            int             `gorm:"not null;default:4"`
	Rows            int             `gorm:"not null;default:6"`
	SizeMode        string          `gorm:"size:16;not null;default:preset"`
	SizeMM          decimal.Decimal `gorm:"column:size_mm;type:numeric(6,2);not null"`
	PDFPath         *string         `gorm:"column:pdf_path;size:255"`
	ProgressCurrent int             `gorm:"not null;default:0"`
	ProgressTotal   int             `gorm:"not null;default:100"`
	ProgressPercent int             `gorm:"not null;default:0"`
	StatusMessage   *string         `gorm:"size:255"`
	CreatedBy       *uint           `gorm:"index"`
	StartedAt       *time.Time
	FinishedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type QrBatchItem struct {
	ID        uint    `gorm:"primaryKey"`
	QrBatchID uint    `gorm:"not null;index:idx_qr_batch_items_batch_sequence,priority:1"`
	QrBatch   QrBatch `gorm:"constraint:OnDelete:CASCADE"`
	Sequence  int     `gorm:"not null;index:idx_qr_batch_items_batch_sequence,priority:2"`
	Token     string  `gorm:"size:64;not null;uniqueIndex:uni_qr_batch_items_token"`
	URL       string  `gorm:"column:url;type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type QrBatchDAO struct {
	db *gorm.DB
}

func NewQrBatchDAO(db *gorm.DB) *QrBatchDAO {
	return &QrBatchDAO{db: db}
}

func (d *QrBatchDAO) Insert(ctx context.Context, batch QrBatch) (QrBatch, error) {
	if err := d.db.WithContext(ctx).Create(&batch).Error; err != nil {
		return QrBatch{}, err
	}

	return batch, nil
}

func (d *QrBatchDAO) FindByID(ctx context.Context, id uint) (QrBatch, error) {
	var batch QrBatch
	if err := d.db.WithContext(ctx).First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QrBatch{}, ErrQrBatchNotFound
		}

		return QrBatch{}, err
	}

	return batch, nil
}

func (d *QrBatchDAO) FindLatest(ctx context.Context) (QrBatch, error) {
	var batch QrBatch
	if err := d.db.WithContext(ctx).Order("id DESC").First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QrBatch{}, ErrQrBatchNotFound
		}

		return QrBatch{}, err
	}

	return batch, nil
}

func (d *QrBatchDAO) List(ctx context.Context, offset, limit int) ([]QrBatch, int64, error) {
	query := d.db.WithContext(ctx).Model(&QrBatch{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []QrBatch
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&batches).Error; err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

// Update writes the given columns. A map is used so zero values and NULLs
// are written too.
func (d *QrBatchDAO) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := d.db.WithContext(ctx).Model(&QrBatch{ID: id}).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQrBatchNotFound
	}

	return nil
}

func (d *QrBatchDAO) DeleteItems(ctx context.Context, batchID uint) error {
	return d.db.WithContext(ctx).Where("qr_batch_id = ?", batchID).Delete(&QrBatchItem{}).Error
}

func (d *QrBatchDAO) InsertItems(ctx context.Context, items []QrBatchItem) error {
	if len(items) == 0 {
		return nil
	}

	return d.db.WithContext(ctx).Omit("QrBatch").Create(&items).Error
}

// ItemsInRange returns the items whose sequence lies in [from, to].
func (d *QrBatchDAO) ItemsInRange(ctx context.Context, batchID uint, from, to int) ([]QrBatchItem, error) {
	var items []QrBatchItem
	err := d.db.WithContext(ctx).
		Select("id", "qr_batch_id", "sequence", "token", "url").
		Where("qr_batch_id = ? AND sequence BETWEEN ? AND ?", batchID, from, to).
		Order("sequence").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}
