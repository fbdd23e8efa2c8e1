package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("item not found")

type Item struct {
	ID           uint            `gorm:"primaryKey"`
	QrID         uint            `gorm:"not null;index:idx_items_qr_name,priority:1"`
	Qr           Qr              `gorm:"constraint:OnDelete:CASCADE"`
	Name         string          `gorm:"size:255;not null;index:idx_items_qr_name,priority:2"`
	SKU          *string         `gorm:"column:sku;size:100"`
	Color        *string         `gorm:"size:7"`
	BalanceStock decimal.Decimal `gorm:"type:numeric(15,4);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ItemDAO struct {
	db *gorm.DB
}

func NewItemDAO(db *gorm.DB) *ItemDAO {
	return &ItemDAO{db: db}
}

// Insert creates the item and, when opening is set, its opening stock
// movement in the same transaction.
func (d *ItemDAO) Insert(ctx context.Context, item Item, opening *StockTransaction) (Item, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Qr").Create(&item).Error; err != nil {
			return err
		}
		if opening == nil {
			return nil
		}

		opening.ItemID = item.ID
		opening.QrID = item.QrID
		opening.BalanceAfter = item.BalanceStock

		return tx.Omit("Item", "Qr").Create(opening).Error
	})
	if err != nil {
		return Item{}, err
	}

	return item, nil
}

func (d *ItemDAO) FindByID(ctx context.Context, id uint) (Item, error) {
	var item Item
	if err := d.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Item{}, ErrItemNotFound
		}

		return Item{}, err
	}

	return item, nil
}

func (d *ItemDAO) FindByQr(ctx context.Context, qrID uint) ([]Item, error) {
	var items []Item
	if err := d.db.WithContext(ctx).Where("qr_id = ?", qrID).Order("name, id").Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (d *ItemDAO) List(ctx context.Context, qrID uint, search string, offset, limit int) ([]Item, int64, error) {
	query := d.db.WithContext(ctx).Model(&Item{}).Where("qr_id = ?", qrID)
	if search != "" {
		pattern := likePattern(search)
		query = query.Where("(name ILIKE ? OR sku ILIKE ? OR color ILIKE ?)", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Item
	if err := query.Order("name, id").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (d *ItemDAO) CountByQr(ctx context.Context, qrID uint) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&Item{}).Where("qr_id = ?", qrID).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Update changes the descriptive columns only. Balances move through
// StockDAO.Apply.
func (d *ItemDAO) Update(ctx context.Context, item Item) (Item, error) {
	result := d.db.WithContext(ctx).Model(&Item{ID: item.ID}).Updates(map[string]interface{}{
		"name":  item.Name,
		"sku":   item.SKU,
		"color": item.Color,
	})
	if result.Error != nil {
		return Item{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Item{}, ErrItemNotFound
	}

	return d.FindByID(ctx, item.ID)
}

func (d *ItemDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Item{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}
