package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrBalanceTooLarge   = errors.New("balance exceeds numeric(15,4)")

	maxBalance = decimal.RequireFromString("99999999999.9999")
)

type StockTransaction struct {
	ID           uint            `gorm:"primaryKey"`
	ItemID       uint            `gorm:"not null;index"`
	Item         Item            `gorm:"constraint:OnDelete:CASCADE"`
	QrID         uint            `gorm:"not null;index:idx_stock_transactions_qr_created,priority:1"`
	Qr           Qr              `gorm:"constraint:OnDelete:CASCADE"`
	Type         string          `gorm:"size:16;not null"`
	Quantity     decimal.Decimal `gorm:"type:numeric(15,4);not null"`
	Note         *string         `gorm:"type:text"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(15,4);not null"`
	CreatedBy    *uint
	CreatedAt    time.Time `gorm:"index:idx_stock_transactions_qr_created,priority:2"`
}

type StockDAO struct {
	db *gorm.DB
}

func NewStockDAO(db *gorm.DB) *StockDAO {
	return &StockDAO{db: db}
}

// Apply adds delta to the item balance and records the movement. The item
// row is locked for the duration so concurrent movements serialize and the
// balance can never drop below zero.
func (d *StockDAO) Apply(ctx context.Context, movement StockTransaction, delta decimal.Decimal) (StockTransaction, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = applyMovement(tx, movement, delta)

		return err
	})
	if err != nil {
		return StockTransaction{}, err
	}

	return movement, nil
}

// ApplyWithPin books the movement and marks the pin used in one
// transaction. Either both happen or neither does.
func (d *StockDAO) ApplyWithPin(ctx context.Context, movement StockTransaction, delta decimal.Decimal, pinNumber string) (StockTransaction, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if movement, err = applyMovement(tx, movement, delta); err != nil {
			return err
		}

		result := tx.Model(&QrPin{}).
			Where("qr_id = ? AND pin_number = ? AND is_used = ?", movement.QrID, pinNumber, false).
			Update("is_used", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPinUnavailable
		}

		return nil
	})
	if err != nil {
		return StockTransaction{}, err
	}

	return movement, nil
}

func applyMovement(tx *gorm.DB, movement StockTransaction, delta decimal.Decimal) (StockTransaction, error) {
	var item Item
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND qr_id = ?", movement.ItemID, movement.QrID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StockTransaction{}, ErrItemNotFound
		}

		return StockTransaction{}, err
	}

	balance := item.BalanceStock.Add(delta)
	if balance.IsNegative() {
		return StockTransaction{}, ErrInsufficientStock
	}
	if balance.GreaterThan(maxBalance) {
		return StockTransaction{}, ErrBalanceTooLarge
	}

	if err = tx.Model(&Item{ID: item.ID}).Update("balance_stock", balance).Error; err != nil {
		return StockTransaction{}, err
	}

	movement.BalanceAfter = balance
	if err = tx.Omit("Item", "Qr").Create(&movement).Error; err != nil {
		return StockTransaction{}, err
	}

	return movement, nil
}

func (d *StockDAO) List(ctx context.Context, qrID, itemID uint, txType string, offset, limit int) ([]StockTransaction, int64, error) {
	query := d.db.WithContext(ctx).Model(&StockTransaction{}).Where("qr_id = ?", qrID)
	if itemID != 0 {
		query = query.Where("item_id = ?", itemID)
	}
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []StockTransaction
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
