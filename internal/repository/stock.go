package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var (
	ErrInsufficientStock = dao.ErrInsufficientStock
	ErrBalanceTooLarge   = dao.ErrBalanceTooLarge
)

type StockDAO interface {
	Apply(ctx context.Context, movement dao.StockTransaction, delta decimal.Decimal) (dao.StockTransaction, error)
	ApplyWithPin(ctx context.Context, movement dao.StockTransaction, delta decimal.Decimal, pinNumber string) (dao.StockTransaction, error)
	List(ctx context.Context, qrID, itemID uint, txType string, offset, limit int) ([]dao.StockTransaction, int64, error)
}

type StockRepository struct {
	dao StockDAO
}

func NewStockRepository(dao StockDAO) *StockRepository {
	return &StockRepository{dao: dao}
}

// Apply records the movement and moves the item balance by its delta.
func (r *StockRepository) Apply(ctx context.Context, movement domain.StockTransaction) (domain.StockTransaction, error) {
	created, err := r.dao.Apply(ctx, stockToDAO(movement), movement.Delta())
	if err != nil {
		return domain.StockTransaction{}, fmt.Errorf("r.dao.Apply -> %w", err)
	}

	return stockToDomain(created), nil
}

// ApplyWithPin books the movement only if the pin can be consumed with it.
func (r *StockRepository) ApplyWithPin(ctx context.Context, movement domain.StockTransaction, pinNumber string) (domain.StockTransaction, error) {
	created, err := r.dao.ApplyWithPin(ctx, stockToDAO(movement), movement.Delta(), pinNumber)
	if err != nil {
		return domain.StockTransaction{}, fmt.Errorf("r.dao.ApplyWithPin -> %w", err)
	}

	return stockToDomain(created), nil
}

func (r *StockRepository) List(ctx context.Context, qrID uint, filter domain.StockTransactionFilter, page domain.PageRequest) (domain.Page[domain.StockTransaction], error) {
	rows, total, err := r.dao.List(ctx, qrID, filter.ItemID, filter.Type, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.StockTransaction]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return toPage(rows, total, page, stockToDomain), nil
}

func stockToDAO(t domain.StockTransaction) dao.StockTransaction {
	return dao.StockTransaction{
		ID:           t.ID,
		ItemID:       t.ItemID,
		QrID:         t.QrID,
		Type:         string(t.Type),
		Quantity:     t.Quantity,
		Note:         nullable(t.Note),
		BalanceAfter: t.BalanceAfter,
		CreatedBy:    t.CreatedBy,
	}
}

func stockToDomain(t dao.StockTransaction) domain.StockTransaction {
	return domain.StockTransaction{
		ID:           t.ID,
		ItemID:       t.ItemID,
		QrID:         t.QrID,
		Type:         domain.StockTransactionType(t.Type),
		Quantity:     t.Quantity,
		Note:         deref(t.Note),
		BalanceAfter: t.BalanceAfter,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
	}
}
