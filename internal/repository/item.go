package repository

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrItemNotFound = dao.ErrItemNotFound

type ItemDAO interface {
	Insert(ctx context.Context, item dao.Item, opening *dao.StockTransaction) (dao.Item, error)
	FindByID(ctx context.Context, id uint) (dao.Item, error)
	FindByQr(ctx context.Context, qrID uint) ([]dao.Item, error)
	List(ctx context.Context, qrID uint, search string, offset, limit int) ([]dao.Item, int64, error)
	CountByQr(ctx context.Context, qrID uint) (int64, error)
	Update(ctx context.Context, item dao.Item) (dao.Item, error)
	Delete(ctx context.Context, id uint) error
}

type ItemRepository struct {
	dao ItemDAO
}

func NewItemRepository(dao ItemDAO) *ItemRepository {
	return &ItemRepository{dao: dao}
}

// Create stores the item. A non-nil opening movement is recorded with it
// atomically.
func (r *ItemRepository) Create(ctx context.Context, item domain.Item, opening *domain.StockTransaction) (domain.Item, error) {
	var movement *dao.StockTransaction
	if opening != nil {
		m := stockToDAO(*opening)
		movement = &m
	}

	created, err := r.dao.Insert(ctx, itemToDAO(item), movement)
	if err != nil {
		return domain.Item{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return itemToDomain(created), nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id uint) (domain.Item, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return itemToDomain(found), nil
}

func (r *ItemRepository) FindByQr(ctx context.Context, qrID uint) ([]domain.Item, error) {
	found, err := r.dao.FindByQr(ctx, qrID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByQr -> %w", err)
	}

	items := make([]domain.Item, 0, len(found))
	for _, i := range found {
		items = append(items, itemToDomain(i))
	}

	return items, nil
}

func (r *ItemRepository) List(ctx context.Context, qrID uint, filter domain.ItemFilter, page domain.PageRequest) (domain.Page[domain.Item], error) {
	rows, total, err := r.dao.List(ctx, qrID, filter.Search, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.Item]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return toPage(rows, total, page, itemToDomain), nil
}

func (r *ItemRepository) CountByQr(ctx context.Context, qrID uint) (int64, error) {
	count, err := r.dao.CountByQr(ctx, qrID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountByQr -> %w", err)
	}

	return count, nil
}

func (r *ItemRepository) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	updated, err := r.dao.Update(ctx, itemToDAO(item))
	if err != nil {
		return domain.Item{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return itemToDomain(updated), nil
}

func (r *ItemRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func itemToDAO(i domain.Item) dao.Item {
	return dao.Item{
		ID:           i.ID,
		QrID:         i.QrID,
		Name:         i.Name,
		SKU:          nullable(i.SKU),
		Color:        nullable(i.Color),
		BalanceStock: i.BalanceStock,
	}
}

func itemToDomain(i dao.Item) domain.Item {
	return domain.Item{
		ID:           i.ID,
		QrID:         i.QrID,
		Name:         i.Name,
		SKU:          deref(i.SKU),
		Color:        deref(i.Color),
		BalanceStock: i.BalanceStock,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
