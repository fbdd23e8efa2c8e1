package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const (
	itemsPerPage     = 50
	initialStockNote = "Initial stock"
)

var ErrItemNotFound = repository.ErrItemNotFound

type ItemRepository interface {
	Create(ctx context.Context, item domain.Item, opening *domain.StockTransaction) (domain.Item, error)
	FindByID(ctx context.Context, id uint) (domain.Item, error)
	FindByQr(ctx context.Context, qrID uint) ([]domain.Item, error)
	List(ctx context.Context, qrID uint, filter domain.ItemFilter, page domain.PageRequest) (domain.Page[domain.Item], error)
	CountByQr(ctx context.Context, qrID uint) (int64, error)
	Update(ctx context.Context, item domain.Item) (domain.Item, error)
	Delete(ctx context.Context, id uint) error
}

type ItemService struct {
	repo ItemRepository
	qrs  QrLookup
}

func NewItemService(repo ItemRepository, qrs QrLookup) *ItemService {
	return &ItemService{repo: repo, qrs: qrs}
}

func (s *ItemService) ListItems(ctx context.Context, qrID uint, filter domain.ItemFilter, page int) (domain.Page[domain.Item], error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return domain.Page[domain.Item]{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	items, err := s.repo.List(ctx, qrID, filter, domain.NewPageRequest(page, itemsPerPage))
	if err != nil {
		return domain.Page[domain.Item]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return items, nil
}

// CreateItem picks a palette color when none is given and books a positive
// initial stock as an "in" transaction.
func (s *ItemService) CreateItem(ctx context.Context, item domain.Item, initialStock decimal.Decimal, createdBy uint) (domain.Item, error) {
	if _, err := s.qrs.FindByID(ctx, item.QrID); err != nil {
		return domain.Item{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	if item.Color == "" {
		count, err := s.repo.CountByQr(ctx, item.QrID)
		if err != nil {
			return domain.Item{}, fmt.Errorf("s.repo.CountByQr -> %w", err)
		}
		item.Color = domain.PaletteColor(count)
	}

	item.BalanceStock = decimal.Zero
	var opening *domain.StockTransaction
	if initialStock.IsPositive() {
		item.BalanceStock = initialStock
		opening = &domain.StockTransaction{
			QrID:      item.QrID,
			Type:      domain.StockIn,
			Quantity:  initialStock,
			Note:      initialStockNote,
			CreatedBy: userRef(createdBy),
		}
	}

	created, err := s.repo.Create(ctx, item, opening)
	if err != nil {
		return domain.Item{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateItem changes name, sku and color. The balance only moves through
// stock transactions.
func (s *ItemService) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	current, err := s.find(ctx, item.QrID, item.ID)
	if err != nil {
		return domain.Item{}, err
	}

	current.Name = item.Name
	current.SKU = item.SKU
	if item.Color != "" {
		current.Color = item.Color
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Item{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, qrID, id uint) error {
	if _, err := s.find(ctx, qrID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *ItemService) find(ctx context.Context, qrID, id uint) (domain.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if item.QrID != qrID {
		return domain.Item{}, ErrItemNotFound
	}

	return item, nil
}

func userRef(id uint) *uint {
	if id == 0 {
		return nil
	}

	return &id
}
