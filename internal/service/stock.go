package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const stockPerPage = 50

var ErrInsufficientStock = repository.ErrInsufficientStock

type StockRepository interface {
	Apply(ctx context.Context, movement domain.StockTransaction) (domain.StockTransaction, error)
	List(ctx context.Context, qrID uint, filter domain.StockTransactionFilter, page domain.PageRequest) (domain.Page[domain.StockTransaction], error)
}

type StockService struct {
	repo StockRepository
	qrs  QrLookup
}

func NewStockService(repo StockRepository, qrs QrLookup) *StockService {
	return &StockService{repo: repo, qrs: qrs}
}

func (s *StockService) ListTransactions(ctx context.Context, qrID uint, filter domain.StockTransactionFilter, page int) (domain.Page[domain.StockTransaction], error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return domain.Page[domain.StockTransaction]{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	txs, err := s.repo.List(ctx, qrID, filter, domain.NewPageRequest(page, stockPerPage))
	if err != nil {
		return domain.Page[domain.StockTransaction]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return txs, nil
}

// RecordTransaction applies the movement to the item balance. An item of
// another QR and an out movement beyond the balance are reported as field
// errors.
func (s *StockService) RecordTransaction(ctx context.Context, movement domain.StockTransaction) (domain.StockTransaction, error) {
	if _, err := s.qrs.FindByID(ctx, movement.QrID); err != nil {
		return domain.StockTransaction{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	created, err := s.repo.Apply(ctx, movement)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return domain.StockTransaction{}, validation.Errors{
				"item_id": errors.New("The selected item must belong to the current QR."),
			}
		case errors.Is(err, repository.ErrInsufficientStock):
			return domain.StockTransaction{}, validation.Errors{
				"quantity": errors.New("Insufficient stock for this item."),
			}
		case errors.Is(err, repository.ErrBalanceTooLarge):
			return domain.StockTransaction{}, validation.Errors{
				"quantity": errors.New("The resulting balance is too large."),
			}
		}

		return domain.StockTransaction{}, fmt.Errorf("s.repo.Apply -> %w", err)
	}

	return created, nil
}
