package repository

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var (
	ErrPinExists      = dao.ErrPinExists
	ErrPinUnavailable = dao.ErrPinUnavailable
)

type PinDAO interface {
	InsertAll(ctx context.Context, pins []dao.QrPin) error
	ExistingNumbers(ctx context.Context, qrID uint, numbers []string) ([]string, error)
	List(ctx context.Context, qrID uint, search string, isUsed *bool, offset, limit int) ([]dao.QrPin, int64, error)
	Each(ctx context.Context, qrID uint, size int, fn func([]dao.QrPin) error) error
	Consume(ctx context.Context, qrID uint, pinNumber string) (bool, error)
}

type PinRepository struct {
	dao PinDAO
}

func NewPinRepository(dao PinDAO) *PinRepository {
	return &PinRepository{dao: dao}
}

func (r *PinRepository) CreateAll(ctx context.Context, qrID uint, numbers []string) error {
	pins := make([]dao.QrPin, 0, len(numbers))
	for _, n := range numbers {
		pins = append(pins, dao.QrPin{QrID: qrID, PinNumber: n})
	}

	if err := r.dao.InsertAll(ctx, pins); err != nil {
		return fmt.Errorf("r.dao.InsertAll -> %w", err)
	}

	return nil
}

func (r *PinRepository) ExistingNumbers(ctx context.Context, qrID uint, numbers []string) ([]string, error) {
	existing, err := r.dao.ExistingNumbers(ctx, qrID, numbers)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ExistingNumbers -> %w", err)
	}

	return existing, nil
}

func (r *PinRepository) List(ctx context.Context, qrID uint, filter domain.PinFilter, page domain.PageRequest) (domain.Page[domain.QrPin], error) {
	rows, total, err := r.dao.List(ctx, qrID, filter.Search, filter.IsUsed, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.QrPin]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return toPage(rows, total, page, pinToDomain), nil
}

func (r *PinRepository) Each(ctx context.Context, qrID uint, size int, fn func([]domain.QrPin) error) error {
	err := r.dao.Each(ctx, qrID, size, func(rows []dao.QrPin) error {
		pins := make([]domain.QrPin, 0, len(rows))
		for _, p := range rows {
			pins = append(pins, pinToDomain(p))
		}

		return fn(pins)
	})
	if err != nil {
		return fmt.Errorf("r.dao.Each -> %w", err)
	}

	return nil
}

func (r *PinRepository) Consume(ctx context.Context, qrID uint, pinNumber string) (bool, error) {
	ok, err := r.dao.Consume(ctx, qrID, pinNumber)
	if err != nil {
		return false, fmt.Errorf("r.dao.Consume -> %w", err)
	}

	return ok, nil
}

func pinToDomain(p dao.QrPin) domain.QrPin {
	return domain.QrPin{
		ID:        p.ID,
		QrID:      p.QrID,
		PinNumber: p.PinNumber,
		IsUsed:    p.IsUsed,
		CreatedAt: p.CreatedAt,
	}
}
