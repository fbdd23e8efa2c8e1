package repository

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var (
	ErrQrNotFound    = dao.ErrQrNotFound
	ErrQrTokenExists = dao.ErrQrTokenExists
)

type QrDAO interface {
	Insert(ctx context.Context, qr dao.Qr) (dao.Qr, error)
	FindByID(ctx context.Context, id uint) (dao.Qr, error)
	FindByToken(ctx context.Context, token string) (dao.Qr, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	List(ctx context.Context, search, status string, offset, limit int) ([]dao.QrWithCounts, int64, error)
	Update(ctx context.Context, qr dao.Qr) (dao.Qr, error)
	UpdateToken(ctx context.Context, id uint, token string) (dao.Qr, error)
	Delete(ctx context.Context, id uint) error
}

type QrRepository struct {
	dao QrDAO
}

func NewQrRepository(dao QrDAO) *QrRepository {
	return &QrRepository{dao: dao}
}

func (r *QrRepository) Create(ctx context.Context, qr domain.Qr) (domain.Qr, error) {
	created, err := r.dao.Insert(ctx, dao.Qr{
		Token:     qr.Token,
		Name:      nullable(qr.Name),
		Status:    string(qr.Status),
		CreatedBy: qr.CreatedBy,
	})
	if err != nil {
		return domain.Qr{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return qrToDomain(created), nil
}

func (r *QrRepository) FindByID(ctx context.Context, id uint) (domain.Qr, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Qr{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return qrToDomain(found), nil
}

func (r *QrRepository) FindByToken(ctx context.Context, token string) (domain.Qr, error) {
	found, err := r.dao.FindByToken(ctx, token)
	if err != nil {
		return domain.Qr{}, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return qrToDomain(found), nil
}

func (r *QrRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	exists, err := r.dao.TokenExists(ctx, token)
	if err != nil {
		return false, fmt.Errorf("r.dao.TokenExists -> %w", err)
	}

	return exists, nil
}

func (r *QrRepository) List(ctx context.Context, filter domain.QrFilter, page domain.PageRequest) (domain.Page[domain.QrSummary], error) {
	rows, total, err := r.dao.List(ctx, filter.Search, filter.Status, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.QrSummary]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return toPage(rows, total, page, func(row dao.QrWithCounts) domain.QrSummary {
		return domain.QrSummary{
			Qr:             qrToDomain(row.Qr),
			QuestionsCount: row.QuestionsCount,
			ItemsCount:     row.ItemsCount,
			ResponsesCount: row.ResponsesCount,
			WishesCount:    row.WishesCount,
			PinsCount:      row.PinsCount,
		}
	}), nil
}

func (r *QrRepository) Update(ctx context.Context, qr domain.Qr) (domain.Qr, error) {
	updated, err := r.dao.Update(ctx, dao.Qr{
		ID:     qr.ID,
		Name:   nullable(qr.Name),
		Status: string(qr.Status),
	})
	if err != nil {
		return domain.Qr{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return qrToDomain(updated), nil
}

func (r *QrRepository) UpdateToken(ctx context.Context, id uint, token string) (domain.Qr, error) {
	updated, err := r.dao.UpdateToken(ctx, id, token)
	if err != nil {
		return domain.Qr{}, fmt.Errorf("r.dao.UpdateToken -> %w", err)
	}

	return qrToDomain(updated), nil
}

func (r *QrRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func qrToDomain(qr dao.Qr) domain.Qr {
	return domain.Qr{
		ID:        qr.ID,
		Token:     qr.Token,
		Name:      deref(qr.Name),
		Status:    domain.QrStatus(qr.Status),
		CreatedBy: qr.CreatedBy,
		CreatedAt: qr.CreatedAt,
		UpdatedAt: qr.UpdatedAt,
	}
}
