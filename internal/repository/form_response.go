package repository

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrFormResponseNotFound = dao.ErrFormResponseNotFound

type FormResponseDAO interface {
	Insert(ctx context.Context, response dao.FormResponse) (dao.FormResponse, error)
	FindByID(ctx context.Context, id uint) (dao.FormResponse, error)
	List(ctx context.Context, qrID uint, search, status string, offset, limit int) ([]dao.FormResponse, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type FormResponseRepository struct {
	dao FormResponseDAO
}

func NewFormResponseRepository(dao FormResponseDAO) *FormResponseRepository {
	return &FormResponseRepository{dao: dao}
}

func (r *FormResponseRepository) Create(ctx context.Context, response domain.FormResponse) (domain.FormResponse, error) {
	answers := make([]dao.FormResponseAnswer, 0, len(response.Answers))
	for _, a := range response.Answers {
		value := a.Value
		answers = append(answers, dao.FormResponseAnswer{
			QuestionID: a.QuestionID,
			Value:      &value,
		})
	}

	created, err := r.dao.Insert(ctx, dao.FormResponse{
		QrID:           response.QrID,
		UserIdentifier: nullable(response.UserIdentifier),
		Status:         string(response.Status),
		SubmittedAt:    response.SubmittedAt,
		Answers:        answers,
	})
	if err != nil {
		return domain.FormResponse{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return formResponseToDomain(created), nil
}

func (r *FormResponseRepository) FindByID(ctx context.Context, id uint) (domain.FormResponse, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.FormResponse{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return formResponseToDomain(found), nil
}

func (r *FormResponseRepository) List(ctx context.Context, qrID uint, filter domain.FormResponseFilter, page domain.PageRequest) (domain.Page[domain.FormResponse], error) {
	rows, total, err := r.dao.List(ctx, qrID, filter.Search, filter.Status, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.FormResponse]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return toPage(rows, total, page, formResponseToDomain), nil
}

func (r *FormResponseRepository) UpdateStatus(ctx context.Context, id uint, status domain.FormResponseStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(status)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *FormResponseRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func formResponseToDomain(f dao.FormResponse) domain.FormResponse {
	answers := make([]domain.Answer, 0, len(f.Answers))
	for _, a := range f.Answers {
		answers = append(answers, domain.Answer{
			ID:             a.ID,
			FormResponseID: a.FormResponseID,
			QuestionID:     a.QuestionID,
			Value:          deref(a.Value),
		})
	}

	return domain.FormResponse{
		ID:             f.ID,
		QrID:           f.QrID,
		UserIdentifier: deref(f.UserIdentifier),
		Status:         domain.FormResponseStatus(f.Status),
		SubmittedAt:    f.SubmittedAt,
		Answers:        answers,
		CreatedAt:      f.CreatedAt,
	}
}
