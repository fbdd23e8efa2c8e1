package repository

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrQuestionNotFound = dao.ErrQuestionNotFound

type QuestionDAO interface {
	FindByQr(ctx context.Context, qrID uint, search, qType string) ([]dao.Question, error)
	FindByID(ctx context.Context, id uint) (dao.Question, error)
	Insert(ctx context.Context, question dao.Question) (dao.Question, error)
	Update(ctx context.Context, question dao.Question) (dao.Question, error)
	Delete(ctx context.Context, id uint) error
}

type QuestionRepository struct {
	dao QuestionDAO
}

func NewQuestionRepository(dao QuestionDAO) *QuestionRepository {
	return &QuestionRepository{dao: dao}
}

func (r *QuestionRepository) FindByQr(ctx context.Context, qrID uint, filter domain.QuestionFilter) ([]domain.Question, error) {
	found, err := r.dao.FindByQr(ctx, qrID, filter.Search, filter.Type)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByQr -> %w", err)
	}

	questions := make([]domain.Question, 0, len(found))
	for _, q := range found {
		questions = append(questions, questionToDomain(q))
	}

	return questions, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (domain.Question, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Question{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return questionToDomain(found), nil
}

func (r *QuestionRepository) Create(ctx context.Context, question domain.Question) (domain.Question, error) {
	created, err := r.dao.Insert(ctx, questionToDAO(question))
	if err != nil {
		return domain.Question{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return questionToDomain(created), nil
}

func (r *QuestionRepository) Update(ctx context.Context, question domain.Question) (domain.Question, error) {
	updated, err := r.dao.Update(ctx, questionToDAO(question))
	if err != nil {
		return domain.Question{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return questionToDomain(updated), nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func questionToDAO(q domain.Question) dao.Question {
	var options datatypes.JSONSlice[string]
	if len(q.Options) > 0 {
		options = datatypes.JSONSlice[string](q.Options)
	}

	return dao.Question{
		ID:         q.ID,
		QrID:       q.QrID,
		Label:      q.Label,
		Type:       string(q.Type),
		IsRequired: q.IsRequired,
		Options:    options,
		SortOrder:  q.SortOrder,
	}
}

func questionToDomain(q dao.Question) domain.Question {
	options := []string(q.Options)
	if options == nil {
		options = []string{}
	}

	return domain.Question{
		ID:         q.ID,
		QrID:       q.QrID,
		Label:      q.Label,
		Type:       domain.QuestionType(q.Type),
		IsRequired: q.IsRequired,
		Options:    options,
		SortOrder:  q.SortOrder,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}
