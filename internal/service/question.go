package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

var ErrQuestionNotFound = repository.ErrQuestionNotFound

type QuestionRepository interface {
	FindByQr(ctx context.Context, qrID uint, filter domain.QuestionFilter) ([]domain.Question, error)
	FindByID(ctx context.Context, id uint) (domain.Question, error)
	Create(ctx context.Context, question domain.Question) (domain.Question, error)
	Update(ctx context.Context, question domain.Question) (domain.Question, error)
	Delete(ctx context.Context, id uint) error
}

// QrLookup is the part of the QR repository the QR scoped services need.
type QrLookup interface {
	FindByID(ctx context.Context, id uint) (domain.Qr, error)
}

type QuestionService struct {
	repo QuestionRepository
	qrs  QrLookup
}

func NewQuestionService(repo QuestionRepository, qrs QrLookup) *QuestionService {
	return &QuestionService{repo: repo, qrs: qrs}
}

func (s *QuestionService) ListQuestions(ctx context.Context, qrID uint, filter domain.QuestionFilter) ([]domain.Question, error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return nil, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	questions, err := s.repo.FindByQr(ctx, qrID, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByQr -> %w", err)
	}

	return questions, nil
}

func (s *QuestionService) CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	if _, err := s.qrs.FindByID(ctx, question.QrID); err != nil {
		return domain.Question{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}
	if err := normalizeQuestion(&question); err != nil {
		return domain.Question{}, err
	}

	created, err := s.repo.Create(ctx, question)
	if err != nil {
		return domain.Question{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	if _, err := s.find(ctx, question.QrID, question.ID); err != nil {
		return domain.Question{}, err
	}
	if err := normalizeQuestion(&question); err != nil {
		return domain.Question{}, err
	}

	updated, err := s.repo.Update(ctx, question)
	if err != nil {
		return domain.Question{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, qrID, id uint) error {
	if _, err := s.find(ctx, qrID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// find treats a question of another QR as missing.
func (s *QuestionService) find(ctx context.Context, qrID, id uint) (domain.Question, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Question{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if question.QrID != qrID {
		return domain.Question{}, ErrQuestionNotFound
	}

	return question, nil
}

// normalizeQuestion keeps options only for option based types, trimmed and
// without blanks or duplicates.
func normalizeQuestion(q *domain.Question) error {
	if !q.Type.HasOptions() {
		q.Options = []string{}
		return nil
	}

	seen := make(map[string]struct{}, len(q.Options))
	options := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		options = append(options, o)
	}

	if len(options) == 0 {
		return validation.Errors{"options": errors.New("At least one option is required.")}
	}
	q.Options = options

	return nil
}
