package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const (
	qrTokenLength   = 12
	qrTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	qrTokenAttempts = 10
	qrPerPage       = 15
)

var (
	ErrQrNotFound    = repository.ErrQrNotFound
	ErrQrTokenExists = repository.ErrQrTokenExists

	errTokenExhausted = errors.New("could not generate a unique qr token")
)

type QrRepository interface {
	Create(ctx context.Context, qr domain.Qr) (domain.Qr, error)
	FindByID(ctx context.Context, id uint) (domain.Qr, error)
	FindByToken(ctx context.Context, token string) (domain.Qr, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	List(ctx context.Context, filter domain.QrFilter, page domain.PageRequest) (domain.Page[domain.QrSummary], error)
	Update(ctx context.Context, qr domain.Qr) (domain.Qr, error)
	UpdateToken(ctx context.Context, id uint, token string) (domain.Qr, error)
	Delete(ctx context.Context, id uint) error
}

type QrService struct {
	repo      QrRepository
	questions QuestionRepository
	items     ItemRepository
}

func NewQrService(repo QrRepository, questions QuestionRepository, items ItemRepository) *QrService {
	return &QrService{
		repo:      repo,
		questions: questions,
		items:     items,
	}
}

func (s *QrService) ListQrs(ctx context.Context, filter domain.QrFilter, page int) (domain.Page[domain.QrSummary], error) {
	qrs, err := s.repo.List(ctx, filter, domain.NewPageRequest(page, qrPerPage))
	if err != nil {
		return domain.Page[domain.QrSummary]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return qrs, nil
}

func (s *QrService) GetQr(ctx context.Context, id uint) (domain.Qr, error) {
	qr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Qr{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return qr, nil
}

// GetQrDetail returns the QR with its questions and items.
func (s *QrService) GetQrDetail(ctx context.Context, id uint) (domain.QrDetail, error) {
	qr, err := s.GetQr(ctx, id)
	if err != nil {
		return domain.QrDetail{}, err
	}

	questions, err := s.questions.FindByQr(ctx, id, domain.QuestionFilter{})
	if err != nil {
		return domain.QrDetail{}, fmt.Errorf("s.questions.FindByQr -> %w", err)
	}

	items, err := s.items.FindByQr(ctx, id)
	if err != nil {
		return domain.QrDetail{}, fmt.Errorf("s.items.FindByQr -> %w", err)
	}

	return domain.QrDetail{Qr: qr, Questions: questions, Items: items}, nil
}

// GetActiveQr resolves a public token. Unknown and non active QRs are both
// reported as ErrQrNotFound.
func (s *QrService) GetActiveQr(ctx context.Context, token string) (domain.Qr, error) {
	qr, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return domain.Qr{}, fmt.Errorf("s.repo.FindByToken -> %w", err)
	}
	if !qr.IsActive() {
		return domain.Qr{}, ErrQrNotFound
	}

	return qr, nil
}

func (s *QrService) CreateQr(ctx context.Context, qr domain.Qr) (domain.Qr, error) {
	if qr.Status == "" {
		qr.Status = domain.QrActive
	}

	for attempt := 0; attempt < qrTokenAttempts; attempt++ {
		token, err := s.uniqueToken(ctx)
		if err != nil {
			return domain.Qr{}, err
		}
		qr.Token = token

		created, err := s.repo.Create(ctx, qr)
		if errors.Is(err, repository.ErrQrTokenExists) {
			continue
		}
		if err != nil {
			return domain.Qr{}, fmt.Errorf("s.repo.Create -> %w", err)
		}

		return created, nil
	}

	return domain.Qr{}, errTokenExhausted
}

func (s *QrService) UpdateQr(ctx context.Context, qr domain.Qr) (domain.Qr, error) {
	if _, err := s.GetQr(ctx, qr.ID); err != nil {
		return domain.Qr{}, err
	}

	updated, err := s.repo.Update(ctx, qr)
	if err != nil {
		return domain.Qr{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *QrService) DeleteQr(ctx context.Context, id uint) error {
	if _, err := s.GetQr(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *QrService) RegenerateToken(ctx context.Context, id uint) (domain.Qr, error) {
	if _, err := s.GetQr(ctx, id); err != nil {
		return domain.Qr{}, err
	}

	for attempt := 0; attempt < qrTokenAttempts; attempt++ {
		token, err := s.uniqueToken(ctx)
		if err != nil {
			return domain.Qr{}, err
		}

		updated, err := s.repo.UpdateToken(ctx, id, token)
		if errors.Is(err, repository.ErrQrTokenExists) {
			continue
		}
		if err != nil {
			return domain.Qr{}, fmt.Errorf("s.repo.UpdateToken -> %w", err)
		}

		return updated, nil
	}

	return domain.Qr{}, errTokenExhausted
}

func (s *QrService) uniqueToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < qrTokenAttempts; attempt++ {
		token, err := randomString(qrTokenAlphabet, qrTokenLength)
		if err != nil {
			return "", err
		}

		exists, err := s.repo.TokenExists(ctx, token)
		if err != nil {
			return "", fmt.Errorf("s.repo.TokenExists -> %w", err)
		}
		if !exists {
			return token, nil
		}
	}

	return "", errTokenExhausted
}

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("rand.Int -> %w", err)
		}
		b[i] = alphabet[idx.Int64()]
	}

	return string(b), nil
}
