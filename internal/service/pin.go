package service

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const (
	pinsPerPage    = 50
	pinExportChunk = 1000
	pinMin         = 100000
	pinMax         = 999999
	pinGenAttempts = 5
	utf8BOM        = "\xEF\xBB\xBF"
)

var (
	ErrPinExists = repository.ErrPinExists

	errPinsExhausted = errors.New("could not generate enough unique pins")
)

type PinRepository interface {
	CreateAll(ctx context.Context, qrID uint, numbers []string) error
	ExistingNumbers(ctx context.Context, qrID uint, numbers []string) ([]string, error)
	List(ctx context.Context, qrID uint, filter domain.PinFilter, page domain.PageRequest) (domain.Page[domain.QrPin], error)
	Each(ctx context.Context, qrID uint, size int, fn func([]domain.QrPin) error) error
	Consume(ctx context.Context, qrID uint, pinNumber string) (bool, error)
}

type PinService struct {
	repo PinRepository
	qrs  QrLookup
	now  func() time.Time
}

func NewPinService(repo PinRepository, qrs QrLookup) *PinService {
	return &PinService{repo: repo, qrs: qrs, now: time.Now}
}

func (s *PinService) ListPins(ctx context.Context, qrID uint, filter domain.PinFilter, page int) (domain.Page[domain.QrPin], error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return domain.Page[domain.QrPin]{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	pins, err := s.repo.List(ctx, qrID, filter, domain.NewPageRequest(page, pinsPerPage))
	if err != nil {
		return domain.Page[domain.QrPin]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return pins, nil
}

// GeneratePins creates count new pins, unique within the QR, in one
// transaction. A race with a concurrent generation is retried.
func (s *PinService) GeneratePins(ctx context.Context, qrID uint, count int) ([]string, error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return nil, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	for attempt := 0; attempt < pinGenAttempts; attempt++ {
		numbers, err := s.freshNumbers(ctx, qrID, count)
		if err != nil {
			return nil, err
		}

		err = s.repo.CreateAll(ctx, qrID, numbers)
		if errors.Is(err, repository.ErrPinExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("s.repo.CreateAll -> %w", err)
		}

		return numbers, nil
	}

	return nil, errPinsExhausted
}

func (s *PinService) freshNumbers(ctx context.Context, qrID uint, count int) ([]string, error) {
	picked := make(map[string]struct{}, count)
	numbers := make([]string, 0, count)

	for round := 0; len(numbers) < count; round++ {
		if round >= pinGenAttempts*10 {
			return nil, errPinsExhausted
		}

		candidates := make([]string, 0, count-len(numbers))
		for len(candidates) < count-len(numbers) {
			n, err := randomPin()
			if err != nil {
				return nil, err
			}
			if _, ok := picked[n]; ok {
				continue
			}
			picked[n] = struct{}{}
			candidates = append(candidates, n)
		}

		existing, err := s.repo.ExistingNumbers(ctx, qrID, candidates)
		if err != nil {
			return nil, fmt.Errorf("s.repo.ExistingNumbers -> %w", err)
		}
		taken := make(map[string]struct{}, len(existing))
		for _, n := range existing {
			taken[n] = struct{}{}
		}

		for _, n := range candidates {
			if _, ok := taken[n]; !ok {
				numbers = append(numbers, n)
			}
		}
	}

	return numbers, nil
}

func randomPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinMax-pinMin+1))
	if err != nil {
		return "", fmt.Errorf("rand.Int -> %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+pinMin), nil
}

// ExportFileName is the download name of the pin CSV of the QR.
func (s *PinService) ExportFileName(qrID uint) string {
	return fmt.Sprintf("qr-%d-pins-%s.csv", qrID, s.now().Format("20060102_150405"))
}

// ExportCSV writes every pin of the QR as CSV, preceded by a UTF-8 BOM so
// spreadsheet tools pick the right encoding.
func (s *PinService) ExportCSV(ctx context.Context, qr domain.Qr, w io.Writer) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("io.WriteString -> %w", err)
	}

	out := csv.NewWriter(w)
	if err := out.Write([]string{"qr_name", "pin_number"}); err != nil {
		return fmt.Errorf("out.Write -> %w", err)
	}

	err := s.repo.Each(ctx, qr.ID, pinExportChunk, func(pins []domain.QrPin) error {
		for _, pin := range pins {
			if err := out.Write([]string{qr.Name, pin.PinNumber}); err != nil {
				return err
			}
		}
		out.Flush()

		return out.Error()
	})
	if err != nil {
		return fmt.Errorf("s.repo.Each -> %w", err)
	}

	out.Flush()

	return out.Error()
}
