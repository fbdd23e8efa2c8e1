package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const spinAttempts = 3

var (
	ErrNoPrizesLeft = errors.New("No prizes left.")

	errInvalidPin = errors.New("Invalid or already used PIN.")
)

// PrizeStock books a prize movement together with the pin that paid for it.
type PrizeStock interface {
	ApplyWithPin(ctx context.Context, movement domain.StockTransaction, pinNumber string) (domain.StockTransaction, error)
}

type PublicService struct {
	qrs       QrRepository
	questions QuestionRepository
	responses FormResponseRepository
	items     ItemRepository
	stock     PrizeStock
	pins      PinRepository
	now       func() time.Time
}

func NewPublicService(
	qrs QrRepository,
	questions QuestionRepository,
	responses FormResponseRepository,
	items ItemRepository,
	stock PrizeStock,
	pins PinRepository,
) *PublicService {
	return &PublicService{
		qrs:       qrs,
		questions: questions,
		responses: responses,
		items:     items,
		stock:     stock,
		pins:      pins,
		now:       time.Now,
	}
}

// ActiveQr resolves a scanned token. Unknown and non active QRs are both
// ErrQrNotFound.
func (s *PublicService) ActiveQr(ctx context.Context, token string) (domain.Qr, error) {
	qr, err := s.qrs.FindByToken(ctx, token)
	if err != nil {
		return domain.Qr{}, fmt.Errorf("s.qrs.FindByToken -> %w", err)
	}
	if !qr.IsActive() {
		return domain.Qr{}, ErrQrNotFound
	}

	return qr, nil
}

func (s *PublicService) Form(ctx context.Context, token string) (domain.PublicForm, error) {
	qr, err := s.ActiveQr(ctx, token)
	if err != nil {
		return domain.PublicForm{}, err
	}

	questions, err := s.questions.FindByQr(ctx, qr.ID, domain.QuestionFilter{})
	if err != nil {
		return domain.PublicForm{}, fmt.Errorf("s.questions.FindByQr -> %w", err)
	}

	return domain.NewPublicForm(qr, questions), nil
}

// Submit checks the answers against the QR questions and stores the
// response with its answers. Field errors are keyed "answers.{questionID}".
func (s *PublicService) Submit(ctx context.Context, token, userIdentifier string, answers map[string]interface{}) (domain.FormResponse, error) {
	qr, err := s.ActiveQr(ctx, token)
	if err != nil {
		return domain.FormResponse{}, err
	}

	questions, err := s.questions.FindByQr(ctx, qr.ID, domain.QuestionFilter{})
	if err != nil {
		return domain.FormResponse{}, fmt.Errorf("s.questions.FindByQr -> %w", err)
	}

	normalized, err := normalizeAnswers(questions, answers)
	if err != nil {
		return domain.FormResponse{}, err
	}

	created, err := s.responses.Create(ctx, domain.FormResponse{
		QrID:           qr.ID,
		UserIdentifier: userIdentifier,
		Status:         domain.ResponseNew,
		SubmittedAt:    s.now(),
		Answers:        normalized,
	})
	if err != nil {
		return domain.FormResponse{}, fmt.Errorf("s.responses.Create -> %w", err)
	}

	return created, nil
}

func normalizeAnswers(questions []domain.Question, answers map[string]interface{}) ([]domain.Answer, error) {
	errs := validation.Errors{}
	normalized := make([]domain.Answer, 0, len(questions))

	for _, q := range questions {
		key := "answers." + strconv.FormatUint(uint64(q.ID), 10)
		raw := answers[strconv.FormatUint(uint64(q.ID), 10)]

		if !hasAnswer(q.Type, raw) {
			if q.IsRequired {
				errs[key] = fmt.Errorf("%s is required.", q.Label)
			}
			continue
		}

		value, err := normalizeAnswer(q, raw)
		if err != nil {
			errs[key] = err
			continue
		}
		normalized = append(normalized, domain.Answer{QuestionID: q.ID, Value: value})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return normalized, nil
}

func hasAnswer(qType domain.QuestionType, raw interface{}) bool {
	if qType == domain.QuestionCheckbox {
		values, ok := raw.([]interface{})
		if !ok {
			return false
		}
		for _, v := range values {
			if v != nil && cast.ToString(v) != "" {
				return true
			}
		}

		return false
	}

	if raw == nil {
		return false
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return false
	}

	return true
}

func normalizeAnswer(q domain.Question, raw interface{}) (string, error) {
	switch q.Type {
	case domain.QuestionNumber:
		if !isNumeric(raw) {
			return "", fmt.Errorf("%s must be a number.", q.Label)
		}

		return strings.TrimSpace(cast.ToString(raw)), nil

	case domain.QuestionDate:
		d, ok := parseDate(cast.ToString(raw))
		if !ok {
			return "", fmt.Errorf("%s must be a valid date.", q.Label)
		}

		return d.Format("2006-01-02"), nil

	case domain.QuestionSelect:
		value := cast.ToString(raw)
		if !q.HasOption(value) {
			return "", errors.New("Invalid option selected.")
		}

		return value, nil

	case domain.QuestionCheckbox:
		values, ok := raw.([]interface{})
		if !ok {
			return "", errors.New("Must be an array of options.")
		}

		selected := make([]string, 0, len(values))
		for _, v := range values {
			s := cast.ToString(v)
			if s == "" {
				continue
			}
			if !q.HasOption(s) {
				return "", errors.New("One or more selected options are invalid.")
			}
			selected = append(selected, s)
		}

		return encodeJSON(selected)

	case domain.QuestionText, domain.QuestionTextarea:
		return strings.TrimSpace(cast.ToString(raw)), nil
	}

	return "", errors.New("Unsupported question type.")
}

func isNumeric(raw interface{}) bool {
	switch v := raw.(type) {
	case float64, float32, int, int64, int32, uint, uint64, json.Number:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	}

	return false
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// encodeJSON keeps non ASCII and HTML characters unescaped.
func encodeJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("enc.Encode -> %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (s *PublicService) WheelItems(ctx context.Context, token string) ([]domain.WheelItem, error) {
	qr, err := s.ActiveQr(ctx, token)
	if err != nil {
		return nil, err
	}

	items, err := s.items.FindByQr(ctx, qr.ID)
	if err != nil {
		return nil, fmt.Errorf("s.items.FindByQr -> %w", err)
	}

	wheel := make([]domain.WheelItem, 0, len(items))
	for i, item := range items {
		color := item.Color
		if color == "" {
			color = domain.PaletteColor(int64(i))
		}
		wheel = append(wheel, domain.WheelItem{
			ID:      item.ID,
			Name:    item.Name,
			Color:   color,
			InStock: item.InStock(),
		})
	}

	return wheel, nil
}

// CheckPin consumes an unused pin of the QR. A second check of the same
// pin reports false.
func (s *PublicService) CheckPin(ctx context.Context, token, pin string) (bool, error) {
	qr, err := s.ActiveQr(ctx, token)
	if err != nil {
		return false, err
	}

	ok, err := s.pins.Consume(ctx, qr.ID, pin)
	if err != nil {
		return false, fmt.Errorf("s.pins.Consume -> %w", err)
	}

	return ok, nil
}

// Spin draws one in stock item weighted by its balance and books one unit
// out. The pin is consumed in the same transaction as the movement, so a
// spin that wins nothing leaves the pin usable.
func (s *PublicService) Spin(ctx context.Context, token, pin string) (domain.SpinResult, error) {
	qr, err := s.ActiveQr(ctx, token)
	if err != nil {
		return domain.SpinResult{}, err
	}

	candidates, err := s.prizes(ctx, qr.ID)
	if err != nil {
		return domain.SpinResult{}, err
	}

	for attempt := 0; attempt < spinAttempts && len(candidates) > 0; attempt++ {
		item := pickWeighted(candidates)

		tx, err := s.stock.ApplyWithPin(ctx, domain.StockTransaction{
			ItemID:   item.ID,
			QrID:     qr.ID,
			Type:     domain.StockOut,
			Quantity: decimal.NewFromInt(1),
			Note:     fmt.Sprintf("Spin prize (pin %s)", pin),
		}, pin)
		if errors.Is(err, repository.ErrPinUnavailable) {
			return domain.SpinResult{}, validation.Errors{"pin": errInvalidPin}
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			// Someone else drew the last unit, draw again from fresh balances.
			if candidates, err = s.prizes(ctx, qr.ID); err != nil {
				return domain.SpinResult{}, err
			}
			continue
		}
		if err != nil {
			return domain.SpinResult{}, fmt.Errorf("s.stock.ApplyWithPin -> %w", err)
		}

		return domain.SpinResult{
			Item: domain.WheelItem{
				ID:      item.ID,
				Name:    item.Name,
				Color:   item.Color,
				InStock: tx.BalanceAfter.IsPositive(),
			},
			TransactionID: tx.ID,
		}, nil
	}

	return domain.SpinResult{}, ErrNoPrizesLeft
}

// prizes are the items with at least one whole unit left.
func (s *PublicService) prizes(ctx context.Context, qrID uint) ([]domain.Item, error) {
	items, err := s.items.FindByQr(ctx, qrID)
	if err != nil {
		return nil, fmt.Errorf("s.items.FindByQr -> %w", err)
	}

	one := decimal.NewFromInt(1)
	prizes := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.BalanceStock.GreaterThanOrEqual(one) {
			prizes = append(prizes, item)
		}
	}

	return prizes, nil
}

func pickWeighted(items []domain.Item) domain.Item {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.BalanceStock)
	}

	target := decimal.NewFromFloat(rand.Float64()).Mul(total)
	for _, item := range items {
		if target.LessThan(item.BalanceStock) {
			return item
		}
		target = target.Sub(item.BalanceStock)
	}

	return items[len(items)-1]
}
