package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrQrBatchNotFound = dao.ErrQrBatchNotFound

type QrBatchDAO interface {
	Insert(ctx context.Context, batch dao.QrBatch) (dao.QrBatch, error)
	FindByID(ctx context.Context, id uint) (dao.QrBatch, error)
	FindLatest(ctx context.Context) (dao.QrBatch, error)
	List(ctx context.Context, offset, limit int) ([]dao.QrBatch, int64, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteItems(ctx context.Context, batchID uint) error
	InsertItems(ctx context.Context, items []dao.QrBatchItem) error
	ItemsInRange(ctx context.Context, batchID uint, from, to int) ([]dao.QrBatchItem, error)
}

type QrBatchRepository struct {
	dao QrBatchDAO
}

func NewQrBatchRepository(dao QrBatchDAO) *QrBatchRepository {
	return &QrBatchRepository{dao: dao}
}

func (r *QrBatchRepository) Create(ctx context.Context, batch domain.QrBatch) (domain.QrBatch, error) {
	created, err := r.dao.Insert(ctx, dao.QrBatch{
		Quantity:      batch.Quantity,
		Status:        string(batch.Status),
		BaseURL:       batch.BaseURL,
		PageFormat:    batch.PageFormat,
		MarginMM:      decimal.NewFromFloat(batch.MarginMM),
		GapMM:         decimal.NewFromFloat(batch.GapMM),
		Cols:          batch.Cols,
		Rows:          batch.Rows,
		SizeMode:      batch.SizeMode,
		SizeMM:        decimal.NewFromFloat(batch.SizeMM),
		ProgressTotal: batch.ProgressTotal,
		StatusMessage: nullable(batch.StatusMessage),
		CreatedBy:     batch.CreatedBy,
	})
	if err != nil {
		return domain.QrBatch{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return qrBatchToDomain(created), nil
}

func (r *QrBatchRepository) FindByID(ctx context.Context, id uint) (domain.QrBatch, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.QrBatch{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return qrBatchToDomain(found), nil
}

func (r *QrBatchRepository) FindLatest(ctx context.Context) (domain.QrBatch, error) {
	found, err := r.dao.FindLatest(ctx)
	if err != nil {
		return domain.QrBatch{}, fmt.Errorf("r.dao.FindLatest -> %w", err)
	}

	return qrBatchToDomain(found), nil
}

func (r *QrBatchRepository) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.QrBatch], error) {
	rows, total, err := r.dao.List(ctx, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.QrBatch]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return toPage(rows, total, page, qrBatchToDomain), nil
}

// Start clears the previous outcome of the batch and marks it processing.
func (r *QrBatchRepository) Start(ctx context.Context, id uint, total int, at time.Time) error {
	err := r.dao.Update(ctx, id, map[string]interface{}{
		"status":           string(domain.BatchProcessing),
		"pdf_path":         nil,
		"progress_current": 0,
		"progress_total":   total,
		"progress_percent": 0,
		"status_message":   "Starting",
		"started_at":       at,
		"finished_at":      nil,
	})
	if err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *QrBatchRepository) UpdateProgress(ctx context.Context, id uint, progress domain.BatchProgress) error {
	err := r.dao.Update(ctx, id, map[string]interface{}{
		"status":           string(domain.BatchProcessing),
		"progress_current": progress.Current,
		"progress_total":   progress.Total,
		"progress_percent": progress.Percent,
		"status_message":   progress.Message,
	})
	if err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *QrBatchRepository) Complete(ctx context.Context, id uint, path string, total int, at time.Time) error {
	err := r.dao.Update(ctx, id, map[string]interface{}{
		"status":           string(domain.BatchCompleted),
		"pdf_path":         path,
		"progress_current": total,
		"progress_total":   total,
		"progress_percent": 100,
		"status_message":   "Completed",
		"finished_at":      at,
	})
	if err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *QrBatchRepository) Fail(ctx context.Context, id uint, message string, at time.Time) error {
	err := r.dao.Update(ctx, id, map[string]interface{}{
		"status":         string(domain.BatchFailed),
		"status_message": truncate(message, 255),
		"finished_at":    at,
	})
	if err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *QrBatchRepository) DeleteItems(ctx context.Context, batchID uint) error {
	if err := r.dao.DeleteItems(ctx, batchID); err != nil {
		return fmt.Errorf("r.dao.DeleteItems -> %w", err)
	}

	return nil
}

func (r *QrBatchRepository) CreateItems(ctx context.Context, items []domain.QrBatchItem) error {
	rows := make([]dao.QrBatchItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, dao.QrBatchItem{
			QrBatchID: item.QrBatchID,
			Sequence:  item.Sequence,
			Token:     item.Token,
			URL:       item.URL,
		})
	}

	if err := r.dao.InsertItems(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.InsertItems -> %w", err)
	}

	return nil
}

func (r *QrBatchRepository) ItemsInRange(ctx context.Context, batchID uint, from, to int) ([]domain.QrBatchItem, error) {
	rows, err := r.dao.ItemsInRange(ctx, batchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ItemsInRange -> %w", err)
	}

	items := make([]domain.QrBatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.QrBatchItem{
			ID:        row.ID,
			QrBatchID: row.QrBatchID,
			Sequence:  row.Sequence,
			Token:     row.Token,
			URL:       row.URL,
		})
	}

	return items, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}

func qrBatchToDomain(b dao.QrBatch) domain.QrBatch {
	return domain.QrBatch{
		ID: b.ID,
		BatchSettings: domain.BatchSettings{
			Quantity:   b.Quantity,
			BaseURL:    b.BaseURL,
			PageFormat: b.PageFormat,
			MarginMM:   b.MarginMM.InexactFloat64(),
			GapMM:      b.GapMM.InexactFloat64(),
			Cols:       b.Cols,
			Rows:       b.Rows,
			SizeMode:   b.SizeMode,
			SizeMM:     b.SizeMM.InexactFloat64(),
		},
		Status:          domain.QrBatchStatus(b.Status),
		PDFPath:         deref(b.PDFPath),
		ProgressCurrent: b.ProgressCurrent,
		ProgressTotal:   b.ProgressTotal,
		ProgressPercent: b.ProgressPercent,
		StatusMessage:   deref(b.StatusMessage),
		CreatedBy:       b.CreatedBy,
		StartedAt:       b.StartedAt,
		FinishedAt:      b.FinishedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
