package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrWishImageExportNotFound = dao.ErrWishImageExportNotFound

type WishImageExportDAO interface {
	Insert(ctx context.Context, export dao.WishImageExport) (dao.WishImageExport, error)
	FindByID(ctx context.Context, id uint) (dao.WishImageExport, error)
	FindLatestWithStatus(ctx context.Context, qrID, userID uint, statuses []string) (dao.WishImageExport, error)
	FindRecent(ctx context.Context, qrID, userID uint, limit int) ([]dao.WishImageExport, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type WishImageExportRepository struct {
	dao WishImageExportDAO
}

func NewWishImageExportRepository(dao WishImageExportDAO) *WishImageExportRepository {
	return &WishImageExportRepository{dao: dao}
}

func (r *WishImageExportRepository) Create(ctx context.Context, export domain.WishImageExport) (domain.WishImageExport, error) {
	created, err := r.dao.Insert(ctx, dao.WishImageExport{
		QrID:   export.QrID,
		UserID: export.UserID,
		Status: string(export.Status),
	})
	if err != nil {
		return domain.WishImageExport{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return exportToDomain(created), nil
}

func (r *WishImageExportRepository) FindByID(ctx context.Context, id uint) (domain.WishImageExport, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.WishImageExport{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return exportToDomain(found), nil
}

// FindInProgress returns the newest queued or processing export of the
// user for the QR.
func (r *WishImageExportRepository) FindInProgress(ctx context.Context, qrID, userID uint) (domain.WishImageExport, error) {
	found, err := r.dao.FindLatestWithStatus(ctx, qrID, userID, []string{
		string(domain.ExportQueued),
		string(domain.ExportProcessing),
	})
	if err != nil {
		return domain.WishImageExport{}, fmt.Errorf("r.dao.FindLatestWithStatus -> %w", err)
	}

	return exportToDomain(found), nil
}

func (r *WishImageExportRepository) FindRecent(ctx context.Context, qrID, userID uint, limit int) ([]domain.WishImageExport, error) {
	rows, err := r.dao.FindRecent(ctx, qrID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRecent -> %w", err)
	}

	exports := make([]domain.WishImageExport, 0, len(rows))
	for _, row := range rows {
		exports = append(exports, exportToDomain(row))
	}

	return exports, nil
}

func (r *WishImageExportRepository) MarkProcessing(ctx context.Context, id uint, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        string(domain.ExportProcessing),
		"started_at":    at,
		"error_message": nil,
	})
}

func (r *WishImageExportRepository) MarkCompleted(ctx context.Context, id uint, path string, total int, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":       string(domain.ExportCompleted),
		"file_path":    path,
		"total_images": total,
		"finished_at":  at,
	})
}

func (r *WishImageExportRepository) MarkFailed(ctx context.Context, id uint, message string, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        string(domain.ExportFailed),
		"file_path":     nil,
		"total_images":  0,
		"error_message": message,
		"finished_at":   at,
	})
}

func (r *WishImageExportRepository) update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := r.dao.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func exportToDomain(e dao.WishImageExport) domain.WishImageExport {
	return domain.WishImageExport{
		ID:           e.ID,
		QrID:         e.QrID,
		UserID:       e.UserID,
		Status:       domain.ExportStatus(e.Status),
		FilePath:     deref(e.FilePath),
		TotalImages:  e.TotalImages,
		ErrorMessage: deref(e.ErrorMessage),
		StartedAt:    e.StartedAt,
		FinishedAt:   e.FinishedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
