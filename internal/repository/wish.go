package repository

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrWishNotFound = dao.ErrWishNotFound

type WishDAO interface {
	Insert(ctx context.Context, wish dao.Wish) (dao.Wish, error)
	FindByID(ctx context.Context, id uint) (dao.Wish, error)
	List(ctx context.Context, qrID uint, search string, statuses []string, offset, limit int) ([]dao.Wish, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) (dao.Wish, error)
	UpdateImagePath(ctx context.Context, id uint, path string) error
	Delete(ctx context.Context, id uint) error
	NextExportable(ctx context.Context, qrID, afterID uint, statuses []string, limit int) ([]dao.Wish, error)
	MarkDownloaded(ctx context.Context, ids []uint) error
}

type WishRepository struct {
	dao WishDAO
}

func NewWishRepository(dao WishDAO) *WishRepository {
	return &WishRepository{dao: dao}
}

func (r *WishRepository) Create(ctx context.Context, wish domain.Wish) (domain.Wish, error) {
	created, err := r.dao.Insert(ctx, dao.Wish{
		QrID:      wish.QrID,
		Message:   wish.Message,
		Status:    string(wish.Status),
		ImagePath: nullable(wish.ImagePath),
	})
	if err != nil {
		return domain.Wish{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return wishToDomain(created), nil
}

func (r *WishRepository) FindByID(ctx context.Context, id uint) (domain.Wish, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Wish{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return wishToDomain(found), nil
}

// List filters by status. Filtering on a current status also matches the
// legacy values that map onto it.
func (r *WishRepository) List(ctx context.Context, qrID uint, filter domain.WishFilter, page domain.PageRequest) (domain.Page[domain.Wish], error) {
	rows, total, err := r.dao.List(ctx, qrID, filter.Search, wishStatusesMatching(filter.Status), page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.Wish]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return toPage(rows, total, page, wishToDomain), nil
}

func (r *WishRepository) UpdateStatus(ctx context.Context, id uint, status domain.WishStatus) (domain.Wish, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(status))
	if err != nil {
		return domain.Wish{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return wishToDomain(updated), nil
}

func (r *WishRepository) UpdateImagePath(ctx context.Context, id uint, path string) error {
	if err := r.dao.UpdateImagePath(ctx, id, path); err != nil {
		return fmt.Errorf("r.dao.UpdateImagePath -> %w", err)
	}

	return nil
}

func (r *WishRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *WishRepository) NextExportable(ctx context.Context, qrID, afterID uint, limit int) ([]domain.Wish, error) {
	rows, err := r.dao.NextExportable(ctx, qrID, afterID, wishStatusesMatching(string(domain.WishAccepted)), limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.NextExportable -> %w", err)
	}

	wishes := make([]domain.Wish, 0, len(rows))
	for _, w := range rows {
		wishes = append(wishes, wishToDomain(w))
	}

	return wishes, nil
}

func (r *WishRepository) MarkDownloaded(ctx context.Context, ids []uint) error {
	if err := r.dao.MarkDownloaded(ctx, ids); err != nil {
		return fmt.Errorf("r.dao.MarkDownloaded -> %w", err)
	}

	return nil
}

func wishStatusesMatching(status string) []string {
	switch domain.WishStatus(status) {
	case "":
		return nil
	case domain.WishPending:
		return []string{string(domain.WishPending), "new"}
	case domain.WishAccepted:
		return []string{string(domain.WishAccepted), "seen", "done"}
	}

	return []string{status}
}

func wishToDomain(w dao.Wish) domain.Wish {
	return domain.Wish{
		ID:           w.ID,
		QrID:         w.QrID,
		Message:      w.Message,
		Status:       domain.NormalizeWishStatus(w.Status),
		ImagePath:    deref(w.ImagePath),
		IsDownloaded: w.IsDownloaded,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}
