package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/render"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const (
	recentExportsLimit = 10
	exportChunkSize    = 1000
)

var (
	ErrWishImageExportNotFound = repository.ErrWishImageExportNotFound
	ErrExportForbidden         = errors.New("export belongs to another user")
	ErrExportNotReady          = errors.New("The ZIP file is not ready for download.")
	ErrNoExportableImages      = errors.New("No accepted and not-yet-downloaded wish images were found for this QR.")
)

type WishImageExportRepository interface {
	Create(ctx context.Context, export domain.WishImageExport) (domain.WishImageExport, error)
	FindByID(ctx context.Context, id uint) (domain.WishImageExport, error)
	FindInProgress(ctx context.Context, qrID, userID uint) (domain.WishImageExport, error)
	FindRecent(ctx context.Context, qrID, userID uint, limit int) ([]domain.WishImageExport, error)
	MarkProcessing(ctx context.Context, id uint, at time.Time) error
	MarkCompleted(ctx context.Context, id uint, path string, total int, at time.Time) error
	MarkFailed(ctx context.Context, id uint, message string, at time.Time) error
}

type WishImageExportService struct {
	repo     WishImageExportRepository
	wishes   WishRepository
	qrs      QrLookup
	public   Disk
	private  Disk
	jobs     Enqueuer
	notifier Notifier
	links    Links
	now      func() time.Time
	// chunkSize bounds both the wish pages read and the ids marked
	// downloaded per statement.
	chunkSize int
}

func NewWishImageExportService(
	repo WishImageExportRepository,
	wishes WishRepository,
	qrs QrLookup,
	public, private Disk,
	jobs Enqueuer,
	notifier Notifier,
	links Links,
) *WishImageExportService {
	return &WishImageExportService{
		repo:     repo,
		wishes:   wishes,
		qrs:      qrs,
		public:   public,
		private:  private,
		jobs:     jobs,
		notifier: notifier,
		links:    links,
		now:      time.Now,

		chunkSize: exportChunkSize,
	}
}

// RequestExport queues a new export for the user unless one is already
// queued or processing, in which case that one is returned with running set.
func (s *WishImageExportService) RequestExport(ctx context.Context, qrID, userID uint) (domain.WishImageExportView, bool, error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return domain.WishImageExportView{}, false, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	running, err := s.repo.FindInProgress(ctx, qrID, userID)
	switch {
	case err == nil:
		return s.view(running), true, nil
	case !errors.Is(err, ErrWishImageExportNotFound):
		return domain.WishImageExportView{}, false, fmt.Errorf("s.repo.FindInProgress -> %w", err)
	}

	export, err := s.repo.Create(ctx, domain.WishImageExport{
		QrID:   qrID,
		UserID: userID,
		Status: domain.ExportQueued,
	})
	if err != nil {
		return domain.WishImageExportView{}, false, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if err = s.jobs.Enqueue(ctx, queue.Job{Kind: queue.KindExportWishImages, ID: export.ID}); err != nil {
		if failErr := s.repo.MarkFailed(ctx, export.ID, "Could not queue the export.", s.now()); failErr != nil {
			zap.L().Error("export not marked failed", zap.Uint("export_id", export.ID), zap.Error(failErr))
		}

		return domain.WishImageExportView{}, false, fmt.Errorf("s.jobs.Enqueue -> %w", err)
	}

	return s.view(export), false, nil
}

func (s *WishImageExportService) ListRecent(ctx context.Context, qrID, userID uint) ([]domain.WishImageExportView, error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return nil, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	exports, err := s.repo.FindRecent(ctx, qrID, userID, recentExportsLimit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindRecent -> %w", err)
	}

	views := make([]domain.WishImageExportView, 0, len(exports))
	for _, e := range exports {
		views = append(views, s.view(e))
	}

	return views, nil
}

// OpenDownload opens the ZIP of a completed export owned by userID. The
// caller closes it.
func (s *WishImageExportService) OpenDownload(ctx context.Context, id, userID uint) (afero.File, string, error) {
	export, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if export.UserID != userID {
		return nil, "", ErrExportForbidden
	}
	if !s.downloadable(export) {
		return nil, "", ErrExportNotReady
	}

	f, err := s.private.Open(export.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("s.private.Open -> %w", err)
	}

	return f, path.Base(export.FilePath), nil
}

// Handle is the queue handler for export_wish_images jobs.
func (s *WishImageExportService) Handle(ctx context.Context, job queue.Job) error {
	return s.Export(ctx, job.ID)
}

// Export zips every accepted, not yet downloaded wish image of the QR and
// marks the included wishes downloaded. The requesting user is notified
// whatever the outcome.
func (s *WishImageExportService) Export(ctx context.Context, id uint) error {
	export, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.repo.MarkProcessing(ctx, id, s.now()); err != nil {
		return fmt.Errorf("s.repo.MarkProcessing -> %w", err)
	}

	zipPath := fmt.Sprintf("wish-exports/qr-%d/wish-images-export-%d-%s.zip", export.QrID, export.ID, s.now().Format("20060102150405"))

	total, err := s.run(ctx, export, zipPath)
	if err != nil {
		if rmErr := s.private.Delete(zipPath); rmErr != nil {
			zap.L().Warn("export zip not removed", zap.Uint("export_id", id), zap.Error(rmErr))
		}

		failed := err
		if !errors.Is(err, ErrNoExportableImages) {
			failed = fmt.Errorf("s.run -> %w", err)
		}
		if failErr := s.repo.MarkFailed(context.WithoutCancel(ctx), id, err.Error(), s.now()); failErr != nil {
			failed = multierr.Append(failed, fmt.Errorf("s.repo.MarkFailed -> %w", failErr))
		}
		s.notify(context.WithoutCancel(ctx), id)

		if errors.Is(err, ErrNoExportableImages) {
			return nil
		}

		return failed
	}

	if err = s.repo.MarkCompleted(ctx, id, zipPath, total, s.now()); err != nil {
		return fmt.Errorf("s.repo.MarkCompleted -> %w", err)
	}
	s.notify(ctx, id)

	return nil
}

func (s *WishImageExportService) run(ctx context.Context, export domain.WishImageExport, zipPath string) (total int, err error) {
	if err = s.private.MakeDirectory(path.Dir(zipPath)); err != nil {
		return 0, fmt.Errorf("s.private.MakeDirectory -> %w", err)
	}

	f, err := s.private.Create(zipPath)
	if err != nil {
		return 0, fmt.Errorf("s.private.Create -> %w", err)
	}

	archive := render.NewArchive(f)
	pages, err := s.addImages(ctx, archive, export.QrID)
	err = multierr.Combine(err, archive.Close(), f.Close())
	if err != nil {
		return 0, err
	}

	for _, ids := range pages {
		total += len(ids)
	}
	if total == 0 {
		return 0, ErrNoExportableImages
	}

	// Only once the ZIP is closed, one page of ids per statement.
	for _, ids := range pages {
		if err = s.wishes.MarkDownloaded(ctx, ids); err != nil {
			return 0, fmt.Errorf("s.wishes.MarkDownloaded -> %w", err)
		}
	}

	return total, nil
}

// addImages returns the ids of the zipped wishes grouped by the page they
// were read in.
func (s *WishImageExportService) addImages(ctx context.Context, archive *render.Archive, qrID uint) ([][]uint, error) {
	var (
		pages   [][]uint
		afterID uint
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wishes, err := s.wishes.NextExportable(ctx, qrID, afterID, s.chunkSize)
		if err != nil {
			return nil, fmt.Errorf("s.wishes.NextExportable -> %w", err)
		}
		if len(wishes) == 0 {
			return pages, nil
		}

		included := make([]uint, 0, len(wishes))
		for _, wish := range wishes {
			afterID = wish.ID

			ok, err := s.public.Exists(wish.ImagePath)
			if err != nil {
				return nil, fmt.Errorf("s.public.Exists -> %w", err)
			}
			if !ok {
				continue
			}

			name := fmt.Sprintf("wish-%d-%s", wish.ID, path.Base(wish.ImagePath))
			err = archive.AddFrom(name, func() (io.ReadCloser, error) {
				return s.public.Open(wish.ImagePath)
			})
			if err != nil {
				return nil, fmt.Errorf("archive.AddFrom -> %w", err)
			}
			included = append(included, wish.ID)
		}
		if len(included) > 0 {
			pages = append(pages, included)
		}

		if len(wishes) < s.chunkSize {
			return pages, nil
		}
	}
}

func (s *WishImageExportService) notify(ctx context.Context, id uint) {
	export, err := s.repo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("export not reloaded for notification", zap.Uint("export_id", id), zap.Error(err))
		return
	}

	data := map[string]interface{}{
		"type":         "wish_image_export",
		"export_id":    export.ID,
		"qr_id":        export.QrID,
		"status":       string(export.Status),
		"total_images": export.TotalImages,
		"message":      exportMessage(export),
		"download_url": nil,
		"created_at":   export.CreatedAt.UTC().Format(time.RFC3339),
		"finished_at":  nil,
	}
	if export.Status == domain.ExportCompleted {
		data["download_url"] = s.links.WishImageExportDownload(export.ID)
	}
	if export.FinishedAt != nil {
		data["finished_at"] = export.FinishedAt.UTC().Format(time.RFC3339)
	}

	if err = s.notifier.Notify(ctx, export.UserID, domain.NotificationWishExportCompleted, data); err != nil {
		zap.L().Error("export notification failed", zap.Uint("export_id", id), zap.Error(err))
	}
}

func exportMessage(export domain.WishImageExport) string {
	if export.Status == domain.ExportCompleted {
		return fmt.Sprintf("Wish image export is ready (%d images).", export.TotalImages)
	}
	if export.ErrorMessage != "" {
		return export.ErrorMessage
	}

	return "Wish image export failed."
}

func (s *WishImageExportService) downloadable(export domain.WishImageExport) bool {
	if export.Status != domain.ExportCompleted || export.FilePath == "" {
		return false
	}

	ok, err := s.private.Exists(export.FilePath)
	if err != nil {
		zap.L().Warn("export file check failed", zap.Uint("export_id", export.ID), zap.Error(err))
		return false
	}

	return ok
}

func (s *WishImageExportService) view(export domain.WishImageExport) domain.WishImageExportView {
	v := domain.WishImageExportView{WishImageExport: export}
	if s.downloadable(export) {
		v.DownloadAvailable = true
		v.DownloadURL = s.links.WishImageExportDownload(export.ID)
	}

	return v
}
