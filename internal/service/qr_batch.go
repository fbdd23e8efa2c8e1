package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const (
	batchesPerPage = 15
	progressScale  = 1000
)

var (
	ErrQrBatchNotFound = repository.ErrQrBatchNotFound
	ErrBatchNotReady   = errors.New("The batch file is not ready for download.")
)

type QrBatchRepository interface {
	Create(ctx context.Context, batch domain.QrBatch) (domain.QrBatch, error)
	FindByID(ctx context.Context, id uint) (domain.QrBatch, error)
	FindLatest(ctx context.Context) (domain.QrBatch, error)
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.QrBatch], error)
	Start(ctx context.Context, id uint, total int, at time.Time) error
	UpdateProgress(ctx context.Context, id uint, progress domain.BatchProgress) error
	Complete(ctx context.Context, id uint, path string, total int, at time.Time) error
	Fail(ctx context.Context, id uint, message string, at time.Time) error
	DeleteItems(ctx context.Context, batchID uint) error
	CreateItems(ctx context.Context, items []domain.QrBatchItem) error
	ItemsInRange(ctx context.Context, batchID uint, from, to int) ([]domain.QrBatchItem, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// Links builds the URLs handed out in payloads and notifications.
type Links struct {
	APIBase string
}

func (l Links) QrBatchDownload(id uint) string {
	return fmt.Sprintf("%s/qr-batches/%d/download", l.APIBase, id)
}

func (l Links) QrBatches() string {
	return l.APIBase + "/qr-batches"
}

func (l Links) WishImageExportDownload(id uint) string {
	return fmt.Sprintf("%s/wish-image-exports/%d/download", l.APIBase, id)
}

type QrBatchService struct {
	repo        QrBatchRepository
	disk        Disk
	jobs        Enqueuer
	links       Links
	maxQuantity int
}

func NewQrBatchService(repo QrBatchRepository, disk Disk, jobs Enqueuer, links Links, maxQuantity int) *QrBatchService {
	return &QrBatchService{
		repo:        repo,
		disk:        disk,
		jobs:        jobs,
		links:       links,
		maxQuantity: maxQuantity,
	}
}

func (s *QrBatchService) MaxQuantity() int {
	return s.maxQuantity
}

func (s *QrBatchService) Settings(ctx context.Context) (domain.QrBatchSettingsPayload, error) {
	payload := domain.QrBatchSettingsPayload{
		Defaults:    DefaultBatchSettings(),
		SizePresets: SizePresets,
	}

	latest, err := s.repo.FindLatest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQrBatchNotFound) {
			return payload, nil
		}

		return domain.QrBatchSettingsPayload{}, fmt.Errorf("s.repo.FindLatest -> %w", err)
	}

	view := s.view(latest)
	payload.Latest = &view

	return payload, nil
}

// CreateBatch stores a pending batch and queues its generation.
func (s *QrBatchService) CreateBatch(ctx context.Context, in BatchSettingsInput, createdBy uint) (domain.QrBatchView, error) {
	settings, err := NormalizeBatchSettings(in)
	if err != nil {
		return domain.QrBatchView{}, err
	}

	batch, err := s.repo.Create(ctx, domain.QrBatch{
		BatchSettings: settings,
		Status:        domain.BatchPending,
		ProgressTotal: progressScale,
		StatusMessage: "Queued",
		CreatedBy:     userRef(createdBy),
	})
	if err != nil {
		return domain.QrBatchView{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if err = s.jobs.Enqueue(ctx, queue.Job{Kind: queue.KindGenerateQrBatch, ID: batch.ID}); err != nil {
		if failErr := s.repo.Fail(ctx, batch.ID, "Could not queue the batch.", time.Now()); failErr != nil {
			zap.L().Error("batch not marked failed", zap.Uint("batch_id", batch.ID), zap.Error(failErr))
		}

		return domain.QrBatchView{}, fmt.Errorf("s.jobs.Enqueue -> %w", err)
	}

	return s.view(batch), nil
}

func (s *QrBatchService) GetBatch(ctx context.Context, id uint) (domain.QrBatchView, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.QrBatchView{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return s.view(batch), nil
}

func (s *QrBatchService) ListBatches(ctx context.Context, page int) (domain.Page[domain.QrBatchView], error) {
	batches, err := s.repo.List(ctx, domain.NewPageRequest(page, batchesPerPage))
	if err != nil {
		return domain.Page[domain.QrBatchView]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	views := make([]domain.QrBatchView, 0, len(batches.Items))
	for _, b := range batches.Items {
		views = append(views, s.view(b))
	}

	return domain.Page[domain.QrBatchView]{
		Items:   views,
		Total:   batches.Total,
		Page:    batches.Page,
		PerPage: batches.PerPage,
	}, nil
}

// OpenDownload opens the ZIP of a completed batch. The caller closes it.
func (s *QrBatchService) OpenDownload(ctx context.Context, id uint) (afero.File, string, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !s.downloadable(batch) {
		return nil, "", ErrBatchNotReady
	}

	f, err := s.disk.Open(batch.PDFPath)
	if err != nil {
		return nil, "", fmt.Errorf("s.disk.Open -> %w", err)
	}

	return f, path.Base(batch.PDFPath), nil
}

func (s *QrBatchService) downloadable(batch domain.QrBatch) bool {
	if !batch.IsDownloadable() {
		return false
	}

	ok, err := s.disk.Exists(batch.PDFPath)
	if err != nil {
		zap.L().Warn("batch file check failed", zap.Uint("batch_id", batch.ID), zap.Error(err))
		return false
	}

	return ok
}

func (s *QrBatchService) view(batch domain.QrBatch) domain.QrBatchView {
	v := domain.QrBatchView{QrBatch: batch}
	if s.downloadable(batch) {
		v.DownloadAvailable = true
		v.DownloadURL = s.links.QrBatchDownload(batch.ID)
	}

	return v
}
