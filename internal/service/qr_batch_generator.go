package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/render"
)

const (
	batchTokenLength   = 64
	batchTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	tokenStageWeight = 600
	pdfStageWeight   = 350
)

type QrBatchGenerator struct {
	repo           QrBatchRepository
	disk           Disk
	admins         AdminLister
	notifier       Notifier
	links          Links
	chunkSize      int
	maxCodesPerPDF int
	creator        string
	now            func() time.Time
}

func NewQrBatchGenerator(
	repo QrBatchRepository,
	disk Disk,
	admins AdminLister,
	notifier Notifier,
	links Links,
	chunkSize, maxCodesPerPDF int,
) *QrBatchGenerator {
	if chunkSize < 1 {
		chunkSize = 1000
	}
	if maxCodesPerPDF < 1 {
		maxCodesPerPDF = 10000
	}

	return &QrBatchGenerator{
		repo:           repo,
		disk:           disk,
		admins:         admins,
		notifier:       notifier,
		links:          links,
		chunkSize:      chunkSize,
		maxCodesPerPDF: maxCodesPerPDF,
		creator:        "QR Admin",
		now:            time.Now,
	}
}

// Handle is the queue handler for generate_qr_batch jobs.
func (g *QrBatchGenerator) Handle(ctx context.Context, job queue.Job) error {
	return g.Generate(ctx, job.ID)
}

// Generate rebuilds the batch from scratch: tokens, PDF parts and the ZIP
// holding them. Any failure is recorded on the batch.
func (g *QrBatchGenerator) Generate(ctx context.Context, id uint) error {
	batch, err := g.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("g.repo.FindByID -> %w", err)
	}

	zipPath, err := g.run(ctx, batch)
	if err != nil {
		if failErr := g.repo.Fail(context.WithoutCancel(ctx), id, err.Error(), g.now()); failErr != nil {
			err = multierr.Append(err, fmt.Errorf("g.repo.Fail -> %w", failErr))
		}

		return err
	}

	if err = g.repo.Complete(ctx, id, zipPath, progressScale, g.now()); err != nil {
		return fmt.Errorf("g.repo.Complete -> %w", err)
	}

	g.notifyAdmins(ctx, batch.ID)

	return nil
}

func (g *QrBatchGenerator) run(ctx context.Context, batch domain.QrBatch) (string, error) {
	if err := g.reset(ctx, batch); err != nil {
		return "", err
	}
	if err := g.generateTokens(ctx, batch); err != nil {
		return "", err
	}

	parts, err := g.renderParts(ctx, batch)
	if err != nil {
		return "", err
	}

	if err = g.progress(ctx, batch.ID, tokenStageWeight+pdfStageWeight, "Packaging ZIP"); err != nil {
		return "", err
	}

	zipPath, err := g.zipParts(batch, parts)
	if err != nil {
		return "", err
	}

	if err = g.progress(ctx, batch.ID, progressScale-1, "Finalizing"); err != nil {
		return "", err
	}

	return zipPath, nil
}

func batchDirectory(id uint) string {
	return fmt.Sprintf("qr-batches/%d", id)
}

func (g *QrBatchGenerator) reset(ctx context.Context, batch domain.QrBatch) error {
	if err := g.repo.DeleteItems(ctx, batch.ID); err != nil {
		return fmt.Errorf("g.repo.DeleteItems -> %w", err)
	}
	if err := g.disk.DeleteDirectory(batchDirectory(batch.ID)); err != nil {
		return fmt.Errorf("g.disk.DeleteDirectory -> %w", err)
	}
	if err := g.repo.Start(ctx, batch.ID, progressScale, g.now()); err != nil {
		return fmt.Errorf("g.repo.Start -> %w", err)
	}

	return nil
}

func (g *QrBatchGenerator) generateTokens(ctx context.Context, batch domain.QrBatch) error {
	if err := g.progress(ctx, batch.ID, 0, "Generating tokens"); err != nil {
		return err
	}

	rows := make([]domain.QrBatchItem, 0, g.chunkSize)
	inserted := 0
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := g.repo.CreateItems(ctx, rows); err != nil {
			return fmt.Errorf("g.repo.CreateItems -> %w", err)
		}
		inserted += len(rows)
		rows = rows[:0]

		return g.tokenProgress(ctx, batch, inserted)
	}

	for seq := 1; seq <= batch.Quantity; seq++ {
		token, err := randomString(batchTokenAlphabet, batchTokenLength)
		if err != nil {
			return err
		}
		rows = append(rows, domain.QrBatchItem{
			QrBatchID: batch.ID,
			Sequence:  seq,
			Token:     token,
			URL:       BuildQrURL(batch.BaseURL, token),
		})

		if len(rows) >= g.chunkSize {
			if err = flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	return g.tokenProgress(ctx, batch, inserted)
}

// BuildQrURL places token into baseURL: at a {token} placeholder, directly
// after a trailing "/" or "=", or else after an added "/".
func BuildQrURL(baseURL, token string) string {
	switch {
	case strings.Contains(baseURL, "{token}"):
		return strings.ReplaceAll(baseURL, "{token}", token)
	case strings.HasSuffix(baseURL, "/"), strings.HasSuffix(baseURL, "="):
		return baseURL + token
	}

	return baseURL + "/" + token
}

func (g *QrBatchGenerator) renderParts(ctx context.Context, batch domain.QrBatch) ([]string, error) {
	dir := batchDirectory(batch.ID)
	if err := g.disk.MakeDirectory(dir); err != nil {
		return nil, fmt.Errorf("g.disk.MakeDirectory -> %w", err)
	}

	layout := render.Layout{
		PageFormat: batch.PageFormat,
		MarginMM:   batch.MarginMM,
		GapMM:      batch.GapMM,
		SizeMM:     batch.SizeMM,
		Cols:       batch.Cols,
		Rows:       batch.Rows,
	}

	totalParts := int(math.Ceil(float64(batch.Quantity) / float64(g.maxCodesPerPDF)))
	parts := make([]string, 0, totalParts)

	for part, start := 1, 1; start <= batch.Quantity; part, start = part+1, start+g.maxCodesPerPDF {
		end := min(batch.Quantity, start+g.maxCodesPerPDF-1)

		items, err := g.repo.ItemsInRange(ctx, batch.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("g.repo.ItemsInRange -> %w", err)
		}
		if err = g.pdfProgress(ctx, batch.ID, part-1, totalParts); err != nil {
			return nil, err
		}

		name := fmt.Sprintf("%s/batch-%d-part-%03d.pdf", dir, batch.ID, part)
		if err = g.renderPart(name, layout, batch.ID, part, items); err != nil {
			return nil, err
		}
		parts = append(parts, name)

		if err = g.pdfProgress(ctx, batch.ID, part, totalParts); err != nil {
			return nil, err
		}
	}

	return parts, nil
}

func (g *QrBatchGenerator) renderPart(name string, layout render.Layout, batchID uint, part int, items []domain.QrBatchItem) (err error) {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}

	f, err := g.disk.Create(name)
	if err != nil {
		return fmt.Errorf("g.disk.Create -> %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	meta := render.SheetMeta{
		Title:   fmt.Sprintf("QR Batch %d Part %d", batchID, part),
		Creator: g.creator,
	}
	if err = render.WriteSheet(f, layout, meta, urls); err != nil {
		return fmt.Errorf("render.WriteSheet -> %w", err)
	}

	return nil
}

func (g *QrBatchGenerator) zipParts(batch domain.QrBatch, parts []string) (zipPath string, err error) {
	zipPath = fmt.Sprintf("%s/batch-%d.zip", batchDirectory(batch.ID), batch.ID)

	f, err := g.disk.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("g.disk.Create -> %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	archive := render.NewArchive(f)
	for _, part := range parts {
		part := part
		err = archive.AddFrom(path.Base(part), func() (io.ReadCloser, error) {
			return g.disk.Open(part)
		})
		if err != nil {
			return "", multierr.Append(fmt.Errorf("archive.AddFrom -> %w", err), archive.Close())
		}
	}

	if err = archive.Close(); err != nil {
		return "", fmt.Errorf("archive.Close -> %w", err)
	}

	return zipPath, nil
}

func (g *QrBatchGenerator) tokenProgress(ctx context.Context, batch domain.QrBatch, inserted int) error {
	ratio := 1.0
	if batch.Quantity > 0 {
		ratio = math.Min(1, float64(inserted)/float64(batch.Quantity))
	}
	current := int(math.Round(tokenStageWeight * ratio))

	return g.progress(ctx, batch.ID, current, fmt.Sprintf("Generating tokens (%d/%d)", inserted, batch.Quantity))
}

func (g *QrBatchGenerator) pdfProgress(ctx context.Context, id uint, done, total int) error {
	ratio := 1.0
	if total > 0 {
		ratio = math.Min(1, float64(done)/float64(total))
	}
	current := tokenStageWeight + int(math.Round(pdfStageWeight*ratio))

	return g.progress(ctx, id, current, fmt.Sprintf("Rendering PDFs (%d/%d)", done, total))
}

func (g *QrBatchGenerator) progress(ctx context.Context, id uint, current int, message string) error {
	current = max(0, min(progressScale, current))

	err := g.repo.UpdateProgress(ctx, id, domain.BatchProgress{
		Current: current,
		Total:   progressScale,
		Percent: current * 100 / progressScale,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("g.repo.UpdateProgress -> %w", err)
	}

	return nil
}

func (g *QrBatchGenerator) notifyAdmins(ctx context.Context, batchID uint) {
	admins, err := g.admins.FindAdmins(ctx)
	if err != nil {
		zap.L().Error("admins not loaded for batch notification", zap.Uint("batch_id", batchID), zap.Error(err))
		return
	}

	data := map[string]interface{}{
		"kind":         "qr_batch_ready",
		"title":        "QR Batch Ready",
		"message":      fmt.Sprintf("QR batch #%d is ready to download.", batchID),
		"qr_batch_id":  batchID,
		"status":       string(domain.BatchCompleted),
		"download_url": g.links.QrBatchDownload(batchID),
		"page_url":     g.links.QrBatches(),
		"created_at":   g.now().UTC().Format(time.RFC3339),
	}
	for _, admin := range admins {
		if err = g.notifier.Notify(ctx, admin.ID, domain.NotificationQrBatchReady, data); err != nil {
			zap.L().Error("batch notification failed", zap.Uint("batch_id", batchID), zap.Uint("user_id", admin.ID), zap.Error(err))
		}
	}
}
