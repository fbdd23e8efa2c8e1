package service

import (
	"archive/zip"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/storage"
)

var testLinks = Links{APIBase: "http://api.test/api/v1"}

func TestQrBatchService_CreateBatch(t *testing.T) {
	batches := newFakeBatches()
	jobs := &fakeJobs{}
	svc := NewQrBatchService(batches, storage.NewDisk(afero.NewMemMapFs()), jobs, testLinks, 100)

	view, err := svc.CreateBatch(context.Background(), BatchSettingsInput{Quantity: 12, BaseURL: "https://example.com/q"}, 3)
	require.NoError(t, err)

	assert.Equal(t, domain.BatchPending, view.Status)
	assert.Equal(t, "Queued", view.StatusMessage)
	assert.Equal(t, 1000, view.ProgressTotal)
	assert.False(t, view.DownloadAvailable)
	require.NotNil(t, view.CreatedBy)
	assert.EqualValues(t, 3, *view.CreatedBy)
	assert.Equal(t, []queue.Job{{Kind: queue.KindGenerateQrBatch, ID: view.ID}}, jobs.jobs)
}

func TestQrBatchService_CreateBatchEnqueueFails(t *testing.T) {
	batches := newFakeBatches()
	svc := NewQrBatchService(batches, storage.NewDisk(afero.NewMemMapFs()), &fakeJobs{err: errors.New("redis down")}, testLinks, 100)

	_, err := svc.CreateBatch(context.Background(), BatchSettingsInput{Quantity: 1, BaseURL: "https://example.com/q"}, 0)
	require.Error(t, err)

	stored, err := batches.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchFailed, stored.Status)
}

func TestQrBatchService_Settings(t *testing.T) {
	batches := newFakeBatches()
	svc := NewQrBatchService(batches, storage.NewDisk(afero.NewMemMapFs()), &fakeJobs{}, testLinks, 100)
	ctx := context.Background()

	payload, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Nil(t, payload.Latest)
	assert.Equal(t, "A4", payload.Defaults.PageFormat)
	assert.Equal(t, 40.0, payload.SizePresets["L"])

	_, err = svc.CreateBatch(ctx, BatchSettingsInput{Quantity: 1, BaseURL: "https://example.com/q"}, 0)
	require.NoError(t, err)

	payload, err = svc.Settings(ctx)
	require.NoError(t, err)
	require.NotNil(t, payload.Latest)
	assert.EqualValues(t, 1, payload.Latest.ID)
}

func TestQrBatchService_OpenDownloadNotReady(t *testing.T) {
	batches := newFakeBatches()
	svc := NewQrBatchService(batches, storage.NewDisk(afero.NewMemMapFs()), &fakeJobs{}, testLinks, 100)
	ctx := context.Background()

	view, err := svc.CreateBatch(ctx, BatchSettingsInput{Quantity: 1, BaseURL: "https://example.com/q"}, 0)
	require.NoError(t, err)

	_, _, err = svc.OpenDownload(ctx, view.ID)
	assert.ErrorIs(t, err, ErrBatchNotReady)

	_, _, err = svc.OpenDownload(ctx, 99)
	assert.ErrorIs(t, err, ErrQrBatchNotFound)
}

func TestQrBatchGenerator_Generate(t *testing.T) {
	batches := newFakeBatches()
	disk := storage.NewDisk(afero.NewMemMapFs())
	notifier := &fakeNotifier{}
	admins := fakeAdmins{{ID: 1, Role: domain.RoleAdmin}, {ID: 2, Role: domain.RoleAdmin}}
	ctx := context.Background()

	svc := NewQrBatchService(batches, disk, &fakeJobs{}, testLinks, 100)
	view, err := svc.CreateBatch(ctx, BatchSettingsInput{Quantity: 5, BaseURL: "https://example.com/scan?t={token}", Cols: intPtr(2), Rows: intPtr(2)}, 0)
	require.NoError(t, err)

	gen := NewQrBatchGenerator(batches, disk, admins, notifier, testLinks, 2, 2)
	require.NoError(t, gen.Handle(ctx, queue.Job{Kind: queue.KindGenerateQrBatch, ID: view.ID}))

	batch, err := batches.FindByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, batch.Status)
	assert.Equal(t, "qr-batches/1/batch-1.zip", batch.PDFPath)
	assert.Equal(t, 100, batch.ProgressPercent)

	items := batches.items[view.ID]
	require.Len(t, items, 5)
	token := regexp.MustCompile(`^[a-z0-9]{64}$`)
	for i, item := range items {
		assert.Equal(t, i+1, item.Sequence)
		assert.Regexp(t, token, item.Token)
		assert.Equal(t, "https://example.com/scan?t="+item.Token, item.URL)
	}

	messages := make([]string, 0, len(batches.progress))
	for _, p := range batches.progress {
		messages = append(messages, p.Message)
	}
	assert.Contains(t, messages, "Generating tokens (5/5)")
	assert.Contains(t, messages, "Rendering PDFs (3/3)")
	assert.Contains(t, messages, "Packaging ZIP")
	last := batches.progress[len(batches.progress)-1]
	assert.Equal(t, "Finalizing", last.Message)
	assert.Equal(t, 999, last.Current)

	f, name, err := svc.OpenDownload(ctx, view.ID)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "batch-1.zip", name)

	info, err := f.Stat()
	require.NoError(t, err)
	zr, err := zip.NewReader(f, info.Size())
	require.NoError(t, err)
	var entries []string
	for _, e := range zr.File {
		entries = append(entries, e.Name)
	}
	assert.Equal(t, []string{"batch-1-part-001.pdf", "batch-1-part-002.pdf", "batch-1-part-003.pdf"}, entries)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, domain.NotificationQrBatchReady, notifier.sent[0].Kind)
	assert.Equal(t, "qr_batch_ready", notifier.sent[0].Data["kind"])
	assert.Equal(t, "http://api.test/api/v1/qr-batches/1/download", notifier.sent[0].Data["download_url"])
}

func TestQrBatchGenerator_GenerateRecordsFailure(t *testing.T) {
	batches := newFakeBatches()
	disk := storage.NewDisk(afero.NewMemMapFs())
	ctx := context.Background()

	batch, err := batches.Create(ctx, domain.QrBatch{
		BatchSettings: domain.BatchSettings{
			Quantity: 1, BaseURL: "https://example.com/q", PageFormat: "TABLOID",
			Cols:     1, Rows: 1, SizeMM: 30,
		},
		Status: domain.BatchPending,
	})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	gen := NewQrBatchGenerator(batches, disk, fakeAdmins{{ID: 1}}, notifier, testLinks, 0, 0)
	require.Error(t, gen.Generate(ctx, batch.ID))

	stored, err := batches.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchFailed, stored.Status)
	assert.Contains(t, stored.StatusMessage, "unsupported page format")
	assert.NotNil(t, stored.FinishedAt)
	assert.Empty(t, notifier.sent)
}
