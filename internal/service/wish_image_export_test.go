package service

import (
	"archive/zip"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/storage"
)

type exportFixture struct {
	svc      *WishImageExportService
	exports  *fakeExports
	wishes   *fakeWishes
	public   *storage.Disk
	private  *storage.Disk
	jobs     *fakeJobs
	notifier *fakeNotifier
}

func newExportFixture(wishes ...domain.Wish) exportFixture {
	f := exportFixture{
		exports:  newFakeExports(),
		wishes:   newFakeWishes(wishes...),
		public:   storage.NewDisk(afero.NewMemMapFs()),
		private:  storage.NewDisk(afero.NewMemMapFs()),
		jobs:     &fakeJobs{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewWishImageExportService(f.exports, f.wishes, newFakeQrs(domain.Qr{ID: 4}), f.public, f.private, f.jobs, f.notifier, testLinks)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC) }

	return f
}

func TestWishImageExportService_RequestExport(t *testing.T) {
	f := newExportFixture()
	ctx := context.Background()

	first, running, err := f.svc.RequestExport(ctx, 4, 7)
	require.NoError(t, err)
	assert.False(t, running)
	assert.Equal(t, domain.ExportQueued, first.Status)
	assert.Equal(t, []queue.Job{{Kind: queue.KindExportWishImages, ID: first.ID}}, f.jobs.jobs)

	again, running, err := f.svc.RequestExport(ctx, 4, 7)
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.jobs.jobs, 1)

	other, running, err := f.svc.RequestExport(ctx, 4, 8)
	require.NoError(t, err)
	assert.False(t, running)
	assert.NotEqual(t, first.ID, other.ID)

	_, _, err = f.svc.RequestExport(ctx, 9, 7)
	assert.ErrorIs(t, err, ErrQrNotFound)
}

func TestWishImageExportService_Export(t *testing.T) {
	f := newExportFixture(
		domain.Wish{ID: 1, QrID: 4, Status: domain.WishAccepted, ImagePath: "wish-cards/qr-4/wish-1-a.png"},
		domain.Wish{ID: 2, QrID: 4, Status: domain.WishPending, ImagePath: "wish-cards/qr-4/wish-2-b.png"},
		domain.Wish{ID: 3, QrID: 4, Status: domain.WishAccepted, ImagePath: "wish-cards/qr-4/wish-3-missing.png"},
		domain.Wish{ID: 4, QrID: 4, Status: domain.WishAccepted, ImagePath: "wish-cards/qr-4/wish-4-c.png", IsDownloaded: true},
		domain.Wish{ID: 5, QrID: 4, Status: domain.WishAccepted, ImagePath: "wish-cards/qr-4/wish-5-d.png"},
	)
	for _, name := range []string{"wish-1-a.png", "wish-2-b.png", "wish-4-c.png", "wish-5-d.png"} {
		require.NoError(t, f.public.Put("wish-cards/qr-4/"+name, pngBytes(t)))
	}
	ctx := context.Background()

	requested, _, err := f.svc.RequestExport(ctx, 4, 7)
	require.NoError(t, err)
	require.NoError(t, f.svc.Handle(ctx, queue.Job{Kind: queue.KindExportWishImages, ID: requested.ID}))

	export, err := f.exports.FindByID(ctx, requested.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExportCompleted, export.Status)
	assert.Equal(t, 2, export.TotalImages)
	assert.Equal(t, "wish-exports/qr-4/wish-images-export-1-20240501130405.zip", export.FilePath)

	file, name, err := f.svc.OpenDownload(ctx, export.ID, 7)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "wish-images-export-1-20240501130405.zip", name)

	info, err := file.Stat()
	require.NoError(t, err)
	zr, err := zip.NewReader(file, info.Size())
	require.NoError(t, err)
	var entries []string
	for _, e := range zr.File {
		entries = append(entries, e.Name)
	}
	assert.Equal(t, []string{"wish-1-wish-1-a.png", "wish-5-wish-5-d.png"}, entries)

	assert.True(t, f.wishes.wishes[1].IsDownloaded)
	assert.True(t, f.wishes.wishes[5].IsDownloaded)
	assert.False(t, f.wishes.wishes[3].IsDownloaded)
	assert.False(t, f.wishes.wishes[2].IsDownloaded)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.EqualValues(t, 7, sent.UserID)
	assert.Equal(t, domain.NotificationWishExportCompleted, sent.Kind)
	assert.Equal(t, "Wish image export is ready (2 images).", sent.Data["message"])
	assert.Equal(t, "http://api.test/api/v1/wish-image-exports/1/download", sent.Data["download_url"])

	_, _, err = f.svc.OpenDownload(ctx, export.ID, 8)
	assert.ErrorIs(t, err, ErrExportForbidden)
}

func TestWishImageExportService_ExportMarksDownloadedPerPage(t *testing.T) {
	var wishes []domain.Wish
	for id := uint(1); id <= 5; id++ {
		wishes = append(wishes, domain.Wish{
			ID:        id, QrID: 4, Status: domain.WishAccepted,
			ImagePath: fmt.Sprintf("wish-cards/qr-4/wish-%d.png", id),
		})
	}
	f := newExportFixture(wishes...)
	f.svc.chunkSize = 2
	for _, w := range wishes {
		if w.ID == 3 {
			continue
		}
		require.NoError(t, f.public.Put(w.ImagePath, pngBytes(t)))
	}
	ctx := context.Background()

	requested, _, err := f.svc.RequestExport(ctx, 4, 7)
	require.NoError(t, err)
	require.NoError(t, f.svc.Export(ctx, requested.ID))

	export, err := f.exports.FindByID(ctx, requested.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, export.TotalImages)
	assert.Equal(t, [][]uint{{1, 2}, {4}, {5}}, f.wishes.marked)
	assert.False(t, f.wishes.wishes[3].IsDownloaded)
}

func TestWishImageExportService_ExportWithoutImages(t *testing.T) {
	f := newExportFixture(
		domain.Wish{ID: 1, QrID: 4, Status: domain.WishAccepted, ImagePath: "wish-cards/qr-4/gone.png"},
	)
	ctx := context.Background()

	requested, _, err := f.svc.RequestExport(ctx, 4, 7)
	require.NoError(t, err)
	require.NoError(t, f.svc.Export(ctx, requested.ID))

	export, err := f.exports.FindByID(ctx, requested.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExportFailed, export.Status)
	assert.Equal(t, "No accepted and not-yet-downloaded wish images were found for this QR.", export.ErrorMessage)

	ok, err := f.private.Exists("wish-exports/qr-4/wish-images-export-1-20240501130405.zip")
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "failed", f.notifier.sent[0].Data["status"])
	assert.Nil(t, f.notifier.sent[0].Data["download_url"])
	assert.Equal(t, export.ErrorMessage, f.notifier.sent[0].Data["message"])

	_, _, err = f.svc.OpenDownload(ctx, export.ID, 7)
	assert.ErrorIs(t, err, ErrExportNotReady)
}

func TestWishImageExportService_ListRecent(t *testing.T) {
	f := newExportFixture()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := f.exports.Create(ctx, domain.WishImageExport{QrID: 4, UserID: 7, Status: domain.ExportFailed})
		require.NoError(t, err)
	}

	views, err := f.svc.ListRecent(ctx, 4, 7)
	require.NoError(t, err)
	require.Len(t, views, 10)
	assert.EqualValues(t, 12, views[0].ID)
}
