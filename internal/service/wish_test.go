package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/storage"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	return buf.Bytes()
}

func pngDataURL(t *testing.T) string {
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(pngBytes(t))
}

func TestWishService_SubmitWish(t *testing.T) {
	wishes := newFakeWishes()
	disk := storage.NewDisk(afero.NewMemMapFs())
	svc := NewWishService(wishes, newFakeQrs(domain.Qr{ID: 4}), disk)
	ctx := context.Background()

	wish, err := svc.SubmitWish(ctx, 4, "Congrats!", pngDataURL(t))
	require.NoError(t, err)

	assert.Equal(t, domain.WishPending, wish.Status)
	assert.Regexp(t, `^wish-cards/qr-4/wish-1-[0-9a-f-]{36}\.png$`, wish.ImagePath)
	ok, err := disk.Exists(wish.ImagePath)
	require.NoError(t, err)
	assert.True(t, ok)

	plain, err := svc.SubmitWish(ctx, 4, "No card", "")
	require.NoError(t, err)
	assert.Empty(t, plain.ImagePath)
}

func TestWishService_SubmitWishRejectsBadImage(t *testing.T) {
	tests := map[string]string{
		"not a data url": "https://example.com/card.png",
		"bad base64":     pngDataURLPrefix + "%%%",
		"not a png":      pngDataURLPrefix + base64.StdEncoding.EncodeToString([]byte("GIF89a")),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			wishes := newFakeWishes()
			svc := NewWishService(wishes, newFakeQrs(domain.Qr{ID: 4}), storage.NewDisk(afero.NewMemMapFs()))

			_, err := svc.SubmitWish(context.Background(), 4, "Congrats!", data)

			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, "image_data")
			assert.Empty(t, wishes.wishes)
		})
	}
}

func TestWishService_SubmitWishDropsRowWhenImageIsNotStored(t *testing.T) {
	wishes := newFakeWishes()
	disk := storage.NewDisk(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	svc := NewWishService(wishes, newFakeQrs(domain.Qr{ID: 4}), disk)

	_, err := svc.SubmitWish(context.Background(), 4, "Congrats!", pngDataURL(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s.public.Put")
	assert.Empty(t, wishes.wishes)
}

func TestWishService_SubmitWishDropsRowAndImageWhenPathIsNotSaved(t *testing.T) {
	wishes := newFakeWishes()
	wishes.failImagePath = errors.New("connection reset")
	fs := afero.NewMemMapFs()
	svc := NewWishService(wishes, newFakeQrs(domain.Qr{ID: 4}), storage.NewDisk(fs))

	_, err := svc.SubmitWish(context.Background(), 4, "Congrats!", pngDataURL(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, wishes.wishes)

	files, err := afero.ReadDir(fs, "wish-cards/qr-4")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWishService_DeleteWishRemovesImage(t *testing.T) {
	disk := storage.NewDisk(afero.NewMemMapFs())
	require.NoError(t, disk.Put("wish-cards/qr-4/wish-1-a.png", pngBytes(t)))
	wishes := newFakeWishes(domain.Wish{ID: 1, QrID: 4, ImagePath: "wish-cards/qr-4/wish-1-a.png"})
	svc := NewWishService(wishes, newFakeQrs(domain.Qr{ID: 4}, domain.Qr{ID: 5}), disk)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteWish(ctx, 5, 1), ErrWishNotFound)

	require.NoError(t, svc.DeleteWish(ctx, 4, 1))
	ok, err := disk.Exists("wish-cards/qr-4/wish-1-a.png")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, wishes.wishes)
}
