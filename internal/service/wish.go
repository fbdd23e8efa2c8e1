package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const (
	wishesPerPage    = 50
	pngDataURLPrefix = "data:image/png;base64,"
)

var ErrWishNotFound = repository.ErrWishNotFound

type WishRepository interface {
	Create(ctx context.Context, wish domain.Wish) (domain.Wish, error)
	FindByID(ctx context.Context, id uint) (domain.Wish, error)
	List(ctx context.Context, qrID uint, filter domain.WishFilter, page domain.PageRequest) (domain.Page[domain.Wish], error)
	UpdateStatus(ctx context.Context, id uint, status domain.WishStatus) (domain.Wish, error)
	UpdateImagePath(ctx context.Context, id uint, path string) error
	Delete(ctx context.Context, id uint) error
	NextExportable(ctx context.Context, qrID, afterID uint, limit int) ([]domain.Wish, error)
	MarkDownloaded(ctx context.Context, ids []uint) error
}

type WishService struct {
	repo   WishRepository
	qrs    QrLookup
	public Disk
}

func NewWishService(repo WishRepository, qrs QrLookup, public Disk) *WishService {
	return &WishService{repo: repo, qrs: qrs, public: public}
}

// SubmitWish stores a pending wish and, when imageData is set, its card
// image on the public disk.
func (s *WishService) SubmitWish(ctx context.Context, qrID uint, message, imageData string) (domain.Wish, error) {
	var image []byte
	if imageData != "" {
		var err error
		if image, err = decodePNGDataURL(imageData); err != nil {
			return domain.Wish{}, validation.Errors{"image_data": err}
		}
	}

	wish, err := s.repo.Create(ctx, domain.Wish{
		QrID:    qrID,
		Message: message,
		Status:  domain.WishPending,
	})
	if err != nil {
		return domain.Wish{}, fmt.Errorf("s.repo.Create -> %w", err)
	}
	if image == nil {
		return wish, nil
	}

	path := fmt.Sprintf("wish-cards/qr-%d/wish-%d-%s.png", qrID, wish.ID, uuid.NewString())
	if err = s.public.Put(path, image); err != nil {
		return domain.Wish{}, s.discard(ctx, wish.ID, "", fmt.Errorf("s.public.Put -> %w", err))
	}
	if err = s.repo.UpdateImagePath(ctx, wish.ID, path); err != nil {
		return domain.Wish{}, s.discard(ctx, wish.ID, path, fmt.Errorf("s.repo.UpdateImagePath -> %w", err))
	}
	wish.ImagePath = path

	return wish, nil
}

// discard drops a wish whose card image could not be attached, so a failed
// submission leaves neither a row nor a file behind.
func (s *WishService) discard(ctx context.Context, id uint, path string, err error) error {
	if path != "" {
		if delErr := s.public.Delete(path); delErr != nil {
			err = multierr.Append(err, fmt.Errorf("s.public.Delete -> %w", delErr))
		}
	}
	if delErr := s.repo.Delete(ctx, id); delErr != nil {
		err = multierr.Append(err, fmt.Errorf("s.repo.Delete -> %w", delErr))
	}

	return err
}

func (s *WishService) ListWishes(ctx context.Context, qrID uint, filter domain.WishFilter, page int) (domain.Page[domain.Wish], error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return domain.Page[domain.Wish]{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	wishes, err := s.repo.List(ctx, qrID, filter, domain.NewPageRequest(page, wishesPerPage))
	if err != nil {
		return domain.Page[domain.Wish]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return wishes, nil
}

func (s *WishService) UpdateStatus(ctx context.Context, qrID, id uint, status domain.WishStatus) (domain.Wish, error) {
	if _, err := s.find(ctx, qrID, id); err != nil {
		return domain.Wish{}, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Wish{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return updated, nil
}

// DeleteWish removes the wish and its stored card image.
func (s *WishService) DeleteWish(ctx context.Context, qrID, id uint) error {
	wish, err := s.find(ctx, qrID, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	if wish.ImagePath != "" {
		if err = s.public.Delete(wish.ImagePath); err != nil {
			zap.L().Warn("wish image not removed", zap.Uint("wish_id", id), zap.String("path", wish.ImagePath), zap.Error(err))
		}
	}

	return nil
}

func (s *WishService) find(ctx context.Context, qrID, id uint) (domain.Wish, error) {
	wish, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Wish{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if wish.QrID != qrID {
		return domain.Wish{}, ErrWishNotFound
	}

	return wish, nil
}

func decodePNGDataURL(data string) ([]byte, error) {
	if !strings.HasPrefix(data, pngDataURLPrefix) {
		return nil, errors.New("must be a PNG data URL")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(data, pngDataURLPrefix))
	if err != nil || len(raw) == 0 {
		return nil, errors.New("must contain valid base64 image data")
	}

	if _, err = png.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return nil, errors.New("must be a valid PNG image")
	}

	return raw, nil
}
