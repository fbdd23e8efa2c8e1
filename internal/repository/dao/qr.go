package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrQrNotFound    = errors.New("qr not found")
	ErrQrTokenExists = errors.New("qr token already exists")
)

type Qr struct {
	ID        uint    `gorm:"primaryKey"`
	Token     string  `gorm:"size:64;uniqueIndex:uni_qrs_token;not null"`
	Name      *string `gorm:"size:255"`
	Status    string  `gorm:"size:16;not null;default:active;index"`
	CreatedBy *uint   `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QrWithCounts is a qrs row joined with its relation counters.
type QrWithCounts struct {
	Qr             `gorm:"embedded"`
	QuestionsCount int64
	ItemsCount     int64
	ResponsesCount int64
	WishesCount    int64
	PinsCount      int64
}

type QrDAO struct {
	db *gorm.DB
}

func NewQrDAO(db *gorm.DB) *QrDAO {
	return &QrDAO{db: db}
}

func (d *QrDAO) Insert(ctx context.Context, qr Qr) (Qr, error) {
	if err := d.db.WithContext(ctx).Create(&qr).Error; err != nil {
		if isUniqueViolation(err, "uni_qrs_token") {
			return Qr{}, ErrQrTokenExists
		}

		return Qr{}, err
	}

	return qr, nil
}

func (d *QrDAO) FindByID(ctx context.Context, id uint) (Qr, error) {
	var qr Qr
	if err := d.db.WithContext(ctx).First(&qr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Qr{}, ErrQrNotFound
		}

		return Qr{}, err
	}

	return qr, nil
}

func (d *QrDAO) FindByToken(ctx context.Context, token string) (Qr, error) {
	var qr Qr
	if err := d.db.WithContext(ctx).Where("token = ?", token).First(&qr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Qr{}, ErrQrNotFound
		}

		return Qr{}, err
	}

	return qr, nil
}

func (d *QrDAO) TokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&Qr{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (d *QrDAO) List(ctx context.Context, search, status string, offset, limit int) ([]QrWithCounts, int64, error) {
	query := d.db.WithContext(ctx).Model(&Qr{})
	if search != "" {
		pattern := likePattern(search)
		query = query.Where("qrs.name ILIKE ? OR qrs.token ILIKE ?", pattern, pattern)
	}
	if status != "" {
		query = query.Where("qrs.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []QrWithCounts
	err := query.
		Select(`qrs.*,
			(SELECT COUNT(*) FROM questions WHERE questions.qr_id = qrs.id) AS questions_count,
			(SELECT COUNT(*) FROM items WHERE items.qr_id = qrs.id) AS items_count,
			(SELECT COUNT(*) FROM form_responses WHERE form_responses.qr_id = qrs.id) AS responses_count,
			(SELECT COUNT(*) FROM wishes WHERE wishes.qr_id = qrs.id) AS wishes_count,
			(SELECT COUNT(*) FROM qr_pins WHERE qr_pins.qr_id = qrs.id) AS pins_count`).
		Order("qrs.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (d *QrDAO) Update(ctx context.Context, qr Qr) (Qr, error) {
	result := d.db.WithContext(ctx).Model(&Qr{ID: qr.ID}).Updates(map[string]interface{}{
		"name":   qr.Name,
		"status": qr.Status,
	})
	if result.Error != nil {
		return Qr{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Qr{}, ErrQrNotFound
	}

	return d.FindByID(ctx, qr.ID)
}

func (d *QrDAO) UpdateToken(ctx context.Context, id uint, token string) (Qr, error) {
	result := d.db.WithContext(ctx).Model(&Qr{ID: id}).Update("token", token)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_qrs_token") {
			return Qr{}, ErrQrTokenExists
		}

		return Qr{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Qr{}, ErrQrNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *QrDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Qr{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQrNotFound
	}

	return nil
}
