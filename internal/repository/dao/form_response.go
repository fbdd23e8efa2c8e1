package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrFormResponseNotFound = errors.New("form response not found")

type FormResponse struct {
	ID             uint    `gorm:"primaryKey"`
	QrID           uint    `gorm:"not null;index"`
	Qr             Qr      `gorm:"constraint:OnDelete:CASCADE"`
	UserIdentifier *string `gorm:"size:255"`
	Status         string  `gorm:"size:16;not null;default:new;index"`
	SubmittedAt    time.Time
	Answers        []FormResponseAnswer `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type FormResponseAnswer struct {
	ID             uint     `gorm:"primaryKey"`
	FormResponseID uint     `gorm:"not null;uniqueIndex:uni_answers_response_question,priority:1"`
	QuestionID     uint     `gorm:"not null;uniqueIndex:uni_answers_response_question,priority:2"`
	Question       Question `gorm:"constraint:OnDelete:CASCADE"`
	Value          *string  `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type FormResponseDAO struct {
	db *gorm.DB
}

func NewFormResponseDAO(db *gorm.DB) *FormResponseDAO {
	return &FormResponseDAO{db: db}
}

// Insert writes the response and its answers in one transaction.
func (d *FormResponseDAO) Insert(ctx context.Context, response FormResponse) (FormResponse, error) {
	answers := response.Answers
	response.Answers = nil

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Qr", "Answers").Create(&response).Error; err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}

		for i := range answers {
			answers[i].FormResponseID = response.ID
		}

		return tx.Omit("Question").Create(&answers).Error
	})
	if err != nil {
		return FormResponse{}, err
	}

	response.Answers = answers

	return response, nil
}

func (d *FormResponseDAO) FindByID(ctx context.Context, id uint) (FormResponse, error) {
	var response FormResponse
	err := d.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("question_id") }).
		First(&response, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormResponse{}, ErrFormResponseNotFound
		}

		return FormResponse{}, err
	}

	return response, nil
}

// List searches user identifiers and answer values.
func (d *FormResponseDAO) List(ctx context.Context, qrID uint, search, status string, offset, limit int) ([]FormResponse, int64, error) {
	query := d.db.WithContext(ctx).Model(&FormResponse{}).Where("form_responses.qr_id = ?", qrID)
	if search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"(form_responses.user_identifier ILIKE ? OR EXISTS (SELECT 1 FROM form_response_answers a WHERE a.form_response_id = form_responses.id AND a.value ILIKE ?))",
			pattern, pattern,
		)
	}
	if status != "" {
		query = query.Where("form_responses.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var responses []FormResponse
	err := query.
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("question_id") }).
		Order("form_responses.submitted_at DESC, form_responses.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&responses).Error
	if err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (d *FormResponseDAO) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).Model(&FormResponse{ID: id}).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFormResponseNotFound
	}

	return nil
}

func (d *FormResponseDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&FormResponse{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFormResponseNotFound
	}

	return nil
}
