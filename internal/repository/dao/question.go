package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrQuestionNotFound = errors.New("question not found")

type Question struct {
	ID         uint                        `gorm:"primaryKey"`
	QrID       uint                        `gorm:"not null;index:idx_questions_qr_sort,priority:1"`
	Qr         Qr                          `gorm:"constraint:OnDelete:CASCADE"`
	Label      string                      `gorm:"size:255;not null"`
	Type       string                      `gorm:"size:16;not null"`
	IsRequired bool                        `gorm:"not null;default:false"`
	Options    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	SortOrder  int                         `gorm:"not null;default:0;index:idx_questions_qr_sort,priority:2"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type QuestionDAO struct {
	db *gorm.DB
}

func NewQuestionDAO(db *gorm.DB) *QuestionDAO {
	return &QuestionDAO{db: db}
}

func (d *QuestionDAO) FindByQr(ctx context.Context, qrID uint, search, qType string) ([]Question, error) {
	query := d.db.WithContext(ctx).Where("qr_id = ?", qrID)
	if search != "" {
		query = query.Where("label ILIKE ?", likePattern(search))
	}
	if qType != "" {
		query = query.Where("type = ?", qType)
	}

	var questions []Question
	if err := query.Order("sort_order, id").Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (d *QuestionDAO) FindByID(ctx context.Context, id uint) (Question, error) {
	var question Question
	if err := d.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Question{}, ErrQuestionNotFound
		}

		return Question{}, err
	}

	return question, nil
}

func (d *QuestionDAO) Insert(ctx context.Context, question Question) (Question, error) {
	if err := d.db.WithContext(ctx).Omit("Qr").Create(&question).Error; err != nil {
		return Question{}, err
	}

	return question, nil
}

func (d *QuestionDAO) Update(ctx context.Context, question Question) (Question, error) {
	result := d.db.WithContext(ctx).Model(&Question{ID: question.ID}).Updates(map[string]interface{}{
		"label":       question.Label,
		"type":        question.Type,
		"is_required": question.IsRequired,
		"options":     question.Options,
		"sort_order":  question.SortOrder,
	})
	if result.Error != nil {
		return Question{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Question{}, ErrQuestionNotFound
	}

	return d.FindByID(ctx, question.ID)
}

func (d *QuestionDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuestionNotFound
	}

	return nil
}
