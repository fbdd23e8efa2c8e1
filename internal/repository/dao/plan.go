package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrPlanNotFound = errors.New("plan not found")

type Plan struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	DisplayName string `gorm:"not null"`
	Detail      string `gorm:"type:text;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PlanDAO struct {
	db *gorm.DB
}

func NewPlanDAO(db *gorm.DB) *PlanDAO {
	return &PlanDAO{db: db}
}

func (d *PlanDAO) FindAll(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := d.db.WithContext(ctx).Order("id").Find(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}

func (d *PlanDAO) FindByID(ctx context.Context, id uint) (Plan, error) {
	var plan Plan
	if err := d.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Plan{}, ErrPlanNotFound
		}

		return Plan{}, err
	}

	return plan, nil
}

func (d *PlanDAO) Insert(ctx context.Context, plan Plan) (Plan, error) {
	if err := d.db.WithContext(ctx).Create(&plan).Error; err != nil {
		return Plan{}, err
	}

	return plan, nil
}

func (d *PlanDAO) Update(ctx context.Context, plan Plan) (Plan, error) {
	result := d.db.WithContext(ctx).Model(&Plan{ID: plan.ID}).Updates(map[string]interface{}{
		"name":         plan.Name,
		"display_name": plan.DisplayName,
		"detail":       plan.Detail,
	})
	if result.Error != nil {
		return Plan{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Plan{}, ErrPlanNotFound
	}

	return d.FindByID(ctx, plan.ID)
}

func (d *PlanDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Plan{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}

	return nil
}
