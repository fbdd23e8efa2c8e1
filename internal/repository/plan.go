package repository

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository/dao"
)

var ErrPlanNotFound = dao.ErrPlanNotFound

type PlanDAO interface {
	FindAll(ctx context.Context) ([]dao.Plan, error)
	FindByID(ctx context.Context, id uint) (dao.Plan, error)
	Insert(ctx context.Context, plan dao.Plan) (dao.Plan, error)
	Update(ctx context.Context, plan dao.Plan) (dao.Plan, error)
	Delete(ctx context.Context, id uint) error
}

type PlanRepository struct {
	dao PlanDAO
}

func NewPlanRepository(dao PlanDAO) *PlanRepository {
	return &PlanRepository{dao: dao}
}

func (r *PlanRepository) FindAll(ctx context.Context) ([]domain.Plan, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	plans := make([]domain.Plan, 0, len(found))
	for _, p := range found {
		plans = append(plans, planToDomain(p))
	}

	return plans, nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id uint) (domain.Plan, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return planToDomain(found), nil
}

func (r *PlanRepository) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	created, err := r.dao.Insert(ctx, dao.Plan{
		Name:        plan.Name,
		DisplayName: plan.DisplayName,
		Detail:      plan.Detail,
	})
	if err != nil {
		return domain.Plan{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return planToDomain(created), nil
}

func (r *PlanRepository) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	updated, err := r.dao.Update(ctx, dao.Plan{
		ID:          plan.ID,
		Name:        plan.Name,
		DisplayName: plan.DisplayName,
		Detail:      plan.Detail,
	})
	if err != nil {
		return domain.Plan{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return planToDomain(updated), nil
}

func (r *PlanRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func planToDomain(p dao.Plan) domain.Plan {
	return domain.Plan{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Detail:      p.Detail,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
