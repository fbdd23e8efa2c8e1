package service

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

var ErrPlanNotFound = repository.ErrPlanNotFound

type PlanRepository interface {
	FindAll(ctx context.Context) ([]domain.Plan, error)
	FindByID(ctx context.Context, id uint) (domain.Plan, error)
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	Update(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	Delete(ctx context.Context, id uint) error
}

type PlanService struct {
	repo PlanRepository
}

func NewPlanService(repo PlanRepository) *PlanService {
	return &PlanService{repo: repo}
}

func (s *PlanService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return plans, nil
}

func (s *PlanService) CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	created, err := s.repo.Create(ctx, plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *PlanService) UpdatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if _, err := s.repo.FindByID(ctx, plan.ID); err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	updated, err := s.repo.Update(ctx, plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *PlanService) DeletePlan(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
