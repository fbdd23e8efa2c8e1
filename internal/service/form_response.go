package service

import (
	"context"
	"fmt"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

const responsesPerPage = 50

var ErrFormResponseNotFound = repository.ErrFormResponseNotFound

type FormResponseRepository interface {
	Create(ctx context.Context, response domain.FormResponse) (domain.FormResponse, error)
	FindByID(ctx context.Context, id uint) (domain.FormResponse, error)
	List(ctx context.Context, qrID uint, filter domain.FormResponseFilter, page domain.PageRequest) (domain.Page[domain.FormResponse], error)
	UpdateStatus(ctx context.Context, id uint, status domain.FormResponseStatus) error
	Delete(ctx context.Context, id uint) error
}

type FormResponseService struct {
	repo FormResponseRepository
	qrs  QrLookup
}

func NewFormResponseService(repo FormResponseRepository, qrs QrLookup) *FormResponseService {
	return &FormResponseService{repo: repo, qrs: qrs}
}

func (s *FormResponseService) ListResponses(ctx context.Context, qrID uint, filter domain.FormResponseFilter, page int) (domain.Page[domain.FormResponse], error) {
	if _, err := s.qrs.FindByID(ctx, qrID); err != nil {
		return domain.Page[domain.FormResponse]{}, fmt.Errorf("s.qrs.FindByID -> %w", err)
	}

	responses, err := s.repo.List(ctx, qrID, filter, domain.NewPageRequest(page, responsesPerPage))
	if err != nil {
		return domain.Page[domain.FormResponse]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return responses, nil
}

func (s *FormResponseService) GetResponse(ctx context.Context, qrID, id uint) (domain.FormResponse, error) {
	response, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.FormResponse{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if response.QrID != qrID {
		return domain.FormResponse{}, ErrFormResponseNotFound
	}

	return response, nil
}

func (s *FormResponseService) UpdateStatus(ctx context.Context, qrID, id uint, status domain.FormResponseStatus) (domain.FormResponse, error) {
	response, err := s.GetResponse(ctx, qrID, id)
	if err != nil {
		return domain.FormResponse{}, err
	}

	if err = s.repo.UpdateStatus(ctx, id, status); err != nil {
		return domain.FormResponse{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}
	response.Status = status

	return response, nil
}

func (s *FormResponseService) DeleteResponse(ctx context.Context, qrID, id uint) error {
	if _, err := s.GetResponse(ctx, qrID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
