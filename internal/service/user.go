package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

var (
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrUserEmailExists = repository.ErrUserEmailExists
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAdmins(ctx context.Context) ([]domain.User, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListAdmins(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAdmins -> %w", err)
	}

	return users, nil
}

// CreateAdmin stores a new user. The role is always admin.
func (s *UserService) CreateAdmin(ctx context.Context, user domain.User) (domain.User, error) {
	hash, err := hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = hash
	user.Role = domain.RoleAdmin

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			return domain.User{}, emailTaken()
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateUser changes name and email, and the password only when one is given.
func (s *UserService) UpdateUser(ctx context.Context, id uint, name, email, password string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.Name = name
	user.Email = email
	if password != "" {
		if user.Password, err = hashPassword(password); err != nil {
			return domain.User{}, err
		}
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			return domain.User{}, emailTaken()
		}

		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// EnsureAdmin creates the bootstrap admin when no admin exists yet.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	admins, err := s.repo.FindAdmins(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.FindAdmins -> %w", err)
	}
	if len(admins) > 0 {
		return nil
	}

	if name == "" {
		name = "Administrator"
	}
	created, err := s.CreateAdmin(ctx, domain.User{Name: name, Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("s.CreateAdmin -> %w", err)
	}
	zap.L().Info("bootstrap admin created", zap.Uint("user_id", created.ID), zap.String("email", created.Email))

	return nil
}

func emailTaken() error {
	return validation.Errors{"email": errors.New("has already been taken")}
}
