package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yeungho415/recipe/internal/auth"
	"github.com/yeungho415/recipe/internal/domain"
	domainerrors "github.com/yeungho415/recipe/internal/errors"
	"github.com/yeungho415/recipe/internal/id"
	"github.com/yeungho415/recipe/internal/store"
	"github.com/yeungho415/recipe/internal/store/sqlite"
)

// UserService handles account registration and profile management.
type UserService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *sqlite.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5,max=1024"`
	Name     string `json:"name" validate:"max=255"`
}

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.register(ctx, req, false)
}

// RegisterSuperuser creates an account with staff and superuser privileges.
// Not exposed over HTTP; it backs the createsuperuser command.
func (s *UserService) RegisterSuperuser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.register(ctx, req, true)
}

func (s *UserService) register(ctx context.Context, req RegisterRequest, superuser bool) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(req.Email)
	if email == "" {
		return nil, domainerrors.Validation("email is required")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Name),
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a user with that email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered", "user_id", userID, "superuser", superuser)
	}

	return user, nil
}

// GetProfile returns the user's account data.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfileRequest contains optional fields to update. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=5,max=1024"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// UpdateProfile applies a partial update to the user's account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email == "" {
			return nil, domainerrors.Validation("email is required")
		}
		user.Email = email
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if req.Password != nil {
		newHash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = newHash
		if s.logger != nil {
			s.logger.Info("Password changed", "user_id", userID)
		}
	}

	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a user with that email already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}
