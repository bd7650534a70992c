package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/pass-management/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.Error("failed to get user by id", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return u, nil
}
