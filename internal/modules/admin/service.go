package admin

import (
	"context"
	"errors"

	"github.com/djdeepak14/laundry-backend/internal/domain"
	"github.com/djdeepak14/laundry-backend/internal/repository"
)

var ErrNotFound = errors.New("user not found")

// Service covers user administration: listing, approval, removal.
type Service struct {
	users *repository.UserRepository
}

func NewService(users *repository.UserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *Service) ApproveUser(ctx context.Context, id int64) (*domain.User, error) {
	if err := s.users.SetApproved(ctx, id, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
