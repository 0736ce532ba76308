package machines

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/djdeepak14/laundry-backend/internal/domain"
	"github.com/djdeepak14/laundry-backend/internal/repository"
)

// Service owns the machine catalog: the read-only lookups the booking engine
// consumes, plus the admin CRUD around them.
type Service struct {
	machines *repository.MachineRepository
}

func NewService(machines *repository.MachineRepository) *Service {
	return &Service{machines: machines}
}

func (s *Service) Create(ctx context.Context, req CreateMachineRequest) (*domain.Machine, error) {
	t := domain.MachineType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !t.Valid() {
		return nil, ErrValidation
	}

	m := &domain.Machine{
		Code:           strings.TrimSpace(req.Code),
		Type:           t,
		Status:         domain.MachineAvailable,
		IsActive:       true,
		BookingEnabled: true,
	}
	if m.Code == "" {
		return nil, ErrValidation
	}

	if err := s.machines.Create(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCodeTaken
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteByID(ctx context.Context, id int64) (*domain.Machine, error) {
	m, err := s.machines.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteByCode(ctx context.Context, code string) (*domain.Machine, error) {
	m, err := s.machines.DeleteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) ListByType(ctx context.Context, typ string) ([]domain.Machine, error) {
	t := domain.MachineType(strings.ToLower(strings.TrimSpace(typ)))
	if !t.Valid() {
		return nil, ErrValidation
	}
	return s.machines.ListByType(ctx, t)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Machine, error) {
	return s.machines.List(ctx)
}
