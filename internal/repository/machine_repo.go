package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/djdeepak14/laundry-backend/internal/domain"
)

type MachineRepository struct {
	db *gorm.DB
}

func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

func (r *MachineRepository) Create(ctx context.Context, m *domain.Machine) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return gorm.ErrDuplicatedKey
		}
		return err
	}
	return nil
}

func (r *MachineRepository) GetByID(ctx context.Context, id int64) (*domain.Machine, error) {
	var m domain.Machine
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MachineRepository) GetByCode(ctx context.Context, code string) (*domain.Machine, error) {
	var m domain.Machine
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MachineRepository) List(ctx context.Context) ([]domain.Machine, error) {
	var machines []domain.Machine
	if err := r.db.WithContext(ctx).Order("id").Find(&machines).Error; err != nil {
		return nil, err
	}
	return machines, nil
}

// ListBookable returns active, booking-enabled machines of the given type in
// id order. The stable order keeps dependent-machine allocation deterministic.
func (r *MachineRepository) ListBookable(ctx context.Context, t domain.MachineType) ([]domain.Machine, error) {
	var machines []domain.Machine
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ? AND booking_enabled = ?", t, true, true).
		Order("id").
		Find(&machines).Error
	if err != nil {
		return nil, err
	}
	return machines, nil
}

func (r *MachineRepository) ListByType(ctx context.Context, t domain.MachineType) ([]domain.Machine, error) {
	var machines []domain.Machine
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", t, true).
		Order("id").
		Find(&machines).Error
	if err != nil {
		return nil, err
	}
	return machines, nil
}

// UpdateStatus refreshes the cached operational status. Best effort only; the
// reservations table stays authoritative for conflicts.
func (r *MachineRepository) UpdateStatus(ctx context.Context, id int64, status domain.MachineStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Machine{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *MachineRepository) Delete(ctx context.Context, id int64) (*domain.Machine, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&domain.Machine{}, id).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MachineRepository) DeleteByCode(ctx context.Context, code string) (*domain.Machine, error) {
	m, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&domain.Machine{}, m.ID).Error; err != nil {
		return nil, err
	}
	return m, nil
}
