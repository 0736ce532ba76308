package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one gorm handle so a transaction can be
// carried across them.
type Store struct {
	db           *gorm.DB
	Users        *UserRepository
	Machines     *MachineRepository
	Reservations *ReservationRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Machines:     NewMachineRepository(db),
		Reservations: NewReservationRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn against transaction-scoped repositories. Any error from
// fn rolls back every write made through the passed store.
func (s *Store) Transaction(ctx context.Context, fn func(*Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
