package booking

import (
	"context"
	"errors"
	"time"

	"github.com/djdeepak14/laundry-backend/internal/domain"
	"github.com/djdeepak14/laundry-backend/internal/repository"
)

// Service is the reservation orchestrator. It owns no state of its own; every
// create and cancel runs as one transaction against the store, so a failure at
// any step leaves the reservations table untouched.
type Service struct {
	store  *repository.Store
	policy Policy
}

func NewService(store *repository.Store, policy Policy) *Service {
	return &Service{store: store, policy: policy}
}

func (s *Service) Policy() Policy { return s.policy }

// CreateReservation books the machine for the fixed-length slot starting at
// start, and when the machine type chains a dependent type (washer → dryer)
// books a dependent machine for the immediately following slot in the same
// transaction. Either both reservations commit or neither does.
func (s *Service) CreateReservation(ctx context.Context, userID, machineID int64, start time.Time) ([]*domain.Reservation, error) {
	start = start.UTC()
	if !start.Truncate(s.policy.SlotDuration).Equal(start) {
		return nil, ErrValidation
	}
	if !start.After(time.Now().UTC()) {
		return nil, ErrValidation
	}
	end := start.Add(s.policy.SlotDuration)

	var created []*domain.Reservation
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		machine, err := tx.Machines.GetByID(ctx, machineID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMachineNotFound
			}
			return err
		}
		if !machine.Bookable() {
			return ErrMachineUnavailable
		}

		if err := s.ensureSlotFree(ctx, tx, machine.ID, start, end); err != nil {
			return err
		}
		if err := s.checkWeeklyQuota(ctx, tx, userID, machine.Type, start); err != nil {
			return err
		}

		primary := &domain.Reservation{
			MachineID: machine.ID,
			UserID:    userID,
			Start:     start,
			End:       end,
			Status:    domain.ReservationBooked,
		}

		var dependent *domain.Reservation
		var depMachine *domain.Machine
		if depType, ok := s.policy.DependentTypes[machine.Type]; ok {
			depEnd := end.Add(s.policy.SlotDuration)
			depMachine, err = allocateDependent(ctx, tx, depType, end, depEnd, machineIndex(machine.Code))
			if err != nil {
				return err
			}
			dependent = &domain.Reservation{
				MachineID: depMachine.ID,
				UserID:    userID,
				Start:     end,
				End:       depEnd,
				Status:    domain.ReservationBooked,
			}
		}

		if err := tx.Reservations.Create(ctx, primary); err != nil {
			return s.mapCreateError(machine.ID, start, end, err)
		}
		if dependent != nil {
			if err := tx.Reservations.Create(ctx, dependent); err != nil {
				return s.mapCreateError(depMachine.ID, dependent.Start, dependent.End, err)
			}
		}

		// cached operational status, never read for conflict decisions
		if err := tx.Machines.UpdateStatus(ctx, machine.ID, domain.MachineReserved); err != nil {
			return err
		}
		if depMachine != nil {
			if err := tx.Machines.UpdateStatus(ctx, depMachine.ID, domain.MachineReserved); err != nil {
				return err
			}
		}

		primary.Machine = machine
		created = append(created, primary)
		if dependent != nil {
			dependent.Machine = depMachine
			created = append(created, dependent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ensureSlotFree is the fast pre-check; the unique index catches the race two
// concurrent transactions can still win here simultaneously.
func (s *Service) ensureSlotFree(ctx context.Context, tx *repository.Store, machineID int64, start, end time.Time) error {
	conflict, err := tx.Reservations.FindOverlapping(ctx, machineID, start, end)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	return &SlotTakenError{MachineID: machineID, Start: conflict.Start, End: conflict.End}
}

func (s *Service) checkWeeklyQuota(ctx context.Context, tx *repository.Store, userID int64, machineType domain.MachineType, start time.Time) error {
	capHours := s.policy.WeeklyCapHours[machineType]
	if capHours <= 0 {
		return nil
	}
	weekStart, weekEnd := weekBounds(start, s.policy.WeekStart, s.policy.Location)
	used, err := tx.Reservations.SumWeeklyHours(ctx, userID, machineType, weekStart, weekEnd)
	if err != nil {
		return err
	}
	return checkQuota(machineType, used, s.policy.SlotDuration, capHours, weekEnd)
}

func (s *Service) mapCreateError(machineID int64, start, end time.Time, err error) error {
	if errors.Is(err, repository.ErrDuplicateSlot) {
		return &SlotTakenError{MachineID: machineID, Start: start, End: end}
	}
	return err
}

// CancelReservation transitions a booked reservation to cancelled. The owner
// may cancel their own reservation; admins may cancel any. Cancelling an
// already cancelled or completed reservation is a no-op that returns the
// current record.
func (s *Service) CancelReservation(ctx context.Context, id, actingUserID int64, isAdmin bool) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		res, err := tx.Reservations.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if res.UserID != actingUserID && !isAdmin {
			return ErrForbidden
		}
		if res.Status != domain.ReservationBooked {
			out = res
			return nil
		}

		if err := tx.Reservations.UpdateStatus(ctx, id, domain.ReservationCancelled); err != nil {
			return err
		}

		// best-effort status cache: only flip back to available when no other
		// booked slot remains on the machine
		busy, err := tx.Reservations.HasUpcomingBooked(ctx, res.MachineID, time.Now().UTC())
		if err == nil && !busy {
			_ = tx.Machines.UpdateStatus(ctx, res.MachineID, domain.MachineAvailable)
		}

		out, err = tx.Reservations.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUpcoming returns the user's future reservations, soonest first.
func (s *Service) ListUpcoming(ctx context.Context, userID int64, page, limit int, includeCancelled bool) (*Page, error) {
	now := time.Now().UTC()
	statuses := []domain.ReservationStatus{domain.ReservationBooked}
	if includeCancelled {
		statuses = append(statuses, domain.ReservationCancelled)
	}
	items, total, err := s.store.Reservations.ListByUser(ctx, userID, repository.ReservationFilter{
		Statuses:  statuses,
		StartFrom: &now,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit, now), nil
}

// ListPast returns the user's finished reservations, most recent first. Booked
// rows whose slot has ended surface as completed; no stored transition exists.
func (s *Service) ListPast(ctx context.Context, userID int64, page, limit int, includeCancelled bool) (*Page, error) {
	now := time.Now().UTC()
	statuses := []domain.ReservationStatus{domain.ReservationBooked, domain.ReservationCompleted}
	if includeCancelled {
		statuses = append(statuses, domain.ReservationCancelled)
	}
	items, total, err := s.store.Reservations.ListByUser(ctx, userID, repository.ReservationFilter{
		Statuses:  statuses,
		EndBefore: &now,
		OrderDesc: true,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit, now), nil
}

// ListMine returns the user's active reservations for frontend sync.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]ReservationView, error) {
	items, _, err := s.store.Reservations.ListByUser(ctx, userID, repository.ReservationFilter{
		Statuses: []domain.ReservationStatus{domain.ReservationBooked},
		Limit:    100,
	})
	if err != nil {
		return nil, err
	}
	return newViews(items, time.Now().UTC()), nil
}

// ListAll returns every booked reservation. Privileged; callers gate on role.
func (s *Service) ListAll(ctx context.Context, page, limit int) (*Page, error) {
	now := time.Now().UTC()
	items, total, err := s.store.Reservations.ListActive(ctx, repository.ReservationFilter{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit, now), nil
}

// GetAvailability returns the machine's free slots for one UTC day, stepping
// through the day slot by slot against the booked intervals.
func (s *Service) GetAvailability(ctx context.Context, machineID int64, dateStr string) ([]TimeSlot, error) {
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrValidation
	}
	if _, err := s.store.Machines.GetByID(ctx, machineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	busy, err := s.store.Reservations.ListBookedInRange(ctx, machineID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	free := make([]TimeSlot, 0)
	for slot := dayStart; slot.Before(dayEnd); slot = slot.Add(s.policy.SlotDuration) {
		if !hasConflict(busy, slot, slot.Add(s.policy.SlotDuration)) {
			free = append(free, TimeSlot{Start: slot, End: slot.Add(s.policy.SlotDuration)})
		}
	}
	return free, nil
}
