package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/djdeepak14/laundry-backend/internal/domain"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// ReservationFilter narrows and pages ListByUser / ListActive queries.
// Upcoming queries set StartFrom and ascending order; past queries set
// EndBefore and descending order.
type ReservationFilter struct {
	Statuses  []domain.ReservationStatus
	StartFrom *time.Time
	EndBefore *time.Time
	OrderDesc bool
	Page      int
	Limit     int
}

func (f *ReservationFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// Create inserts a booked reservation. The partial unique index on
// (machine_id, start) WHERE status='booked' is the final race guard: when two
// transactions insert the same slot, exactly one gets ErrDuplicateSlot.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// modernc sqlite driver without error translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).Preload("Machine").First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindOverlapping returns a booked reservation on the machine whose half-open
// interval intersects [start, end), or ErrNotFound. Used as the fast pre-check
// before insert; the unique index remains authoritative.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, machineID int64, start, end time.Time) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).
		Where("machine_id = ? AND status = ?", machineID, domain.ReservationBooked).
		Where(`"start" < ? AND "end" > ?`, end, start).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// SumWeeklyHours totals the booked hours a user holds on machines of the given
// type with a start inside [weekStart, weekEnd).
func (r *ReservationRepository) SumWeeklyHours(ctx context.Context, userID int64, machineType domain.MachineType, weekStart, weekEnd time.Time) (time.Duration, error) {
	var rows []domain.Reservation
	err := r.db.WithContext(ctx).
		Joins("JOIN machines ON machines.id = reservations.machine_id").
		Where("reservations.user_id = ? AND reservations.status = ? AND machines.type = ?",
			userID, domain.ReservationBooked, machineType).
		Where(`reservations."start" >= ? AND reservations."start" < ?`, weekStart, weekEnd).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	var total time.Duration
	for _, row := range rows {
		total += row.Duration()
	}
	return total, nil
}

// ListByUser returns one page of a user's reservations with machine details,
// plus the unpaged total.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64, f ReservationFilter) ([]domain.Reservation, int64, error) {
	f.normalize()
	q := r.db.WithContext(ctx).Model(&domain.Reservation{}).Where("user_id = ?", userID)
	return r.listPage(q, f)
}

// ListActive returns every booked reservation regardless of owner. Admin use.
func (r *ReservationRepository) ListActive(ctx context.Context, f ReservationFilter) ([]domain.Reservation, int64, error) {
	f.normalize()
	if len(f.Statuses) == 0 {
		f.Statuses = []domain.ReservationStatus{domain.ReservationBooked}
	}
	q := r.db.WithContext(ctx).Model(&domain.Reservation{})
	return r.listPage(q, f)
}

func (r *ReservationRepository) listPage(q *gorm.DB, f ReservationFilter) ([]domain.Reservation, int64, error) {
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.StartFrom != nil {
		q = q.Where(`"start" >= ?`, *f.StartFrom)
	}
	if f.EndBefore != nil {
		q = q.Where(`"end" < ?`, *f.EndBefore)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := `"start" ASC`
	if f.OrderDesc {
		order = `"start" DESC`
	}

	var items []domain.Reservation
	err := q.Preload("Machine").
		Order(order).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListBookedInRange returns booked reservations on the machine intersecting
// [from, to), ordered by start.
func (r *ReservationRepository) ListBookedInRange(ctx context.Context, machineID int64, from, to time.Time) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("machine_id = ? AND status = ?", machineID, domain.ReservationBooked).
		Where(`"start" < ? AND "end" > ?`, to, from).
		Order(`"start"`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus transitions a reservation and stamps cancelled_at when the new
// status is cancelled.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	updates := map[string]any{"status": status}
	if status == domain.ReservationCancelled {
		now := time.Now().UTC()
		updates["cancelled_at"] = &now
	}
	tx := r.db.WithContext(ctx).Model(&domain.Reservation{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasUpcomingBooked reports whether the machine still has any booked
// reservation ending after now. Used to decide the cached machine status after
// a cancellation.
func (r *ReservationRepository) HasUpcomingBooked(ctx context.Context, machineID int64, now time.Time) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("machine_id = ? AND status = ?", machineID, domain.ReservationBooked).
		Where(`"end" > ?`, now).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
