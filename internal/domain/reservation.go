package domain

import "time"

type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "booked"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Reservation is a single fixed-length slot on one machine. Rows are never
// deleted; cancellation and completion are terminal status transitions.
type Reservation struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	MachineID   int64             `json:"machine_id" gorm:"not null;index:idx_machine_start"`
	UserID      int64             `json:"user_id" gorm:"not null;index:idx_user_status_start"`
	Start       time.Time         `json:"start" gorm:"not null;index:idx_machine_start"`
	End         time.Time         `json:"end" gorm:"not null"`
	Status      ReservationStatus `json:"status" gorm:"size:32;not null;default:booked;index:idx_user_status_start"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`

	Machine *Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
}

// EffectiveStatus computes the presented status. Completion is never stored:
// a booked reservation whose slot has already ended reads as completed.
func (r *Reservation) EffectiveStatus(now time.Time) ReservationStatus {
	if r.Status == ReservationBooked && r.End.Before(now) {
		return ReservationCompleted
	}
	return r.Status
}

func (r *Reservation) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
