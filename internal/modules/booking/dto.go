package booking

import (
	"time"

	"github.com/djdeepak14/laundry-backend/internal/domain"
)

type CreateReservationRequest struct {
	MachineID int64     `json:"machine_id" binding:"required"`
	Start     time.Time `json:"start" binding:"required"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MachineSummary is the machine detail embedded in reservation listings.
type MachineSummary struct {
	ID     int64                `json:"id"`
	Code   string               `json:"code"`
	Type   domain.MachineType   `json:"type"`
	Status domain.MachineStatus `json:"status"`
}

// ReservationView is a reservation as presented to clients: the stored row
// with its effective status computed at read time.
type ReservationView struct {
	ID        int64                    `json:"id"`
	MachineID int64                    `json:"machine_id"`
	UserID    int64                    `json:"user_id"`
	Start     time.Time                `json:"start"`
	End       time.Time                `json:"end"`
	Status    domain.ReservationStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
	Machine   *MachineSummary          `json:"machine,omitempty"`
}

type Page struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
	Items []ReservationView `json:"items"`
}

func newView(r domain.Reservation, now time.Time) ReservationView {
	v := ReservationView{
		ID:        r.ID,
		MachineID: r.MachineID,
		UserID:    r.UserID,
		Start:     r.Start,
		End:       r.End,
		Status:    r.EffectiveStatus(now),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Machine != nil {
		v.Machine = &MachineSummary{
			ID:     r.Machine.ID,
			Code:   r.Machine.Code,
			Type:   r.Machine.Type,
			Status: r.Machine.Status,
		}
	}
	return v
}

func newViews(items []domain.Reservation, now time.Time) []ReservationView {
	out := make([]ReservationView, 0, len(items))
	for _, r := range items {
		out = append(out, newView(r, now))
	}
	return out
}

func newPage(items []domain.Reservation, total int64, page, limit int, now time.Time) *Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return &Page{
		Page:  page,
		Limit: limit,
		Total: total,
		Items: newViews(items, now),
	}
}
