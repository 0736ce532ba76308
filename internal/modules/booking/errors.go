package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/djdeepak14/laundry-backend/internal/domain"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrMachineNotFound    = errors.New("machine not found")
	ErrMachineUnavailable = errors.New("machine is not available for booking")
	ErrDryerUnavailable   = errors.New("no dryer available for the follow-on slot")
	ErrNotFound           = errors.New("reservation not found")
	ErrForbidden          = errors.New("not authorized for this reservation")
)

// SlotTakenError reports an overlap, either from the pre-check or from the
// unique index firing at commit. It carries the conflicting interval so the
// client can offer another slot.
type SlotTakenError struct {
	MachineID int64
	Start     time.Time
	End       time.Time
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("machine %d already booked %s to %s",
		e.MachineID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// QuotaExceededError reports a weekly cap violation along with the first
// instant the user becomes eligible again.
type QuotaExceededError struct {
	MachineType   domain.MachineType
	CapHours      int
	NextWeekStart time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("weekly %s quota of %dh exceeded, next eligible week starts %s",
		e.MachineType, e.CapHours, e.NextWeekStart.Format(time.RFC3339))
}
