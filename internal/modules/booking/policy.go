package booking

import (
	"fmt"
	"time"

	"github.com/djdeepak14/laundry-backend/internal/config"
	"github.com/djdeepak14/laundry-backend/internal/domain"
)

// Policy is the reservation policy supplied at startup. The algorithm never
// hard-codes slot length, caps, or the washer→dryer chain; they all come from
// here.
type Policy struct {
	SlotDuration   time.Duration
	WeeklyCapHours map[domain.MachineType]int
	WeekStart      time.Weekday
	Location       *time.Location
	DependentTypes map[domain.MachineType]domain.MachineType
}

// NewPolicy builds a Policy from the booking section of the config file.
func NewPolicy(cfg config.BookingConfig) (Policy, error) {
	// slot boundaries come from Truncate, which aligns against the Unix
	// epoch; the grid only lands on midnight if the duration divides a day
	slot := time.Duration(cfg.SlotDurationMinutes) * time.Minute
	if slot <= 0 || (24*time.Hour)%slot != 0 {
		return Policy{}, fmt.Errorf("slot_duration_minutes: %d does not divide a day evenly", cfg.SlotDurationMinutes)
	}

	weekStart, err := config.ParseWeekday(cfg.WeekStart)
	if err != nil {
		return Policy{}, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	caps := make(map[domain.MachineType]int, len(cfg.WeeklyCapHours))
	for t, h := range cfg.WeeklyCapHours {
		mt := domain.MachineType(t)
		if !mt.Valid() {
			return Policy{}, fmt.Errorf("weekly_cap_hours: unknown machine type %q", t)
		}
		caps[mt] = h
	}

	deps := make(map[domain.MachineType]domain.MachineType, len(cfg.DependentTypes))
	for primary, dependent := range cfg.DependentTypes {
		pt, dt := domain.MachineType(primary), domain.MachineType(dependent)
		if !pt.Valid() || !dt.Valid() {
			return Policy{}, fmt.Errorf("dependent_types: unknown machine type in %q: %q", primary, dependent)
		}
		deps[pt] = dt
	}

	return Policy{
		SlotDuration:   slot,
		WeeklyCapHours: caps,
		WeekStart:      weekStart,
		Location:       loc,
		DependentTypes: deps,
	}, nil
}
