package booking

import (
	"time"

	"github.com/djdeepak14/laundry-backend/internal/domain"
)

// overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching endpoints do not conflict, so a slot
// ending at 11:00 is compatible with one starting at 11:00. The same predicate
// backs the SQL pre-check and the storage index.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// hasConflict reports whether any booked reservation in the list overlaps the
// candidate interval. Callers guarantee start < end.
func hasConflict(existing []domain.Reservation, start, end time.Time) bool {
	for _, r := range existing {
		if r.Status != domain.ReservationBooked {
			continue
		}
		if overlaps(r.Start, r.End, start, end) {
			return true
		}
	}
	return false
}
