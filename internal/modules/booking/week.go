package booking

import "time"

// weekBounds returns the scheduling week containing t as a half-open UTC
// interval. The week begins at 00:00 of the configured weekday in the policy
// timezone, so quota accounting follows the building's local calendar even
// though reservations are stored in UTC.
func weekBounds(t time.Time, weekStart time.Weekday, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	back := (int(lt.Weekday()) - int(weekStart) + 7) % 7
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -back)
	end := start.AddDate(0, 0, 7)
	return start.UTC(), end.UTC()
}
