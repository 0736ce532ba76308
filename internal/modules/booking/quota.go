package booking

import (
	"time"

	"github.com/djdeepak14/laundry-backend/internal/domain"
)

// checkQuota compares already-used plus requested hours against the weekly
// cap. A cap of zero or below means the type is uncapped. nextWeekStart is the
// hint surfaced to the user on rejection.
func checkQuota(machineType domain.MachineType, used, additional time.Duration, capHours int, nextWeekStart time.Time) error {
	if capHours <= 0 {
		return nil
	}
	if used+additional > time.Duration(capHours)*time.Hour {
		return &QuotaExceededError{
			MachineType:   machineType,
			CapHours:      capHours,
			NextWeekStart: nextWeekStart,
		}
	}
	return nil
}
