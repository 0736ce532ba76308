package booking

import (
	"context"
	"errors"
	"time"

	"github.com/djdeepak14/laundry-backend/internal/domain"
	"github.com/djdeepak14/laundry-backend/internal/repository"
)

// allocateDependent picks a machine of the dependent type that is free for
// [start, end). Candidates arrive in id order from the repository; the machine
// whose code index matches the primary's (W2 prefers D2) is tried first, then
// the rest in order. The first free candidate wins, which makes allocation
// reproducible. Returns ErrDryerUnavailable when every candidate conflicts.
func allocateDependent(ctx context.Context, tx *repository.Store, t domain.MachineType, start, end time.Time, preferredIndex string) (*domain.Machine, error) {
	candidates, err := tx.Machines.ListBookable(ctx, t)
	if err != nil {
		return nil, err
	}

	if preferredIndex != "" {
		for i, m := range candidates {
			if machineIndex(m.Code) == preferredIndex {
				reordered := make([]domain.Machine, 0, len(candidates))
				reordered = append(reordered, m)
				reordered = append(reordered, candidates[:i]...)
				reordered = append(reordered, candidates[i+1:]...)
				candidates = reordered
				break
			}
		}
	}

	for i := range candidates {
		m := candidates[i]
		_, err := tx.Reservations.FindOverlapping(ctx, m.ID, start, end)
		if errors.Is(err, repository.ErrNotFound) {
			return &m, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, ErrDryerUnavailable
}

// machineIndex extracts the trailing digit run of a machine code, e.g.
// "W2" -> "2", "DRY-10" -> "10". Empty when the code has no trailing digits.
func machineIndex(code string) string {
	i := len(code)
	for i > 0 && code[i-1] >= '0' && code[i-1] <= '9' {
		i--
	}
	return code[i:]
}
