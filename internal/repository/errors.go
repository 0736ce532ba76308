package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateSlot is returned when an insert trips the
	// uniq_booked_machine_slot index, i.e. another booked reservation
	// already holds the slot. This is the authoritative double-booking
	// guard; callers treat it as a slot conflict.
	ErrDuplicateSlot = errors.New("slot already booked")
)
