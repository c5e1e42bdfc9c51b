package booking

import "errors"

// User-visible booking outcomes. Internal saga step identity is never
// exposed; every mid-saga failure collapses into one of these.
var (
	// ErrSlotUnavailable means the slot was already held or booked.
	ErrSlotUnavailable = errors.New("slot no longer available")
	// ErrSlotNotFound means the requested slot id does not exist.
	ErrSlotNotFound = errors.New("slot does not exist")
	// ErrBookingFailed covers every other saga failure after compensation.
	ErrBookingFailed = errors.New("booking failed, try again")
)
