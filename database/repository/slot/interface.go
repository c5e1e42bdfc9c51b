// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotwise/models"
)

// ErrSlotNotFound is returned when no slot exists for the given id.
var ErrSlotNotFound = errors.New("slot not found")

// ConflictError is returned when a transition's precondition did not hold,
// e.g. holding a slot that is no longer FREE. Status carries the state the
// slot was observed in after the conditional update missed.
type ConflictError struct {
	SlotID string
	Status string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s not in required state (current: %s)", e.SlotID, e.Status)
}

// SlotRepository owns slot records. Every transition method performs a single
// atomic conditional update keyed on the current status; there is no
// read-then-write window anywhere in this interface.
type SlotRepository interface {
	CreateMany(ctx context.Context, slots []models.Slot) ([]models.Slot, error)
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	ListByProID(ctx context.Context, proID string, from, to *time.Time) ([]models.Slot, error)

	// Hold transitions FREE -> HELD, stamping holdExpiresAt.
	Hold(ctx context.Context, id string, expiresAt time.Time) (*models.Slot, error)
	// Confirm transitions HELD -> BOOKED, clearing holdExpiresAt. A hold
	// already past its expiry is rejected with ConflictError even if the
	// reaper has not swept it yet.
	Confirm(ctx context.Context, id string, now time.Time) (*models.Slot, error)
	// Release transitions HELD -> FREE, clearing holdExpiresAt.
	Release(ctx context.Context, id string) (*models.Slot, error)
	// Free transitions HELD or BOOKED -> FREE. Reserved for appointment
	// cancellation, where the slot is normally BOOKED.
	Free(ctx context.Context, id string) (*models.Slot, error)

	// FindExpiredHeld lists slots eligible for reaping.
	FindExpiredHeld(ctx context.Context, now time.Time, limit int64) ([]models.Slot, error)
}
