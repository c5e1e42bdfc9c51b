package availability

import (
	"context"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"

	"go.uber.org/zap"
)

// Service is the slot store boundary. It holds the authoritative state
// machine for every slot; other components only request transitions through
// it and never mutate slot records directly.
//
// Transition errors: slotRepo.ErrSlotNotFound for unknown ids,
// *slotRepo.ConflictError when the state-machine precondition did not hold.
// Retrying a conflicted call is safe; it re-fails without corrupting state.
type Service interface {
	CreateSlots(ctx context.Context, proID string, windows []models.SlotWindow) ([]models.Slot, error)
	ListSlots(ctx context.Context, proID string, from, to *time.Time) ([]models.Slot, error)
	GetSlot(ctx context.Context, slotID string) (*models.Slot, error)

	Hold(ctx context.Context, slotID string, holdDuration time.Duration) (*models.Slot, error)
	Confirm(ctx context.Context, slotID string) (*models.Slot, error)
	Release(ctx context.Context, slotID string) (*models.Slot, error)
	// FreeSlot returns a HELD or BOOKED slot to FREE in one conditional
	// update. Only the cancellation flow uses it.
	FreeSlot(ctx context.Context, slotID string) (*models.Slot, error)
}

// DefaultAvailabilityService implements Service.
type DefaultAvailabilityService struct {
	Repo   slotRepo.SlotRepository
	Logger *zap.Logger
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
