package availability

import (
	"context"
	"time"

	"slotwise/models"

	"go.uber.org/zap"
)

// CreateSlots publishes each window as an independent FREE slot. The batch is
// not atomic; a bad window fails the whole request up front, but storage-side
// partial success on insert is acceptable.
func (s *DefaultAvailabilityService) CreateSlots(ctx context.Context, proID string, windows []models.SlotWindow) ([]models.Slot, error) {
	if proID == "" {
		return nil, NewValidationError("proId is required")
	}
	if len(windows) == 0 {
		return nil, NewValidationError("slots array required")
	}
	for i, w := range windows {
		if w.Start.IsZero() || w.End.IsZero() {
			return nil, NewValidationError("slot %d: start and end are required", i)
		}
		if !w.Start.Before(w.End) {
			return nil, NewValidationError("slot %d: start must be before end", i)
		}
	}

	slots := make([]models.Slot, len(windows))
	for i, w := range windows {
		slots[i] = models.Slot{
			ProID: proID,
			Start: w.Start.UTC(),
			End:   w.End.UTC(),
		}
	}

	created, err := s.Repo.CreateMany(ctx, slots)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("published slots", zap.String("proId", proID), zap.Int("count", len(created)))
	return created, nil
}

func (s *DefaultAvailabilityService) ListSlots(ctx context.Context, proID string, from, to *time.Time) ([]models.Slot, error) {
	if proID == "" {
		return nil, NewValidationError("proId is required")
	}
	return s.Repo.ListByProID(ctx, proID, from, to)
}

func (s *DefaultAvailabilityService) GetSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	return s.Repo.GetByID(ctx, slotID)
}

func (s *DefaultAvailabilityService) Hold(ctx context.Context, slotID string, holdDuration time.Duration) (*models.Slot, error) {
	if holdDuration <= 0 {
		return nil, NewValidationError("hold duration must be positive")
	}
	expiresAt := s.now().Add(holdDuration)
	slot, err := s.Repo.Hold(ctx, slotID, expiresAt)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("slot held",
		zap.String("slotId", slotID),
		zap.Time("holdExpiresAt", expiresAt))
	return slot, nil
}

func (s *DefaultAvailabilityService) Confirm(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Repo.Confirm(ctx, slotID, s.now())
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("slot booked", zap.String("slotId", slotID))
	return slot, nil
}

func (s *DefaultAvailabilityService) Release(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Repo.Release(ctx, slotID)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("slot released", zap.String("slotId", slotID))
	return slot, nil
}

func (s *DefaultAvailabilityService) FreeSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Repo.Free(ctx, slotID)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("slot freed", zap.String("slotId", slotID))
	return slot, nil
}
