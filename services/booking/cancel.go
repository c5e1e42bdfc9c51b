package booking

import (
	"context"
	"errors"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/availability"

	"go.uber.org/zap"
)

// Cancel marks the appointment CANCELLED, then frees its slot. The
// appointment's cancelled status is the authoritative outcome for the
// caller; a conflicted slot release (already freed by the reaper, or never
// booked) is logged and swallowed.
func (s *DefaultBookingService) Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	if appointmentID == "" {
		return nil, availability.NewValidationError("appointmentId is required")
	}

	markCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	appt, transitioned, err := s.Appointments.MarkCancelled(markCtx, appointmentID)
	cancel()
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// Already CANCELLED: the slot side effect was spent on the first
		// cancel and the slot may since have been rebooked.
		s.Logger.Debug("appointment already cancelled",
			zap.String("appointmentId", appointmentID))
		return appt, nil
	}

	freeCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()
	if _, err := s.Slots.FreeSlot(freeCtx, appt.SlotID); err != nil {
		var conflict *slotRepo.ConflictError
		switch {
		case errors.As(err, &conflict):
			s.Logger.Debug("slot already free on cancellation",
				zap.String("slotId", appt.SlotID),
				zap.String("status", conflict.Status))
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			s.Logger.Warn("cancelled appointment references unknown slot",
				zap.String("appointmentId", appointmentID),
				zap.String("slotId", appt.SlotID))
		default:
			s.Logger.Warn("failed to free slot on cancellation, needs reconciliation",
				zap.String("slotId", appt.SlotID), zap.Error(err))
		}
	}

	s.Logger.Info("appointment cancelled", zap.String("appointmentId", appointmentID))
	return appt, nil
}
