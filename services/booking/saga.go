package booking

import (
	"context"
	"errors"
	"net"

	appointmentRepo "slotwise/database/repository/appointment"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// isUnavailable reports whether an error means the downstream store was
// unreachable or timed out, i.e. the outcome of the call is unknown.
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Book runs the two-phase booking saga:
//
//	hold slot -> create appointment -> confirm slot
//
// The slot is reserved before the appointment row is written, so a crash
// mid-saga strands at worst a HELD slot, which the reaper reclaims. Later
// failures compensate backwards: a failed appointment write releases the
// hold, a failed confirm cancels the orphan appointment.
func (s *DefaultBookingService) Book(ctx context.Context, userID, proID, slotID string) (*models.BookingResult, error) {
	if userID == "" {
		return nil, availability.NewValidationError("userId is required")
	}
	if proID == "" {
		return nil, availability.NewValidationError("proId is required")
	}
	if slotID == "" {
		return nil, availability.NewValidationError("slotId is required")
	}

	// Phase 1: take the hold. Nothing to compensate on any failure here —
	// a conflicted hold changed no state and a timed-out hold at worst
	// strands a HELD slot for the reaper.
	holdCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	_, err := s.Slots.Hold(holdCtx, slotID, s.holdDuration())
	cancel()
	if err != nil {
		var conflict *slotRepo.ConflictError
		switch {
		case errors.As(err, &conflict):
			return nil, ErrSlotUnavailable
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		default:
			s.Logger.Error("hold failed",
				zap.String("slotId", slotID), zap.Error(err))
			return nil, ErrBookingFailed
		}
	}

	// Phase 2: write the appointment record. The id is fixed up front so a
	// timed-out write can be verified instead of blindly compensated.
	appt := &models.Appointment{
		ID:     uuid.New().String(),
		UserID: userID,
		ProID:  proID,
		SlotID: slotID,
		Status: models.AppointmentStatusBooked,
	}
	createCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	err = s.Appointments.Create(createCtx, appt)
	cancel()
	if err != nil {
		if isUnavailable(err) && s.appointmentExists(ctx, appt.ID) {
			// The write landed server-side; carry on.
			s.Logger.Warn("appointment create timed out but was persisted",
				zap.String("appointmentId", appt.ID))
		} else {
			s.Logger.Error("appointment create failed, releasing hold",
				zap.String("slotId", slotID), zap.Error(err))
			s.releaseHold(ctx, slotID)
			return nil, ErrBookingFailed
		}
	}

	// Phase 3: confirm the hold into a booking.
	confirmCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	confirmed, err := s.Slots.Confirm(confirmCtx, slotID)
	cancel()
	if err != nil {
		if isUnavailable(err) {
			// Unknown outcome: re-check the slot before compensating so a
			// confirm that actually landed is not undone.
			if verified := s.verifyBooked(ctx, slotID); verified != nil {
				confirmed = verified
				err = nil
			}
		}
		if err != nil {
			s.Logger.Error("confirm failed, cancelling orphan appointment",
				zap.String("slotId", slotID),
				zap.String("appointmentId", appt.ID),
				zap.Error(err))
			s.compensateConfirmFailure(ctx, appt.ID, slotID)
			return nil, ErrBookingFailed
		}
	}

	if s.Reminders != nil {
		if err := s.Reminders.ScheduleReminder(ctx, appt, confirmed); err != nil {
			s.Logger.Warn("failed to schedule reminder",
				zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}

	s.Logger.Info("booking confirmed",
		zap.String("appointmentId", appt.ID),
		zap.String("slotId", slotID),
		zap.String("userId", userID))
	return &models.BookingResult{Appointment: appt, Slot: confirmed}, nil
}

// List returns appointments ordered by recency, optionally for one user.
func (s *DefaultBookingService) List(ctx context.Context, userID string) ([]models.Appointment, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()
	return s.Appointments.List(listCtx, userID)
}

func (s *DefaultBookingService) appointmentExists(ctx context.Context, id string) bool {
	checkCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()
	_, err := s.Appointments.GetByID(checkCtx, id)
	return err == nil
}

// verifyBooked returns the slot if it reached BOOKED despite the failed call.
func (s *DefaultBookingService) verifyBooked(ctx context.Context, slotID string) *models.Slot {
	checkCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()
	slot, err := s.Slots.GetSlot(checkCtx, slotID)
	if err != nil || slot.Status != models.SlotStatusBooked {
		return nil
	}
	return slot
}

// releaseHold is the compensating action for a failed appointment write. A
// Conflict here means the reaper beat us to it, which is fine; any other
// failure leaves the hold for the reaper and is logged as an inconsistency.
func (s *DefaultBookingService) releaseHold(ctx context.Context, slotID string) {
	relCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()
	if _, err := s.Slots.Release(relCtx, slotID); err != nil {
		var conflict *slotRepo.ConflictError
		if errors.As(err, &conflict) {
			s.Logger.Debug("hold already gone during compensation",
				zap.String("slotId", slotID), zap.String("status", conflict.Status))
			return
		}
		s.Logger.Warn("compensating release failed, hold left for reaper",
			zap.String("slotId", slotID), zap.Error(err))
	}
}

// compensateConfirmFailure cancels the orphan appointment created in phase 2
// and makes a best-effort attempt to release the hold. Failures are logged,
// never surfaced as a second error.
func (s *DefaultBookingService) compensateConfirmFailure(ctx context.Context, appointmentID, slotID string) {
	cancelCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	_, _, err := s.Appointments.MarkCancelled(cancelCtx, appointmentID)
	cancel()
	if err != nil && !errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		s.Logger.Error("failed to cancel orphan appointment, needs reconciliation",
			zap.String("appointmentId", appointmentID), zap.Error(err))
	}
	s.releaseHold(ctx, slotID)
}
