package booking

import (
	"context"
	"time"

	appointmentRepo "slotwise/database/repository/appointment"
	"slotwise/models"
	"slotwise/services/availability"

	"go.uber.org/zap"
)

// Service drives booking and cancellation as sagas over the slot store and
// the appointment store. The two stores are independently owned; the only
// cross-store guarantee is the compensation logic in this package.
type Service interface {
	Book(ctx context.Context, userID, proID, slotID string) (*models.BookingResult, error)
	Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error)
	List(ctx context.Context, userID string) ([]models.Appointment, error)
}

// ReminderScheduler enqueues an appointment reminder after a successful
// booking. Implemented by the asynq-backed worker in cron/.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appt *models.Appointment, slot *models.Slot) error
}

// DefaultBookingService implements Service.
type DefaultBookingService struct {
	Slots        availability.Service
	Appointments appointmentRepo.AppointmentRepository
	Reminders    ReminderScheduler // optional
	Logger       *zap.Logger

	// HoldDuration is how long a slot stays HELD pending confirmation.
	HoldDuration time.Duration
	// CallTimeout bounds every individual store call made by a saga.
	CallTimeout time.Duration
}

func (s *DefaultBookingService) holdDuration() time.Duration {
	if s.HoldDuration > 0 {
		return s.HoldDuration
	}
	return 5 * time.Minute
}

func (s *DefaultBookingService) callTimeout() time.Duration {
	if s.CallTimeout > 0 {
		return s.CallTimeout
	}
	return 5 * time.Second
}
