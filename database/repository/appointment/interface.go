// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"

	"slotwise/models"
)

// ErrAppointmentNotFound is returned when no appointment exists for the given id.
var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentRepository owns appointment records. Records are never deleted;
// cancellation flips the status and keeps the row as an audit trail.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// List returns appointments ordered by recency. An empty userID lists all.
	List(ctx context.Context, userID string) ([]models.Appointment, error)
	// MarkCancelled conditionally transitions BOOKED -> CANCELLED and
	// returns the updated record. An already-cancelled appointment comes
	// back with transitioned false so callers can skip side effects that
	// only a real transition earns.
	MarkCancelled(ctx context.Context, id string) (appt *models.Appointment, transitioned bool, err error)
}
