package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appointmentRepo "slotwise/database/repository/appointment"
	"slotwise/models"
	"slotwise/services/availability"
)

func TestCancelFreesBookedSlot(t *testing.T) {
	f := newSagaFixture()
	f.slots.addFreeSlot("slot-1", "pro-1", time.Now().Add(24*time.Hour))

	result, err := f.svc.Book(context.Background(), "user-1", "pro-1", "slot-1")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), result.Appointment.ID)
	require.NoError(t, err)
	require.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	require.Equal(t, models.SlotStatusFree, f.slots.status("slot-1"))
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newSagaFixture()
	f.slots.addFreeSlot("slot-1", "pro-1", time.Now().Add(24*time.Hour))

	result, err := f.svc.Book(context.Background(), "user-1", "pro-1", "slot-1")
	require.NoError(t, err)

	first, err := f.svc.Cancel(context.Background(), result.Appointment.ID)
	require.NoError(t, err)

	// Second cancel is a no-op returning the same record; the slot side
	// effect is not attempted again.
	second, err := f.svc.Cancel(context.Background(), result.Appointment.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.AppointmentStatusCancelled, second.Status)
	require.Equal(t, models.SlotStatusFree, f.slots.status("slot-1"))
}

func TestRecancelAfterRebookKeepsNewBooking(t *testing.T) {
	f := newSagaFixture()
	f.slots.addFreeSlot("slot-1", "pro-1", time.Now().Add(24*time.Hour))

	first, err := f.svc.Book(context.Background(), "user-1", "pro-1", "slot-1")
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), first.Appointment.ID)
	require.NoError(t, err)

	second, err := f.svc.Book(context.Background(), "user-2", "pro-1", "slot-1")
	require.NoError(t, err)

	// A stale re-cancel of the first appointment must not touch the slot,
	// which now belongs to the second booking.
	recancelled, err := f.svc.Cancel(context.Background(), first.Appointment.ID)
	require.NoError(t, err)
	require.Equal(t, models.AppointmentStatusCancelled, recancelled.Status)
	require.Equal(t, models.SlotStatusBooked, f.slots.status("slot-1"))

	stored, err := f.appts.GetByID(context.Background(), second.Appointment.ID)
	require.NoError(t, err)
	require.Equal(t, models.AppointmentStatusBooked, stored.Status)
}

func TestCancelUnknownAppointment(t *testing.T) {
	f := newSagaFixture()
	_, err := f.svc.Cancel(context.Background(), "missing")
	require.ErrorIs(t, err, appointmentRepo.ErrAppointmentNotFound)
}

func TestCancelValidation(t *testing.T) {
	f := newSagaFixture()
	_, err := f.svc.Cancel(context.Background(), "")
	var validation *availability.ValidationError
	require.ErrorAs(t, err, &validation)
}

// Full lifecycle: book, lose a concurrent race, cancel, rebook.
func TestBookCancelRebookScenario(t *testing.T) {
	f := newSagaFixture()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	f.slots.addFreeSlot("slot-s", "pro-p", start)

	// User U books S.
	result, err := f.svc.Book(context.Background(), "user-u", "pro-p", "slot-s")
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusBooked, result.Slot.Status)

	// Concurrent user U2 gets "slot unavailable".
	_, err = f.svc.Book(context.Background(), "user-u2", "pro-p", "slot-s")
	require.ErrorIs(t, err, ErrSlotUnavailable)

	// U cancels; the slot returns to FREE.
	cancelled, err := f.svc.Cancel(context.Background(), result.Appointment.ID)
	require.NoError(t, err)
	require.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	require.Equal(t, models.SlotStatusFree, f.slots.status("slot-s"))

	// U2 can now book the freed slot.
	rebook, err := f.svc.Book(context.Background(), "user-u2", "pro-p", "slot-s")
	require.NoError(t, err)
	require.Equal(t, models.SlotStatusBooked, rebook.Slot.Status)
	require.Equal(t, "user-u2", rebook.Appointment.UserID)
}
