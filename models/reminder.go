package models

import "time"

// ReminderPayload is the asynq task body for appointment reminders.
type ReminderPayload struct {
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	ProID         string    `json:"proId"`
	SlotID        string    `json:"slotId"`
	SlotStart     time.Time `json:"slotStart"`
}
