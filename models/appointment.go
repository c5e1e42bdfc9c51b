package models

import "time"

const (
	AppointmentStatusBooked    = "BOOKED"
	AppointmentStatusCancelled = "CANCELLED"
)

// Appointment represents a confirmed reservation of a slot by a user.
// It references its slot by id only; there is no cross-store foreign key.
type Appointment struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	ProID     string    `bson:"proId" json:"proId"`
	SlotID    string    `bson:"slotId" json:"slotId"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BookingRequest defines the payload to book a slot.
type BookingRequest struct {
	ProID  string `json:"proId" binding:"required"`
	SlotID string `json:"slotId" binding:"required"`
}

// BookingResult is what a caller gets back on a fully successful booking.
type BookingResult struct {
	Appointment *Appointment `json:"appointment"`
	Slot        *Slot        `json:"slot"`
}
