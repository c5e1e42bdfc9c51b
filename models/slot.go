package models

import "time"

// Slot status state machine: FREE -> HELD -> BOOKED, HELD -> FREE.
// Every transition is a single atomic conditional update in the slot store.
const (
	SlotStatusFree   = "FREE"
	SlotStatusHeld   = "HELD"
	SlotStatusBooked = "BOOKED"
)

// Slot represents a pro's bookable time window.
type Slot struct {
	ID     string    `bson:"id" json:"id"`
	ProID  string    `bson:"proId" json:"proId"`
	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	Status string    `bson:"status" json:"status"`
	// HoldExpiresAt is set exactly while Status is HELD and cleared on
	// every transition out of HELD.
	HoldExpiresAt *time.Time `bson:"holdExpiresAt,omitempty" json:"holdExpiresAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// SlotWindow is a single (start, end) window in a slot-creation request.
type SlotWindow struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// CreateSlotsRequest defines the payload for publishing bookable windows.
type CreateSlotsRequest struct {
	Slots []SlotWindow `json:"slots" binding:"required"`
}

// HoldRequest carries the optional hold TTL override, in minutes.
type HoldRequest struct {
	HoldDurationMinutes int `json:"holdDurationMinutes"`
}
