package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates every route handler for registration.
type HandlerBundle struct {
	// Availability endpoints.
	CreateSlotsHandler gin.HandlerFunc
	ListSlotsHandler   gin.HandlerFunc
	HoldSlotHandler    gin.HandlerFunc
	ConfirmSlotHandler gin.HandlerFunc
	ReleaseSlotHandler gin.HandlerFunc

	// Appointment endpoints.
	BookAppointmentHandler   gin.HandlerFunc
	ListAppointmentsHandler  gin.HandlerFunc
	CancelAppointmentHandler gin.HandlerFunc
}
