package handlers

import (
	"errors"
	"net/http"

	appointmentRepo "slotwise/database/repository/appointment"
	"slotwise/models"
	"slotwise/services/availability"
	"slotwise/services/booking"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes the booking saga over HTTP.
type AppointmentHandler struct {
	Service booking.Service
	Logger  *zap.Logger
}

func NewAppointmentHandler(svc booking.Service, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: svc, Logger: logger}
}

// BookAppointmentHandler runs the booking saga for the authenticated user.
func (h *AppointmentHandler) BookAppointmentHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Missing fields", err.Error())
		return
	}

	result, err := h.Service.Book(c.Request.Context(), userID, req.ProID, req.SlotID)
	if err != nil {
		var validation *availability.ValidationError
		switch {
		case errors.As(err, &validation):
			utils.JSONError(c, http.StatusBadRequest, "Missing fields", validation.Message)
		case errors.Is(err, booking.ErrSlotNotFound):
			utils.JSONError(c, http.StatusNotFound, "Slot not found", "")
		case errors.Is(err, booking.ErrSlotUnavailable):
			utils.JSONError(c, http.StatusConflict, "Slot already booked", "")
		default:
			utils.JSONError(c, http.StatusInternalServerError, "Booking failed", "")
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListAppointmentsHandler returns appointments ordered by recency, optionally
// filtered by userId.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	appts, err := h.Service.List(c.Request.Context(), c.Query("userId"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// CancelAppointmentHandler cancels an appointment and frees its slot.
// Cancelling twice returns the same record.
func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	appt, err := h.Service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		var validation *availability.ValidationError
		switch {
		case errors.As(err, &validation):
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", validation.Message)
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			utils.JSONError(c, http.StatusNotFound, "Appointment not found", "")
		default:
			utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
		}
		return
	}
	c.JSON(http.StatusOK, appt)
}
