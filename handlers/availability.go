package handlers

import (
	"errors"
	"net/http"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/availability"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler exposes the slot store over HTTP.
type AvailabilityHandler struct {
	Service availability.Service
	Logger  *zap.Logger
	// HoldDuration is the default hold TTL when the request does not
	// specify one.
	HoldDuration time.Duration
}

func NewAvailabilityHandler(svc availability.Service, logger *zap.Logger, holdDuration time.Duration) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc, Logger: logger, HoldDuration: holdDuration}
}

// writeSlotError maps slot store errors onto HTTP statuses.
func writeSlotError(c *gin.Context, err error) {
	var validation *availability.ValidationError
	var conflict *slotRepo.ConflictError
	switch {
	case errors.As(err, &validation):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", validation.Message)
	case errors.Is(err, slotRepo.ErrSlotNotFound):
		utils.JSONError(c, http.StatusNotFound, "Slot not found", "")
	case errors.As(err, &conflict):
		utils.JSONError(c, http.StatusConflict, "Slot not available", "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// CreateSlotsHandler publishes bookable windows for a pro.
func (h *AvailabilityHandler) CreateSlotsHandler(c *gin.Context) {
	proID := c.Param("proId")
	var req models.CreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Slots array required", err.Error())
		return
	}

	created, err := h.Service.CreateSlots(c.Request.Context(), proID, req.Slots)
	if err != nil {
		writeSlotError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListSlotsHandler returns a pro's slots ordered by start time, optionally
// bounded by from/to (RFC 3339).
func (h *AvailabilityHandler) ListSlotsHandler(c *gin.Context) {
	proID := c.Param("proId")

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid 'from' timestamp", raw)
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid 'to' timestamp", raw)
			return
		}
		to = &t
	}

	slots, err := h.Service.ListSlots(c.Request.Context(), proID, from, to)
	if err != nil {
		writeSlotError(c, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, slots)
}

// HoldSlotHandler transitions FREE -> HELD.
func (h *AvailabilityHandler) HoldSlotHandler(c *gin.Context) {
	var req models.HoldRequest
	// Body is optional; an empty body means the default hold duration.
	_ = c.ShouldBindJSON(&req)

	duration := h.HoldDuration
	if req.HoldDurationMinutes > 0 {
		duration = time.Duration(req.HoldDurationMinutes) * time.Minute
	}

	slot, err := h.Service.Hold(c.Request.Context(), c.Param("id"), duration)
	if err != nil {
		writeSlotError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// ConfirmSlotHandler transitions HELD -> BOOKED.
func (h *AvailabilityHandler) ConfirmSlotHandler(c *gin.Context) {
	slot, err := h.Service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeSlotError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// ReleaseSlotHandler transitions HELD -> FREE.
func (h *AvailabilityHandler) ReleaseSlotHandler(c *gin.Context) {
	slot, err := h.Service.Release(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeSlotError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}
