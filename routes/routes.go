package routes

import (
	"net/http"
	"time"

	"slotwise/handlers"
	"slotwise/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers the slot store endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.GET("/:proId", hb.ListSlotsHandler)
		api.POST("/:proId/slots", hb.CreateSlotsHandler)

		// Transition endpoints; each maps to one atomic conditional update.
		api.PATCH("/slots/:id/hold", hb.HoldSlotHandler)
		api.PATCH("/slots/:id/book", hb.ConfirmSlotHandler)
		api.PATCH("/slots/:id/release", hb.ReleaseSlotHandler)
	}
}

// RegisterAppointmentRoutes registers the booking saga endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.IdentityMiddleware())
		api.POST("", hb.BookAppointmentHandler)
		api.GET("", hb.ListAppointmentsHandler)
		api.DELETE("/:id", hb.CancelAppointmentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "slotwise"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
}
