// File: slotwise/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotwise/config"
	"slotwise/cron"
	"slotwise/database"
	appointmentRepo "slotwise/database/repository/appointment"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/handlers"
	"slotwise/middleware"
	"slotwise/routes"
	"slotwise/services/availability"
	"slotwise/services/booking"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitLockClient()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()

	// services.
	availabilityService := &availability.DefaultAvailabilityService{
		Repo:   slots,
		Logger: logger,
	}

	bookingService := &booking.DefaultBookingService{
		Slots:        availabilityService,
		Appointments: appointments,
		Reminders:    cron.NewReminderScheduler(),
		Logger:       logger,
		HoldDuration: config.HoldDuration(),
		CallTimeout:  config.StoreTimeout(),
	}

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, logger, config.HoldDuration())
	appointmentHandler := handlers.NewAppointmentHandler(bookingService, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		CreateSlotsHandler: availabilityHandler.CreateSlotsHandler,
		ListSlotsHandler:   availabilityHandler.ListSlotsHandler,
		HoldSlotHandler:    availabilityHandler.HoldSlotHandler,
		ConfirmSlotHandler: availabilityHandler.ConfirmSlotHandler,
		ReleaseSlotHandler: availabilityHandler.ReleaseSlotHandler,

		BookAppointmentHandler:   appointmentHandler.BookAppointmentHandler,
		ListAppointmentsHandler:  appointmentHandler.ListAppointmentsHandler,
		CancelAppointmentHandler: appointmentHandler.CancelAppointmentHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background workers: the expired-hold reaper and the reminder worker.
	reaper := &cron.Reaper{
		Repo:      slots,
		Logger:    logger,
		Interval:  time.Duration(config.AppConfig.ReaperIntervalSec) * time.Second,
		BatchSize: int64(config.AppConfig.ReaperBatchSize),
	}
	reaper.Start()
	cron.InitReminderWorker(appointments)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	reaper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
