package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"slotwise/config"
	appointmentRepo "slotwise/database/repository/appointment"
	"slotwise/models"

	"github.com/hibiken/asynq"
)

const TypeAppointmentReminder = "reminder:appointment"

// AsynqReminderScheduler enqueues reminder tasks for confirmed bookings.
// It implements booking.ReminderScheduler.
type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

func NewReminderScheduler() *AsynqReminderScheduler {
	return &AsynqReminderScheduler{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisReminderDB,
		}),
		lead: time.Duration(config.AppConfig.ReminderLeadMins) * time.Minute,
	}
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, appt *models.Appointment, slot *models.Slot) error {
	payload, err := json.Marshal(models.ReminderPayload{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		ProID:         appt.ProID,
		SlotID:        slot.ID,
		SlotStart:     slot.Start,
	})
	if err != nil {
		return err
	}

	processAt := slot.Start.Add(-s.lead)
	if processAt.Before(time.Now()) {
		// Slot starts within the lead window; fire right away.
		processAt = time.Now()
	}

	task := asynq.NewTask(TypeAppointmentReminder, payload)
	_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessAt(processAt))
	return err
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(apptRepo appointmentRepo.AppointmentRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentReminder, handleReminderTask(apptRepo))

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(apptRepo appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		// Cancellations do not dequeue their reminder; drop it here instead.
		appt, err := apptRepo.GetByID(ctx, p.AppointmentID)
		if err != nil {
			log.Printf("[ReminderHandler] appointment %s lookup failed: %v", p.AppointmentID, err)
			return err
		}
		if appt.Status != models.AppointmentStatusBooked {
			log.Printf("[ReminderHandler] appointment %s is %s, skipping reminder", appt.ID, appt.Status)
			return nil
		}

		log.Printf("[ReminderHandler] reminder: user %s has an appointment with pro %s at %s",
			appt.UserID, appt.ProID, p.SlotStart.Format(time.RFC3339))
		return nil
	}
}
