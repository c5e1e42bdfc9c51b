// File: database/repository/appointment/crud.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotwise/models"
)

func (repo *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.Status == "" {
		appt.Status = models.AppointmentStatusBooked
	}
	appt.CreatedAt = now
	appt.UpdatedAt = now

	if _, err := repo.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("error creating appointment: %w", err)
	}
	return nil
}

func (repo *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (repo *MongoAppointmentRepo) List(ctx context.Context, userID string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

func (repo *MongoAppointmentRepo) MarkCancelled(ctx context.Context, id string) (*models.Appointment, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Conditional on BOOKED: a second cancel must not report a fresh
	// transition, or its caller would free a slot that may since have
	// been rebooked by someone else.
	filter := bson.M{"id": id, "status": models.AppointmentStatusBooked}
	update := bson.M{
		"$set": bson.M{
			"status":    models.AppointmentStatusCancelled,
			"updatedAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var appt models.Appointment
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&appt)
	if err == nil {
		return &appt, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, fmt.Errorf("error cancelling appointment %s: %w", id, err)
	}

	var current models.Appointment
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, ErrAppointmentNotFound
		}
		return nil, false, fmt.Errorf("error fetching appointment %s after failed cancel: %w", id, err)
	}
	return &current, false, nil
}
