package appointmentRepo

import (
	"context"
	"log"
	"time"

	"slotwise/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() AppointmentRepository {
	repo := &MongoAppointmentRepo{
		coll: database.AppointmentsDB().Collection("appointments"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoAppointmentRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("warning: failed to ensure appointment indexes: %v", err)
	}
}
