package slotRepo

import (
	"context"
	"log"
	"time"

	"slotwise/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSlotRepo implements SlotRepository using MongoDB.
type MongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new instance of MongoSlotRepo.
func NewMongoSlotRepo() SlotRepository {
	repo := &MongoSlotRepo{
		coll: database.AvailabilityDB().Collection("slots"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoSlotRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "proId", Value: 1}, {Key: "start", Value: 1}}},
		// Serves the reaper's expired-hold scan.
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "holdExpiresAt", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("warning: failed to ensure slot indexes: %v", err)
	}
}
