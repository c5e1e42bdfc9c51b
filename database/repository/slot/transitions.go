// File: database/repository/slot/transitions.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotwise/models"
)

// transition runs one atomic conditional update. The filter carries the full
// precondition, so the status check and the write can never race. When the
// filter misses, a follow-up lookup distinguishes a missing slot from a
// precondition conflict.
func (repo *MongoSlotRepo) transition(ctx context.Context, id string, filter, update bson.M) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var slot models.Slot
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if err == nil {
		return &slot, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("error transitioning slot %s: %w", id, err)
	}

	var current models.Slot
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("error fetching slot %s after failed transition: %w", id, err)
	}
	return nil, &ConflictError{SlotID: id, Status: current.Status}
}

func (repo *MongoSlotRepo) Hold(ctx context.Context, id string, expiresAt time.Time) (*models.Slot, error) {
	filter := bson.M{"id": id, "status": models.SlotStatusFree}
	update := bson.M{
		"$set": bson.M{
			"status":        models.SlotStatusHeld,
			"holdExpiresAt": expiresAt,
			"updatedAt":     time.Now().UTC(),
		},
	}
	return repo.transition(ctx, id, filter, update)
}

func (repo *MongoSlotRepo) Confirm(ctx context.Context, id string, now time.Time) (*models.Slot, error) {
	// The expiry guard makes a confirm racing the reaper lose either way:
	// once the hold has lapsed the filter misses regardless of whether the
	// sweep has happened.
	filter := bson.M{
		"id":            id,
		"status":        models.SlotStatusHeld,
		"holdExpiresAt": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusBooked, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"holdExpiresAt": ""},
	}
	return repo.transition(ctx, id, filter, update)
}

func (repo *MongoSlotRepo) Release(ctx context.Context, id string) (*models.Slot, error) {
	filter := bson.M{"id": id, "status": models.SlotStatusHeld}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusFree, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"holdExpiresAt": ""},
	}
	return repo.transition(ctx, id, filter, update)
}

func (repo *MongoSlotRepo) Free(ctx context.Context, id string) (*models.Slot, error) {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": bson.A{models.SlotStatusHeld, models.SlotStatusBooked}},
	}
	update := bson.M{
		"$set":   bson.M{"status": models.SlotStatusFree, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"holdExpiresAt": ""},
	}
	return repo.transition(ctx, id, filter, update)
}
