// File: database/repository/slot/crud.go
package slotRepo

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

func (repo *MongoSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	docs := make([]interface{}, len(slots))
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.New().String()
		}
		slots[i].Status = models.SlotStatusFree
		slots[i].HoldExpiresAt = nil
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
		docs[i] = slots[i]
	}

	// Unordered insert: creation of a batch is not atomic, partial success
	// is acceptable.
	opts := options.InsertMany().SetOrdered(false)
	if _, err := repo.coll.InsertMany(ctx, docs, opts); err != nil {
		return nil, fmt.Errorf("error creating slots: %w", err)
	}
	return slots, nil
}

func (repo *MongoSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("error fetching slot %s: %w", id, err)
	}
	return &slot, nil
}

func (repo *MongoSlotRepo) ListByProID(ctx context.Context, proID string, from, to *time.Time) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"proId": proID}
	if from != nil || to != nil {
		startRange := bson.M{}
		if from != nil {
			startRange["$gte"] = *from
		}
		if to != nil {
			startRange["$lte"] = *to
		}
		filter["start"] = startRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing slots for pro %s: %w", proID, err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding slots: %w", err)
	}
	return slots, nil
}

func (repo *MongoSlotRepo) FindExpiredHeld(ctx context.Context, now time.Time, limit int64) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":        models.SlotStatusHeld,
		"holdExpiresAt": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "holdExpiresAt", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding expired holds: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding expired holds: %w", err)
	}
	return slots, nil
}
