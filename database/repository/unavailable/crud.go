package unavailableRepo

import (
	"context"
	"fmt"
	"time"

	"reservo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoUnavailableRepo) Create(ctx context.Context, b *models.UnavailableBlock) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert unavailable block: %w", err)
	}
	return nil
}

func (r *mongoUnavailableRepo) GetByID(ctx context.Context, id string) (*models.UnavailableBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.UnavailableBlock
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update writes the mutable fields of b; a nil pattern is unset.
func (r *mongoUnavailableRepo) Update(ctx context.Context, b *models.UnavailableBlock) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"startDate":   b.StartDate,
		"endDate":     b.EndDate,
		"type":        b.Type,
		"reason":      b.Reason,
		"isRecurring": b.IsRecurring,
		"updatedAt":   b.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if b.RecurrencePattern != nil {
		set["recurrencePattern"] = b.RecurrencePattern
	} else {
		update["$unset"] = bson.M{"recurrencePattern": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": b.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update unavailable block %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoUnavailableRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete unavailable block %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
