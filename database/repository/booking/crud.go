package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"reservo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.Occupies = b.Status.Occupies()
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update writes the mutable fields of b. Identity fields (client,
// professional, service, creation) are never rewritten.
func (r *mongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b.Occupies = b.Status.Occupies()
	set := bson.M{
		"startDate":          b.StartDate,
		"endDate":            b.EndDate,
		"status":             b.Status,
		"occupies":           b.Occupies,
		"price":              b.Price,
		"notes":              b.Notes,
		"internalNotes":      b.InternalNotes,
		"cancellationReason": b.CancellationReason,
		"cancelledBy":        b.CancelledBy,
		"updatedAt":          b.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if b.CancelledAt != nil {
		set["cancelledAt"] = b.CancelledAt
	} else {
		update["$unset"] = bson.M{"cancelledAt": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": b.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
