package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *mongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Backstop against two live bookings on the exact same interval.
		{
			Keys: bson.D{{Key: "professionalId", Value: 1}, {Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("occupying_interval_unique").
				SetPartialFilterExpression(bson.M{"occupies": true}),
		},
		{
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "occupies", Value: 1}, {Key: "startDate", Value: 1}},
			Options: options.Index().SetName("professional_occupies_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "startDate", Value: -1}},
			Options: options.Index().SetName("client_start_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
