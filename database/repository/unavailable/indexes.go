package unavailableRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoUnavailableRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "isRecurring", Value: 1}, {Key: "startDate", Value: 1}},
			Options: options.Index().SetName("professional_recurring_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "type", Value: 1}, {Key: "startDate", Value: 1}},
			Options: options.Index().SetName("professional_type_start_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create unavailable block indexes: %w", err)
	}
	return nil
}
