package unavailableRepo

import (
	"context"
	"time"

	"reservo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoUnavailableRepo) find(ctx context.Context, filter bson.M) ([]models.UnavailableBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.UnavailableBlock
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoUnavailableRepo) List(ctx context.Context, f ListFilter) ([]models.UnavailableBlock, error) {
	filter := bson.M{"professionalId": f.ProfessionalID}
	if !f.To.IsZero() {
		filter["startDate"] = bson.M{"$lt": f.To}
	}
	if !f.From.IsZero() {
		// Recurring templates may repeat into the window.
		filter["$or"] = bson.A{
			bson.M{"endDate": bson.M{"$gt": f.From}},
			bson.M{"isRecurring": true},
		}
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	return r.find(ctx, filter)
}

func (r *mongoUnavailableRepo) ListOverlapping(ctx context.Context, professionalID string, from, to time.Time) ([]models.UnavailableBlock, error) {
	return r.find(ctx, bson.M{
		"professionalId": professionalID,
		"isRecurring":    false,
		"startDate":      bson.M{"$lt": to},
		"endDate":        bson.M{"$gt": from},
	})
}

func (r *mongoUnavailableRepo) ListRecurring(ctx context.Context, professionalID string, to time.Time) ([]models.UnavailableBlock, error) {
	return r.find(ctx, bson.M{
		"professionalId": professionalID,
		"isRecurring":    true,
		"startDate":      bson.M{"$lt": to},
	})
}

func (r *mongoUnavailableRepo) CountStartingIn(ctx context.Context, professionalID string, t models.UnavailableType, from, to time.Time, excludeID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"professionalId": professionalID,
		"type":           t,
		"startDate":      bson.M{"$gte": from, "$lt": to},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return r.coll.CountDocuments(ctx, filter)
}
