package scheduleRepo

import (
	"context"
	"time"

	"reservo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoScheduleRepo) GetActiveByProfessional(ctx context.Context, professionalID string) (*models.WeeklySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"professionalId": professionalID,
		"isActive":       true,
		"deletedAt":      bson.M{"$exists": false},
	}
	var s models.WeeklySchedule
	if err := r.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoScheduleRepo) ListByProfessional(ctx context.Context, professionalID string) ([]models.WeeklySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"professionalId": professionalID, "deletedAt": bson.M{"$exists": false}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.WeeklySchedule
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
