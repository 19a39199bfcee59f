package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"reservo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoScheduleRepo) Create(ctx context.Context, s *models.WeeklySchedule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrActiveExists
		}
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepo) GetByID(ctx context.Context, id string) (*models.WeeklySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.WeeklySchedule
	filter := bson.M{"id": id, "deletedAt": bson.M{"$exists": false}}
	if err := r.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoScheduleRepo) Update(ctx context.Context, s *models.WeeklySchedule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"days":      s.Days,
		"isActive":  s.IsActive,
		"updatedAt": s.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": s.ID, "deletedAt": bson.M{"$exists": false}}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrActiveExists
		}
		return fmt.Errorf("failed to update schedule %s: %w", s.ID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoScheduleRepo) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"deletedAt": now, "isActive": false, "updatedAt": now}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "deletedAt": bson.M{"$exists": false}}, update)
	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
