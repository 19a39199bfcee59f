package bookingRepo

import (
	"context"
	"time"

	"reservo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoBookingRepo) List(ctx context.Context, f Filter) ([]models.Booking, error) {
	filter := bson.M{}
	if f.ProfessionalID != "" {
		filter["professionalId"] = f.ProfessionalID
	}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.To.IsZero() {
		filter["startDate"] = bson.M{"$lt": f.To}
	}
	if !f.From.IsZero() {
		filter["endDate"] = bson.M{"$gt": f.From}
	}
	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepo) ListOccupying(ctx context.Context, professionalID string, from, to time.Time, excludeID string) ([]models.Booking, error) {
	filter := bson.M{
		"professionalId": professionalID,
		"occupies":       true,
		"startDate":      bson.M{"$lt": to},
		"endDate":        bson.M{"$gt": from},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}}))
}
