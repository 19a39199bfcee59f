package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"reservo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository reads services and per-professional overrides.
type CatalogRepository interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetProfessionalService(ctx context.Context, professionalID, serviceID string) (*models.ProfessionalService, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoCatalogRepo struct {
	services     *mongo.Collection
	professional *mongo.Collection
}

func NewMongoCatalogRepo(db *mongo.Database) CatalogRepository {
	return &mongoCatalogRepo{
		services:     db.Collection("services"),
		professional: db.Collection("professional_services"),
	}
}

func (r *mongoCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Service
	if err := r.services.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoCatalogRepo) GetProfessionalService(ctx context.Context, professionalID, serviceID string) (*models.ProfessionalService, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ps models.ProfessionalService
	filter := bson.M{"professionalId": professionalID, "serviceId": serviceID}
	if err := r.professional.FindOne(ctx, filter).Decode(&ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (r *mongoCatalogRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.services.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_id"),
	}); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	if _, err := r.professional.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "serviceId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("professional_service_unique"),
	}); err != nil {
		return fmt.Errorf("failed to create professional service indexes: %w", err)
	}
	return nil
}
