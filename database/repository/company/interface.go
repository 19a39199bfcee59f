package companyRepo

import (
	"context"
	"time"

	"reservo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CompanyRepository reads the tenant's single settings document.
type CompanyRepository interface {
	GetSettings(ctx context.Context) (*models.CompanySettings, error)
}

type mongoCompanyRepo struct {
	coll *mongo.Collection
}

func NewMongoCompanyRepo(db *mongo.Database) CompanyRepository {
	return &mongoCompanyRepo{coll: db.Collection("company_settings")}
}

func (r *mongoCompanyRepo) GetSettings(ctx context.Context) (*models.CompanySettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.CompanySettings
	if err := r.coll.FindOne(ctx, bson.M{}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
