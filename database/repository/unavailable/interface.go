package unavailableRepo

import (
	"context"
	"time"

	"reservo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ListFilter narrows ListByProfessional. Zero bounds are open.
type ListFilter struct {
	ProfessionalID string
	From           time.Time
	To             time.Time
	Type           models.UnavailableType
}

type UnavailableRepository interface {
	Create(ctx context.Context, b *models.UnavailableBlock) error
	GetByID(ctx context.Context, id string) (*models.UnavailableBlock, error)
	Update(ctx context.Context, b *models.UnavailableBlock) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]models.UnavailableBlock, error)
	// ListOverlapping returns non-recurring blocks overlapping [from, to).
	ListOverlapping(ctx context.Context, professionalID string, from, to time.Time) ([]models.UnavailableBlock, error)
	// ListRecurring returns recurring templates that start before to.
	ListRecurring(ctx context.Context, professionalID string, to time.Time) ([]models.UnavailableBlock, error)
	// CountStartingIn counts blocks of a type starting in [from, to), skipping excludeID.
	CountStartingIn(ctx context.Context, professionalID string, t models.UnavailableType, from, to time.Time, excludeID string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoUnavailableRepo struct {
	coll *mongo.Collection
}

func NewMongoUnavailableRepo(db *mongo.Database) UnavailableRepository {
	return &mongoUnavailableRepo{coll: db.Collection("unavailable_blocks")}
}
