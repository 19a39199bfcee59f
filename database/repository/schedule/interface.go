package scheduleRepo

import (
	"context"
	"errors"

	"reservo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrActiveExists is returned when a second active schedule would be stored
// for the same professional.
var ErrActiveExists = errors.New("professional already has an active schedule")

type ScheduleRepository interface {
	Create(ctx context.Context, s *models.WeeklySchedule) error
	GetByID(ctx context.Context, id string) (*models.WeeklySchedule, error)
	GetActiveByProfessional(ctx context.Context, professionalID string) (*models.WeeklySchedule, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]models.WeeklySchedule, error)
	Update(ctx context.Context, s *models.WeeklySchedule) error
	SoftDelete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo constructs a ScheduleRepository on the tenant database.
func NewMongoScheduleRepo(db *mongo.Database) ScheduleRepository {
	return &mongoScheduleRepo{coll: db.Collection("professional_schedules")}
}
