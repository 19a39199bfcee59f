package bookingRepo

import (
	"context"
	"errors"
	"time"

	"reservo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotTaken is returned when the storage backstop rejects a second
// occupying booking on the same interval.
var ErrSlotTaken = errors.New("an occupying booking already holds this interval")

// Filter narrows List. Empty fields are ignored.
type Filter struct {
	ProfessionalID string
	ClientID       string
	Status         models.BookingStatus
	From           time.Time
	To             time.Time
	Limit          int64
}

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	List(ctx context.Context, f Filter) ([]models.Booking, error)
	// ListOccupying returns pending and confirmed bookings overlapping
	// [from, to), skipping excludeID.
	ListOccupying(ctx context.Context, professionalID string, from, to time.Time, excludeID string) ([]models.Booking, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{coll: db.Collection("bookings")}
}
