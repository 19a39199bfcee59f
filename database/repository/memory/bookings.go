package memoryRepo

import (
	"context"
	"sort"
	"time"

	bookingRepo "reservo/database/repository/booking"
	"reservo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type bookingStore struct{ s *Store }

// slotTaken mirrors the partial unique index; call with the lock held.
func (r *bookingStore) slotTaken(b models.Booking) bool {
	if !b.Occupies {
		return false
	}
	for id, other := range r.s.bookings {
		if id != b.ID && other.Occupies && other.ProfessionalID == b.ProfessionalID &&
			other.StartDate.Equal(b.StartDate) && other.EndDate.Equal(b.EndDate) {
			return true
		}
	}
	return false
}

func (r *bookingStore) Create(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.Occupies = b.Status.Occupies()
	if r.slotTaken(*b) {
		return bookingRepo.ErrSlotTaken
	}
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *bookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &b, nil
}

func (r *bookingStore) Update(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[b.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	b.Occupies = b.Status.Occupies()
	if r.slotTaken(*b) {
		return bookingRepo.ErrSlotTaken
	}
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *bookingStore) collect(keep func(models.Booking) bool) []models.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r *bookingStore) List(ctx context.Context, f bookingRepo.Filter) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := r.collect(func(b models.Booking) bool {
		switch {
		case f.ProfessionalID != "" && b.ProfessionalID != f.ProfessionalID:
			return false
		case f.ClientID != "" && b.ClientID != f.ClientID:
			return false
		case f.Status != "" && b.Status != f.Status:
			return false
		case !f.To.IsZero() && !b.StartDate.Before(f.To):
			return false
		case !f.From.IsZero() && !b.EndDate.After(f.From):
			return false
		}
		return true
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *bookingStore) ListOccupying(ctx context.Context, professionalID string, from, to time.Time, excludeID string) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect(func(b models.Booking) bool {
		return b.ProfessionalID == professionalID && b.Occupies && b.ID != excludeID &&
			b.StartDate.Before(to) && b.EndDate.After(from)
	}), nil
}

func (r *bookingStore) EnsureIndexes(context.Context) error { return nil }
