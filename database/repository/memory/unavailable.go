package memoryRepo

import (
	"context"
	"sort"
	"time"

	unavailableRepo "reservo/database/repository/unavailable"
	"reservo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type unavailableStore struct{ s *Store }

func (r *unavailableStore) Create(ctx context.Context, b *models.UnavailableBlock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	r.s.blocks[b.ID] = copyBlock(*b)
	return nil
}

func (r *unavailableStore) GetByID(ctx context.Context, id string) (*models.UnavailableBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.blocks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := copyBlock(b)
	return &out, nil
}

func (r *unavailableStore) Update(ctx context.Context, b *models.UnavailableBlock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blocks[b.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	r.s.blocks[b.ID] = copyBlock(*b)
	return nil
}

func (r *unavailableStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blocks[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.s.blocks, id)
	return nil
}

func (r *unavailableStore) collect(keep func(models.UnavailableBlock) bool) []models.UnavailableBlock {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.UnavailableBlock
	for _, b := range r.s.blocks {
		if keep(b) {
			out = append(out, copyBlock(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r *unavailableStore) List(ctx context.Context, f unavailableRepo.ListFilter) ([]models.UnavailableBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect(func(b models.UnavailableBlock) bool {
		if b.ProfessionalID != f.ProfessionalID {
			return false
		}
		if f.Type != "" && b.Type != f.Type {
			return false
		}
		if !f.To.IsZero() && !b.StartDate.Before(f.To) {
			return false
		}
		if !f.From.IsZero() && !b.IsRecurring && !b.EndDate.After(f.From) {
			return false
		}
		return true
	}), nil
}

func (r *unavailableStore) ListOverlapping(ctx context.Context, professionalID string, from, to time.Time) ([]models.UnavailableBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect(func(b models.UnavailableBlock) bool {
		return b.ProfessionalID == professionalID && !b.IsRecurring &&
			b.StartDate.Before(to) && b.EndDate.After(from)
	}), nil
}

func (r *unavailableStore) ListRecurring(ctx context.Context, professionalID string, to time.Time) ([]models.UnavailableBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect(func(b models.UnavailableBlock) bool {
		return b.ProfessionalID == professionalID && b.IsRecurring && b.StartDate.Before(to)
	}), nil
}

func (r *unavailableStore) CountStartingIn(ctx context.Context, professionalID string, t models.UnavailableType, from, to time.Time, excludeID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	matches := r.collect(func(b models.UnavailableBlock) bool {
		return b.ProfessionalID == professionalID && b.Type == t && b.ID != excludeID &&
			!b.StartDate.Before(from) && b.StartDate.Before(to)
	})
	return int64(len(matches)), nil
}

func (r *unavailableStore) EnsureIndexes(context.Context) error { return nil }
