package memoryRepo

import (
	"context"
	"sort"
	"time"

	scheduleRepo "reservo/database/repository/schedule"
	"reservo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type scheduleStore struct{ s *Store }

// activeConflict must be called with the lock held.
func (r *scheduleStore) activeConflict(w models.WeeklySchedule) bool {
	if !w.IsActive {
		return false
	}
	for id, other := range r.s.schedules {
		if id != w.ID && other.ProfessionalID == w.ProfessionalID && other.IsActive && other.DeletedAt == nil {
			return true
		}
	}
	return false
}

func (r *scheduleStore) Create(ctx context.Context, w *models.WeeklySchedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if r.activeConflict(*w) {
		return scheduleRepo.ErrActiveExists
	}
	r.s.schedules[w.ID] = copySchedule(*w)
	return nil
}

func (r *scheduleStore) GetByID(ctx context.Context, id string) (*models.WeeklySchedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.schedules[id]
	if !ok || w.DeletedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	out := copySchedule(w)
	return &out, nil
}

func (r *scheduleStore) GetActiveByProfessional(ctx context.Context, professionalID string) (*models.WeeklySchedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.schedules {
		if w.ProfessionalID == professionalID && w.IsActive && w.DeletedAt == nil {
			out := copySchedule(w)
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *scheduleStore) ListByProfessional(ctx context.Context, professionalID string) ([]models.WeeklySchedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.WeeklySchedule
	for _, w := range r.s.schedules {
		if w.ProfessionalID == professionalID && w.DeletedAt == nil {
			out = append(out, copySchedule(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *scheduleStore) Update(ctx context.Context, w *models.WeeklySchedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.schedules[w.ID]
	if !ok || cur.DeletedAt != nil {
		return mongo.ErrNoDocuments
	}
	if r.activeConflict(*w) {
		return scheduleRepo.ErrActiveExists
	}
	cur.Days = w.Days
	cur.IsActive = w.IsActive
	cur.UpdatedAt = w.UpdatedAt
	r.s.schedules[w.ID] = copySchedule(cur)
	return nil
}

func (r *scheduleStore) SoftDelete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.schedules[id]
	if !ok || w.DeletedAt != nil {
		return mongo.ErrNoDocuments
	}
	now := time.Now().UTC()
	w.DeletedAt = &now
	w.IsActive = false
	w.UpdatedAt = now
	r.s.schedules[id] = w
	return nil
}

func (r *scheduleStore) EnsureIndexes(context.Context) error { return nil }
