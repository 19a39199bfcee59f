package memoryRepo

import (
	"context"

	"reservo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type catalogStore struct{ s *Store }

func (r *catalogStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &svc, nil
}

func (r *catalogStore) GetProfessionalService(ctx context.Context, professionalID, serviceID string) (*models.ProfessionalService, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ps, ok := r.s.profServices[professionalID+"|"+serviceID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &ps, nil
}

func (r *catalogStore) EnsureIndexes(context.Context) error { return nil }

type userStore struct{ s *Store }

func (r *userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (r *userStore) EnsureIndexes(context.Context) error { return nil }

type companyStore struct{ s *Store }

func (r *companyStore) GetSettings(ctx context.Context) (*models.CompanySettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.company == nil {
		return nil, mongo.ErrNoDocuments
	}
	c := *r.s.company
	return &c, nil
}
