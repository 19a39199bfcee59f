// Package memoryRepo keeps a tenant's dataset in process memory. It backs the
// "memory" storage driver and the service tests.
package memoryRepo

import (
	"context"
	"sync"

	"reservo/database"
	"reservo/database/repository"
	"reservo/models"
	"reservo/utils"
)

// Store holds one tenant's collections.
type Store struct {
	mu           sync.RWMutex
	schedules    map[string]models.WeeklySchedule
	blocks       map[string]models.UnavailableBlock
	bookings     map[string]models.Booking
	services     map[string]models.Service
	profServices map[string]models.ProfessionalService
	users        map[string]models.User
	company      *models.CompanySettings
}

func NewStore() *Store {
	return &Store{
		schedules:    make(map[string]models.WeeklySchedule),
		blocks:       make(map[string]models.UnavailableBlock),
		bookings:     make(map[string]models.Booking),
		services:     make(map[string]models.Service),
		profServices: make(map[string]models.ProfessionalService),
		users:        make(map[string]models.User),
	}
}

// Tenant returns a repository bundle backed by this store.
func (s *Store) Tenant(id string) *repository.Tenant {
	return &repository.Tenant{
		ID:          id,
		Schedules:   &scheduleStore{s},
		Unavailable: &unavailableStore{s},
		Bookings:    &bookingStore{s},
		Catalog:     &catalogStore{s},
		Users:       &userStore{s},
		Company:     &companyStore{s},
	}
}

func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

func (s *Store) PutProfessionalService(ps models.ProfessionalService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profServices[ps.ProfessionalID+"|"+ps.ServiceID] = ps
}

func (s *Store) PutCompany(c models.CompanySettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company = &c
}

// PutSchedule, PutBlock and PutBooking insert without invariant checks.
func (s *Store) PutSchedule(w models.WeeklySchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[w.ID] = copySchedule(w)
}

func (s *Store) PutBlock(b models.UnavailableBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.ID] = copyBlock(b)
}

func (s *Store) PutBooking(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.Occupies = b.Status.Occupies()
	s.bookings[b.ID] = b
}

// Tenants maps tenant ids to stores, creating them on first use.
type Tenants struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewTenants() *Tenants {
	return &Tenants{stores: make(map[string]*Store)}
}

func (t *Tenants) Store(tenantID string) *Store {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.stores[tenantID]
	if !ok {
		s = NewStore()
		t.stores[tenantID] = s
	}
	return s
}

func (t *Tenants) Resolve(_ context.Context, tenantID string) (*repository.Tenant, error) {
	if !database.ValidTenantID(tenantID) {
		return nil, utils.NewValidationError("tenantId", "tenant id must be 1-48 characters of [A-Za-z0-9_-]")
	}
	return t.Store(tenantID).Tenant(tenantID), nil
}

func copySchedule(w models.WeeklySchedule) models.WeeklySchedule {
	days := make(map[string]models.DaySchedule, len(w.Days))
	for k, d := range w.Days {
		d.Blocks = append([]models.TimeBlock(nil), d.Blocks...)
		days[k] = d
	}
	w.Days = days
	return w
}

func copyBlock(b models.UnavailableBlock) models.UnavailableBlock {
	if b.RecurrencePattern != nil {
		p := *b.RecurrencePattern
		b.RecurrencePattern = &p
	}
	return b
}
