package repository

import (
	"context"
	"errors"
	"sync"

	"reservo/database"
	bookingRepo "reservo/database/repository/booking"
	catalogRepo "reservo/database/repository/catalog"
	companyRepo "reservo/database/repository/company"
	scheduleRepo "reservo/database/repository/schedule"
	unavailableRepo "reservo/database/repository/unavailable"
	userRepo "reservo/database/repository/user"
	"reservo/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Re-export the repository interfaces.
type (
	ScheduleRepository    = scheduleRepo.ScheduleRepository
	UnavailableRepository = unavailableRepo.UnavailableRepository
	BookingRepository     = bookingRepo.BookingRepository
	CatalogRepository     = catalogRepo.CatalogRepository
	UserRepository        = userRepo.UserRepository
	CompanyRepository     = companyRepo.CompanyRepository
)

// Tenant bundles the repositories of one tenant's isolated dataset. Every
// read and write of one computation goes through the same bundle.
type Tenant struct {
	ID          string
	Schedules   ScheduleRepository
	Unavailable UnavailableRepository
	Bookings    BookingRepository
	Catalog     CatalogRepository
	Users       UserRepository
	Company     CompanyRepository
}

// EnsureIndexes creates indexes on every collection of the tenant.
func (t *Tenant) EnsureIndexes(ctx context.Context) error {
	return errors.Join(
		t.Schedules.EnsureIndexes(ctx),
		t.Unavailable.EnsureIndexes(ctx),
		t.Bookings.EnsureIndexes(ctx),
		t.Catalog.EnsureIndexes(ctx),
		t.Users.EnsureIndexes(ctx),
	)
}

// TenantResolver builds the repository bundle for a tenant id.
type TenantResolver interface {
	Resolve(ctx context.Context, tenantID string) (*Tenant, error)
}

// MongoTenants resolves tenants to "<prefix><tenantID>" databases.
type MongoTenants struct {
	client  *mongo.Client
	prefix  string
	logger  *zap.Logger
	indexed sync.Map
}

func NewMongoTenants(client *mongo.Client, prefix string, logger *zap.Logger) *MongoTenants {
	return &MongoTenants{client: client, prefix: prefix, logger: logger}
}

func (m *MongoTenants) Resolve(ctx context.Context, tenantID string) (*Tenant, error) {
	if !database.ValidTenantID(tenantID) {
		return nil, utils.NewValidationError("tenantId", "tenant id must be 1-48 characters of [A-Za-z0-9_-]")
	}
	db := database.TenantDatabase(m.client, m.prefix, tenantID)
	t := &Tenant{
		ID:          tenantID,
		Schedules:   scheduleRepo.NewMongoScheduleRepo(db),
		Unavailable: unavailableRepo.NewMongoUnavailableRepo(db),
		Bookings:    bookingRepo.NewMongoBookingRepo(db),
		Catalog:     catalogRepo.NewMongoCatalogRepo(db),
		Users:       userRepo.NewMongoUserRepo(db),
		Company:     companyRepo.NewMongoCompanyRepo(db),
	}

	if _, done := m.indexed.Load(tenantID); !done {
		if err := t.EnsureIndexes(ctx); err != nil {
			m.logger.Warn("failed to ensure tenant indexes", zap.String("tenantId", tenantID), zap.Error(err))
		} else {
			m.indexed.Store(tenantID, struct{}{})
		}
	}
	return t, nil
}
