// Command seed loads a demo tenant: company hours, professionals, services
// and one active weekly schedule per professional.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"reservo/config"
	"reservo/database"
	"reservo/database/repository"
	"reservo/models"
	"reservo/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func main() {
	tenantID := flag.String("tenant", "demo", "tenant id to seed")
	professionals := flag.Int("professionals", 5, "number of professionals")
	flag.Parse()

	if err := config.LoadConfig(); err != nil {
		utils.GetLogger().Fatal("seed: invalid configuration", zap.Error(err))
	}
	cfg := config.AppConfig
	logger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("seed: failed to connect", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	if !database.ValidTenantID(*tenantID) {
		logger.Fatal("seed: invalid tenant id", zap.String("tenantId", *tenantID))
	}
	db := database.TenantDatabase(client, cfg.TenantDBPrefix, *tenantID)

	// Clear existing data.
	for _, name := range []string{"company_settings", "users", "services", "professional_services",
		"professional_schedules", "unavailable_blocks", "bookings"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			logger.Fatal("seed: failed to clear collection", zap.String("collection", name), zap.Error(err))
		}
	}

	tenant, err := repository.NewMongoTenants(client, cfg.TenantDBPrefix, logger).Resolve(ctx, *tenantID)
	if err != nil {
		logger.Fatal("seed: failed to resolve tenant", zap.Error(err))
	}

	now := time.Now().UTC()
	company := models.CompanySettings{
		ID:           "company",
		Name:         "Demo Studio",
		Timezone:     cfg.Timezone,
		WorkingHours: &models.TimeBlock{Start: cfg.DefaultWorkStart, End: cfg.DefaultWorkEnd},
	}
	if _, err := db.Collection("company_settings").InsertOne(ctx, company); err != nil {
		logger.Fatal("seed: failed to insert company settings", zap.Error(err))
	}

	services := []any{
		models.Service{ID: "haircut", Name: "Haircut", Duration: 30, Price: 25, IsActive: true, CreatedAt: now},
		models.Service{ID: "coloring", Name: "Coloring", Duration: 90, Price: 80, IsActive: true, CreatedAt: now},
		models.Service{ID: "massage", Name: "Massage", Duration: 60, Price: 60, IsActive: true, CreatedAt: now},
	}
	if _, err := db.Collection("services").InsertMany(ctx, services); err != nil {
		logger.Fatal("seed: failed to insert services", zap.Error(err))
	}

	users := []any{
		models.User{ID: "client-1", Name: "Demo Client", Role: models.RoleClient, IsActive: true, CreatedAt: now},
	}
	var links []any
	for i := 1; i <= *professionals; i++ {
		id := fmt.Sprintf("pro-%d", i)
		users = append(users, models.User{
			ID:        id,
			Name:      fmt.Sprintf("Professional %d", i),
			Email:     fmt.Sprintf("pro%d@example.com", i),
			Role:      models.RoleProfessional,
			IsActive:  true,
			CreatedAt: now,
		})
		for _, svc := range services {
			link := models.ProfessionalService{
				ID:             uuid.New().String(),
				ProfessionalID: id,
				ServiceID:      svc.(models.Service).ID,
				IsActive:       true,
			}
			// Every other professional works slower on coloring.
			if i%2 == 0 && link.ServiceID == "coloring" {
				d := 120
				link.CustomDuration = &d
			}
			links = append(links, link)
		}
	}
	if _, err := db.Collection("users").InsertMany(ctx, users); err != nil {
		logger.Fatal("seed: failed to insert users", zap.Error(err))
	}
	if _, err := db.Collection("professional_services").InsertMany(ctx, links); err != nil {
		logger.Fatal("seed: failed to insert professional services", zap.Error(err))
	}

	for i := 1; i <= *professionals; i++ {
		days := make(map[string]models.DaySchedule, 7)
		for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
			days[utils.WeekdayKey(d)] = models.DaySchedule{IsWorking: true, Type: models.DayTypeFullTime}
		}
		days[utils.WeekdayKey(time.Saturday)] = models.DaySchedule{
			IsWorking: true,
			Type:      models.DayTypeCustomBlocks,
			Blocks:    []models.TimeBlock{{Start: "09:00", End: "12:00"}, {Start: "13:00", End: "15:00"}},
		}
		days[utils.WeekdayKey(time.Sunday)] = models.DaySchedule{}

		w := &models.WeeklySchedule{
			ID:             uuid.New().String(),
			ProfessionalID: fmt.Sprintf("pro-%d", i),
			Days:           days,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tenant.Schedules.Create(ctx, w); err != nil {
			logger.Fatal("seed: failed to create schedule", zap.String("professionalId", w.ProfessionalID), zap.Error(err))
		}
	}

	logger.Info("seed: tenant ready", zap.String("tenantId", *tenantID), zap.Int("professionals", *professionals))
}
