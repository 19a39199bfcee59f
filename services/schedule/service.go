package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"reservo/database/repository"
	scheduleRepo "reservo/database/repository/schedule"
	"reservo/models"
	"reservo/services/availability"
	"reservo/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service authors weekly schedules for any tenant.
type Service struct {
	engine *availability.Engine
	logger *zap.Logger
}

func NewService(engine *availability.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, logger: logger}
}

// CreateRequest creates a schedule. Days default to Monday to Saturday on
// company hours and IsActive defaults to true.
type CreateRequest struct {
	ProfessionalID string                        `json:"professionalId"`
	Days           map[string]models.DaySchedule `json:"days,omitempty"`
	IsActive       *bool                         `json:"isActive,omitempty"`
}

// UpdateRequest replaces the listed days whole and may toggle IsActive.
type UpdateRequest struct {
	Days     map[string]models.DaySchedule `json:"days,omitempty"`
	IsActive *bool                         `json:"isActive,omitempty"`
}

// withDefaultType treats an omitted day type as full_time.
func withDefaultType(d models.DaySchedule) models.DaySchedule {
	if d.Type == "" {
		d.Type = models.DayTypeFullTime
	}
	return d
}

func activeConflict(professionalID string) error {
	return utils.NewConflictError(fmt.Sprintf("professional %s already has an active schedule", professionalID))
}

func (s *Service) CreateSchedule(ctx context.Context, t *repository.Tenant, req CreateRequest) (*models.WeeklySchedule, error) {
	if req.ProfessionalID == "" {
		return nil, utils.NewValidationError("professionalId", "professional id is required")
	}
	days := models.DefaultWeek()
	for k, d := range req.Days {
		days[k] = withDefaultType(d)
	}
	if err := ValidateWeek(days); err != nil {
		return nil, err
	}

	u, err := t.Users.GetByID(ctx, req.ProfessionalID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to load professional %s: %w", req.ProfessionalID, err)
	}
	if !u.IsProfessional() {
		return nil, utils.NewNotFoundError("professional", req.ProfessionalID)
	}

	active := req.IsActive == nil || *req.IsActive
	if active {
		existing, err := s.engine.ActiveSchedule(ctx, t, req.ProfessionalID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, activeConflict(req.ProfessionalID)
		}
	}

	now := s.engine.Now().UTC()
	w := &models.WeeklySchedule{
		ProfessionalID: req.ProfessionalID,
		Days:           days,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.Schedules.Create(ctx, w); err != nil {
		if errors.Is(err, scheduleRepo.ErrActiveExists) {
			return nil, activeConflict(req.ProfessionalID)
		}
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}
	s.logger.Info("schedule created",
		zap.String("tenantId", t.ID), zap.String("scheduleId", w.ID), zap.String("professionalId", w.ProfessionalID))
	return w, nil
}

func (s *Service) UpdateSchedule(ctx context.Context, t *repository.Tenant, id string, req UpdateRequest) (*models.WeeklySchedule, error) {
	w, err := s.GetSchedule(ctx, t, id)
	if err != nil {
		return nil, err
	}
	for k, d := range req.Days {
		if w.Days == nil {
			w.Days = make(map[string]models.DaySchedule)
		}
		w.Days[k] = withDefaultType(d)
	}
	if err := ValidateWeek(w.Days); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		if *req.IsActive && !w.IsActive {
			existing, err := s.engine.ActiveSchedule(ctx, t, w.ProfessionalID)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != w.ID {
				return nil, activeConflict(w.ProfessionalID)
			}
		}
		w.IsActive = *req.IsActive
	}
	w.UpdatedAt = s.engine.Now().UTC()

	if err := t.Schedules.Update(ctx, w); err != nil {
		switch {
		case errors.Is(err, scheduleRepo.ErrActiveExists):
			return nil, activeConflict(w.ProfessionalID)
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, utils.NewNotFoundError("schedule", id)
		}
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	return w, nil
}

func (s *Service) GetSchedule(ctx context.Context, t *repository.Tenant, id string) (*models.WeeklySchedule, error) {
	w, err := t.Schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewNotFoundError("schedule", id)
		}
		return nil, fmt.Errorf("failed to load schedule %s: %w", id, err)
	}
	return w, nil
}

// GetActiveSchedule fails with NotFound when the professional has none.
func (s *Service) GetActiveSchedule(ctx context.Context, t *repository.Tenant, professionalID string) (*models.WeeklySchedule, error) {
	w, err := s.engine.ActiveSchedule(ctx, t, professionalID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, utils.NewNotFoundError("schedule", professionalID)
	}
	return w, nil
}

// DeleteSchedule soft-deletes: the record keeps its history but is no
// longer active or readable.
func (s *Service) DeleteSchedule(ctx context.Context, t *repository.Tenant, id string) error {
	if err := t.Schedules.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.NewNotFoundError("schedule", id)
		}
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	s.logger.Info("schedule deleted", zap.String("tenantId", t.ID), zap.String("scheduleId", id))
	return nil
}

// WorkingDays lists the working weekday keys of the active schedule,
// Monday first.
func (s *Service) WorkingDays(ctx context.Context, t *repository.Tenant, professionalID string) ([]string, error) {
	w, err := s.GetActiveSchedule(ctx, t, professionalID)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, k := range utils.Weekdays {
		if w.Day(k).IsWorking {
			out = append(out, k)
		}
	}
	return out, nil
}

// AvailableHours returns the working windows of one weekday: company hours
// for a full_time day, the sorted blocks for a custom day, nothing when off.
func (s *Service) AvailableHours(ctx context.Context, t *repository.Tenant, professionalID, weekday string) ([]models.TimeBlock, error) {
	d, ok := utils.ParseWeekday(weekday)
	if !ok {
		return nil, utils.NewValidationError("weekday", fmt.Sprintf("unknown weekday %q", weekday))
	}
	w, err := s.GetActiveSchedule(ctx, t, professionalID)
	if err != nil {
		return nil, err
	}
	day := w.Day(utils.WeekdayKey(d))
	out := []models.TimeBlock{}
	if !day.IsWorking {
		return out, nil
	}
	if day.Type == models.DayTypeFullTime {
		cal, err := s.engine.Calendar(ctx, t)
		if err != nil {
			return nil, err
		}
		return append(out, models.TimeBlock{Start: utils.FormatClock(cal.Hours.Start), End: utils.FormatClock(cal.Hours.End)}), nil
	}
	out = append(out, day.Blocks...)
	sort.Slice(out, func(i, j int) bool {
		a, _ := utils.ParseClock(out[i].Start)
		b, _ := utils.ParseClock(out[j].Start)
		return a < b
	})
	return out, nil
}
