package unavailability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"reservo/database/repository"
	unavailableRepo "reservo/database/repository/unavailable"
	"reservo/models"
	"reservo/services/availability"
	"reservo/services/lock"
	"reservo/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service authors unavailable blocks for any tenant.
type Service struct {
	engine *availability.Engine
	locker lock.Locker
	policy Policy
	logger *zap.Logger
}

func NewService(engine *availability.Engine, locker lock.Locker, policy Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, locker: locker, policy: policy, logger: logger}
}

// CreateRequest is the input of ValidateAndCreateUnavailableBlock.
type CreateRequest struct {
	ProfessionalID    string                    `json:"professionalId"`
	StartDate         time.Time                 `json:"startDate"`
	EndDate           time.Time                 `json:"endDate"`
	Type              models.UnavailableType    `json:"type"`
	Reason            string                    `json:"reason,omitempty"`
	IsRecurring       bool                      `json:"isRecurring"`
	RecurrencePattern *models.RecurrencePattern `json:"recurrencePattern,omitempty"`
	CreatedBy         string                    `json:"createdBy,omitempty"`
}

// UpdateRequest is a partial update. RecurrencePattern replaces the stored
// pattern as a whole and IsRecurring=false clears it.
type UpdateRequest struct {
	StartDate         *time.Time                `json:"startDate,omitempty"`
	EndDate           *time.Time                `json:"endDate,omitempty"`
	Type              *models.UnavailableType   `json:"type,omitempty"`
	Reason            *string                   `json:"reason,omitempty"`
	IsRecurring       *bool                     `json:"isRecurring,omitempty"`
	RecurrencePattern *models.RecurrencePattern `json:"recurrencePattern,omitempty"`
}

// validate runs the rule checks in order. Timing-only checks are skipped
// for updates that leave the dates and pattern untouched.
func (s *Service) validate(ctx context.Context, t *repository.Tenant, cal availability.Calendar, b *models.UnavailableBlock, excludeID string, timingChanged bool) error {
	if strings.TrimSpace(b.ProfessionalID) == "" {
		return utils.NewValidationError("professionalId", "professional id is required")
	}
	if !b.Type.Valid() {
		return utils.NewValidationError("type", fmt.Sprintf("unknown unavailability type %q", b.Type))
	}
	if err := checkInterval(b.StartDate, b.EndDate); err != nil {
		return err
	}
	now := s.engine.Now()
	if timingChanged {
		if err := checkNotPast(b.StartDate, now); err != nil {
			return err
		}
		if err := s.policy.checkRecurrence(b, now); err != nil {
			return err
		}
	}
	if err := s.policy.checkDuration(b.Type, b.Duration()); err != nil {
		return err
	}
	if err := s.policy.checkBusinessHours(b.StartDate, b.EndDate, cal.Location); err != nil {
		return err
	}
	return s.checkMonthlyLimit(ctx, t, cal.Location, b, excludeID)
}

func (s *Service) checkMonthlyLimit(ctx context.Context, t *repository.Tenant, loc *time.Location, b *models.UnavailableBlock, excludeID string) error {
	limit, ok := s.policy.MonthlyLimits[b.Type]
	if !ok || limit <= 0 {
		return nil
	}
	local := b.StartDate.In(loc)
	from := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, 0)
	n, err := t.Unavailable.CountStartingIn(ctx, b.ProfessionalID, b.Type, from, to, excludeID)
	if err != nil {
		return fmt.Errorf("failed to count %s blocks: %w", b.Type, err)
	}
	if n >= int64(limit) {
		return utils.NewPolicyError("monthly_limit", fmt.Sprint(limit),
			fmt.Sprintf("at most %d %s blocks may start in %s", limit, b.Type, from.Format("2006-01")))
	}
	return nil
}

// conflicts checks the block, and for a recurring block every occurrence
// inside the check horizon, against the professional's calendar.
func (s *Service) conflicts(ctx context.Context, t *repository.Tenant, loc *time.Location, b *models.UnavailableBlock) error {
	intervals := []models.Occurrence{{BlockID: b.ID, Type: b.Type, StartDate: b.StartDate, EndDate: b.EndDate}}
	horizonEnd := b.EndDate
	if b.IsRecurring {
		horizonEnd = b.StartDate.AddDate(0, 0, s.policy.CheckHorizonDays)
		occs, err := s.engine.Expander().Expand(*b, b.StartDate, horizonEnd, loc)
		if err != nil {
			return err
		}
		intervals = occs
		if n := len(occs); n > 0 && occs[n-1].EndDate.After(horizonEnd) {
			horizonEnd = occs[n-1].EndDate
		}
	}
	if len(intervals) == 0 {
		return nil
	}

	busy, err := s.engine.BusyIntervals(ctx, t, loc, b.ProfessionalID, b.StartDate, horizonEnd, b.ID)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{})
	var refs []utils.ConflictRef
	for _, occ := range intervals {
		for _, ref := range availability.Conflicting(busy, occ.StartDate, occ.EndDate) {
			key := ref.Kind + "|" + ref.ID + "|" + ref.StartDate.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			refs = append(refs, ref)
		}
	}
	if len(refs) > 0 {
		sort.SliceStable(refs, func(i, j int) bool { return refs[i].StartDate.Before(refs[j].StartDate) })
		return utils.NewConflictError("block overlaps existing bookings or unavailability", refs...)
	}
	return nil
}

func (s *Service) withCalendarLock(ctx context.Context, t *repository.Tenant, professionalID string, fn func() error) error {
	release, err := s.locker.Acquire(ctx, lock.Key(t.ID, professionalID))
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			return utils.NewConflictError("calendar is being modified by another request, retry")
		}
		return fmt.Errorf("failed to lock calendar of %s: %w", professionalID, err)
	}
	defer release()
	return fn()
}

// ValidateAndCreateUnavailableBlock checks the request against the policy
// and, under the professional's calendar lock, against existing bookings
// and blocks before storing it.
func (s *Service) ValidateAndCreateUnavailableBlock(ctx context.Context, t *repository.Tenant, req CreateRequest) (*models.UnavailableBlock, error) {
	now := s.engine.Now().UTC()
	b := &models.UnavailableBlock{
		ProfessionalID: req.ProfessionalID,
		StartDate:      req.StartDate.UTC(),
		EndDate:        req.EndDate.UTC(),
		Type:           req.Type,
		Reason:         req.Reason,
		IsRecurring:    req.IsRecurring,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !req.IsRecurring && req.RecurrencePattern != nil {
		return nil, patternWithoutRecurrence()
	}
	if req.RecurrencePattern != nil {
		p := *req.RecurrencePattern
		b.RecurrencePattern = &p
	}

	cal, err := s.engine.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, t, cal, b, "", true); err != nil {
		return nil, err
	}
	if err := s.requireProfessional(ctx, t, b.ProfessionalID); err != nil {
		return nil, err
	}

	err = s.withCalendarLock(ctx, t, b.ProfessionalID, func() error {
		if err := s.conflicts(ctx, t, cal.Location, b); err != nil {
			return err
		}
		if err := t.Unavailable.Create(ctx, b); err != nil {
			return fmt.Errorf("failed to store unavailable block: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("unavailable block created",
		zap.String("tenantId", t.ID), zap.String("blockId", b.ID),
		zap.String("professionalId", b.ProfessionalID), zap.String("type", string(b.Type)),
		zap.Bool("recurring", b.IsRecurring))
	return b, nil
}

func (s *Service) requireProfessional(ctx context.Context, t *repository.Tenant, id string) error {
	u, err := t.Users.GetByID(ctx, id)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to load professional %s: %w", id, err)
	}
	if !u.IsProfessional() {
		return utils.NewNotFoundError("professional", id)
	}
	return nil
}

// UpdateUnavailableBlock applies req field by field to the stored block
// and re-runs the checks without the block itself. The block is re-read
// under the calendar lock so concurrent edits are not lost.
func (s *Service) UpdateUnavailableBlock(ctx context.Context, t *repository.Tenant, id string, req UpdateRequest) (*models.UnavailableBlock, error) {
	if req.IsRecurring != nil && !*req.IsRecurring && req.RecurrencePattern != nil {
		return nil, patternWithoutRecurrence()
	}
	current, err := s.GetUnavailableBlock(ctx, t, id)
	if err != nil {
		return nil, err
	}
	cal, err := s.engine.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}

	var b *models.UnavailableBlock
	err = s.withCalendarLock(ctx, t, current.ProfessionalID, func() error {
		stored, err := s.GetUnavailableBlock(ctx, t, id)
		if err != nil {
			return err
		}
		b = stored
		timingChanged := applyUpdate(b, req)
		if !b.IsRecurring && req.RecurrencePattern != nil {
			return patternWithoutRecurrence()
		}
		if !b.IsRecurring {
			b.RecurrencePattern = nil
		}
		b.UpdatedAt = s.engine.Now().UTC()

		if err := s.validate(ctx, t, cal, b, b.ID, timingChanged); err != nil {
			return err
		}
		if timingChanged {
			if err := s.conflicts(ctx, t, cal.Location, b); err != nil {
				return err
			}
		}
		if err := t.Unavailable.Update(ctx, b); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return utils.NewNotFoundError("unavailable block", id)
			}
			return fmt.Errorf("failed to update unavailable block: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// applyUpdate merges req into b and reports whether timing changed.
func applyUpdate(b *models.UnavailableBlock, req UpdateRequest) bool {
	timingChanged := false
	if req.StartDate != nil {
		b.StartDate = req.StartDate.UTC()
		timingChanged = true
	}
	if req.EndDate != nil {
		b.EndDate = req.EndDate.UTC()
		timingChanged = true
	}
	if req.Type != nil {
		b.Type = *req.Type
	}
	if req.Reason != nil {
		b.Reason = *req.Reason
	}
	if req.IsRecurring != nil {
		b.IsRecurring = *req.IsRecurring
		timingChanged = true
	}
	if req.RecurrencePattern != nil {
		p := *req.RecurrencePattern
		b.RecurrencePattern = &p
		timingChanged = true
	}
	return timingChanged
}

func patternWithoutRecurrence() error {
	return utils.NewValidationError("recurrencePattern", "a recurrence pattern requires isRecurring to be true")
}

func (s *Service) DeleteUnavailableBlock(ctx context.Context, t *repository.Tenant, id string) error {
	if err := t.Unavailable.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.NewNotFoundError("unavailable block", id)
		}
		return fmt.Errorf("failed to delete unavailable block: %w", err)
	}
	s.logger.Info("unavailable block deleted", zap.String("tenantId", t.ID), zap.String("blockId", id))
	return nil
}

func (s *Service) GetUnavailableBlock(ctx context.Context, t *repository.Tenant, id string) (*models.UnavailableBlock, error) {
	b, err := t.Unavailable.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewNotFoundError("unavailable block", id)
		}
		return nil, fmt.Errorf("failed to load unavailable block: %w", err)
	}
	return b, nil
}

// dateWindow turns optional inclusive YYYY-MM-DD bounds into [from, to).
func dateWindow(cal availability.Calendar, from, to string) (time.Time, time.Time, error) {
	var f, tt time.Time
	if from != "" {
		d, err := utils.ParseDate(from, cal.Location)
		if err != nil {
			return f, tt, err
		}
		f = d
	}
	if to != "" {
		d, err := utils.ParseDate(to, cal.Location)
		if err != nil {
			return f, tt, err
		}
		_, tt = utils.DayBounds(d, cal.Location)
	}
	if !f.IsZero() && !tt.IsZero() && !f.Before(tt) {
		return f, tt, utils.NewValidationError("to", "from must be on or before to")
	}
	return f, tt, nil
}

// ListUnavailableBlocks returns the stored blocks of a professional. Bounds
// are optional; recurring templates are kept whenever they start before to.
func (s *Service) ListUnavailableBlocks(ctx context.Context, t *repository.Tenant, professionalID, from, to string) ([]models.UnavailableBlock, error) {
	if professionalID == "" {
		return nil, utils.NewValidationError("professionalId", "professional id is required")
	}
	cal, err := s.engine.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	f, tt, err := dateWindow(cal, from, to)
	if err != nil {
		return nil, err
	}
	out, err := t.Unavailable.List(ctx, unavailableRepo.ListFilter{ProfessionalID: professionalID, From: f, To: tt})
	if err != nil {
		return nil, fmt.Errorf("failed to list unavailable blocks: %w", err)
	}
	if out == nil {
		out = []models.UnavailableBlock{}
	}
	return out, nil
}

// ExpandUnavailableBlocks returns every concrete unavailable interval of
// [from, to]: one-off blocks as stored and recurring blocks expanded.
func (s *Service) ExpandUnavailableBlocks(ctx context.Context, t *repository.Tenant, professionalID, from, to string) ([]models.Occurrence, error) {
	if professionalID == "" {
		return nil, utils.NewValidationError("professionalId", "professional id is required")
	}
	if from == "" || to == "" {
		return nil, utils.NewValidationError("from", "from and to are required")
	}
	cal, err := s.engine.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	f, tt, err := dateWindow(cal, from, to)
	if err != nil {
		return nil, err
	}

	busy, err := s.engine.BusyIntervals(ctx, t, cal.Location, professionalID, f, tt, "")
	if err != nil {
		return nil, err
	}
	out := []models.Occurrence{}
	for _, b := range busy {
		if b.Kind != availability.KindUnavailable {
			continue
		}
		out = append(out, models.Occurrence{BlockID: b.ID, Type: b.Type, StartDate: b.Start, EndDate: b.End})
	}
	return out, nil
}
