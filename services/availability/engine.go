package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"reservo/database/repository"
	"reservo/models"
	"reservo/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNextSlotsLimit = 10
	MaxNextSlotsLimit     = 50
)

// Policy carries the deployment defaults the engine falls back to.
type Policy struct {
	Timezone               string
	WorkStart              string
	WorkEnd                string
	DefaultServiceDuration int
	MaxRangeDays           int
	NextSlotsHorizonDays   int
	FanoutLimit            int
	MaxOccurrences         int
}

func DefaultPolicy() Policy {
	return Policy{
		Timezone:               "UTC",
		WorkStart:              "08:00",
		WorkEnd:                "18:00",
		DefaultServiceDuration: 60,
		MaxRangeDays:           62,
		NextSlotsHorizonDays:   30,
		FanoutLimit:            8,
		MaxOccurrences:         DefaultMaxOccurrences,
	}
}

// Calendar is the resolved timezone and company hours of one tenant.
type Calendar struct {
	Location *time.Location
	Hours    WorkingHours
}

// Engine computes slots and detects conflicts for one tenant at a time.
// It holds no tenant state; every call receives the tenant bundle.
type Engine struct {
	policy   Policy
	expander Expander
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewEngine(policy Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		policy:   policy,
		expander: Expander{MaxOccurrences: policy.MaxOccurrences},
		logger:   logger,
		tracer:   otel.Tracer("reservo/services/availability"),
		now:      time.Now,
	}
}

// SetClock replaces the wall clock, for tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

func (e *Engine) Now() time.Time { return e.now() }

func (e *Engine) Expander() Expander { return e.expander }

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Calendar resolves the tenant's timezone and working hours, falling back
// to the deployment defaults when the tenant has no settings.
func (e *Engine) Calendar(ctx context.Context, t *repository.Tenant) (Calendar, error) {
	tz, start, end := e.policy.Timezone, e.policy.WorkStart, e.policy.WorkEnd

	settings, err := t.Company.GetSettings(ctx)
	switch {
	case err == nil:
		if settings.Timezone != "" {
			tz = settings.Timezone
		}
		if settings.WorkingHours != nil {
			start, end = settings.WorkingHours.Start, settings.WorkingHours.End
		}
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return Calendar{}, fmt.Errorf("failed to load company settings: %w", err)
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Calendar{}, fmt.Errorf("tenant %s has invalid timezone %q: %w", t.ID, tz, err)
	}
	hours, err := ParseWorkingHours(start, end)
	if err != nil {
		return Calendar{}, fmt.Errorf("tenant %s has invalid working hours: %w", t.ID, err)
	}
	return Calendar{Location: loc, Hours: hours}, nil
}

// ResolveDuration picks the slot length for a service: the professional's
// active override, else the service duration, else the default. An empty
// serviceID means the default.
func (e *Engine) ResolveDuration(ctx context.Context, t *repository.Tenant, professionalID, serviceID string) (int, error) {
	if serviceID == "" {
		return e.policy.DefaultServiceDuration, nil
	}
	svc, err := t.Catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, utils.NewNotFoundError("service", serviceID)
		}
		return 0, fmt.Errorf("failed to load service %s: %w", serviceID, err)
	}

	ps, err := t.Catalog.GetProfessionalService(ctx, professionalID, serviceID)
	switch {
	case err == nil:
		if ps.IsActive && ps.CustomDuration != nil && *ps.CustomDuration > 0 {
			return *ps.CustomDuration, nil
		}
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return 0, fmt.Errorf("failed to load professional service: %w", err)
	}

	if svc.Duration > 0 {
		return svc.Duration, nil
	}
	return e.policy.DefaultServiceDuration, nil
}

// ActiveSchedule returns the professional's active schedule, or nil.
func (e *Engine) ActiveSchedule(ctx context.Context, t *repository.Tenant, professionalID string) (*models.WeeklySchedule, error) {
	s, err := t.Schedules.GetActiveByProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load schedule of %s: %w", professionalID, err)
	}
	return s, nil
}

// BusyIntervals loads everything that blocks [from, to): occupying
// bookings, one-off unavailable blocks and occurrences of recurring ones.
// Records with id excludeID are skipped.
func (e *Engine) BusyIntervals(ctx context.Context, t *repository.Tenant, loc *time.Location, professionalID string, from, to time.Time, excludeID string) ([]Busy, error) {
	bookings, err := t.Bookings.ListOccupying(ctx, professionalID, from, to, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	blocks, err := t.Unavailable.ListOverlapping(ctx, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load unavailable blocks: %w", err)
	}
	recurring, err := t.Unavailable.ListRecurring(ctx, professionalID, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring blocks: %w", err)
	}

	busy := make([]Busy, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		busy = append(busy, Busy{Kind: KindBooking, ID: b.ID, Start: b.StartDate, End: b.EndDate})
	}
	for _, b := range blocks {
		if b.ID == excludeID {
			continue
		}
		busy = append(busy, Busy{Kind: KindUnavailable, ID: b.ID, Type: b.Type, Start: b.StartDate, End: b.EndDate})
	}
	for _, b := range recurring {
		if b.ID == excludeID {
			continue
		}
		// Widen by the block length so occurrences starting before from still count.
		occs, err := e.expander.Expand(b, from.Add(-b.Duration()), to, loc)
		if err != nil {
			return nil, err
		}
		for _, o := range occs {
			if Overlaps(o.StartDate, o.EndDate, from, to) {
				busy = append(busy, Busy{Kind: KindUnavailable, ID: b.ID, Type: b.Type, Start: o.StartDate, End: o.EndDate})
			}
		}
	}
	sort.SliceStable(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

// FindConflicts lists every booking and unavailability overlapping
// [start, end), skipping the record with id excludeID.
func (e *Engine) FindConflicts(ctx context.Context, t *repository.Tenant, professionalID string, start, end time.Time, excludeID string) ([]utils.ConflictRef, error) {
	cal, err := e.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	busy, err := e.BusyIntervals(ctx, t, cal.Location, professionalID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return Conflicting(busy, start, end), nil
}

// ValidateInterval fails with a ConflictError naming every colliding
// record. It never adjusts the request.
func (e *Engine) ValidateInterval(ctx context.Context, t *repository.Tenant, professionalID string, start, end time.Time, excludeID string) (err error) {
	ctx, span := e.startSpan(ctx, "availability.ValidateInterval",
		attribute.String("tenant.id", t.ID), attribute.String("professional.id", professionalID))
	defer func() { endSpan(span, err) }()

	refs, err := e.FindConflicts(ctx, t, professionalID, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		return utils.NewConflictError("requested interval overlaps existing bookings or unavailability", refs...)
	}
	return nil
}

// DaySlots generates and flags the slots of one calendar day.
func (e *Engine) DaySlots(ctx context.Context, t *repository.Tenant, cal Calendar, sched *models.WeeklySchedule, professionalID string, day time.Time, duration int) ([]models.AvailabilitySlot, error) {
	empty := []models.AvailabilitySlot{}
	if sched == nil {
		return empty, nil
	}
	ds := sched.Day(utils.WeekdayKey(day.In(cal.Location).Weekday()))
	if !ds.IsWorking {
		return empty, nil
	}
	slots, err := GenerateSlots(ds, day, duration, cal.Hours, cal.Location)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return empty, nil
	}
	from, to := utils.DayBounds(day, cal.Location)
	busy, err := e.BusyIntervals(ctx, t, cal.Location, professionalID, from, to, "")
	if err != nil {
		return nil, err
	}
	return MarkConflicts(slots, busy), nil
}

func (e *Engine) professionalDay(ctx context.Context, t *repository.Tenant, cal Calendar, professionalID string, day time.Time, serviceID string) (*models.ProfessionalAvailability, error) {
	duration, err := e.ResolveDuration(ctx, t, professionalID, serviceID)
	if err != nil {
		return nil, err
	}
	sched, err := e.ActiveSchedule(ctx, t, professionalID)
	if err != nil {
		return nil, err
	}
	slots, err := e.DaySlots(ctx, t, cal, sched, professionalID, day, duration)
	if err != nil {
		return nil, err
	}
	return &models.ProfessionalAvailability{
		ProfessionalID: professionalID,
		Date:           day.Format(utils.DateLayout),
		Slots:          slots,
	}, nil
}

// GetAvailability returns the flagged slots of one professional on date.
// No active schedule or a non-working day yields an empty slot list.
func (e *Engine) GetAvailability(ctx context.Context, t *repository.Tenant, professionalID, date, serviceID string) (pa *models.ProfessionalAvailability, err error) {
	ctx, span := e.startSpan(ctx, "availability.GetAvailability",
		attribute.String("tenant.id", t.ID), attribute.String("professional.id", professionalID), attribute.String("date", date))
	defer func() { endSpan(span, err) }()

	if professionalID == "" {
		return nil, utils.NewValidationError("professionalId", "professional id is required")
	}
	cal, err := e.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	day, err := utils.ParseDate(date, cal.Location)
	if err != nil {
		return nil, err
	}
	return e.professionalDay(ctx, t, cal, professionalID, day, serviceID)
}

func (e *Engine) fanout() int {
	if e.policy.FanoutLimit <= 0 {
		return 1
	}
	return e.policy.FanoutLimit
}

// GetAvailabilityForMany computes one date for several professionals
// concurrently. Results are ordered by professional id and professionals
// without any slot are omitted.
func (e *Engine) GetAvailabilityForMany(ctx context.Context, t *repository.Tenant, professionalIDs []string, date, serviceID string) (out []models.ProfessionalAvailability, err error) {
	ctx, span := e.startSpan(ctx, "availability.GetAvailabilityForMany",
		attribute.String("tenant.id", t.ID), attribute.Int("professionals", len(professionalIDs)), attribute.String("date", date))
	defer func() { endSpan(span, err) }()

	ids := uniqueSorted(professionalIDs)
	if len(ids) == 0 {
		return nil, utils.NewValidationError("professionalIds", "at least one professional id is required")
	}
	cal, err := e.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	day, err := utils.ParseDate(date, cal.Location)
	if err != nil {
		return nil, err
	}

	results := make([]*models.ProfessionalAvailability, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fanout())
	for i, id := range ids {
		g.Go(func() error {
			pa, err := e.professionalDay(gctx, t, cal, id, day, serviceID)
			if err != nil {
				return fmt.Errorf("availability of %s: %w", id, err)
			}
			results[i] = pa
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out = make([]models.ProfessionalAvailability, 0, len(results))
	for _, pa := range results {
		if pa != nil && len(pa.Slots) > 0 {
			out = append(out, *pa)
		}
	}
	return out, nil
}

// GetAvailabilityRange computes every day of [startDate, endDate]
// concurrently. Days are ordered by date and days without slots are omitted.
func (e *Engine) GetAvailabilityRange(ctx context.Context, t *repository.Tenant, professionalID, startDate, endDate, serviceID string) (out []models.ProfessionalAvailability, err error) {
	ctx, span := e.startSpan(ctx, "availability.GetAvailabilityRange",
		attribute.String("tenant.id", t.ID), attribute.String("professional.id", professionalID),
		attribute.String("start", startDate), attribute.String("end", endDate))
	defer func() { endSpan(span, err) }()

	if professionalID == "" {
		return nil, utils.NewValidationError("professionalId", "professional id is required")
	}
	cal, err := e.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	first, err := utils.ParseDate(startDate, cal.Location)
	if err != nil {
		return nil, err
	}
	last, err := utils.ParseDate(endDate, cal.Location)
	if err != nil {
		return nil, err
	}
	if last.Before(first) {
		return nil, utils.NewValidationError("endDate", "start date must be on or before end date")
	}
	days := utils.CivilDaysBetween(first, last) + 1
	if e.policy.MaxRangeDays > 0 && days > e.policy.MaxRangeDays {
		return nil, utils.NewValidationError("endDate", fmt.Sprintf("range may span at most %d days", e.policy.MaxRangeDays))
	}

	duration, err := e.ResolveDuration(ctx, t, professionalID, serviceID)
	if err != nil {
		return nil, err
	}
	sched, err := e.ActiveSchedule(ctx, t, professionalID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return []models.ProfessionalAvailability{}, nil
	}

	results := make([][]models.AvailabilitySlot, days)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fanout())
	for i := 0; i < days; i++ {
		g.Go(func() error {
			day := time.Date(first.Year(), first.Month(), first.Day()+i, 0, 0, 0, 0, cal.Location)
			slots, err := e.DaySlots(gctx, t, cal, sched, professionalID, day, duration)
			if err != nil {
				return fmt.Errorf("availability on %s: %w", day.Format(utils.DateLayout), err)
			}
			results[i] = slots
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out = make([]models.ProfessionalAvailability, 0, days)
	for i, slots := range results {
		if len(slots) == 0 {
			continue
		}
		day := time.Date(first.Year(), first.Month(), first.Day()+i, 0, 0, 0, 0, cal.Location)
		out = append(out, models.ProfessionalAvailability{
			ProfessionalID: professionalID,
			Date:           day.Format(utils.DateLayout),
			Slots:          slots,
		})
	}
	return out, nil
}

// GetNextAvailableSlots returns up to limit free slots starting after now,
// searching forward from today within the configured horizon.
func (e *Engine) GetNextAvailableSlots(ctx context.Context, t *repository.Tenant, professionalID, serviceID string, limit int) (out []models.AvailabilitySlot, err error) {
	ctx, span := e.startSpan(ctx, "availability.GetNextAvailableSlots",
		attribute.String("tenant.id", t.ID), attribute.String("professional.id", professionalID), attribute.Int("limit", limit))
	defer func() { endSpan(span, err) }()

	if limit == 0 {
		limit = DefaultNextSlotsLimit
	}
	if limit < 1 || limit > MaxNextSlotsLimit {
		return nil, utils.NewValidationError("limit", fmt.Sprintf("limit must be between 1 and %d", MaxNextSlotsLimit))
	}
	if professionalID == "" {
		return nil, utils.NewValidationError("professionalId", "professional id is required")
	}

	cal, err := e.Calendar(ctx, t)
	if err != nil {
		return nil, err
	}
	duration, err := e.ResolveDuration(ctx, t, professionalID, serviceID)
	if err != nil {
		return nil, err
	}
	sched, err := e.ActiveSchedule(ctx, t, professionalID)
	if err != nil {
		return nil, err
	}
	out = []models.AvailabilitySlot{}
	if sched == nil {
		return out, nil
	}

	now := e.now().In(cal.Location)
	today, _ := utils.DayBounds(now, cal.Location)
	for i := 0; i < e.policy.NextSlotsHorizonDays && len(out) < limit; i++ {
		day := time.Date(today.Year(), today.Month(), today.Day()+i, 0, 0, 0, 0, cal.Location)
		slots, err := e.DaySlots(ctx, t, cal, sched, professionalID, day, duration)
		if err != nil {
			return nil, err
		}
		for _, s := range slots {
			if s.IsAvailable && s.StartDate.After(now) {
				out = append(out, s)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CheckAvailability reports whether [start, end) is free of occupying
// bookings and unavailability.
func (e *Engine) CheckAvailability(ctx context.Context, t *repository.Tenant, professionalID string, start, end time.Time) (free bool, err error) {
	ctx, span := e.startSpan(ctx, "availability.CheckAvailability",
		attribute.String("tenant.id", t.ID), attribute.String("professional.id", professionalID))
	defer func() { endSpan(span, err) }()

	if !start.Before(end) {
		return false, utils.NewValidationError("endDate", "start must be before end")
	}
	refs, err := e.FindConflicts(ctx, t, professionalID, start, end, "")
	if err != nil {
		return false, err
	}
	e.logger.Debug("availability checked",
		zap.String("tenantId", t.ID), zap.String("professionalId", professionalID), zap.Int("conflicts", len(refs)))
	return len(refs) == 0, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
