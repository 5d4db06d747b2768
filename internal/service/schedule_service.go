package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
)

type scheduleStore interface {
	CreateIfAvailable(ctx context.Context, schedule *models.Schedule) error
	ListUpcoming(ctx context.Context, filter models.UpcomingScheduleFilter) ([]models.UpcomingSchedule, error)
	Overview(ctx context.Context, today models.Date) (dto.ScheduleOverview, error)
}

// ScheduleServiceConfig holds policy knobs for schedule creation.
type ScheduleServiceConfig struct {
	// GuardFailOpen lets a commit proceed when the pre-commit availability lookup fails.
	GuardFailOpen bool
	UpcomingTTL   time.Duration
	Location      *time.Location
	Now           func() time.Time
}

// ScheduleService validates and commits schedules.
type ScheduleService struct {
	store     scheduleStore
	checker   AvailabilityChecker
	cache     *CacheService
	metrics   *MetricsService
	validator fieldValidator
	logger    *zap.Logger
	cfg       ScheduleServiceConfig
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(store scheduleStore, checker AvailabilityChecker, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ScheduleServiceConfig) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ScheduleService{store: store, checker: checker, cache: cache, metrics: metrics, validator: newFieldValidator(validate), logger: logger, cfg: cfg}
}

// Today returns the current calendar date in the configured location.
func (s *ScheduleService) Today() models.Date {
	return models.DateOf(s.cfg.Now().In(s.cfg.Location))
}

// Validate checks the request without touching storage and returns the schedule it describes.
func (s *ScheduleService) Validate(req dto.CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var missing []string
	if req.ScheduledDate == nil || req.ScheduledDate.IsZero() {
		missing = append(missing, "scheduled_date")
	}
	if req.StartTime == nil {
		missing = append(missing, "start_time")
	}
	if req.EndTime == nil {
		missing = append(missing, "end_time")
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, strings.Join(missing, ", ")+" required")
	}

	if !req.StartTime.Before(*req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	if req.ScheduledDate.Before(s.Today()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_date cannot be in the past")
	}

	return &models.Schedule{
		ClassID:       req.ClassID,
		LecturerID:    req.LecturerID,
		ScheduledDate: *req.ScheduledDate,
		StartTime:     *req.StartTime,
		EndTime:       *req.EndTime,
		Location:      trimmedOrNil(req.Location),
		Notes:         trimmedOrNil(req.Notes),
		Status:        models.ScheduleStatusScheduled,
	}, nil
}

// Create validates the request, runs the pre-commit availability guard and inserts the schedule.
func (s *ScheduleService) Create(ctx context.Context, req dto.CreateScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	if err := s.guard(ctx, schedule); err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.store.CreateIfAvailable(ctx, schedule)
	s.metrics.ObserveDBQuery("schedules_insert", time.Since(start))
	if err != nil {
		return nil, s.translateCreateError(schedule, err)
	}

	s.metrics.ObserveScheduleCreated()
	_ = s.cache.Invalidate(ctx, cacheKeyUpcomingPrefix+"*")
	s.logger.Info("schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("lecturer_id", schedule.LecturerID),
		zap.Stringer("date", schedule.ScheduledDate),
	)
	return schedule, nil
}

func (s *ScheduleService) guard(ctx context.Context, schedule *models.Schedule) error {
	result, err := s.checker.Check(ctx, models.AvailabilityQuery{
		LecturerID: schedule.LecturerID,
		Date:       schedule.ScheduledDate,
		Range:      schedule.TimeRange(),
	}, models.CheckSourceGuard)
	if err != nil {
		if s.cfg.GuardFailOpen {
			s.logger.Warn("availability unknown, committing under fail-open policy", zap.String("lecturer_id", schedule.LecturerID), zap.Error(err))
			return nil
		}
		return appErrors.FromError(err)
	}
	if result.Status == models.AvailabilityConflict {
		return appErrors.WithDetails(appErrors.ErrScheduleConflict, result.Conflict)
	}
	return nil
}

func (s *ScheduleService) translateCreateError(schedule *models.Schedule, err error) error {
	var conflict *models.ScheduleConflictError
	switch {
	case errors.As(err, &conflict):
		s.logger.Info("schedule rejected by store", zap.String("lecturer_id", schedule.LecturerID), zap.Error(err))
		return appErrors.WithDetails(appErrors.ErrScheduleConflict, conflict.Conflict)
	case errors.Is(err, models.ErrReferenceNotFound):
		return appErrors.Clone(appErrors.ErrValidation, "lecturer or class does not exist")
	default:
		s.logger.Error("failed to create schedule", zap.String("lecturer_id", schedule.LecturerID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
}

// ListUpcoming returns schedules from filter.From (today when unset) with lecturer and class names.
func (s *ScheduleService) ListUpcoming(ctx context.Context, filter models.UpcomingScheduleFilter) ([]models.UpcomingSchedule, bool, error) {
	if filter.From.IsZero() {
		filter.From = s.Today()
	}
	if filter.Status == "" {
		filter.Status = models.ScheduleStatusScheduled
	}

	key := upcomingCacheKey(filter)
	var cached []models.UpcomingSchedule
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	start := time.Now()
	items, err := s.store.ListUpcoming(ctx, filter)
	s.metrics.ObserveDBQuery("schedules_upcoming", time.Since(start))
	if err != nil {
		s.logger.Error("failed to list upcoming schedules", zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list upcoming schedules")
	}
	_ = s.cache.Set(ctx, key, items, s.cfg.UpcomingTTL)
	return items, false, nil
}

// Overview returns the headline counts for today. It shares the upcoming cache namespace so a new
// schedule invalidates it.
func (s *ScheduleService) Overview(ctx context.Context) (*dto.ScheduleOverview, bool, error) {
	today := s.Today()
	key := cacheKeyUpcomingPrefix + "overview:" + today.String()

	var cached dto.ScheduleOverview
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	overview, err := s.store.Overview(ctx, today)
	s.metrics.ObserveDBQuery("schedules_overview", time.Since(start))
	if err != nil {
		s.logger.Error("failed to load schedule overview", zap.Stringer("date", today), zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule overview")
	}
	_ = s.cache.Set(ctx, key, overview, s.cfg.UpcomingTTL)
	return &overview, false, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
