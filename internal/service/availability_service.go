package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/middleware/requestid"
)

type scheduleLookup interface {
	ListScheduledForLecturerOnDate(ctx context.Context, lecturerID string, date models.Date, excludeID string) ([]models.Schedule, error)
}

// AvailabilityChecker answers whether a lecturer is free for a window. Both the live check and
// the pre-commit guard call through this interface.
type AvailabilityChecker interface {
	Check(ctx context.Context, q models.AvailabilityQuery, source models.CheckSource) (models.AvailabilityResult, error)
}

// AvailabilityService implements AvailabilityChecker over the schedule store.
type AvailabilityService struct {
	repo    scheduleLookup
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(repo scheduleLookup, metrics *MetricsService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, metrics: metrics, logger: logger}
}

// Check scans the lecturer's Scheduled rows on the date for the first one overlapping q.Range.
// A failed lookup yields AvailabilityUnknown together with ErrAvailabilityUnknown; callers decide
// whether that blocks. The range itself is not validated here.
func (s *AvailabilityService) Check(ctx context.Context, q models.AvailabilityQuery, source models.CheckSource) (models.AvailabilityResult, error) {
	start := time.Now()
	schedules, err := s.repo.ListScheduledForLecturerOnDate(ctx, q.LecturerID, q.Date, q.ExcludeScheduleID)
	s.metrics.ObserveDBQuery("schedules_for_lecturer", time.Since(start))
	if err != nil {
		s.metrics.ObserveAvailabilityCheck(source, models.AvailabilityUnknown, time.Since(start))
		s.logger.Warn("availability lookup failed",
			zap.String("lecturer_id", q.LecturerID),
			zap.Stringer("date", q.Date),
			zap.String("source", string(source)),
			zap.String("request_id", requestid.FromContext(ctx)),
			zap.Error(err),
		)
		return models.AvailabilityResult{Status: models.AvailabilityUnknown},
			appErrors.Wrap(err, appErrors.ErrAvailabilityUnknown.Code, appErrors.ErrAvailabilityUnknown.Status, appErrors.ErrAvailabilityUnknown.Message)
	}

	result := models.AvailabilityResult{Status: models.AvailabilityAvailable}
	if existing := firstOverlap(schedules, q); existing != nil {
		result = models.AvailabilityResult{Status: models.AvailabilityConflict, Conflict: models.ConflictFromSchedule(*existing)}
	}
	s.metrics.ObserveAvailabilityCheck(source, result.Status, time.Since(start))
	return result, nil
}

func firstOverlap(schedules []models.Schedule, q models.AvailabilityQuery) *models.Schedule {
	for i := range schedules {
		sched := &schedules[i]
		if sched.Status != models.ScheduleStatusScheduled || (q.ExcludeScheduleID != "" && sched.ID == q.ExcludeScheduleID) {
			continue
		}
		if sched.ScheduledDate != q.Date {
			continue
		}
		if sched.TimeRange().Overlaps(q.Range) {
			return sched
		}
	}
	return nil
}
