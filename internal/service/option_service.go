package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
)

type lecturerReader interface {
	List(ctx context.Context, filter dto.LecturerFilter) ([]models.Lecturer, error)
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
}

type classReader interface {
	ListOptions(ctx context.Context, status string) ([]models.ClassOption, error)
}

// OptionService supplies the lecturer and class pick lists for a booking.
type OptionService struct {
	lecturers lecturerReader
	classes   classReader
	cache     *CacheService
	ttl       time.Duration
	logger    *zap.Logger
}

// NewOptionService constructs an OptionService. cache may be nil.
func NewOptionService(lecturers lecturerReader, classes classReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *OptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptionService{lecturers: lecturers, classes: classes, cache: cache, ttl: ttl, logger: logger}
}

// ListLecturers returns lecturers matching filter ordered by name. An empty status lists all
// lecturers. Only the unfiltered Active list is cached.
func (s *OptionService) ListLecturers(ctx context.Context, filter dto.LecturerFilter) ([]models.Lecturer, bool, error) {
	cacheable := filter.Status == models.LecturerStatusActive && filter.Search == ""
	if cacheable {
		var cached []models.Lecturer
		if hit, _ := s.cache.Get(ctx, cacheKeyLecturerOptions, &cached); hit {
			return cached, true, nil
		}
	}

	lecturers, err := s.lecturers.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list lecturers", zap.String("status", filter.Status), zap.String("search", filter.Search), zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lecturers")
	}

	if cacheable {
		_ = s.cache.Set(ctx, cacheKeyLecturerOptions, lecturers, s.ttl)
	}
	return lecturers, false, nil
}

// ListActiveClasses returns Active classes ordered by name.
func (s *OptionService) ListActiveClasses(ctx context.Context) ([]models.ClassOption, bool, error) {
	var cached []models.ClassOption
	if hit, _ := s.cache.Get(ctx, cacheKeyClassOptions, &cached); hit {
		return cached, true, nil
	}

	options, err := s.classes.ListOptions(ctx, models.ClassStatusActive)
	if err != nil {
		s.logger.Error("failed to list classes", zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	_ = s.cache.Set(ctx, cacheKeyClassOptions, options, s.ttl)
	return options, false, nil
}

// GetLecturer loads a single lecturer.
func (s *OptionService) GetLecturer(ctx context.Context, id string) (*models.Lecturer, error) {
	lecturer, err := s.lecturers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	return lecturer, nil
}
