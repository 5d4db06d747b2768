package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/jobs"
)

const liveCheckJobType = "availability_check"

type scheduleCommitter interface {
	Validate(req dto.CreateScheduleRequest) (*models.Schedule, error)
	Create(ctx context.Context, req dto.CreateScheduleRequest) (*models.Schedule, error)
}

type lecturerFinder interface {
	GetLecturer(ctx context.Context, id string) (*models.Lecturer, error)
}

// BookingServiceConfig tunes session lifetime and live checking.
type BookingServiceConfig struct {
	SessionTTL      time.Duration
	Debounce        time.Duration
	CheckWorkers    int
	CheckBuffer     int
	JanitorInterval time.Duration
	Now             func() time.Time
}

type liveCheck struct {
	sessionID string
	token     uint64
	query     models.AvailabilityQuery
}

// BookingService drives booking sessions: debounced live availability checks while the user
// edits, then validation and commit on submit.
type BookingService struct {
	lecturers lecturerFinder
	schedules scheduleCommitter
	checker   AvailabilityChecker
	metrics   *MetricsService
	validator fieldValidator
	logger    *zap.Logger
	cfg       BookingServiceConfig

	queue *jobs.Queue

	mu       sync.RWMutex
	sessions map[string]*bookingSession

	stopJanitor context.CancelFunc
	janitorDone chan struct{}
}

// NewBookingService constructs a BookingService. Call Start before use.
func NewBookingService(lecturers lecturerFinder, schedules scheduleCommitter, checker AvailabilityChecker, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg BookingServiceConfig) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &BookingService{
		lecturers: lecturers,
		schedules: schedules,
		checker:   checker,
		metrics:   metrics,
		validator: newFieldValidator(validate),
		logger:    logger,
		cfg:       cfg,
		sessions:  make(map[string]*bookingSession),
	}
	s.queue = jobs.NewQueue("booking-live-check", s.runLiveCheck, jobs.QueueConfig{
		Workers:    cfg.CheckWorkers,
		BufferSize: cfg.CheckBuffer,
		JobTimeout: 5 * time.Second,
		Logger:     logger,
	})
	return s
}

// Start launches the live check workers and the expiry janitor.
func (s *BookingService) Start(ctx context.Context) {
	s.queue.Start(ctx)

	janitorCtx, cancel := context.WithCancel(ctx)
	s.stopJanitor = cancel
	s.janitorDone = make(chan struct{})
	go s.janitor(janitorCtx)
}

// Stop halts background work and drops pending debounce timers.
func (s *BookingService) Stop() {
	if s.stopJanitor != nil {
		s.stopJanitor()
		<-s.janitorDone
	}
	s.mu.RLock()
	for _, sess := range s.sessions {
		sess.mu.Lock()
		sess.stopDebounce()
		sess.mu.Unlock()
	}
	s.mu.RUnlock()
	s.queue.Stop()
}

// Open starts a booking attempt for an Active lecturer.
func (s *BookingService) Open(ctx context.Context, req dto.OpenBookingRequest) (models.BookingSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.BookingSnapshot{}, err
	}
	lecturer, err := s.lecturers.GetLecturer(ctx, req.LecturerID)
	if err != nil {
		return models.BookingSnapshot{}, err
	}
	if !lecturer.IsActive() {
		return models.BookingSnapshot{}, appErrors.Clone(appErrors.ErrValidation, "lecturer is not active")
	}

	sess := newBookingSession(uuid.NewString(), lecturer, s.cfg.Now(), s.cfg.SessionTTL, s.metrics.ObserveBookingTransition)
	sess.fields.ClassID = req.ClassID

	s.mu.Lock()
	s.sessions[sess.id] = sess
	open := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetOpenBookingSessions(open)

	s.logger.Debug("booking opened", zap.String("booking_id", sess.id), zap.String("lecturer_id", lecturer.ID))
	return sess.snapshot(), nil
}

// Get returns the current view of a session.
func (s *BookingService) Get(id string) (models.BookingSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return models.BookingSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// Update applies field edits. Slot edits with a complete, ordered range schedule a debounced live
// check and return immediately in Checking.
func (s *BookingService) Update(id string, req dto.UpdateBookingRequest) (models.BookingSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.BookingSnapshot{}, err
	}
	change, err := parseBookingChange(req)
	if err != nil {
		return models.BookingSnapshot{}, err
	}

	sess, err := s.session(id)
	if err != nil {
		return models.BookingSnapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	check, token, err := sess.applyChange(change)
	if err != nil {
		return models.BookingSnapshot{}, err
	}
	sess.touch(s.cfg.Now(), s.cfg.SessionTTL)
	if check {
		job := liveCheck{sessionID: sess.id, token: token, query: sess.query()}
		sess.debounce = time.AfterFunc(s.cfg.Debounce, func() { s.dispatchLiveCheck(job) })
	}
	return sess.snapshot(), nil
}

// Submit validates locally, then runs the authoritative guard and insert. The session lock is not
// held during I/O; Submitting blocks concurrent edits and submits.
func (s *BookingService) Submit(ctx context.Context, id string) (models.BookingSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return models.BookingSnapshot{}, err
	}

	sess.mu.Lock()
	req, token, err := sess.beginSubmit(func(r dto.CreateScheduleRequest) error {
		_, verr := s.schedules.Validate(r)
		return verr
	})
	sess.touch(s.cfg.Now(), s.cfg.SessionTTL)
	sess.mu.Unlock()
	if err != nil {
		return s.snapshotWith(sess), err
	}

	schedule, createErr := s.schedules.Create(ctx, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if createErr != nil {
		sess.failSubmit(token, createErr)
		s.logger.Info("booking rejected", zap.String("booking_id", sess.id), zap.Error(createErr))
		return sess.snapshot(), createErr
	}
	sess.completeSubmit(token, schedule)
	return sess.snapshot(), nil
}

// Cancel abandons a session. Nothing is persisted.
func (s *BookingService) Cancel(id string) (models.BookingSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return models.BookingSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.cancel(); err != nil {
		return models.BookingSnapshot{}, err
	}
	sess.touch(s.cfg.Now(), s.cfg.SessionTTL)
	return sess.snapshot(), nil
}

// OpenSessions reports the number of sessions held in memory.
func (s *BookingService) OpenSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *BookingService) session(id string) (*bookingSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	return sess, nil
}

func (s *BookingService) snapshotWith(sess *bookingSession) models.BookingSnapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot()
}

func (s *BookingService) dispatchLiveCheck(check liveCheck) {
	err := s.queue.TryEnqueue(jobs.Job{ID: check.sessionID, Type: liveCheckJobType, Payload: check})
	if err == nil {
		return
	}
	s.logger.Warn("live availability check not queued", zap.String("booking_id", check.sessionID), zap.Int("pending", s.queue.Pending()), zap.Error(err))
	s.applyLiveResult(check, models.AvailabilityResult{Status: models.AvailabilityUnknown}, err)
}

func (s *BookingService) runLiveCheck(ctx context.Context, job jobs.Job) error {
	check, ok := job.Payload.(liveCheck)
	if !ok {
		return errors.New("unexpected live check payload")
	}
	result, err := s.checker.Check(ctx, check.query, models.CheckSourceLive)
	s.applyLiveResult(check, result, err)
	return nil
}

func (s *BookingService) applyLiveResult(check liveCheck, result models.AvailabilityResult, err error) {
	sess, lookupErr := s.session(check.sessionID)
	if lookupErr != nil {
		return
	}
	sess.mu.Lock()
	applied := sess.applyCheck(check.token, result, err)
	sess.mu.Unlock()
	if !applied {
		s.logger.Debug("discarded stale availability result", zap.String("booking_id", check.sessionID), zap.Uint64("token", check.token))
	}
}

func (s *BookingService) janitor(ctx context.Context) {
	defer close(s.janitorDone)
	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.expire(s.cfg.Now()); n > 0 {
				s.logger.Debug("expired booking sessions", zap.Int("count", n))
			}
		}
	}
}

// expire drops sessions whose TTL has elapsed. Sessions mid-submit are kept until they settle.
func (s *BookingService) expire(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if now.After(sess.expiresAt) && sess.state != models.BookingStateSubmitting {
			sess.stopDebounce()
			delete(s.sessions, id)
			removed++
		}
		sess.mu.Unlock()
	}
	open := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetOpenBookingSessions(open)
	return removed
}

func parseBookingChange(req dto.UpdateBookingRequest) (bookingChange, error) {
	change := bookingChange{classID: req.ClassID, location: req.Location, notes: req.Notes}

	if req.ScheduledDate != nil {
		if *req.ScheduledDate == "" {
			change.clearDate = true
		} else {
			d, err := models.ParseDate(*req.ScheduledDate)
			if err != nil {
				return bookingChange{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
			}
			change.scheduledDate = &d
		}
	}
	if req.StartTime != nil {
		if *req.StartTime == "" {
			change.clearStart = true
		} else {
			t, err := models.ParseTimeOfDay(*req.StartTime)
			if err != nil {
				return bookingChange{}, appErrors.Clone(appErrors.ErrValidation, "start_time: "+err.Error())
			}
			change.startTime = &t
		}
	}
	if req.EndTime != nil {
		if *req.EndTime == "" {
			change.clearEnd = true
		} else {
			t, err := models.ParseTimeOfDay(*req.EndTime)
			if err != nil {
				return bookingChange{}, appErrors.Clone(appErrors.ErrValidation, "end_time: "+err.Error())
			}
			change.endTime = &t
		}
	}
	return change, nil
}
