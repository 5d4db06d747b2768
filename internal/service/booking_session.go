package service

import (
	"sync"
	"time"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
)

const (
	msgChecking    = "checking lecturer availability"
	msgAvailable   = "lecturer is available"
	msgConflict    = "lecturer is not available at this time"
	msgUnknown     = "availability could not be verified; it will be checked again on submit"
	msgInvalidTime = "end_time must be after start_time"
)

// bookingSession is the state machine of one booking attempt. Methods other than lock/unlock
// expect the caller to hold mu.
type bookingSession struct {
	mu sync.Mutex

	id           string
	lecturerID   string
	lecturerName string

	state        models.BookingState
	token        uint64
	fields       models.BookingFields
	availability *models.AvailabilityResult
	message      string
	err          *models.BookingError
	schedule     *models.Schedule

	createdAt time.Time
	updatedAt time.Time
	expiresAt time.Time

	debounce *time.Timer
	observe  func(models.BookingState)
}

// bookingChange is a parsed field patch. A nil field is untouched; clear* drops the value.
type bookingChange struct {
	classID       *string
	scheduledDate *models.Date
	clearDate     bool
	startTime     *models.TimeOfDay
	clearStart    bool
	endTime       *models.TimeOfDay
	clearEnd      bool
	location      *string
	notes         *string
}

func newBookingSession(id string, lecturer *models.Lecturer, now time.Time, ttl time.Duration, observe func(models.BookingState)) *bookingSession {
	if observe == nil {
		observe = func(models.BookingState) {}
	}
	b := &bookingSession{
		id:           id,
		lecturerID:   lecturer.ID,
		lecturerName: lecturer.Name,
		createdAt:    now,
		updatedAt:    now,
		expiresAt:    now.Add(ttl),
		observe:      observe,
	}
	b.setState(models.BookingStateEditing)
	return b
}

func (b *bookingSession) setState(state models.BookingState) {
	b.state = state
	b.observe(state)
}

func (b *bookingSession) touch(now time.Time, ttl time.Duration) {
	b.updatedAt = now
	b.expiresAt = now.Add(ttl)
}

func (b *bookingSession) stopDebounce() {
	if b.debounce != nil {
		b.debounce.Stop()
		b.debounce = nil
	}
}

// applyChange updates fields. It reports whether a live availability check should be scheduled
// for the returned token.
func (b *bookingSession) applyChange(change bookingChange) (bool, uint64, error) {
	if b.state.Terminal() || b.state == models.BookingStateSubmitting {
		return false, 0, appErrors.Clone(appErrors.ErrInvalidState, "booking can no longer be edited in state "+string(b.state))
	}

	if change.classID != nil {
		b.fields.ClassID = *change.classID
	}
	if change.location != nil {
		b.fields.Location = trimmedOrNil(change.location)
	}
	if change.notes != nil {
		b.fields.Notes = trimmedOrNil(change.notes)
	}

	slotChanged := false
	if change.clearDate || change.scheduledDate != nil {
		slotChanged = slotChanged || !equalDate(b.fields.ScheduledDate, change.scheduledDate)
		b.fields.ScheduledDate = change.scheduledDate
	}
	if change.clearStart || change.startTime != nil {
		slotChanged = slotChanged || !equalTime(b.fields.StartTime, change.startTime)
		b.fields.StartTime = change.startTime
	}
	if change.clearEnd || change.endTime != nil {
		slotChanged = slotChanged || !equalTime(b.fields.EndTime, change.endTime)
		b.fields.EndTime = change.endTime
	}

	if !slotChanged {
		return false, b.token, nil
	}

	// Any slot edit supersedes whatever check or rejection came before.
	b.token++
	b.stopDebounce()
	b.availability = nil
	b.err = nil

	if !b.fields.Schedulable() {
		b.message = ""
		b.setState(models.BookingStateEditing)
		return false, b.token, nil
	}
	if !b.fields.StartTime.Before(*b.fields.EndTime) {
		b.message = msgInvalidTime
		b.err = &models.BookingError{Code: appErrors.ErrValidation.Code, Message: msgInvalidTime}
		b.setState(models.BookingStateEditing)
		return false, b.token, nil
	}

	b.message = msgChecking
	b.setState(models.BookingStateChecking)
	return true, b.token, nil
}

// query builds the availability question for the current fields. Only valid while Schedulable.
func (b *bookingSession) query() models.AvailabilityQuery {
	return models.AvailabilityQuery{
		LecturerID: b.lecturerID,
		Date:       *b.fields.ScheduledDate,
		Range:      models.TimeRange{Start: *b.fields.StartTime, End: *b.fields.EndTime},
	}
}

// applyCheck folds a live check result into the session. Results for an old token are dropped.
func (b *bookingSession) applyCheck(token uint64, result models.AvailabilityResult, err error) bool {
	if token != b.token || b.state != models.BookingStateChecking {
		return false
	}

	res := result
	b.availability = &res
	switch {
	case err != nil || result.Status == models.AvailabilityUnknown:
		b.availability.Status = models.AvailabilityUnknown
		b.message = msgUnknown
		b.setState(models.BookingStateUnknown)
	case result.Status == models.AvailabilityConflict:
		b.message = msgConflict
		b.err = &models.BookingError{Code: appErrors.ErrScheduleConflict.Code, Message: msgConflict}
		b.setState(models.BookingStateConflict)
	default:
		b.message = msgAvailable
		b.setState(models.BookingStateValid)
	}
	return true
}

// beginSubmit moves the session into Submitting once local validation passes and returns the
// request to commit. validate must not perform I/O.
func (b *bookingSession) beginSubmit(validate func(dto.CreateScheduleRequest) error) (dto.CreateScheduleRequest, uint64, error) {
	switch b.state {
	case models.BookingStateSubmitting, models.BookingStateCommitted, models.BookingStateCancelled:
		return dto.CreateScheduleRequest{}, 0, appErrors.Clone(appErrors.ErrInvalidState, "booking cannot be submitted in state "+string(b.state))
	case models.BookingStateConflict:
		var conflict *models.ScheduleConflict
		if b.availability != nil {
			conflict = b.availability.Conflict
		}
		return dto.CreateScheduleRequest{}, 0, appErrors.WithDetails(appErrors.Clone(appErrors.ErrScheduleConflict, msgConflict), conflict)
	}

	req := b.request()
	if err := validate(req); err != nil {
		appErr := appErrors.FromError(err)
		b.err = &models.BookingError{Code: appErr.Code, Message: appErr.Message}
		b.message = appErr.Message
		return dto.CreateScheduleRequest{}, 0, err
	}

	b.token++
	b.stopDebounce()
	b.err = nil
	b.message = ""
	b.setState(models.BookingStateSubmitting)
	return req, b.token, nil
}

func (b *bookingSession) request() dto.CreateScheduleRequest {
	return dto.CreateScheduleRequest{
		ClassID:       b.fields.ClassID,
		LecturerID:    b.lecturerID,
		ScheduledDate: b.fields.ScheduledDate,
		StartTime:     b.fields.StartTime,
		EndTime:       b.fields.EndTime,
		Location:      b.fields.Location,
		Notes:         b.fields.Notes,
	}
}

func (b *bookingSession) completeSubmit(token uint64, schedule *models.Schedule) {
	if token != b.token || b.state != models.BookingStateSubmitting {
		return
	}
	b.schedule = schedule
	b.availability = &models.AvailabilityResult{Status: models.AvailabilityAvailable}
	b.message = "schedule created"
	b.setState(models.BookingStateCommitted)
}

func (b *bookingSession) failSubmit(token uint64, err error) {
	if token != b.token || b.state != models.BookingStateSubmitting {
		return
	}
	appErr := appErrors.FromError(err)
	b.err = &models.BookingError{Code: appErr.Code, Message: appErr.Message}
	b.message = appErr.Message
	if appErr.Code == appErrors.ErrScheduleConflict.Code {
		conflict, _ := appErr.Details.(*models.ScheduleConflict)
		b.availability = &models.AvailabilityResult{Status: models.AvailabilityConflict, Conflict: conflict}
	}
	b.setState(models.BookingStateRejected)
}

func (b *bookingSession) cancel() error {
	switch b.state {
	case models.BookingStateSubmitting, models.BookingStateCommitted, models.BookingStateCancelled:
		return appErrors.Clone(appErrors.ErrInvalidState, "booking cannot be cancelled in state "+string(b.state))
	}
	b.token++
	b.stopDebounce()
	b.message = "booking cancelled"
	b.setState(models.BookingStateCancelled)
	return nil
}

func (b *bookingSession) snapshot() models.BookingSnapshot {
	snap := models.BookingSnapshot{
		ID:           b.id,
		LecturerID:   b.lecturerID,
		LecturerName: b.lecturerName,
		State:        b.state,
		Attempt:      b.token,
		Fields:       b.fields,
		Message:      b.message,
		Schedule:     b.schedule,
		CreatedAt:    b.createdAt,
		UpdatedAt:    b.updatedAt,
		ExpiresAt:    b.expiresAt,
	}
	if b.availability != nil {
		av := *b.availability
		snap.Availability = &av
	}
	if b.err != nil {
		e := *b.err
		snap.Error = &e
	}
	return snap
}

func equalDate(a, b *models.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *models.TimeOfDay) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
