package models

import "time"

// BookingState enumerates the states of a single booking attempt.
type BookingState string

const (
	BookingStateEditing    BookingState = "editing"
	BookingStateChecking   BookingState = "checking"
	BookingStateValid      BookingState = "valid"
	BookingStateConflict   BookingState = "conflict"
	BookingStateUnknown    BookingState = "unknown"
	BookingStateSubmitting BookingState = "submitting"
	BookingStateCommitted  BookingState = "committed"
	BookingStateRejected   BookingState = "rejected"
	BookingStateCancelled  BookingState = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s BookingState) Terminal() bool {
	return s == BookingStateCommitted || s == BookingStateCancelled
}

// BookingFields holds the user-editable values of a booking attempt.
type BookingFields struct {
	ClassID       string     `json:"class_id,omitempty"`
	ScheduledDate *Date      `json:"scheduled_date,omitempty"`
	StartTime     *TimeOfDay `json:"start_time,omitempty"`
	EndTime       *TimeOfDay `json:"end_time,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// Schedulable reports whether date and both times are populated.
func (f BookingFields) Schedulable() bool {
	return f.ScheduledDate != nil && f.StartTime != nil && f.EndTime != nil
}

// BookingError is the user-facing error surfaced on a booking session.
type BookingError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BookingSnapshot is a read-only view of a booking session.
type BookingSnapshot struct {
	ID           string              `json:"id"`
	LecturerID   string              `json:"lecturer_id"`
	LecturerName string              `json:"lecturer_name"`
	State        BookingState        `json:"state"`
	Attempt      uint64              `json:"attempt"`
	Fields       BookingFields       `json:"fields"`
	Availability *AvailabilityResult `json:"availability,omitempty"`
	Message      string              `json:"message,omitempty"`
	Error        *BookingError       `json:"error,omitempty"`
	Schedule     *Schedule           `json:"schedule,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	ExpiresAt    time.Time           `json:"expires_at"`
}
