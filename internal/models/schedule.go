package models

import (
	"errors"
	"time"
)

// ScheduleStatus captures the lifecycle of a schedule row.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "Scheduled"
	ScheduleStatusCancelled ScheduleStatus = "Cancelled"
	ScheduleStatusCompleted ScheduleStatus = "Completed"
)

// ErrReferenceNotFound is returned when a schedule points at a missing lecturer or class.
var ErrReferenceNotFound = errors.New("referenced lecturer or class does not exist")

// Schedule is a booked class session for a lecturer on a date and time range.
type Schedule struct {
	ID            string         `db:"id" json:"id"`
	ClassID       string         `db:"class_id" json:"class_id"`
	LecturerID    string         `db:"lecturer_id" json:"lecturer_id"`
	ScheduledDate Date           `db:"scheduled_date" json:"scheduled_date"`
	StartTime     TimeOfDay      `db:"start_time" json:"start_time"`
	EndTime       TimeOfDay      `db:"end_time" json:"end_time"`
	Location      *string        `db:"location" json:"location,omitempty"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`
	Status        ScheduleStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// TimeRange returns the schedule's [start, end) window.
func (s Schedule) TimeRange() TimeRange {
	return TimeRange{Start: s.StartTime, End: s.EndTime}
}

// UpcomingSchedule joins a schedule with lecturer and class display fields.
type UpcomingSchedule struct {
	Schedule
	LecturerName  string `db:"lecturer_name" json:"lecturer_name"`
	LecturerEmail string `db:"lecturer_email" json:"lecturer_email"`
	ClassName     string `db:"class_name" json:"class_name"`
}

// UpcomingScheduleFilter narrows the upcoming schedule listing.
type UpcomingScheduleFilter struct {
	From       Date
	Status     ScheduleStatus
	LecturerID string
}

// ScheduleConflict describes the existing schedule that blocks a booking.
type ScheduleConflict struct {
	ScheduleID    string    `json:"schedule_id"`
	LecturerID    string    `json:"lecturer_id"`
	ClassID       string    `json:"class_id"`
	ScheduledDate Date      `json:"scheduled_date"`
	StartTime     TimeOfDay `json:"start_time"`
	EndTime       TimeOfDay `json:"end_time"`
}

// ConflictFromSchedule projects a schedule into conflict details.
func ConflictFromSchedule(s Schedule) *ScheduleConflict {
	return &ScheduleConflict{
		ScheduleID:    s.ID,
		LecturerID:    s.LecturerID,
		ClassID:       s.ClassID,
		ScheduledDate: s.ScheduledDate,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
	}
}

// ScheduleConflictError is returned when a booking collides with an existing schedule.
type ScheduleConflictError struct {
	Message  string            `json:"message"`
	Conflict *ScheduleConflict `json:"conflict,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
