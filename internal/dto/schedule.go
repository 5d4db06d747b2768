package dto

import "github.com/noah-isme/bible-studies-api/internal/models"

// CreateScheduleRequest is the payload for booking a lecturer into a class session.
type CreateScheduleRequest struct {
	ClassID       string            `json:"class_id" validate:"required,uuid"`
	LecturerID    string            `json:"lecturer_id" validate:"required,uuid"`
	ScheduledDate *models.Date      `json:"scheduled_date" swaggertype:"string" example:"2026-11-02"`
	StartTime     *models.TimeOfDay `json:"start_time" swaggertype:"string" example:"09:00"`
	EndTime       *models.TimeOfDay `json:"end_time" swaggertype:"string" example:"10:30"`
	Location      *string           `json:"location" validate:"omitempty,max=255"`
	Notes         *string           `json:"notes" validate:"omitempty,max=2000"`
}

// ScheduleOverview holds the headline counts of the lecturer schedule page.
type ScheduleOverview struct {
	Date             models.Date `json:"date" db:"-" swaggertype:"string"`
	ActiveLecturers  int         `json:"active_lecturers" db:"active_lecturers"`
	UpcomingSessions int         `json:"upcoming_sessions" db:"upcoming_sessions"`
	TodaySessions    int         `json:"today_sessions" db:"today_sessions"`
	DistinctSubjects int         `json:"distinct_subjects" db:"distinct_subjects"`
}
