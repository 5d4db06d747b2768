package dto

// OpenBookingRequest starts a booking attempt for a lecturer.
type OpenBookingRequest struct {
	LecturerID string `json:"lecturer_id" validate:"required,uuid"`
	ClassID    string `json:"class_id" validate:"omitempty,uuid"`
}

// UpdateBookingRequest carries field edits. Omitted fields are untouched; an empty string clears.
type UpdateBookingRequest struct {
	ClassID       *string `json:"class_id" validate:"omitempty,uuid"`
	ScheduledDate *string `json:"scheduled_date" example:"2026-11-02"`
	StartTime     *string `json:"start_time" example:"09:00"`
	EndTime       *string `json:"end_time" example:"10:30"`
	Location      *string `json:"location" validate:"omitempty,max=255"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}
