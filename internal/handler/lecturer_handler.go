package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/response"
)

type lecturerOptions interface {
	ListLecturers(ctx context.Context, filter dto.LecturerFilter) ([]models.Lecturer, bool, error)
	GetLecturer(ctx context.Context, id string) (*models.Lecturer, error)
}

type availabilityChecker interface {
	Check(ctx context.Context, q models.AvailabilityQuery, source models.CheckSource) (models.AvailabilityResult, error)
}

// AvailabilityResponse answers an availability query.
type AvailabilityResponse struct {
	LecturerID string                    `json:"lecturer_id"`
	Date       models.Date               `json:"date" swaggertype:"string"`
	StartTime  models.TimeOfDay          `json:"start_time" swaggertype:"string"`
	EndTime    models.TimeOfDay          `json:"end_time" swaggertype:"string"`
	Available  bool                      `json:"available"`
	Status     models.AvailabilityStatus `json:"status"`
	Conflict   *models.ScheduleConflict  `json:"conflict,omitempty"`
}

// LecturerHandler serves lecturer options and availability.
type LecturerHandler struct {
	options lecturerOptions
	checker availabilityChecker
}

// NewLecturerHandler constructs a LecturerHandler.
func NewLecturerHandler(options lecturerOptions, checker availabilityChecker) *LecturerHandler {
	return &LecturerHandler{options: options, checker: checker}
}

// List godoc
// @Summary List lecturers
// @Description Lecturers ordered by name. Defaults to Active; status=all lists every lecturer. q matches name or email.
// @Tags Lecturers
// @Produce json
// @Param status query string false "Lecturer status (default Active, or all)"
// @Param q query string false "Case-insensitive name or email search"
// @Success 200 {object} response.Envelope
// @Router /lecturers [get]
func (h *LecturerHandler) List(c *gin.Context) {
	status := strings.TrimSpace(c.DefaultQuery("status", models.LecturerStatusActive))
	if strings.EqualFold(status, "all") {
		status = ""
	}
	filter := dto.LecturerFilter{Status: status, Search: strings.TrimSpace(c.Query("q"))}
	lecturers, hit, err := h.options.ListLecturers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedJSON(c, http.StatusOK, lecturers, hit)
}

// Get godoc
// @Summary Get lecturer
// @Tags Lecturers
// @Produce json
// @Param id path string true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id} [get]
func (h *LecturerHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	lecturer, err := h.options.GetLecturer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturer)
}

// Availability godoc
// @Summary Check lecturer availability
// @Description Reports whether the lecturer has no Scheduled booking overlapping [start_time, end_time) on date.
// @Tags Lecturers
// @Produce json
// @Param id path string true "Lecturer ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start_time query string true "Start time (HH:MM)"
// @Param end_time query string true "End time (HH:MM)"
// @Param exclude_schedule_id query string false "Schedule to ignore"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /lecturers/{id}/availability [get]
func (h *LecturerHandler) Availability(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	date, err := models.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date: "+err.Error()))
		return
	}
	start, err := models.ParseTimeOfDay(c.Query("start_time"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start_time: "+err.Error()))
		return
	}
	end, err := models.ParseTimeOfDay(c.Query("end_time"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end_time: "+err.Error()))
		return
	}
	window := models.TimeRange{Start: start, End: end}
	if !window.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time"))
		return
	}
	excludeID, ok := optionalUUIDQuery(c, "exclude_schedule_id")
	if !ok {
		return
	}

	result, err := h.checker.Check(c.Request.Context(), models.AvailabilityQuery{
		LecturerID:        id,
		Date:              date,
		Range:             window,
		ExcludeScheduleID: excludeID,
	}, models.CheckSourceQuery)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, AvailabilityResponse{
		LecturerID: id,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Available:  result.Available(),
		Status:     result.Status,
		Conflict:   result.Conflict,
	})
}
