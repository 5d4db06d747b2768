package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
	"github.com/noah-isme/bible-studies-api/internal/service"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/export"
	"github.com/noah-isme/bible-studies-api/pkg/response"
)

type scheduleService interface {
	Create(ctx context.Context, req dto.CreateScheduleRequest) (*models.Schedule, error)
	ListUpcoming(ctx context.Context, filter models.UpcomingScheduleFilter) ([]models.UpcomingSchedule, bool, error)
	Overview(ctx context.Context) (*dto.ScheduleOverview, bool, error)
}

type upcomingExporter interface {
	ExportUpcoming(ctx context.Context, filter models.UpcomingScheduleFilter, format export.Format) (*service.ExportFile, error)
}

// ScheduleHandler exposes schedule creation and the upcoming schedule table.
type ScheduleHandler struct {
	schedules scheduleService
	exports   upcomingExporter
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedules scheduleService, exports upcomingExporter) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

// Create godoc
// @Summary Create schedule
// @Description Validates the slot, re-checks availability and inserts atomically.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	schedule, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Upcoming godoc
// @Summary List upcoming schedules
// @Tags Schedules
// @Produce json
// @Param from query string false "First date (YYYY-MM-DD), defaults to today"
// @Param status query string false "Schedule status, defaults to Scheduled"
// @Param lecturer_id query string false "Restrict to one lecturer"
// @Success 200 {object} response.Envelope
// @Router /schedules/upcoming [get]
func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	filter, ok := upcomingFilter(c)
	if !ok {
		return
	}
	items, hit, err := h.schedules.ListUpcoming(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedJSON(c, http.StatusOK, items, hit)
}

// Overview godoc
// @Summary Schedule overview
// @Description Active lecturers, upcoming and today's Scheduled sessions and distinct subjects taught.
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules/overview [get]
func (h *ScheduleHandler) Overview(c *gin.Context) {
	overview, hit, err := h.schedules.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedJSON(c, http.StatusOK, overview, hit)
}

// Export godoc
// @Summary Export upcoming schedules
// @Tags Schedules
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param status query string false "Schedule status"
// @Param lecturer_id query string false "Restrict to one lecturer"
// @Success 200 {file} file
// @Router /schedules/upcoming/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	filter, ok := upcomingFilter(c)
	if !ok {
		return
	}
	file, err := h.exports.ExportUpcoming(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
