package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/bible-studies-api/internal/middleware"
	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/response"
)

// uuidParam reads a path parameter and rejects values that are not UUIDs.
func uuidParam(c *gin.Context, name string) (string, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" must be a valid UUID"))
		return "", false
	}
	return raw, true
}

// upcomingFilter parses from/status/lecturer_id query parameters.
func upcomingFilter(c *gin.Context) (models.UpcomingScheduleFilter, bool) {
	var filter models.UpcomingScheduleFilter
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := models.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from: "+err.Error()))
			return filter, false
		}
		filter.From = from
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.ScheduleStatus(raw)
		switch status {
		case models.ScheduleStatusScheduled, models.ScheduleStatusCancelled, models.ScheduleStatusCompleted:
			filter.Status = status
		default:
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be Scheduled, Cancelled or Completed"))
			return filter, false
		}
	}
	lecturerID, ok := optionalUUIDQuery(c, "lecturer_id")
	if !ok {
		return filter, false
	}
	filter.LecturerID = lecturerID
	return filter, true
}

// optionalUUIDQuery returns the trimmed query value, or "" when absent. A malformed value is
// answered with 400 and ok=false.
func optionalUUIDQuery(c *gin.Context, name string) (string, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return "", true
	}
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" must be a valid UUID"))
		return "", false
	}
	return raw, true
}

func cachedJSON(c *gin.Context, status int, data interface{}, hit bool) {
	middleware.SetCacheHit(c, hit)
	response.JSON(c, status, data, middleware.ExtractMeta(c))
}
