package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/response"
)

type classOptions interface {
	ListActiveClasses(ctx context.Context) ([]models.ClassOption, bool, error)
}

// ClassHandler serves the class pick list.
type ClassHandler struct {
	options classOptions
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(options classOptions) *ClassHandler {
	return &ClassHandler{options: options}
}

// List godoc
// @Summary List bookable classes
// @Description Only Active classes can be booked, ordered by name.
// @Tags Classes
// @Produce json
// @Param status query string false "Must be Active when provided"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	if status := strings.TrimSpace(c.Query("status")); status != "" && status != models.ClassStatusActive {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only Active classes can be listed"))
		return
	}
	options, hit, err := h.options.ListActiveClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	cachedJSON(c, http.StatusOK, options, hit)
}
