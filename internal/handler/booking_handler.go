package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bible-studies-api/internal/dto"
	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/response"
)

type bookingService interface {
	Open(ctx context.Context, req dto.OpenBookingRequest) (models.BookingSnapshot, error)
	Get(id string) (models.BookingSnapshot, error)
	Update(id string, req dto.UpdateBookingRequest) (models.BookingSnapshot, error)
	Submit(ctx context.Context, id string) (models.BookingSnapshot, error)
	Cancel(id string) (models.BookingSnapshot, error)
}

// BookingHandler exposes interactive booking sessions. Clients poll GET to observe live checks.
type BookingHandler struct {
	bookings bookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings bookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Open godoc
// @Summary Open booking session
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.OpenBookingRequest true "Lecturer to book"
// @Success 201 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Open(c *gin.Context) {
	var req dto.OpenBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	snap, err := h.bookings.Open(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snap)
}

// Get godoc
// @Summary Get booking session
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.bookings.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// Update godoc
// @Summary Edit booking fields
// @Description Changing date or times with all three present starts a debounced availability check.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.UpdateBookingRequest true "Field changes"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	snap, err := h.bookings.Update(id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// Submit godoc
// @Summary Submit booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /bookings/{id}/submit [post]
func (h *BookingHandler) Submit(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.bookings.Submit(c.Request.Context(), id)
	if err != nil {
		appErr := appErrors.FromError(err)
		if snap.ID != "" && appErr.Details == nil {
			appErr = appErrors.WithDetails(appErr, snap)
		}
		response.Error(c, appErr)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// Cancel godoc
// @Summary Cancel booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.bookings.Cancel(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}
