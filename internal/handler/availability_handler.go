package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/pkg/response"
)

type availabilityService interface {
	GetWeeklyAvailability(ctx context.Context, instructorID string, includeInactive bool) (*dto.WeeklyAvailabilityResponse, error)
	SetWeeklyAvailability(ctx context.Context, instructorID string, req dto.SetWeeklyAvailabilityRequest) (*dto.WeeklyAvailabilityResponse, error)
	GetExceptionsFrom(ctx context.Context, instructorID string, from time.Time) ([]models.BlockException, error)
	AddException(ctx context.Context, instructorID string, req dto.CreateBlockExceptionRequest) (*models.BlockException, error)
	DeleteException(ctx context.Context, instructorID, exceptionID string) error
}

// AvailabilityHandler lets instructors manage their weekly template and time off.
type AvailabilityHandler struct {
	service  availabilityService
	location *time.Location
	now      func() time.Time
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(service availabilityService, loc *time.Location) *AvailabilityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{service: service, location: loc, now: time.Now}
}

// GetWeekly godoc
// @Summary Get my weekly availability
// @Tags Availability
// @Produce json
// @Param include_inactive query bool false "Include retracted days"
// @Success 200 {object} response.Envelope
// @Router /instructors/me/availability [get]
func (h *AvailabilityHandler) GetWeekly(c *gin.Context) {
	instructor, ok := instructorFromContext(c)
	if !ok {
		return
	}
	result, err := h.service.GetWeeklyAvailability(c.Request.Context(), instructor.ID, c.Query("include_inactive") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SetWeekly godoc
// @Summary Replace my weekly availability
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.SetWeeklyAvailabilityRequest true "Days and time slot labels"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors/me/availability [put]
func (h *AvailabilityHandler) SetWeekly(c *gin.Context) {
	instructor, ok := instructorFromContext(c)
	if !ok {
		return
	}
	var req dto.SetWeeklyAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid availability payload"))
		return
	}
	result, err := h.service.SetWeeklyAvailability(c.Request.Context(), instructor.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListExceptions godoc
// @Summary List my block exceptions still in effect
// @Tags Availability
// @Produce json
// @Param from query string false "Earliest date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /instructors/me/exceptions [get]
func (h *AvailabilityHandler) ListExceptions(c *gin.Context) {
	instructor, ok := instructorFromContext(c)
	if !ok {
		return
	}
	from, ok := dateParam(c, c.Query("from"), "from", h.now, h.location)
	if !ok {
		return
	}
	exceptions, err := h.service.GetExceptionsFrom(c.Request.Context(), instructor.ID, from)
	if err != nil {
		response.Error(c, err)
		return
	}
	if exceptions == nil {
		exceptions = []models.BlockException{}
	}
	response.JSON(c, http.StatusOK, exceptions, nil)
}

// CreateException godoc
// @Summary Block time slots over a date range
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.CreateBlockExceptionRequest true "Exception"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors/me/exceptions [post]
func (h *AvailabilityHandler) CreateException(c *gin.Context) {
	instructor, ok := instructorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateBlockExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid exception payload"))
		return
	}
	exception, err := h.service.AddException(c.Request.Context(), instructor.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exception)
}

// DeleteException godoc
// @Summary Remove a manual block exception
// @Tags Availability
// @Param id path string true "Exception ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /instructors/me/exceptions/{id} [delete]
func (h *AvailabilityHandler) DeleteException(c *gin.Context) {
	instructor, ok := instructorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteException(c.Request.Context(), instructor.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
