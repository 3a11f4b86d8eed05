package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/middleware"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/pkg/response"
)

type instructorDirectoryService interface {
	Get(ctx context.Context, id string) (*models.Instructor, error)
	SearchNearby(ctx context.Context, query dto.NearbyInstructorsQuery) (*dto.NearbyInstructorsResponse, error)
}

type slotResolver interface {
	ResolveDay(ctx context.Context, instructorID string, date time.Time) (models.ResolvedDaySlots, bool, error)
	Calendar(ctx context.Context, instructorID string, from time.Time, days int) ([]models.ResolvedDaySlots, bool, error)
}

// InstructorHandler serves the learner-facing instructor directory.
type InstructorHandler struct {
	instructors instructorDirectoryService
	slots       slotResolver
	location    *time.Location
	now         func() time.Time
}

// NewInstructorHandler constructs an InstructorHandler. Dates default to today in loc.
func NewInstructorHandler(instructors instructorDirectoryService, slots slotResolver, loc *time.Location) *InstructorHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InstructorHandler{instructors: instructors, slots: slots, location: loc, now: time.Now}
}

// Nearby godoc
// @Summary Search instructors near a pickup point
// @Tags Instructors
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius_km query number false "Search radius in kilometres"
// @Param date query string false "Only report labels bookable on this date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors/nearby [get]
func (h *InstructorHandler) Nearby(c *gin.Context) {
	var query dto.NearbyInstructorsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid search parameters"))
		return
	}
	result, err := h.instructors.SearchNearby(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get instructor profile
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// Slots godoc
// @Summary Resolve an instructor's time slots for one day
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/slots [get]
func (h *InstructorHandler) Slots(c *gin.Context) {
	date, ok := dateParam(c, c.Query("date"), "date", h.now, h.location)
	if !ok {
		return
	}
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	day, hit, err := h.slots.ResolveDay(c.Request.Context(), instructor.ID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, dto.NewResolvedDayResponse(day), nil, middleware.ExtractMeta(c))
}

// Calendar godoc
// @Summary Resolve an instructor's time slots for consecutive days
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Param from query string false "First date (YYYY-MM-DD), defaults to today"
// @Param days query int false "Number of days, defaults to 7"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors/{id}/calendar [get]
func (h *InstructorHandler) Calendar(c *gin.Context) {
	var query dto.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid calendar parameters"))
		return
	}
	from, ok := dateParam(c, query.From, "from", h.now, h.location)
	if !ok {
		return
	}
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	days, hit, err := h.slots.Calendar(c.Request.Context(), instructor.ID, from, query.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := dto.CalendarResponse{
		InstructorID: instructor.ID,
		From:         dto.FormatDate(from),
		Days:         make([]dto.ResolvedDayResponse, 0, len(days)),
	}
	for _, day := range days {
		out.Days = append(out.Days, dto.NewResolvedDayResponse(day))
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, out, nil, middleware.ExtractMeta(c))
}
