package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/middleware"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/service"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
	"github.com/noah-isme/driving-lesson-api/pkg/response"
)

// IdempotencyKeyHeader lets clients retry checkout without opening a second payment order.
const IdempotencyKeyHeader = "Idempotency-Key"

type bookingService interface {
	Quote(ctx context.Context, req dto.QuoteRequest) (*dto.QuoteResponse, error)
	Checkout(ctx context.Context, learnerID string, req dto.QuoteRequest, idempotencyKey string) (*dto.CheckoutResponse, error)
	Confirm(ctx context.Context, learnerID string, req dto.ConfirmBookingRequest) (*models.Booking, bool, error)
	Cancel(ctx context.Context, actor service.Actor, bookingID string) (*models.Booking, error)
	Get(ctx context.Context, actor service.Actor, bookingID string) (*models.Booking, error)
	List(ctx context.Context, actor service.Actor, query dto.BookingListQuery) ([]models.Booking, *models.Pagination, error)
	Schedule(ctx context.Context, actor service.Actor, bookingID string) (*dto.BookingSchedule, error)
	ExportSchedule(ctx context.Context, actor service.Actor, bookingID, format string) (*dto.ExportFile, error)
}

// BookingHandler serves the quote, checkout and confirm flow plus booking management.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Quote godoc
// @Summary Price a lesson plan and project its end date
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.QuoteRequest true "Plan"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/quote [post]
func (h *BookingHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid booking request"))
		return
	}
	quote, err := h.service.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.AddWarnings(c, service.QuoteWarnings(quote)...)
	response.JSON(c, http.StatusOK, quote, nil, middleware.ExtractMeta(c))
}

// Checkout godoc
// @Summary Open a payment order for a lesson plan
// @Tags Bookings
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client retry key"
// @Param payload body dto.QuoteRequest true "Plan"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /bookings/checkout [post]
func (h *BookingHandler) Checkout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid booking request"))
		return
	}
	checkout, err := h.service.Checkout(c.Request.Context(), claims.UserID, req, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, checkout)
}

// Confirm godoc
// @Summary Confirm payment and book the plan
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.ConfirmBookingRequest true "Payment proof"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "Payment already confirmed"
// @Failure 402 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid confirmation payload"))
		return
	}
	booking, created, err := h.service.Confirm(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, booking)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Cancel godoc
// @Summary Cancel a booking and free its slots
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	booking, err := h.service.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Get godoc
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	booking, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// List godoc
// @Summary List my bookings
// @Tags Bookings
// @Produce json
// @Param status query string false "CONFIRMED or CANCELLED"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid booking query"))
		return
	}
	bookings, page, err := h.service.List(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, page)
}

// Schedule godoc
// @Summary List or export the lesson days of a booking
// @Tags Bookings
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Booking ID"
// @Param format query string false "csv or pdf to download instead of JSON"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/schedule [get]
func (h *BookingHandler) Schedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if format := c.Query("format"); format != "" && format != "json" {
		file, err := h.service.ExportSchedule(c.Request.Context(), actor, c.Param("id"), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Body)
		return
	}
	schedule, err := h.service.Schedule(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !schedule.Complete {
		middleware.AddWarnings(c, service.WarningScanExhausted)
	}
	response.JSON(c, http.StatusOK, schedule, nil, middleware.ExtractMeta(c))
}
