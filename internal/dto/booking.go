package dto

import (
	"time"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

// PickupLocation is where the learner wants to be collected.
type PickupLocation struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Address   string  `json:"address" validate:"omitempty,max=500"`
}

// Coordinate returns the pickup point as a coordinate.
func (p PickupLocation) Coordinate() models.Coordinate {
	return models.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// QuoteRequest describes the plan a learner wants to buy.
type QuoteRequest struct {
	InstructorID string          `json:"instructor_id" validate:"required"`
	StartDate    string          `json:"start_date" validate:"required"`
	Labels       []string        `json:"time_slot_labels" validate:"required,min=1,dive,required"`
	Plan         string          `json:"plan" validate:"required"`
	Pickup       *PickupLocation `json:"pickup" validate:"required"`
}

// QuoteResponse prices a plan and shows its projected sessions. ScanExhausted means fewer
// sessions than the plan holds fit in the scan window.
type QuoteResponse struct {
	InstructorID      string          `json:"instructor_id"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	Labels            []string        `json:"time_slot_labels"`
	Plan              models.PlanKind `json:"plan"`
	SessionCount      int             `json:"session_count"`
	SessionsScheduled int             `json:"sessions_scheduled"`
	SessionDates      []string        `json:"session_dates"`
	AmountMinor       int64           `json:"amount_minor"`
	Currency          string          `json:"currency"`
	ScanExhausted     bool            `json:"scan_exhausted"`
}

// CheckoutResponse carries the payment order a client completes before confirming.
type CheckoutResponse struct {
	OrderID      string        `json:"order_id"`
	Provider     string        `json:"provider"`
	ClientSecret string        `json:"client_secret,omitempty"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Quote        QuoteResponse `json:"quote"`
}

// ConfirmBookingRequest proves payment for a checkout.
type ConfirmBookingRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// BookingListQuery pages a participant's bookings.
type BookingListQuery struct {
	Status   string `form:"status" validate:"omitempty,oneof=CONFIRMED CANCELLED"`
	Page     int    `form:"page" validate:"omitempty,gte=1"`
	PageSize int    `form:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// BookingSchedule lists the projected lesson days of a booking.
type BookingSchedule struct {
	Booking      *models.Booking `json:"booking"`
	SessionDates []string        `json:"session_dates"`
	Complete     bool            `json:"complete"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
