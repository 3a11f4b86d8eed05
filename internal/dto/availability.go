package dto

import (
	"time"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
)

// SetWeeklyAvailabilityRequest replaces an instructor's weekly template. Every selected day
// receives the same labels; days not selected are retracted.
type SetWeeklyAvailabilityRequest struct {
	Days   []int    `json:"days" validate:"omitempty,dive,gte=0,lte=6"`
	Labels []string `json:"time_slot_labels" validate:"omitempty,dive,required"`
}

// WeeklyAvailabilityResponse wraps the stored weekly template with the catalog it is drawn from.
type WeeklyAvailabilityResponse struct {
	InstructorID string                      `json:"instructor_id"`
	Entries      []models.WeeklyAvailability `json:"entries"`
	Catalog      []string                    `json:"catalog"`
}

// CreateBlockExceptionRequest blocks labels on every date of an inclusive range.
type CreateBlockExceptionRequest struct {
	StartDate string   `json:"start_date" validate:"required"`
	EndDate   string   `json:"end_date" validate:"required"`
	Labels    []string `json:"time_slot_labels" validate:"required,min=1,dive,required"`
	Reason    string   `json:"reason" validate:"omitempty,max=255"`
}

// ResolvedDayResponse is the wire form of models.ResolvedDaySlots.
type ResolvedDayResponse struct {
	Date      string   `json:"date"`
	Weekday   string   `json:"weekday"`
	Available []string `json:"available_labels"`
	Blocked   []string `json:"blocked_labels"`
}

// NewResolvedDayResponse converts resolved slots into their wire form.
func NewResolvedDayResponse(day models.ResolvedDaySlots) ResolvedDayResponse {
	available := day.Available
	if available == nil {
		available = []string{}
	}
	blocked := day.Blocked
	if blocked == nil {
		blocked = []string{}
	}
	return ResolvedDayResponse{
		Date:      FormatDate(day.Date),
		Weekday:   day.Date.Weekday().String(),
		Available: available,
		Blocked:   blocked,
	}
}

// CalendarQuery selects a range of days starting at From.
type CalendarQuery struct {
	From string `form:"from"`
	Days int    `form:"days"`
}

// CalendarResponse lists resolved slots for consecutive days.
type CalendarResponse struct {
	InstructorID string                `json:"instructor_id"`
	From         string                `json:"from"`
	Days         []ResolvedDayResponse `json:"days"`
}

// FormatDate renders a civil date, or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(scheduling.DateFormat)
}

// FormatDates renders each date with FormatDate.
func FormatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, FormatDate(d))
	}
	return out
}
