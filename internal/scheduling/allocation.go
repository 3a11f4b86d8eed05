package scheduling

import (
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

// AllocationRequest reserves labels on every date of [StartDate, EndDate] for one instructor.
type AllocationRequest struct {
	InstructorID string
	StartDate    time.Time
	EndDate      time.Time
	Labels       []string
}

// Validate reports a malformed request.
func (r AllocationRequest) Validate() error {
	if r.InstructorID == "" {
		return fmt.Errorf("instructor id is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if DateOf(r.EndDate).Before(DateOf(r.StartDate)) {
		return fmt.Errorf("end date %s is before start date %s", r.EndDate.Format(DateFormat), r.StartDate.Format(DateFormat))
	}
	if len(NormalizeLabels(r.Labels)) == 0 {
		return fmt.Errorf("at least one time slot label is required")
	}
	return nil
}

// BookingException builds the single exception that blocks the whole booked range.
// The caller persists it; ids and timestamps are left to storage.
func BookingException(req AllocationRequest, bookingID string) models.BlockException {
	exception := models.BlockException{
		InstructorID:   req.InstructorID,
		StartDate:      DateOf(req.StartDate),
		EndDate:        DateOf(req.EndDate),
		TimeSlotLabels: pq.StringArray(NormalizeLabels(req.Labels)),
	}
	if bookingID != "" {
		id := bookingID
		exception.BookingID = &id
	}
	return exception
}
