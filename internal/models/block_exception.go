package models

import (
	"time"

	"github.com/lib/pq"
)

// BlockException removes labels from an instructor's availability on every date in
// [StartDate, EndDate]. BookingID is set when a paid booking created the block.
type BlockException struct {
	ID             string         `db:"id" json:"id"`
	InstructorID   string         `db:"instructor_id" json:"instructor_id"`
	StartDate      time.Time      `db:"start_date" json:"start_date"`
	EndDate        time.Time      `db:"end_date" json:"end_date"`
	TimeSlotLabels pq.StringArray `db:"time_slot_labels" json:"time_slot_labels"`
	BookingID      *string        `db:"booking_id" json:"booking_id,omitempty"`
	Reason         *string        `db:"reason" json:"reason,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// IsBookingDerived reports whether a booking owns the exception.
func (e *BlockException) IsBookingDerived() bool {
	return e != nil && e.BookingID != nil && *e.BookingID != ""
}
