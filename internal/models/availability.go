package models

import (
	"time"

	"github.com/lib/pq"
)

// WeeklyAvailability is one recurring day-of-week rule of an instructor's weekly template.
// DayOfWeek follows time.Weekday numbering (0 = Sunday).
type WeeklyAvailability struct {
	ID             string         `db:"id" json:"id"`
	InstructorID   string         `db:"instructor_id" json:"instructor_id"`
	DayOfWeek      int            `db:"day_of_week" json:"day_of_week"`
	TimeSlotLabels pq.StringArray `db:"time_slot_labels" json:"time_slot_labels"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
