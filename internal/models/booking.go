package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// PlanKind enumerates the fixed-length lesson packages.
type PlanKind string

const (
	PlanShort PlanKind = "SHORT"
	PlanLong  PlanKind = "LONG"
)

// SessionCount returns how many lesson days the plan contains.
func (p PlanKind) SessionCount() int {
	switch p {
	case PlanShort:
		return 7
	case PlanLong:
		return 14
	default:
		return 0
	}
}

// ParsePlanKind resolves user input into a PlanKind. The legacy "7-day" and "14-day"
// spellings are accepted.
func ParsePlanKind(raw string) (PlanKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(PlanShort), "7-DAY", "7":
		return PlanShort, nil
	case string(PlanLong), "14-DAY", "14":
		return PlanLong, nil
	default:
		return "", fmt.Errorf("unknown plan kind %q", raw)
	}
}

// BookingStatus represents the booking lifecycle.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is a paid lesson plan. EndDate is derived from the plan projection, never chosen.
type Booking struct {
	ID               string         `db:"id" json:"id"`
	LearnerID        string         `db:"learner_id" json:"learner_id"`
	InstructorID     string         `db:"instructor_id" json:"instructor_id"`
	StartDate        time.Time      `db:"start_date" json:"start_date"`
	EndDate          time.Time      `db:"end_date" json:"end_date"`
	TimeSlotLabels   pq.StringArray `db:"time_slot_labels" json:"time_slot_labels"`
	PlanKind         PlanKind       `db:"plan_kind" json:"plan_kind"`
	PaymentReference string         `db:"payment_reference" json:"payment_reference"`
	OrderID          string         `db:"order_id" json:"order_id"`
	AmountMinor      int64          `db:"amount_minor" json:"amount_minor"`
	Currency         string         `db:"currency" json:"currency"`
	PickupLatitude   *float64       `db:"pickup_latitude" json:"pickup_latitude,omitempty"`
	PickupLongitude  *float64       `db:"pickup_longitude" json:"pickup_longitude,omitempty"`
	PickupAddress    *string        `db:"pickup_address" json:"pickup_address,omitempty"`
	Status           BookingStatus  `db:"status" json:"status"`
	CancelledAt      *time.Time     `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// IsCancelled reports whether the booking was cancelled.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingFilter narrows booking listings to one participant.
type BookingFilter struct {
	LearnerID    string
	InstructorID string
	Status       *BookingStatus
	Page         int
	PageSize     int
}
