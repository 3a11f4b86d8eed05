package models

import "time"

// ResolvedDaySlots is the computed availability of one instructor on one date.
// Available and Blocked are disjoint; their union is the weekly catalog for that weekday.
type ResolvedDaySlots struct {
	Date      time.Time
	Available []string
	Blocked   []string
}

// HasAvailability reports whether at least one label can still be booked.
func (r ResolvedDaySlots) HasAvailability() bool {
	return len(r.Available) > 0
}
