package scheduling

import (
	"time"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

// DefaultMaxScanDays bounds how far ahead a plan projection walks.
const DefaultMaxScanDays = 60

// ProjectionInput is the snapshot a plan projection runs against.
type ProjectionInput struct {
	InstructorID  string
	StartDate     time.Time
	SessionCount  int
	Weekly        []models.WeeklyAvailability
	Exceptions    []models.BlockException
	MaxDaysToScan int
}

// Projection is the outcome of walking the calendar for a plan.
// ScanExhausted means the bound was hit before SessionCount sessions were found;
// EndDate is then the last session day found (or StartDate when none was).
type Projection struct {
	StartDate         time.Time
	EndDate           time.Time
	SessionCount      int
	SessionsScheduled int
	SessionDates      []time.Time
	DaysScanned       int
	ScanExhausted     bool
}

// ProjectEndDate walks forward from the start date counting one session per day that
// has at least one available label, and stops on the day that completes the plan.
func ProjectEndDate(in ProjectionInput) Projection {
	start := DateOf(in.StartDate)
	result := Projection{
		StartDate:    start,
		EndDate:      start,
		SessionCount: in.SessionCount,
		SessionDates: []time.Time{},
	}
	if in.SessionCount <= 0 {
		return result
	}

	maxDays := in.MaxDaysToScan
	if maxDays <= 0 {
		maxDays = DefaultMaxScanDays
	}
	weekly := weeklyFor(in.InstructorID, in.Weekly)
	exceptions := exceptionsFor(in.InstructorID, in.Exceptions)

	for i := 0; i < maxDays; i++ {
		date := AddDays(start, i)
		result.DaysScanned++
		if !ResolveDay(weekly, exceptions, date).HasAvailability() {
			continue
		}
		result.SessionsScheduled++
		result.SessionDates = append(result.SessionDates, date)
		result.EndDate = date
		if result.SessionsScheduled == in.SessionCount {
			return result
		}
	}

	result.ScanExhausted = true
	return result
}

func weeklyFor(instructorID string, entries []models.WeeklyAvailability) []models.WeeklyAvailability {
	if instructorID == "" {
		return entries
	}
	out := make([]models.WeeklyAvailability, 0, len(entries))
	for _, entry := range entries {
		if entry.InstructorID == "" || entry.InstructorID == instructorID {
			out = append(out, entry)
		}
	}
	return out
}

func exceptionsFor(instructorID string, exceptions []models.BlockException) []models.BlockException {
	if instructorID == "" {
		return exceptions
	}
	out := make([]models.BlockException, 0, len(exceptions))
	for _, exception := range exceptions {
		if exception.InstructorID == "" || exception.InstructorID == instructorID {
			out = append(out, exception)
		}
	}
	return out
}
