package scheduling

import (
	"time"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

// CatalogForWeekday unions the labels of every active entry for weekday.
func CatalogForWeekday(weekly []models.WeeklyAvailability, weekday time.Weekday) []string {
	set := newLabelSet()
	for _, entry := range weekly {
		if !entry.IsActive || entry.DayOfWeek != int(weekday) {
			continue
		}
		set.add(entry.TimeSlotLabels...)
	}
	return SortLabels(set.items())
}

// ExceptionCovers reports whether date falls inside the inclusive exception span.
// Inverted spans cover nothing.
func ExceptionCovers(exception models.BlockException, date time.Time) bool {
	day := DateOf(date)
	start := DateOf(exception.StartDate)
	end := DateOf(exception.EndDate)
	return !day.Before(start) && !day.After(end)
}

// ResolveDay computes the bookable and blocked labels for one date.
func ResolveDay(weekly []models.WeeklyAvailability, exceptions []models.BlockException, date time.Time) models.ResolvedDaySlots {
	day := DateOf(date)
	result := models.ResolvedDaySlots{Date: day, Available: []string{}, Blocked: []string{}}

	catalog := CatalogForWeekday(weekly, day.Weekday())
	if len(catalog) == 0 {
		return result
	}

	offered := newLabelSet()
	offered.add(catalog...)
	blocked := newLabelSet()
	for _, exception := range exceptions {
		if !ExceptionCovers(exception, day) {
			continue
		}
		for _, label := range exception.TimeSlotLabels {
			if offered.has(label) {
				blocked.add(label)
			}
		}
	}

	for _, label := range catalog {
		if blocked.has(label) {
			result.Blocked = append(result.Blocked, label)
		} else {
			result.Available = append(result.Available, label)
		}
	}
	return result
}

// ResolveRange resolves days consecutive dates starting at from.
func ResolveRange(weekly []models.WeeklyAvailability, exceptions []models.BlockException, from time.Time, days int) []models.ResolvedDaySlots {
	if days <= 0 {
		return []models.ResolvedDaySlots{}
	}
	out := make([]models.ResolvedDaySlots, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, ResolveDay(weekly, exceptions, AddDays(from, i)))
	}
	return out
}

// AvailableByWeekday maps each weekday to its offered labels, ignoring exceptions.
func AvailableByWeekday(weekly []models.WeeklyAvailability) map[time.Weekday][]string {
	out := make(map[time.Weekday][]string, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if labels := CatalogForWeekday(weekly, day); len(labels) > 0 {
			out[day] = labels
		}
	}
	return out
}
