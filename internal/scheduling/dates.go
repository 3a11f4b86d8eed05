package scheduling

import "time"

// DateFormat is the wire format for civil dates.
const DateFormat = "2006-01-02"

// DateOf strips the clock from t, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalised date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateFormat, raw)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// AddDays moves a date by n calendar days.
func AddDays(date time.Time, n int) time.Time {
	return DateOf(date).AddDate(0, 0, n)
}

// Today returns the current civil date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}
