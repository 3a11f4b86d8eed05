package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func weeklyEntry(day time.Weekday, active bool, labels ...string) models.WeeklyAvailability {
	return models.WeeklyAvailability{InstructorID: "inst-1", DayOfWeek: int(day), TimeSlotLabels: labels, IsActive: active}
}

func blockFor(start, end time.Time, labels ...string) models.BlockException {
	return models.BlockException{InstructorID: "inst-1", StartDate: start, EndDate: end, TimeSlotLabels: labels}
}

func TestResolveDayBlocksOfferedLabel(t *testing.T) {
	monday := date(t, "2024-01-01")
	weekly := []models.WeeklyAvailability{weeklyEntry(time.Monday, true, "07:00-08:00", "08:00-09:00")}
	exceptions := []models.BlockException{blockFor(monday, monday, "07:00-08:00")}

	resolved := ResolveDay(weekly, exceptions, monday)

	assert.Equal(t, monday, resolved.Date)
	assert.Equal(t, []string{"08:00-09:00"}, resolved.Available)
	assert.Equal(t, []string{"07:00-08:00"}, resolved.Blocked)
}

func TestResolveDayWithoutCatalogIgnoresExceptions(t *testing.T) {
	tuesday := date(t, "2024-01-02")
	weekly := []models.WeeklyAvailability{
		weeklyEntry(time.Monday, true, "07:00-08:00"),
		weeklyEntry(time.Tuesday, false, "07:00-08:00"),
	}
	exceptions := []models.BlockException{blockFor(tuesday, tuesday, "07:00-08:00")}

	resolved := ResolveDay(weekly, exceptions, tuesday)

	assert.NotNil(t, resolved.Available)
	assert.NotNil(t, resolved.Blocked)
	assert.Empty(t, resolved.Available)
	assert.Empty(t, resolved.Blocked)
	assert.False(t, resolved.HasAvailability())
}

func TestResolveDayDropsLabelsNeverOffered(t *testing.T) {
	monday := date(t, "2024-01-01")
	weekly := []models.WeeklyAvailability{weeklyEntry(time.Monday, true, "07:00-08:00")}
	exceptions := []models.BlockException{blockFor(monday, monday, "18:00-19:00")}

	resolved := ResolveDay(weekly, exceptions, monday)

	assert.Equal(t, []string{"07:00-08:00"}, resolved.Available)
	assert.Empty(t, resolved.Blocked)
}

func TestResolveDayExceptionBoundsInclusive(t *testing.T) {
	weekly := []models.WeeklyAvailability{
		weeklyEntry(time.Monday, true, "07:00-08:00"),
		weeklyEntry(time.Wednesday, true, "07:00-08:00"),
		weeklyEntry(time.Thursday, true, "07:00-08:00"),
	}
	exceptions := []models.BlockException{blockFor(date(t, "2024-01-01"), date(t, "2024-01-03"), "07:00-08:00")}

	assert.Empty(t, ResolveDay(weekly, exceptions, date(t, "2024-01-01")).Available)
	assert.Empty(t, ResolveDay(weekly, exceptions, date(t, "2024-01-03")).Available)
	assert.Equal(t, []string{"07:00-08:00"}, ResolveDay(weekly, exceptions, date(t, "2024-01-04")).Available)
}

func TestResolveDayInvertedExceptionCoversNothing(t *testing.T) {
	monday := date(t, "2024-01-01")
	weekly := []models.WeeklyAvailability{weeklyEntry(time.Monday, true, "07:00-08:00")}
	exceptions := []models.BlockException{blockFor(date(t, "2024-01-05"), date(t, "2023-12-28"), "07:00-08:00")}

	resolved := ResolveDay(weekly, exceptions, monday)

	assert.Equal(t, []string{"07:00-08:00"}, resolved.Available)
	assert.Empty(t, resolved.Blocked)
}

func TestResolveDayIgnoresClockComponent(t *testing.T) {
	weekly := []models.WeeklyAvailability{weeklyEntry(time.Monday, true, "07:00-08:00")}
	exceptions := []models.BlockException{blockFor(
		time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		"07:00-08:00",
	)}

	resolved := ResolveDay(weekly, exceptions, time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, []string{"07:00-08:00"}, resolved.Blocked)
}

func TestResolveDayUnionsEntriesAndSortsChronologically(t *testing.T) {
	monday := date(t, "2024-01-01")
	weekly := []models.WeeklyAvailability{
		weeklyEntry(time.Monday, true, "1:00 PM - 2:00 PM", "08:00-09:00"),
		weeklyEntry(time.Monday, true, "08:00-09:00", "9:00 AM - 10:00 AM"),
	}

	resolved := ResolveDay(weekly, nil, monday)

	assert.Equal(t, []string{"08:00-09:00", "9:00 AM - 10:00 AM", "1:00 PM - 2:00 PM"}, resolved.Available)
}

func TestResolveDayProperties(t *testing.T) {
	labels := []string{"06:00-07:00", "07:00-08:00", "08:00-09:00", "17:00-18:00"}
	weekly := []models.WeeklyAvailability{
		weeklyEntry(time.Monday, true, labels...),
		weeklyEntry(time.Wednesday, true, labels[:2]...),
		weeklyEntry(time.Saturday, true, labels[2:]...),
	}
	start := date(t, "2024-01-01")
	exceptions := []models.BlockException{
		blockFor(start, AddDays(start, 3), "07:00-08:00", "17:00-18:00"),
		blockFor(AddDays(start, 5), AddDays(start, 12), "08:00-09:00"),
		blockFor(AddDays(start, 9), AddDays(start, 7), "06:00-07:00"),
	}

	for i := 0; i < 21; i++ {
		day := AddDays(start, i)
		resolved := ResolveDay(weekly, exceptions, day)
		catalog := CatalogForWeekday(weekly, day.Weekday())

		for _, label := range resolved.Available {
			assert.NotContains(t, resolved.Blocked, label, "label %s both available and blocked on %s", label, day.Format(DateFormat))
		}
		union := append(append([]string{}, resolved.Available...), resolved.Blocked...)
		assert.ElementsMatch(t, catalog, union, "union mismatch on %s", day.Format(DateFormat))

		doubled := append(append([]models.BlockException{}, exceptions...), exceptions...)
		again := ResolveDay(weekly, doubled, day)
		assert.Equal(t, resolved.Available, again.Available)
		assert.Equal(t, resolved.Blocked, again.Blocked)
	}
}

func TestResolveRange(t *testing.T) {
	start := date(t, "2024-01-01")
	weekly := []models.WeeklyAvailability{weeklyEntry(time.Monday, true, "07:00-08:00")}

	days := ResolveRange(weekly, nil, start, 8)

	require.Len(t, days, 8)
	assert.True(t, days[0].HasAvailability())
	assert.False(t, days[1].HasAvailability())
	assert.True(t, days[7].HasAvailability())
	assert.Equal(t, AddDays(start, 7), days[7].Date)
	assert.Empty(t, ResolveRange(weekly, nil, start, 0))
}

func TestAvailableByWeekday(t *testing.T) {
	weekly := []models.WeeklyAvailability{
		weeklyEntry(time.Sunday, true, "08:00-09:00", "07:00-08:00"),
		weeklyEntry(time.Friday, false, "07:00-08:00"),
	}

	byDay := AvailableByWeekday(weekly)

	assert.Equal(t, map[time.Weekday][]string{time.Sunday: {"07:00-08:00", "08:00-09:00"}}, byDay)
}
