package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelStartMinutes(t *testing.T) {
	cases := map[string]int{
		"07:00-08:00":        7 * 60,
		"7:30 - 8:30":        7*60 + 30,
		"18-19":              18 * 60,
		"9:00 AM - 10:00 AM": 9 * 60,
		"1:00 PM - 2:00 PM":  13 * 60,
		"12 a.m.":            0,
		"5pm":                17 * 60,
	}
	for label, want := range cases {
		got, ok := LabelStartMinutes(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	_, ok := LabelStartMinutes("evening")
	assert.False(t, ok)
	_, ok = LabelStartMinutes("")
	assert.False(t, ok)
}

func TestSortLabelsChronological(t *testing.T) {
	labels := []string{"evening", "1:00 PM - 2:00 PM", "10:00-11:00", "9:00 AM - 10:00 AM", "afternoon"}

	sorted := SortLabels(labels)

	assert.Equal(t, []string{"9:00 AM - 10:00 AM", "10:00-11:00", "1:00 PM - 2:00 PM", "afternoon", "evening"}, sorted)
	assert.Equal(t, "evening", labels[0])
}

func TestNormalizeLabels(t *testing.T) {
	assert.Equal(t, []string{"07:00-08:00", "08:00-09:00"}, NormalizeLabels([]string{" 08:00-09:00", "07:00-08:00", "", "08:00-09:00"}))
}

func TestCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	labels := catalog.Labels()
	assert.Len(t, labels, 15)
	assert.Equal(t, "06:00-07:00", labels[0])
	assert.Equal(t, "20:00-21:00", labels[14])
	assert.True(t, catalog.Contains("07:00-08:00"))
	assert.False(t, catalog.Contains("7-8"))
	assert.Equal(t, []string{"7-8"}, catalog.Unknown([]string{"07:00-08:00", "7-8"}))
	assert.Empty(t, catalog.Unknown([]string{"06:00-07:00"}))
}
