package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

var labelStartLayouts = []string{"15:04", "15", "3:04PM", "3PM"}

// LabelStartMinutes decodes the start time of a label such as "07:00-08:00" or
// "7:00 AM - 8:00 AM" into minutes after midnight.
func LabelStartMinutes(label string) (int, bool) {
	start := label
	if idx := strings.Index(label, "-"); idx >= 0 {
		start = label[:idx]
	}
	start = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(start), " ", ""))
	start = strings.ReplaceAll(start, ".", "")
	if start == "" {
		return 0, false
	}
	for _, layout := range labelStartLayouts {
		if t, err := time.Parse(layout, start); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// SortLabels returns a copy of labels ordered by decoded start time. Labels that cannot
// be decoded keep a lexical order after all decodable ones.
func SortLabels(labels []string) []string {
	out := append([]string(nil), labels...)
	sort.SliceStable(out, func(i, j int) bool {
		mi, oki := LabelStartMinutes(out[i])
		mj, okj := LabelStartMinutes(out[j])
		switch {
		case oki && okj:
			if mi != mj {
				return mi < mj
			}
			return out[i] < out[j]
		case oki != okj:
			return oki
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// NormalizeLabels trims, drops empties and duplicates, then sorts chronologically.
func NormalizeLabels(labels []string) []string {
	set := newLabelSet()
	for _, label := range labels {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			set.add(trimmed)
		}
	}
	return SortLabels(set.items())
}

// Catalog is the fixed list of labels instructors may offer.
type Catalog struct {
	labels []string
	index  map[string]struct{}
}

// NewCatalog builds a catalog from the given labels.
func NewCatalog(labels []string) *Catalog {
	normalized := NormalizeLabels(labels)
	index := make(map[string]struct{}, len(normalized))
	for _, label := range normalized {
		index[label] = struct{}{}
	}
	return &Catalog{labels: normalized, index: index}
}

// DefaultCatalog offers hourly labels from 06:00 to 21:00.
func DefaultCatalog() *Catalog {
	labels := make([]string, 0, 15)
	for hour := 6; hour < 21; hour++ {
		labels = append(labels, fmt.Sprintf("%02d:00-%02d:00", hour, hour+1))
	}
	return NewCatalog(labels)
}

// Labels lists the catalog in chronological order.
func (c *Catalog) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Contains reports whether label is part of the catalog.
func (c *Catalog) Contains(label string) bool {
	_, ok := c.index[label]
	return ok
}

// Unknown returns the labels that are not part of the catalog.
func (c *Catalog) Unknown(labels []string) []string {
	var unknown []string
	for _, label := range labels {
		if !c.Contains(label) {
			unknown = append(unknown, label)
		}
	}
	return unknown
}

// labelSet is an insertion-ordered set of labels.
type labelSet struct {
	order []string
	index map[string]struct{}
}

func newLabelSet() *labelSet {
	return &labelSet{index: make(map[string]struct{})}
}

func (s *labelSet) add(labels ...string) {
	for _, label := range labels {
		if _, ok := s.index[label]; ok {
			continue
		}
		s.index[label] = struct{}{}
		s.order = append(s.order, label)
	}
}

func (s *labelSet) has(label string) bool {
	_, ok := s.index[label]
	return ok
}

func (s *labelSet) len() int {
	return len(s.order)
}

func (s *labelSet) items() []string {
	return append([]string(nil), s.order...)
}
