package scheduling

import (
	"sort"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

// Candidate is an instructor considered for matching. Coordinate is nil when the
// instructor never shared a location.
type Candidate struct {
	InstructorID string
	Coordinate   *models.Coordinate
}

// Match is a candidate that lies within the search radius.
type Match struct {
	InstructorID string  `json:"instructor_id"`
	DistanceKm   float64 `json:"distance_km"`
}

// FindNearby keeps the candidates within radiusKm (inclusive) of origin, nearest first.
// Ties keep input order. Candidates without a usable coordinate are never matched.
func FindNearby(origin models.Coordinate, candidates []Candidate, radiusKm float64) []Match {
	matches := make([]Match, 0, len(candidates))
	if radiusKm < 0 {
		return matches
	}
	for _, candidate := range candidates {
		if candidate.Coordinate == nil || !candidate.Coordinate.Valid() {
			continue
		}
		distance := DistanceKm(origin, *candidate.Coordinate)
		if distance <= radiusKm {
			matches = append(matches, Match{InstructorID: candidate.InstructorID, DistanceKm: distance})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	return matches
}
