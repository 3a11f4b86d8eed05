package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

func TestDistanceKmSymmetricAndZero(t *testing.T) {
	points := []models.Coordinate{
		{Latitude: 28.6333, Longitude: 77.2167},
		{Latitude: 28.7000, Longitude: 77.1000},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: 90, Longitude: 0},
		{Latitude: 0, Longitude: 180},
	}

	for _, a := range points {
		assert.Zero(t, DistanceKm(a, a))
		for _, b := range points {
			assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
		}
	}
}

func TestDistanceKmKnownValues(t *testing.T) {
	london := models.Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	paris := models.Coordinate{Latitude: 48.8566, Longitude: 2.3522}

	assert.InDelta(t, 343.5, DistanceKm(london, paris), 1.0)
	assert.InDelta(t, 111.19, DistanceKm(models.Coordinate{}, models.Coordinate{Latitude: 1}), 0.01)
	assert.InDelta(t, 20015.09, DistanceKm(models.Coordinate{Longitude: 0}, models.Coordinate{Longitude: 180}), 0.01)
}
