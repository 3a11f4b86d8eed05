package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

type geocoderStub struct {
	address string
	err     error
	calls   []models.Coordinate
}

func (g *geocoderStub) ReverseGeocode(_ context.Context, coord models.Coordinate) (string, error) {
	g.calls = append(g.calls, coord)
	return g.address, g.err
}

func TestGeocodingServiceCachesAddresses(t *testing.T) {
	client := &geocoderStub{address: "MG Road, Bengaluru"}
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, 0, nil, true)
	svc := NewGeocodingService(client, cache, 0, metrics, nil, nil)

	first, err := svc.ReverseGeocode(context.Background(), dto.ReverseGeocodeQuery{Latitude: floatPtr(12.971599), Longitude: floatPtr(77.594566)})
	require.NoError(t, err)
	assert.Equal(t, "MG Road, Bengaluru", first.Address)
	assert.False(t, first.Cached)

	second, err := svc.ReverseGeocode(context.Background(), dto.ReverseGeocodeQuery{Latitude: floatPtr(12.971601), Longitude: floatPtr(77.594568)})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "MG Road, Bengaluru", second.Address)
	assert.Len(t, client.calls, 1)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.geocodeLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.geocodeLookups.WithLabelValues("miss")))
}

func TestGeocodingServiceErrors(t *testing.T) {
	client := &geocoderStub{err: errors.New("timeout")}
	svc := NewGeocodingService(client, nil, 0, nil, nil, nil)

	_, err := svc.ReverseGeocode(context.Background(), dto.ReverseGeocodeQuery{Latitude: floatPtr(12.97), Longitude: floatPtr(77.59)})
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)

	_, err = svc.ReverseGeocode(context.Background(), dto.ReverseGeocodeQuery{Latitude: floatPtr(95), Longitude: floatPtr(77.59)})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ReverseGeocode(context.Background(), dto.ReverseGeocodeQuery{Longitude: floatPtr(77.59)})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGeocodingServiceWithoutClient(t *testing.T) {
	svc := NewGeocodingService(nil, nil, 0, nil, nil, nil)

	resp, err := svc.ReverseGeocode(context.Background(), dto.ReverseGeocodeQuery{Latitude: floatPtr(12.97), Longitude: floatPtr(77.59)})
	require.NoError(t, err)
	assert.Empty(t, resp.Address)
	assert.Equal(t, 12.97, resp.Coordinate.Latitude)
}
