package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

type reverseGeocoder interface {
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error)
}

type cachedAddress struct {
	Address string `json:"address"`
}

// GeocodingService resolves display addresses for pickup points. Addresses are cosmetic, so a
// missing geocoder yields empty addresses rather than errors.
type GeocodingService struct {
	client    reverseGeocoder
	cache     *CacheService
	ttl       time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGeocodingService constructs a GeocodingService.
func NewGeocodingService(client reverseGeocoder, cache *CacheService, ttl time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GeocodingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &GeocodingService{client: client, cache: cache, ttl: ttl, metrics: metrics, validator: validate, logger: logger}
}

// ReverseGeocode returns the address of a point, consulting the cache first.
func (s *GeocodingService) ReverseGeocode(ctx context.Context, query dto.ReverseGeocodeQuery) (*dto.ReverseGeocodeResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid coordinate")
	}
	coord := models.Coordinate{Latitude: *query.Latitude, Longitude: *query.Longitude}
	resp := &dto.ReverseGeocodeResponse{Coordinate: coord}
	if s.client == nil {
		return resp, nil
	}

	cached, hit, err := Remember(ctx, s.cache, geocodeCacheKey(coord), s.ttl, func(ctx context.Context) (cachedAddress, error) {
		address, err := s.client.ReverseGeocode(ctx, coord)
		return cachedAddress{Address: address}, err
	})
	if err != nil {
		s.metrics.RecordGeocode("error")
		s.logger.Warn("reverse geocode failed", zap.Float64("latitude", coord.Latitude), zap.Float64("longitude", coord.Longitude), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "address lookup failed")
	}
	if hit {
		s.metrics.RecordGeocode("hit")
	} else {
		s.metrics.RecordGeocode("miss")
	}
	resp.Address = cached.Address
	resp.Cached = hit
	return resp, nil
}

// geocodeCacheKey rounds to five decimals (about a metre) so nearby lookups share an entry.
func geocodeCacheKey(coord models.Coordinate) string {
	return CacheKey("geocode",
		strconv.FormatFloat(coord.Latitude, 'f', 5, 64),
		strconv.FormatFloat(coord.Longitude, 'f', 5, 64),
	)
}
