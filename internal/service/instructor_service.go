package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

// InstructorSearchConfig bounds nearby searches.
type InstructorSearchConfig struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	Concurrency     int
}

// InstructorService serves the instructor directory and nearby search.
type InstructorService struct {
	directory instructorDirectory
	snapshots snapshotLoader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       InstructorSearchConfig
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(
	directory instructorDirectory,
	snapshots snapshotLoader,
	metrics *MetricsService,
	cfg InstructorSearchConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = 10
	}
	if cfg.MaxRadiusKm < cfg.DefaultRadiusKm {
		cfg.MaxRadiusKm = cfg.DefaultRadiusKm
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &InstructorService{
		directory: directory,
		snapshots: snapshots,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Get returns one instructor.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "instructor not found", "failed to load instructor")
	}
	return instructor, nil
}

// ResolveSelf finds the instructor profile of the authenticated account. Admin claims may name
// any instructor.
func (s *InstructorService) ResolveSelf(ctx context.Context, claims *models.JWTClaims) (*models.Instructor, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	var (
		instructor *models.Instructor
		err        error
	)
	if claims.InstructorID != "" {
		instructor, err = s.directory.FindByID(ctx, claims.InstructorID)
	} else {
		instructor, err = s.directory.FindByUserID(ctx, claims.UserID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if claims.Role == models.RoleAdmin {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			}
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account has no instructor profile")
		}
		return nil, typedOrInternal(err, "failed to load instructor profile")
	}
	if claims.Role == models.RoleAdmin {
		return instructor, nil
	}
	if instructor.UserID != "" && instructor.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "instructor profile belongs to another account")
	}
	return instructor, nil
}

// SearchNearby lists active instructors within the radius of the learner, nearest first. When a
// date is given each hit carries the labels still bookable that day; instructors with nothing
// left stay in the list with no labels.
func (s *InstructorService) SearchNearby(ctx context.Context, query dto.NearbyInstructorsQuery) (*dto.NearbyInstructorsResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid nearby search")
	}
	radius := query.RadiusKm
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusKm
	}
	if radius > s.cfg.MaxRadiusKm {
		return nil, validationError(nil, fmt.Sprintf("radius_km must not exceed %.0f", s.cfg.MaxRadiusKm))
	}
	var date time.Time
	if query.Date != "" {
		parsed, err := scheduling.ParseDate(query.Date)
		if err != nil {
			return nil, validationError(err, "date must be YYYY-MM-DD")
		}
		date = parsed
	}
	origin := models.Coordinate{Latitude: *query.Latitude, Longitude: *query.Longitude}

	active := true
	instructors, err := s.directory.List(ctx, models.InstructorFilter{Active: &active, HasCoordinates: true})
	if err != nil {
		return nil, typedOrInternal(err, "failed to list instructors")
	}
	byID := make(map[string]models.Instructor, len(instructors))
	candidates := make([]scheduling.Candidate, 0, len(instructors))
	for _, instructor := range instructors {
		instructor := instructor
		byID[instructor.ID] = instructor
		candidates = append(candidates, scheduling.Candidate{InstructorID: instructor.ID, Coordinate: instructor.Coordinate()})
	}
	matches := scheduling.FindNearby(origin, candidates, radius)

	results := make([]dto.NearbyInstructor, len(matches))
	for i, match := range matches {
		instructor := byID[match.InstructorID]
		results[i] = dto.NearbyInstructor{
			ID:              instructor.ID,
			FullName:        instructor.FullName,
			VehicleType:     instructor.VehicleType,
			HourlyRateMinor: instructor.HourlyRateMinor,
			DistanceKm:      match.DistanceKm,
		}
	}

	if !date.IsZero() && len(results) > 0 {
		if err := s.attachAvailability(ctx, date, results); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.metrics.ObserveNearbySearch(len(results))
	resp := &dto.NearbyInstructorsResponse{Origin: origin, RadiusKm: radius, Instructors: results}
	if !date.IsZero() {
		resp.Date = dto.FormatDate(date)
	}
	return resp, nil
}

// attachAvailability resolves every hit's labels for date with bounded concurrency. The first
// failure cancels the remaining lookups.
func (s *InstructorService) attachAvailability(ctx context.Context, date time.Time, results []dto.NearbyInstructor) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Concurrency)
	for i := range results {
		i := i
		group.Go(func() error {
			snapshot, _, err := s.snapshots.Snapshot(groupCtx, results[i].ID, date)
			if err != nil {
				return err
			}
			resolved := scheduling.ResolveDay(snapshot.Weekly, snapshot.Exceptions, date)
			results[i].AvailableLabels = resolved.Available
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		s.logger.Warn("nearby availability lookup failed", zap.Time("date", date), zap.Error(err))
		return typedOrInternal(err, "failed to resolve instructor availability")
	}
	return nil
}
