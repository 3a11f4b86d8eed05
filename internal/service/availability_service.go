package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

type instructorDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	FindByUserID(ctx context.Context, userID string) (*models.Instructor, error)
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error)
}

type weeklyAvailabilityStore interface {
	ListByInstructor(ctx context.Context, instructorID string, includeInactive bool) ([]models.WeeklyAvailability, error)
	ReplaceWeekly(ctx context.Context, instructorID string, days []int, labels []string) ([]models.WeeklyAvailability, error)
}

type blockExceptionStore interface {
	ListFrom(ctx context.Context, instructorID string, from time.Time) ([]models.BlockException, error)
	FindByID(ctx context.Context, id string) (*models.BlockException, error)
	Create(ctx context.Context, exec sqlx.ExtContext, exception *models.BlockException) error
	Delete(ctx context.Context, id string) (bool, error)
}

// AvailabilitySnapshot is everything needed to resolve an instructor's slots from a date onwards.
type AvailabilitySnapshot struct {
	InstructorID string                      `json:"instructor_id"`
	From         time.Time                   `json:"from"`
	Weekly       []models.WeeklyAvailability `json:"weekly"`
	Exceptions   []models.BlockException     `json:"exceptions"`
}

// AvailabilityConfig tunes AvailabilityService.
type AvailabilityConfig struct {
	Catalog  *scheduling.Catalog
	CacheTTL time.Duration
}

// AvailabilityService owns instructors' weekly templates and block exceptions.
type AvailabilityService struct {
	instructors instructorDirectory
	weekly      weeklyAvailabilityStore
	exceptions  blockExceptionStore
	cache       *CacheService
	catalog     *scheduling.Catalog
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAvailabilityService wires availability dependencies.
func NewAvailabilityService(
	instructors instructorDirectory,
	weekly weeklyAvailabilityStore,
	exceptions blockExceptionStore,
	cache *CacheService,
	cfg AvailabilityConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = scheduling.DefaultCatalog()
	}
	return &AvailabilityService{
		instructors: instructors,
		weekly:      weekly,
		exceptions:  exceptions,
		cache:       cache,
		catalog:     cfg.Catalog,
		cacheTTL:    cfg.CacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// Catalog lists the labels instructors may offer.
func (s *AvailabilityService) Catalog() []string {
	return s.catalog.Labels()
}

// GetWeeklyAvailability returns the instructor's weekly template. Inactive days are included
// only when includeInactive is set, which editors use to pre-fill forms.
func (s *AvailabilityService) GetWeeklyAvailability(ctx context.Context, instructorID string, includeInactive bool) (*dto.WeeklyAvailabilityResponse, error) {
	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	entries, err := s.weekly.ListByInstructor(ctx, instructorID, includeInactive)
	if err != nil {
		return nil, typedOrInternal(err, "failed to load weekly availability")
	}
	if entries == nil {
		entries = []models.WeeklyAvailability{}
	}
	return &dto.WeeklyAvailabilityResponse{InstructorID: instructorID, Entries: entries, Catalog: s.catalog.Labels()}, nil
}

// SetWeeklyAvailability replaces the weekly template: every selected day offers exactly the
// selected labels and every other day is retracted. Selecting nothing retracts all days.
func (s *AvailabilityService) SetWeeklyAvailability(ctx context.Context, instructorID string, req dto.SetWeeklyAvailabilityRequest) (*dto.WeeklyAvailabilityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid weekly availability payload")
	}
	days := uniqueDays(req.Days)
	labels := scheduling.NormalizeLabels(req.Labels)
	if len(days) > 0 && len(labels) == 0 {
		return nil, validationError(nil, "select at least one time slot for the chosen days")
	}
	if len(days) == 0 {
		labels = nil
	}
	if unknown := s.catalog.Unknown(labels); len(unknown) > 0 {
		return nil, validationError(nil, "unknown time slots: "+strings.Join(unknown, ", "))
	}
	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	entries, err := s.weekly.ReplaceWeekly(ctx, instructorID, days, labels)
	if err != nil {
		return nil, typedOrInternal(err, "failed to save weekly availability")
	}
	s.Invalidate(ctx, instructorID)
	s.logger.Info("weekly availability replaced",
		zap.String("instructor_id", instructorID),
		zap.Ints("days", days),
		zap.Strings("labels", labels),
	)
	if entries == nil {
		entries = []models.WeeklyAvailability{}
	}
	return &dto.WeeklyAvailabilityResponse{InstructorID: instructorID, Entries: entries, Catalog: s.catalog.Labels()}, nil
}

// GetExceptionsFrom lists the instructor's exceptions still in effect on or after from.
func (s *AvailabilityService) GetExceptionsFrom(ctx context.Context, instructorID string, from time.Time) ([]models.BlockException, error) {
	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	exceptions, err := s.exceptions.ListFrom(ctx, instructorID, scheduling.DateOf(from))
	if err != nil {
		return nil, typedOrInternal(err, "failed to load block exceptions")
	}
	if exceptions == nil {
		exceptions = []models.BlockException{}
	}
	return exceptions, nil
}

// AddException blocks labels on a date range for an instructor (time off, maintenance).
func (s *AvailabilityService) AddException(ctx context.Context, instructorID string, req dto.CreateBlockExceptionRequest) (*models.BlockException, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid block exception payload")
	}
	start, err := scheduling.ParseDate(req.StartDate)
	if err != nil {
		return nil, validationError(err, "start_date must be YYYY-MM-DD")
	}
	end, err := scheduling.ParseDate(req.EndDate)
	if err != nil {
		return nil, validationError(err, "end_date must be YYYY-MM-DD")
	}
	allocation := scheduling.AllocationRequest{InstructorID: instructorID, StartDate: start, EndDate: end, Labels: req.Labels}
	if err := allocation.Validate(); err != nil {
		return nil, validationError(err, err.Error())
	}
	if unknown := s.catalog.Unknown(scheduling.NormalizeLabels(req.Labels)); len(unknown) > 0 {
		return nil, validationError(nil, "unknown time slots: "+strings.Join(unknown, ", "))
	}
	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	exception := scheduling.BookingException(allocation, "")
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		exception.Reason = &reason
	}
	if err := s.exceptions.Create(ctx, nil, &exception); err != nil {
		return nil, typedOrInternal(err, "failed to create block exception")
	}
	s.Invalidate(ctx, instructorID)
	s.logger.Info("block exception added",
		zap.String("instructor_id", instructorID),
		zap.String("exception_id", exception.ID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)
	return &exception, nil
}

// DeleteException removes a manual exception. Booking-derived exceptions are released only by
// cancelling their booking.
func (s *AvailabilityService) DeleteException(ctx context.Context, instructorID, exceptionID string) error {
	exception, err := s.exceptions.FindByID(ctx, exceptionID)
	if err != nil {
		return notFoundOr(err, "block exception not found", "failed to load block exception")
	}
	if exception.InstructorID != instructorID {
		return appErrors.Clone(appErrors.ErrNotFound, "block exception not found")
	}
	if exception.IsBookingDerived() {
		return appErrors.Clone(appErrors.ErrConflict, "exception belongs to a booking; cancel the booking instead")
	}
	deleted, err := s.exceptions.Delete(ctx, exceptionID)
	if err != nil {
		return typedOrInternal(err, "failed to delete block exception")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "block exception not found")
	}
	s.Invalidate(ctx, instructorID)
	s.logger.Info("block exception deleted", zap.String("instructor_id", instructorID), zap.String("exception_id", exceptionID))
	return nil
}

// Snapshot loads the active weekly template and the exceptions in effect from the given date,
// serving from cache when possible. The boolean reports a cache hit.
func (s *AvailabilityService) Snapshot(ctx context.Context, instructorID string, from time.Time) (*AvailabilitySnapshot, bool, error) {
	from = scheduling.DateOf(from)
	return Remember(ctx, s.cache, snapshotCacheKey(instructorID, from), s.cacheTTL, func(ctx context.Context) (*AvailabilitySnapshot, error) {
		weekly, err := s.weekly.ListByInstructor(ctx, instructorID, false)
		if err != nil {
			return nil, typedOrInternal(err, "failed to load weekly availability")
		}
		exceptions, err := s.exceptions.ListFrom(ctx, instructorID, from)
		if err != nil {
			return nil, typedOrInternal(err, "failed to load block exceptions")
		}
		return &AvailabilitySnapshot{InstructorID: instructorID, From: from, Weekly: weekly, Exceptions: exceptions}, nil
	})
}

// Invalidate drops every cached snapshot of the instructor. Failures are logged only.
func (s *AvailabilityService) Invalidate(ctx context.Context, instructorID string) {
	_ = s.cache.Invalidate(ctx, CacheKey("availability", instructorID, "*"))
}

func (s *AvailabilityService) ensureInstructor(ctx context.Context, instructorID string) error {
	if strings.TrimSpace(instructorID) == "" {
		return validationError(nil, "instructor id is required")
	}
	if _, err := s.instructors.FindByID(ctx, instructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return typedOrInternal(err, "failed to load instructor")
	}
	return nil
}

func snapshotCacheKey(instructorID string, from time.Time) string {
	return CacheKey("availability", instructorID, from.Format(scheduling.DateFormat))
}

func uniqueDays(days []int) []int {
	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Ints(out)
	return out
}
