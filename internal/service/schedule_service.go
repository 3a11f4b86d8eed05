package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	"github.com/noah-isme/driving-lesson-api/pkg/tracing"
)

const defaultCalendarDays = 7

type snapshotLoader interface {
	Snapshot(ctx context.Context, instructorID string, from time.Time) (*AvailabilitySnapshot, bool, error)
}

// ScheduleConfig tunes ScheduleService.
type ScheduleConfig struct {
	MaxScanDays     int
	MaxCalendarDays int
}

// ScheduleService resolves bookable slots and projects plan end dates from availability snapshots.
type ScheduleService struct {
	snapshots       snapshotLoader
	metrics         *MetricsService
	logger          *zap.Logger
	maxScanDays     int
	maxCalendarDays int
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(snapshots snapshotLoader, metrics *MetricsService, cfg ScheduleConfig, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxScanDays <= 0 {
		cfg.MaxScanDays = scheduling.DefaultMaxScanDays
	}
	if cfg.MaxCalendarDays <= 0 {
		cfg.MaxCalendarDays = 31
	}
	return &ScheduleService{
		snapshots:       snapshots,
		metrics:         metrics,
		logger:          logger,
		maxScanDays:     cfg.MaxScanDays,
		maxCalendarDays: cfg.MaxCalendarDays,
	}
}

// ResolveDay returns the instructor's available and blocked labels on date.
func (s *ScheduleService) ResolveDay(ctx context.Context, instructorID string, date time.Time) (models.ResolvedDaySlots, bool, error) {
	snapshot, hit, err := s.snapshots.Snapshot(ctx, instructorID, date)
	if err != nil {
		return models.ResolvedDaySlots{}, false, err
	}
	return scheduling.ResolveDay(snapshot.Weekly, snapshot.Exceptions, date), hit, nil
}

// Calendar resolves consecutive days starting at from. A non-positive days value means a week.
func (s *ScheduleService) Calendar(ctx context.Context, instructorID string, from time.Time, days int) ([]models.ResolvedDaySlots, bool, error) {
	if days <= 0 {
		days = defaultCalendarDays
	}
	if days > s.maxCalendarDays {
		return nil, false, validationError(nil, fmt.Sprintf("calendar range is limited to %d days", s.maxCalendarDays))
	}
	snapshot, hit, err := s.snapshots.Snapshot(ctx, instructorID, from)
	if err != nil {
		return nil, false, err
	}
	return scheduling.ResolveRange(snapshot.Weekly, snapshot.Exceptions, from, days), hit, nil
}

// Project walks the calendar from start until sessionCount lesson days are found or the scan
// bound is reached. Exhaustion is reported on the projection, never as an error.
func (s *ScheduleService) Project(ctx context.Context, instructorID string, start time.Time, sessionCount int) (scheduling.Projection, error) {
	ctx, span := tracing.Tracer().Start(ctx, "scheduling.ProjectEndDate")
	defer span.End()
	span.SetAttributes(
		attribute.String("instructor.id", instructorID),
		attribute.String("plan.start_date", scheduling.DateOf(start).Format(scheduling.DateFormat)),
		attribute.Int("plan.session_count", sessionCount),
	)

	snapshot, _, err := s.snapshots.Snapshot(ctx, instructorID, start)
	if err != nil {
		span.RecordError(err)
		return scheduling.Projection{}, err
	}
	projection := scheduling.ProjectEndDate(scheduling.ProjectionInput{
		InstructorID:  instructorID,
		StartDate:     start,
		SessionCount:  sessionCount,
		Weekly:        snapshot.Weekly,
		Exceptions:    snapshot.Exceptions,
		MaxDaysToScan: s.maxScanDays,
	})
	span.SetAttributes(
		attribute.Int("plan.days_scanned", projection.DaysScanned),
		attribute.Bool("plan.scan_exhausted", projection.ScanExhausted),
	)
	s.metrics.ObserveProjection(projection.DaysScanned, projection.ScanExhausted)
	if projection.ScanExhausted {
		s.logger.Warn("plan projection exhausted scan window",
			zap.String("instructor_id", instructorID),
			zap.Time("start_date", projection.StartDate),
			zap.Int("session_count", sessionCount),
			zap.Int("sessions_scheduled", projection.SessionsScheduled),
			zap.Int("days_scanned", projection.DaysScanned),
			zap.String("trace_id", tracing.TraceID(ctx)),
		)
	}
	return projection, nil
}

// BookedSessions recomputes the lesson days of a booking. The booking's own exception is
// ignored so its reserved days still count as sessions.
func (s *ScheduleService) BookedSessions(ctx context.Context, booking *models.Booking) (scheduling.Projection, error) {
	snapshot, _, err := s.snapshots.Snapshot(ctx, booking.InstructorID, booking.StartDate)
	if err != nil {
		return scheduling.Projection{}, err
	}
	exceptions := make([]models.BlockException, 0, len(snapshot.Exceptions))
	for _, exception := range snapshot.Exceptions {
		if exception.BookingID != nil && *exception.BookingID == booking.ID {
			continue
		}
		exceptions = append(exceptions, exception)
	}
	span := int(scheduling.DateOf(booking.EndDate).Sub(scheduling.DateOf(booking.StartDate)).Hours()/24) + 1
	if span < 1 {
		span = 1
	}
	return scheduling.ProjectEndDate(scheduling.ProjectionInput{
		InstructorID:  booking.InstructorID,
		StartDate:     booking.StartDate,
		SessionCount:  booking.PlanKind.SessionCount(),
		Weekly:        snapshot.Weekly,
		Exceptions:    exceptions,
		MaxDaysToScan: span,
	}), nil
}
