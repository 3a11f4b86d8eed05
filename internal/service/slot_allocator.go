package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
	"github.com/noah-isme/driving-lesson-api/pkg/tracing"
)

type allocationStore interface {
	Allocate(ctx context.Context, exception *models.BlockException, booking *models.Booking) error
	Release(ctx context.Context, bookingID string, at time.Time) (bool, error)
}

// SlotAllocator turns a paid plan into the block exception that reserves its slots. Allocation
// is serialised per instructor in storage and fails with SLOT_TAKEN when another booking
// already holds an overlapping label.
type SlotAllocator struct {
	store   allocationStore
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewSlotAllocator constructs a SlotAllocator.
func NewSlotAllocator(store allocationStore, metrics *MetricsService, logger *zap.Logger) *SlotAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotAllocator{store: store, metrics: metrics, logger: logger, now: time.Now}
}

// Allocate reserves labels over the requested range for an already persisted booking.
func (a *SlotAllocator) Allocate(ctx context.Context, req scheduling.AllocationRequest, bookingID string) (*models.BlockException, error) {
	return a.allocate(ctx, req, bookingID, nil)
}

// AllocateBooking persists booking and its reserving exception in one transaction.
func (a *SlotAllocator) AllocateBooking(ctx context.Context, booking *models.Booking) (*models.BlockException, error) {
	if booking == nil {
		return nil, validationError(nil, "booking is required")
	}
	req := scheduling.AllocationRequest{
		InstructorID: booking.InstructorID,
		StartDate:    booking.StartDate,
		EndDate:      booking.EndDate,
		Labels:       booking.TimeSlotLabels,
	}
	return a.allocate(ctx, req, booking.ID, booking)
}

// Release cancels a confirmed booking and frees its slots.
func (a *SlotAllocator) Release(ctx context.Context, bookingID string) (bool, error) {
	released, err := a.store.Release(ctx, bookingID, a.now().UTC())
	if err != nil {
		return false, typedOrInternal(err, "failed to release booking slots")
	}
	return released, nil
}

func (a *SlotAllocator) allocate(ctx context.Context, req scheduling.AllocationRequest, bookingID string, booking *models.Booking) (*models.BlockException, error) {
	ctx, span := tracing.Tracer().Start(ctx, "scheduling.AllocateSlots")
	defer span.End()
	span.SetAttributes(
		attribute.String("instructor.id", req.InstructorID),
		attribute.String("booking.id", bookingID),
		attribute.StringSlice("slot.labels", req.Labels),
	)

	if err := req.Validate(); err != nil {
		return nil, validationError(err, err.Error())
	}
	if bookingID == "" {
		return nil, validationError(nil, "booking id is required")
	}
	exception := scheduling.BookingException(req, bookingID)

	start := time.Now()
	err := a.store.Allocate(ctx, &exception, booking)
	a.metrics.ObserveDBQuery("allocate_slots", time.Since(start))
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, appErrors.ErrSlotTaken) {
			fields := []zap.Field{
				zap.String("instructor_id", req.InstructorID),
				zap.String("booking_id", bookingID),
				zap.Strings("labels", req.Labels),
			}
			if booking != nil {
				fields = append(fields, zap.String("payment_reference", booking.PaymentReference))
			}
			a.logger.Warn("slot allocation lost race", fields...)
			return nil, err
		}
		return nil, typedOrInternal(err, "failed to allocate slots")
	}
	a.logger.Info("slots allocated",
		zap.String("instructor_id", req.InstructorID),
		zap.String("booking_id", bookingID),
		zap.String("exception_id", exception.ID),
	)
	return &exception, nil
}
