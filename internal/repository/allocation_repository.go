package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

// AllocationRepository writes booking-derived blocks atomically with their booking.
// Every write locks the instructor row first so concurrent allocations for the same
// instructor run one after another.
type AllocationRepository struct {
	db          *sqlx.DB
	instructors *InstructorRepository
	exceptions  *BlockExceptionRepository
	bookings    *BookingRepository
}

// NewAllocationRepository constructs the repository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{
		db:          db,
		instructors: NewInstructorRepository(db),
		exceptions:  NewBlockExceptionRepository(db),
		bookings:    NewBookingRepository(db),
	}
}

// Allocate persists the exception and, when given, the booking that owns it. It fails
// with SLOT_TAKEN when another booking already blocks one of the labels on an
// overlapping date.
func (r *AllocationRepository) Allocate(ctx context.Context, exception *models.BlockException, booking *models.Booking) (err error) {
	if exception == nil {
		return fmt.Errorf("block exception payload is nil")
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.instructors.Lock(ctx, tx, exception.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return fmt.Errorf("lock instructor: %w", err)
	}

	overlaps, err := r.exceptions.FindBookedOverlaps(ctx, tx, exception.InstructorID, exception.StartDate, exception.EndDate, exception.TimeSlotLabels)
	if err != nil {
		return err
	}
	if len(overlaps) > 0 {
		err = appErrors.Clone(appErrors.ErrSlotTaken, slotTakenMessage(exception.TimeSlotLabels, overlaps))
		return err
	}

	if booking != nil {
		if err = r.bookings.Create(ctx, tx, booking); err != nil {
			return err
		}
	}
	if err = r.exceptions.Create(ctx, tx, exception); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation tx: %w", err)
	}
	return nil
}

// Release cancels the booking and deletes the blocks it created, freeing the slots.
// It returns false when the booking was not in the CONFIRMED state.
func (r *AllocationRepository) Release(ctx context.Context, bookingID string, at time.Time) (released bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin release tx: %w", err)
	}
	defer func() {
		if err != nil || !released {
			_ = tx.Rollback()
		}
	}()

	released, err = r.bookings.MarkCancelled(ctx, tx, bookingID, at)
	if err != nil || !released {
		return false, err
	}
	if _, err = r.exceptions.DeleteByBooking(ctx, tx, bookingID); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit release tx: %w", err)
	}
	return true, nil
}

func slotTakenMessage(requested []string, overlaps []models.BlockException) string {
	wanted := make(map[string]struct{}, len(requested))
	for _, label := range requested {
		wanted[label] = struct{}{}
	}
	var taken []string
	seen := make(map[string]struct{})
	for _, overlap := range overlaps {
		for _, label := range overlap.TimeSlotLabels {
			if _, ok := wanted[label]; !ok {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			taken = append(taken, label)
		}
	}
	return fmt.Sprintf("time slot already booked: %s", strings.Join(taken, ", "))
}
