package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

const bookingColumns = `id, learner_id, instructor_id, start_date, end_date, time_slot_labels, plan_kind, payment_reference, order_id, amount_minor, currency, pickup_latitude, pickup_longitude, pickup_address, status, cancelled_at, created_at, updated_at`

// BookingRepository persists paid lesson plans.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the booking. payment_reference is unique so a replayed confirmation fails
// with a CONFLICT error.
func (r *BookingRepository) Create(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking payload is nil")
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusConfirmed
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, learner_id, instructor_id, start_date, end_date, time_slot_labels, plan_kind, payment_reference, order_id, amount_minor, currency, pickup_latitude, pickup_longitude, pickup_address, status, cancelled_at, created_at, updated_at)
		VALUES (:id, :learner_id, :instructor_id, :start_date, :end_date, :time_slot_labels, :plan_kind, :payment_reference, :order_id, :amount_minor, :currency, :pickup_latitude, :pickup_longitude, :pickup_address, :status, :cancelled_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, booking); err != nil {
		return conflictOr(fmt.Errorf("insert booking: %w", err), "booking rejected by storage")
	}
	return nil
}

// FindByID returns the booking or sql.ErrNoRows.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByPaymentReference returns the booking created for a payment or sql.ErrNoRows.
func (r *BookingRepository) FindByPaymentReference(ctx context.Context, paymentReference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_reference = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, paymentReference); err != nil {
		return nil, err
	}
	return &booking, nil
}

// List returns bookings for one learner or instructor, newest start date first.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	where := squirrel.And{}
	if filter.LearnerID != "" {
		where = append(where, squirrel.Eq{"learner_id": filter.LearnerID})
	}
	if filter.InstructorID != "" {
		where = append(where, squirrel.Eq{"instructor_id": filter.InstructorID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": string(*filter.Status)})
	}

	filtered := func(b squirrel.SelectBuilder) squirrel.SelectBuilder {
		if len(where) == 0 {
			return b
		}
		return b.Where(where)
	}

	countQuery, countArgs, err := filtered(psql.Select("COUNT(*)").From("bookings")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count bookings query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	query, args, err := filtered(psql.Select(bookingColumns).From("bookings")).
		OrderBy("start_date DESC", "created_at DESC").
		Limit(uint64(size)).Offset(uint64((page - 1) * size)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query: %w", err)
	}
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, total, nil
}

// MarkCancelled flips a confirmed booking to CANCELLED and reports whether it changed.
func (r *BookingRepository) MarkCancelled(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) (bool, error) {
	const query = `UPDATE bookings SET status = $1, cancelled_at = $2, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.exec(exec).ExecContext(ctx, query, models.BookingStatusCancelled, at, id, models.BookingStatusConfirmed)
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel booking rows: %w", err)
	}
	return affected > 0, nil
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
