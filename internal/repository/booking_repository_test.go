package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

var bookingRowColumns = []string{"id", "learner_id", "instructor_id", "start_date", "end_date", "time_slot_labels", "plan_kind", "payment_reference", "order_id", "amount_minor", "currency", "pickup_latitude", "pickup_longitude", "pickup_address", "status", "cancelled_at", "created_at", "updated_at"}

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func bookingRow(rows *sqlmock.Rows, id string, start time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "learner-1", "inst-1", start, start.AddDate(0, 0, 6), "{07:00-08:00}", "SHORT", "pi_"+id, "order-"+id, 560000, "inr", 28.63, 77.21, "Connaught Place", "CONFIRMED", nil, start, start)
}

func TestBookingRepositoryCreateDuplicatePayment(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), nil, &models.Booking{LearnerID: "learner-1", InstructorID: "inst-1", PaymentReference: "pi_1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindByPaymentReference(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE payment_reference = $1")).
		WithArgs("pi_bk-1").
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingRowColumns), "bk-1", start))

	booking, err := repo.FindByPaymentReference(context.Background(), "pi_bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", booking.ID)
	assert.Equal(t, models.PlanShort, booking.PlanKind)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, "Connaught Place", *booking.PickupAddress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListForLearner(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings WHERE (learner_id = $1)")).
		WithArgs("learner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	rows := sqlmock.NewRows(bookingRowColumns)
	bookingRow(rows, "bk-3", start.AddDate(0, 1, 0))
	bookingRow(rows, "bk-2", start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE (learner_id = $1) ORDER BY start_date DESC, created_at DESC LIMIT 2 OFFSET 0")).
		WithArgs("learner-1").
		WillReturnRows(rows)

	bookings, total, err := repo.List(context.Background(), models.BookingFilter{LearnerID: "learner-1", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, bookings, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryMarkCancelled(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, cancelled_at = $2, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs("CANCELLED", at, "bk-1", "CONFIRMED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.MarkCancelled(context.Background(), nil, "bk-1", at)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
