package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

var blockExceptionRowColumns = []string{"id", "instructor_id", "start_date", "end_date", "time_slot_labels", "booking_id", "reason", "created_at"}

func newBlockExceptionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBlockExceptionRepositoryListFrom(t *testing.T) {
	db, mock, cleanup := newBlockExceptionRepoMock(t)
	defer cleanup()
	repo := NewBlockExceptionRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(blockExceptionRowColumns).
		AddRow("ex-1", "inst-1", from, from.AddDate(0, 0, 6), "{07:00-08:00}", "bk-1", nil, from).
		AddRow("ex-2", "inst-1", from.AddDate(0, 0, 2), from.AddDate(0, 0, 2), "{18:00-19:00}", nil, "vehicle service", from)
	mock.ExpectQuery(regexp.QuoteMeta("FROM block_exceptions WHERE instructor_id = $1 AND end_date >= $2")).
		WithArgs("inst-1", from).
		WillReturnRows(rows)

	exceptions, err := repo.ListFrom(context.Background(), "inst-1", from)
	require.NoError(t, err)
	require.Len(t, exceptions, 2)
	assert.True(t, exceptions[0].IsBookingDerived())
	assert.False(t, exceptions[1].IsBookingDerived())
	assert.Equal(t, "vehicle service", *exceptions[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockExceptionRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newBlockExceptionRepoMock(t)
	defer cleanup()
	repo := NewBlockExceptionRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO block_exceptions").
		WithArgs(sqlmock.AnyArg(), "inst-1", start, start, pq.StringArray{"07:00-08:00"}, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	exception := &models.BlockException{InstructorID: "inst-1", StartDate: start, EndDate: start, TimeSlotLabels: []string{"07:00-08:00"}}
	require.NoError(t, repo.Create(context.Background(), nil, exception))
	assert.NotEmpty(t, exception.ID)
	assert.False(t, exception.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockExceptionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newBlockExceptionRepoMock(t)
	defer cleanup()
	repo := NewBlockExceptionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM block_exceptions WHERE id = $1")).
		WithArgs("ex-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM block_exceptions WHERE id = $1")).
		WithArgs("ex-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "ex-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(context.Background(), "ex-404")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockExceptionRepositoryFindBookedOverlaps(t *testing.T) {
	db, mock, cleanup := newBlockExceptionRepoMock(t)
	defer cleanup()
	repo := NewBlockExceptionRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	mock.ExpectQuery(regexp.QuoteMeta("FROM block_exceptions WHERE instructor_id = $1 AND booking_id IS NOT NULL AND start_date <= $2 AND end_date >= $3 AND time_slot_labels && $4 ORDER BY start_date ASC")).
		WithArgs("inst-1", end, start, pq.StringArray{"07:00-08:00"}).
		WillReturnRows(sqlmock.NewRows(blockExceptionRowColumns).
			AddRow("ex-1", "inst-1", start, end, "{07:00-08:00}", "bk-1", nil, start))

	overlaps, err := repo.FindBookedOverlaps(context.Background(), nil, "inst-1", start, end, []string{"07:00-08:00"})
	require.NoError(t, err)
	require.Len(t, overlaps, 1)
	assert.Equal(t, "bk-1", *overlaps[0].BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
