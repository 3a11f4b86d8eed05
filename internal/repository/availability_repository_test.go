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

	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

var availabilityRowColumns = []string{"id", "instructor_id", "day_of_week", "time_slot_labels", "is_active", "created_at", "updated_at"}

func newAvailabilityRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAvailabilityRepositoryListActiveOnly(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(availabilityRowColumns).
		AddRow("wa-1", "inst-1", 1, "{07:00-08:00,08:00-09:00}", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_availability WHERE instructor_id = $1 AND is_active = TRUE ORDER BY day_of_week ASC")).
		WithArgs("inst-1").
		WillReturnRows(rows)

	entries, err := repo.ListByInstructor(context.Background(), "inst-1", false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, pq.StringArray{"07:00-08:00", "08:00-09:00"}, entries[0].TimeSlotLabels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListIncludingInactive(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_availability WHERE instructor_id = $1 ORDER BY day_of_week ASC")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows(availabilityRowColumns))

	entries, err := repo.ListByInstructor(context.Background(), "inst-1", true)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceWeekly(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	labels := []string{"07:00-08:00", "08:00-09:00"}
	now := time.Now()
	mock.ExpectBegin()
	for _, day := range []int{1, 3} {
		mock.ExpectExec("INSERT INTO weekly_availability .* ON CONFLICT \\(instructor_id, day_of_week\\) DO UPDATE").
			WithArgs(sqlmock.AnyArg(), "inst-1", day, pq.StringArray(labels), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE weekly_availability SET is_active = FALSE")).
		WithArgs(sqlmock.AnyArg(), "inst-1", "{1,3}").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows(availabilityRowColumns).
		AddRow("wa-1", "inst-1", 1, "{07:00-08:00,08:00-09:00}", true, now, now).
		AddRow("wa-2", "inst-1", 3, "{07:00-08:00,08:00-09:00}", true, now, now).
		AddRow("wa-3", "inst-1", 5, "{18:00-19:00}", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_availability WHERE instructor_id = $1 ORDER BY day_of_week ASC")).
		WithArgs("inst-1").
		WillReturnRows(rows)
	mock.ExpectCommit()

	entries, err := repo.ReplaceWeekly(context.Background(), "inst-1", []int{1, 3}, labels)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.False(t, entries[2].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceWeeklyClearsAll(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE weekly_availability SET is_active = FALSE")).
		WithArgs(sqlmock.AnyArg(), "inst-1", "{}").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_availability WHERE instructor_id = $1")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows(availabilityRowColumns))
	mock.ExpectCommit()

	_, err := repo.ReplaceWeekly(context.Background(), "inst-1", nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceWeeklyRollsBackOnConflict(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO weekly_availability").
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	_, err := repo.ReplaceWeekly(context.Background(), "missing", []int{2}, []string{"07:00-08:00"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}
