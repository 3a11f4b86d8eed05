package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

var instructorRowColumns = []string{"id", "user_id", "full_name", "email", "phone", "vehicle_type", "hourly_rate_minor", "latitude", "longitude", "active", "created_at", "updated_at"}

func newInstructorRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestInstructorRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	repo := NewInstructorRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(instructorRowColumns).
		AddRow("inst-1", "user-1", "Asha Rao", "asha@example.com", nil, "hatchback", 80000, 28.6333, 77.2167, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE id = $1")).WithArgs("inst-1").WillReturnRows(rows)

	instructor, err := repo.FindByID(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", instructor.FullName)
	assert.Equal(t, int64(80000), instructor.HourlyRateMinor)
	require.NotNil(t, instructor.Coordinate())
	assert.Equal(t, 77.2167, instructor.Coordinate().Longitude)
	assert.Nil(t, instructor.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryFindByUserIDMissing(t *testing.T) {
	db, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	repo := NewInstructorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE user_id = $1")).WithArgs("user-9").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUserID(context.Background(), "user-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryListActiveWithCoordinates(t *testing.T) {
	db, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()
	repo := NewInstructorRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(instructorRowColumns).
		AddRow("inst-1", "user-1", "Asha Rao", "asha@example.com", nil, nil, 80000, 28.6, 77.2, true, now, now).
		AddRow("inst-2", "user-2", "Vikram Shah", "vikram@example.com", nil, nil, 70000, 28.7, 77.1, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM instructors WHERE active = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL ORDER BY full_name ASC, id ASC")).
		WithArgs(true).
		WillReturnRows(rows)

	active := true
	instructors, err := repo.List(context.Background(), models.InstructorFilter{Active: &active, HasCoordinates: true})
	require.NoError(t, err)
	assert.Len(t, instructors, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
