package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

func newTableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTableRepositoryTables(t *testing.T) {
	repo := NewTableRepository(nil)

	tables := repo.Tables()

	require.Len(t, tables, 4)
	assert.Equal(t, "block_exceptions", tables[0].Name)
	assert.Contains(t, tables[3].Columns, "day_of_week")
}

func TestTableRepositoryQuery(t *testing.T) {
	db, mock, cleanup := newTableRepoMock(t)
	defer cleanup()
	repo := NewTableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM weekly_availability WHERE instructor_id = $1")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_availability WHERE instructor_id = $1 ORDER BY day_of_week DESC LIMIT 20 OFFSET 0")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_of_week", "time_slot_labels"}).AddRow("wa-1", 1, []byte("{07:00-08:00}")))

	rows, total, err := repo.Query(context.Background(), "weekly_availability", models.TableFilter{
		Equals:  map[string]interface{}{"instructor_id": "inst-1"},
		OrderBy: "-day_of_week",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "{07:00-08:00}", rows[0]["time_slot_labels"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableRepositoryRejectsUnknownNames(t *testing.T) {
	repo := NewTableRepository(nil)

	_, _, err := repo.Query(context.Background(), "users", models.TableFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, _, err = repo.Query(context.Background(), "bookings", models.TableFilter{Equals: map[string]interface{}{"password": "x"}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = repo.Insert(context.Background(), "bookings", models.TableRow{"id; DROP TABLE bookings": "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = repo.Upsert(context.Background(), "bookings", []models.TableRow{{"id": "bk-1"}}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTableRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newTableRepoMock(t)
	defer cleanup()
	repo := NewTableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO block_exceptions (id,instructor_id,time_slot_labels) VALUES ($1,$2,$3) RETURNING id, instructor_id")).
		WithArgs("ex-1", "inst-1", "{\"07:00-08:00\"}").
		WillReturnRows(sqlmock.NewRows([]string{"id", "instructor_id"}).AddRow("ex-1", "inst-1"))

	row, err := repo.Insert(context.Background(), "block_exceptions", models.TableRow{
		"id":               "ex-1",
		"instructor_id":    "inst-1",
		"time_slot_labels": []interface{}{"07:00-08:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ex-1", row["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newTableRepoMock(t)
	defer cleanup()
	repo := NewTableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO weekly_availability (instructor_id,day_of_week,is_active) VALUES ($1,$2,$3),($4,$5,$6) ON CONFLICT (instructor_id, day_of_week) DO UPDATE SET is_active = EXCLUDED.is_active RETURNING")).
		WithArgs("inst-1", 1, true, "inst-1", 2, false).
		WillReturnRows(sqlmock.NewRows([]string{"instructor_id", "day_of_week"}).AddRow("inst-1", 1).AddRow("inst-1", 2))

	rows, err := repo.Upsert(context.Background(), "weekly_availability", []models.TableRow{
		{"instructor_id": "inst-1", "day_of_week": 1, "is_active": true},
		{"instructor_id": "inst-1", "day_of_week": 2, "is_active": false},
	}, []string{"instructor_id", "day_of_week"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
