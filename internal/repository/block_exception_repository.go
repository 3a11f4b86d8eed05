package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

const blockExceptionColumns = `id, instructor_id, start_date, end_date, time_slot_labels, booking_id, reason, created_at`

// BlockExceptionRepository persists date-range blocks on instructor availability.
type BlockExceptionRepository struct {
	db *sqlx.DB
}

// NewBlockExceptionRepository constructs the repository.
func NewBlockExceptionRepository(db *sqlx.DB) *BlockExceptionRepository {
	return &BlockExceptionRepository{db: db}
}

func (r *BlockExceptionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListFrom returns exceptions of the instructor that end on or after from.
func (r *BlockExceptionRepository) ListFrom(ctx context.Context, instructorID string, from time.Time) ([]models.BlockException, error) {
	query := `SELECT ` + blockExceptionColumns + ` FROM block_exceptions WHERE instructor_id = $1 AND end_date >= $2 ORDER BY start_date ASC, created_at ASC`
	var exceptions []models.BlockException
	if err := r.db.SelectContext(ctx, &exceptions, query, instructorID, from); err != nil {
		return nil, fmt.Errorf("list block exceptions: %w", err)
	}
	return exceptions, nil
}

// FindByID returns the exception or sql.ErrNoRows.
func (r *BlockExceptionRepository) FindByID(ctx context.Context, id string) (*models.BlockException, error) {
	query := `SELECT ` + blockExceptionColumns + ` FROM block_exceptions WHERE id = $1`
	var exception models.BlockException
	if err := r.db.GetContext(ctx, &exception, query, id); err != nil {
		return nil, err
	}
	return &exception, nil
}

// Create inserts the exception, assigning an id and creation time when missing.
func (r *BlockExceptionRepository) Create(ctx context.Context, exec sqlx.ExtContext, exception *models.BlockException) error {
	if exception == nil {
		return fmt.Errorf("block exception payload is nil")
	}
	if exception.ID == "" {
		exception.ID = uuid.NewString()
	}
	if exception.CreatedAt.IsZero() {
		exception.CreatedAt = time.Now().UTC()
	}
	if exception.TimeSlotLabels == nil {
		exception.TimeSlotLabels = pq.StringArray{}
	}

	const query = `INSERT INTO block_exceptions (id, instructor_id, start_date, end_date, time_slot_labels, booking_id, reason, created_at)
		VALUES (:id, :instructor_id, :start_date, :end_date, :time_slot_labels, :booking_id, :reason, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, exception); err != nil {
		return conflictOr(fmt.Errorf("insert block exception: %w", err), "block exception rejected by storage")
	}
	return nil
}

// Delete removes an exception by id and reports whether a row was removed.
func (r *BlockExceptionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM block_exceptions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete block exception: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete block exception rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteByBooking removes every exception a booking created.
func (r *BlockExceptionRepository) DeleteByBooking(ctx context.Context, exec sqlx.ExtContext, bookingID string) (int64, error) {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM block_exceptions WHERE booking_id = $1`, bookingID)
	if err != nil {
		return 0, fmt.Errorf("delete booking block exceptions: %w", err)
	}
	return res.RowsAffected()
}

// FindBookedOverlaps returns booking-derived exceptions of the instructor whose span
// intersects [start, end] and that share at least one label.
func (r *BlockExceptionRepository) FindBookedOverlaps(ctx context.Context, exec sqlx.ExtContext, instructorID string, start, end time.Time, labels []string) ([]models.BlockException, error) {
	query, args, err := psql.Select(blockExceptionColumns).
		From("block_exceptions").
		Where(squirrel.Eq{"instructor_id": instructorID}).
		Where(squirrel.NotEq{"booking_id": nil}).
		Where(squirrel.LtOrEq{"start_date": end}).
		Where(squirrel.GtOrEq{"end_date": start}).
		Where(squirrel.Expr("time_slot_labels && ?", pq.StringArray(labels))).
		OrderBy("start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query: %w", err)
	}

	var exceptions []models.BlockException
	if err := sqlx.SelectContext(ctx, r.exec(exec), &exceptions, query, args...); err != nil {
		return nil, fmt.Errorf("find overlapping booking blocks: %w", err)
	}
	return exceptions, nil
}
