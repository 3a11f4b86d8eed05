package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

const availabilityColumns = `id, instructor_id, day_of_week, time_slot_labels, is_active, created_at, updated_at`

// AvailabilityRepository persists the weekly availability template of instructors.
// Rows are unique per (instructor_id, day_of_week); retracted days stay as inactive rows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListByInstructor returns the weekly rows of an instructor ordered by weekday.
func (r *AvailabilityRepository) ListByInstructor(ctx context.Context, instructorID string, includeInactive bool) ([]models.WeeklyAvailability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM weekly_availability WHERE instructor_id = $1`
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY day_of_week ASC`

	var entries []models.WeeklyAvailability
	if err := r.db.SelectContext(ctx, &entries, query, instructorID); err != nil {
		return nil, fmt.Errorf("list weekly availability: %w", err)
	}
	return entries, nil
}

// ReplaceWeekly gives every day in days exactly labels and deactivates every other day of
// the instructor, all in one transaction. It returns the full template afterwards.
func (r *AvailabilityRepository) ReplaceWeekly(ctx context.Context, instructorID string, days []int, labels []string) (entries []models.WeeklyAvailability, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace weekly tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const upsert = `INSERT INTO weekly_availability (id, instructor_id, day_of_week, time_slot_labels, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $5)
		ON CONFLICT (instructor_id, day_of_week) DO UPDATE
		SET time_slot_labels = EXCLUDED.time_slot_labels,
		    is_active = TRUE,
		    updated_at = EXCLUDED.updated_at`
	for _, day := range days {
		if _, err = tx.ExecContext(ctx, upsert, uuid.NewString(), instructorID, day, pq.StringArray(labels), now); err != nil {
			return nil, conflictOr(fmt.Errorf("upsert weekly availability day %d: %w", day, err), "weekly availability could not be saved")
		}
	}

	const deactivate = `UPDATE weekly_availability SET is_active = FALSE, updated_at = $1
		WHERE instructor_id = $2 AND is_active = TRUE AND NOT (day_of_week = ANY($3))`
	if _, err = tx.ExecContext(ctx, deactivate, now, instructorID, pq.Array(intsToInt64(days))); err != nil {
		return nil, fmt.Errorf("deactivate unselected days: %w", err)
	}

	query := `SELECT ` + availabilityColumns + ` FROM weekly_availability WHERE instructor_id = $1 ORDER BY day_of_week ASC`
	if err = tx.SelectContext(ctx, &entries, query, instructorID); err != nil {
		return nil, fmt.Errorf("reload weekly availability: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace weekly tx: %w", err)
	}
	return entries, nil
}

func intsToInt64(values []int) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
