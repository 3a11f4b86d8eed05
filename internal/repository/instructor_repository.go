package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/driving-lesson-api/internal/models"
)

const instructorColumns = `id, user_id, full_name, email, phone, vehicle_type, hourly_rate_minor, latitude, longitude, active, created_at, updated_at`

// InstructorRepository reads the instructor directory.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindByID returns the instructor or sql.ErrNoRows.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE id = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// FindByUserID resolves the instructor profile owned by a user account.
func (r *InstructorRepository) FindByUserID(ctx context.Context, userID string) (*models.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE user_id = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, userID); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// List returns instructors matching the filter ordered by name.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	builder := psql.Select(instructorColumns).From("instructors").OrderBy("full_name ASC", "id ASC")
	if filter.Active != nil {
		builder = builder.Where("active = ?", *filter.Active)
	}
	if filter.HasCoordinates {
		builder = builder.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list instructors query: %w", err)
	}

	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// Lock takes a row lock on the instructor inside tx, serialising allocations for them.
func (r *InstructorRepository) Lock(ctx context.Context, tx sqlx.ExtContext, id string) error {
	var locked string
	if err := sqlx.GetContext(ctx, tx, &locked, `SELECT id FROM instructors WHERE id = $1 FOR UPDATE`, id); err != nil {
		return err
	}
	return nil
}
