package repository

import (
	"errors"
	"net/http"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// conflictOr converts constraint violations reported by Postgres into a CONFLICT error and
// leaves every other failure untouched.
func conflictOr(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation, pqForeignKeyViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, http.StatusConflict, message)
		}
	}
	return err
}
