package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
)

// typedOrInternal keeps errors that already carry an application code and wraps everything else.
func typedOrInternal(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// notFoundOr maps sql.ErrNoRows to NOT_FOUND and everything else through typedOrInternal.
func notFoundOr(err error, notFoundMessage, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMessage)
	}
	return typedOrInternal(err, message)
}

func validationError(err error, message string) error {
	if err == nil {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
