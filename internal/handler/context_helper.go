package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/driving-lesson-api/internal/middleware"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	"github.com/noah-isme/driving-lesson-api/internal/service"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
	"github.com/noah-isme/driving-lesson-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

func actorFromContext(c *gin.Context) (service.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return service.Actor{}, false
	}
	return service.ActorFromClaims(claims), true
}

func instructorFromContext(c *gin.Context) (*models.Instructor, bool) {
	instructor, ok := middleware.CurrentInstructor(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructor profile required"))
		return nil, false
	}
	return instructor, true
}

// dateParam parses an optional YYYY-MM-DD value, defaulting to today in loc.
func dateParam(c *gin.Context, raw, name string, now func() time.Time, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return scheduling.Today(now(), loc), true
	}
	date, err := scheduling.ParseDate(raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" must be YYYY-MM-DD"))
		return time.Time{}, false
	}
	return date, true
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
