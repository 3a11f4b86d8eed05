package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/driving-lesson-api/internal/models"
	appErrors "github.com/noah-isme/driving-lesson-api/pkg/errors"
	"github.com/noah-isme/driving-lesson-api/pkg/response"
)

// ContextInstructorKey stores the caller's instructor profile.
const ContextInstructorKey = "currentInstructor"

// InstructorResolver maps an authenticated account to its instructor profile.
type InstructorResolver interface {
	ResolveSelf(ctx context.Context, claims *models.JWTClaims) (*models.Instructor, error)
}

// InstructorSelf loads the caller's instructor profile for self-service routes. Admins may act
// on an instructor named by the instructor_id query parameter.
func InstructorSelf(resolver InstructorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		lookup := claims
		if claims.Role == models.RoleAdmin {
			target := c.Query("instructor_id")
			if target == "" {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, "instructor_id is required for admin access"))
				c.Abort()
				return
			}
			lookup = &models.JWTClaims{UserID: claims.UserID, Role: models.RoleAdmin, InstructorID: target}
		}

		instructor, err := resolver.ResolveSelf(c.Request.Context(), lookup)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextInstructorKey, instructor)
		c.Next()
	}
}

// CurrentInstructor returns the profile stored by InstructorSelf.
func CurrentInstructor(c *gin.Context) (*models.Instructor, bool) {
	value, exists := c.Get(ContextInstructorKey)
	if !exists {
		return nil, false
	}
	instructor, ok := value.(*models.Instructor)
	return instructor, ok && instructor != nil
}
