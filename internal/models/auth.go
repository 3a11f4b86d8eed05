package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload issued by the identity provider.
// InstructorID is present only for instructor accounts.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	InstructorID string   `json:"instructor_id,omitempty"`
	jwt.RegisteredClaims
}
