package models

import "time"

// Instructor is a driving instructor listed in the marketplace directory.
type Instructor struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Email           string    `db:"email" json:"email"`
	Phone           *string   `db:"phone" json:"phone,omitempty"`
	VehicleType     *string   `db:"vehicle_type" json:"vehicle_type,omitempty"`
	HourlyRateMinor int64     `db:"hourly_rate_minor" json:"hourly_rate_minor"`
	Latitude        *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude       *float64  `db:"longitude" json:"longitude,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Coordinate returns the instructor's base location, or nil when either axis is missing.
func (i *Instructor) Coordinate() *Coordinate {
	if i == nil || i.Latitude == nil || i.Longitude == nil {
		return nil
	}
	return &Coordinate{Latitude: *i.Latitude, Longitude: *i.Longitude}
}

// InstructorFilter narrows directory listings.
type InstructorFilter struct {
	Active         *bool
	HasCoordinates bool
}
