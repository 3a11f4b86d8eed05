package dto

import "github.com/noah-isme/driving-lesson-api/internal/models"

// NearbyInstructorsQuery searches instructors around a learner's pickup point. When Date is set,
// each result carries the labels still bookable on that date.
type NearbyInstructorsQuery struct {
	Latitude  *float64 `form:"lat" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `form:"lng" validate:"required,gte=-180,lte=180"`
	RadiusKm  float64  `form:"radius_km" validate:"omitempty,gt=0"`
	Date      string   `form:"date"`
}

// NearbyInstructor is one search hit.
type NearbyInstructor struct {
	ID              string   `json:"id"`
	FullName        string   `json:"full_name"`
	VehicleType     *string  `json:"vehicle_type,omitempty"`
	HourlyRateMinor int64    `json:"hourly_rate_minor"`
	DistanceKm      float64  `json:"distance_km"`
	AvailableLabels []string `json:"available_labels,omitempty"`
}

// NearbyInstructorsResponse is sorted by ascending distance.
type NearbyInstructorsResponse struct {
	Origin      models.Coordinate  `json:"origin"`
	RadiusKm    float64            `json:"radius_km"`
	Date        string             `json:"date,omitempty"`
	Instructors []NearbyInstructor `json:"instructors"`
}
