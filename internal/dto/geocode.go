package dto

import "github.com/noah-isme/driving-lesson-api/internal/models"

// ReverseGeocodeQuery looks up a display address for a point.
type ReverseGeocodeQuery struct {
	Latitude  *float64 `form:"lat" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `form:"lng" validate:"required,gte=-180,lte=180"`
}

// ReverseGeocodeResponse is a best-effort address; Address is empty when the provider had none.
type ReverseGeocodeResponse struct {
	Coordinate models.Coordinate `json:"coordinate"`
	Address    string            `json:"address"`
	Cached     bool              `json:"cached"`
}
