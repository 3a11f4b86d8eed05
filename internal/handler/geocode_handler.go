package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/pkg/response"
)

type geocodingService interface {
	ReverseGeocode(ctx context.Context, query dto.ReverseGeocodeQuery) (*dto.ReverseGeocodeResponse, error)
}

// GeocodeHandler resolves display addresses for pickup points.
type GeocodeHandler struct {
	service geocodingService
}

// NewGeocodeHandler constructs a GeocodeHandler.
func NewGeocodeHandler(service geocodingService) *GeocodeHandler {
	return &GeocodeHandler{service: service}
}

// Reverse godoc
// @Summary Reverse geocode a coordinate
// @Tags Geocoding
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /geocode/reverse [get]
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	var query dto.ReverseGeocodeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid coordinate"))
		return
	}
	result, err := h.service.ReverseGeocode(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
