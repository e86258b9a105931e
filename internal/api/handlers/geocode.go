package handlers

import (
	"route-finder-service/internal/api/dto"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/ports"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type GeocodeHandler struct {
	Geocoder ports.Geocoder
}

// Resolve handles GET /v1/geocode?q=..
func (h *GeocodeHandler) Resolve(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return errBadRequest(c, "q is required")
	}
	if len(q) > 256 {
		return errBadRequest(c, "q must be at most 256 characters")
	}

	coords, err := h.Geocoder.Resolve(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.GeocodeResponse{Query: q, Lat: coords.Lat, Lon: coords.Lon})
}

// Reverse handles GET /v1/reverse?lat=..&lon=..
func (h *GeocodeHandler) Reverse(c *fiber.Ctx) error {
	rg, ok := h.Geocoder.(ports.ReverseGeocoder)
	if !ok {
		return newError(c, fiber.StatusNotImplemented, "not_implemented", "configured geocoder does not support reverse lookups")
	}

	if c.Query("lat") == "" || c.Query("lon") == "" {
		return errBadRequest(c, "lat and lon are required")
	}
	coords := domain.Coordinates{
		Lat: c.QueryFloat("lat", 1000),
		Lon: c.QueryFloat("lon", 1000),
	}
	if err := coords.Validate(); err != nil {
		return errBadRequest(c, err.Error())
	}

	name, err := rg.Reverse(c.UserContext(), coords)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReverseResponse{Lat: coords.Lat, Lon: coords.Lon, Name: name})
}
