package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// The address endpoints proxy the external geo API so the browser never holds
// the upstream API key. All four levels cascade by parent id.

// Provinces lists all provinces.
func (h *Handler) Provinces(c echo.Context) error {
	regions, err := h.addresses.Provinces(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, regions)
}

// Regencies lists regencies/cities for a province.
func (h *Handler) Regencies(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("provinceID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid province id")
	}
	regions, err := h.addresses.Regencies(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, regions)
}

// Districts lists districts for a regency.
func (h *Handler) Districts(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("regencyID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid regency id")
	}
	regions, err := h.addresses.Districts(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, regions)
}

// Villages lists villages for a district.
func (h *Handler) Villages(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("districtID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid district id")
	}
	regions, err := h.addresses.Villages(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, regions)
}
