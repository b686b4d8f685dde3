package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/lookup"
	"github.com/fleetfilm/fleetfilm-api/internal/model"
	"github.com/fleetfilm/fleetfilm-api/internal/repository"
)

// LocationHandler manages saved screening venues and the postcode lookup
// used to fill their address fields.
type LocationHandler struct {
	Locations *repository.LocationRepo
	Addresses *lookup.AddressClient
}

func NewLocationHandler(l *repository.LocationRepo, a *lookup.AddressClient) *LocationHandler {
	return &LocationHandler{Locations: l, Addresses: a}
}

type locationReq struct {
	Name     string `json:"name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Town     string `json:"town"`
	County   string `json:"county"`
	Postcode string `json:"postcode"`
}

func (h *LocationHandler) Create(c echo.Context) error {
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	loc := &model.Location{
		Name:     req.Name,
		Line1:    req.Line1,
		Line2:    req.Line2,
		Town:     req.Town,
		County:   req.County,
		Postcode: strings.ToUpper(strings.TrimSpace(req.Postcode)),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Locations.Create(ctx, loc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create location failed"})
	}
	return c.JSON(http.StatusCreated, loc)
}

func (h *LocationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locs, err := h.Locations.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list locations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": locs})
}

func (h *LocationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load location failed"})
	}
	return c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	loc := &model.Location{
		ID:       id,
		Name:     req.Name,
		Line1:    req.Line1,
		Line2:    req.Line2,
		Town:     req.Town,
		County:   req.County,
		Postcode: strings.ToUpper(strings.TrimSpace(req.Postcode)),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Locations.Update(ctx, loc); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update location failed"})
	}
	return c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Locations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete location failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Addresses proxies the postcode lookup: GET /v1/addresses?postcode=GU51+1AA.
// An unknown postcode is an empty list, not an error; only an outage of both
// sources yields 502.
func (h *LocationHandler) LookupAddresses(c echo.Context) error {
	postcode := c.QueryParam("postcode")
	if strings.TrimSpace(postcode) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "postcode required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	addrs, err := h.Addresses.ByPostcode(ctx, postcode)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "address lookup unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"addresses": addrs})
}
