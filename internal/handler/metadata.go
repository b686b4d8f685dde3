package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/lookup"
)

// MetadataHandler proxies the OMDb lookup so the browser never sees the API
// key. Without a configured key both endpoints degrade to empty results.
type MetadataHandler struct {
	OMDB *lookup.OMDBClient
}

func NewMetadataHandler(o *lookup.OMDBClient) *MetadataHandler {
	return &MetadataHandler{OMDB: o}
}

// Search: GET /v1/metadata/search?title=Parasite&year=2019.
func (h *MetadataHandler) Search(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	results, err := h.OMDB.Search(ctx, title, strings.TrimSpace(c.QueryParam("year")))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "metadata lookup unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// Details: GET /v1/metadata/:imdbID.
func (h *MetadataHandler) Details(c echo.Context) error {
	imdbID := strings.TrimSpace(c.Param("imdbID"))
	if imdbID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "imdb id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	details, err := h.OMDB.Details(ctx, imdbID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "metadata lookup unavailable"})
	}
	if details == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no metadata for id"})
	}
	return c.JSON(http.StatusOK, details)
}
