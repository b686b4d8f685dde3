package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/model"
	"github.com/fleetfilm/fleetfilm-api/internal/repository"
	"github.com/fleetfilm/fleetfilm-api/internal/workflow"
)

// FilmHandler serves film submission, listing and detail editing. Status
// changes live in PipelineHandler; this one never touches workflow fields.
type FilmHandler struct {
	Films *repository.FilmRepo
}

func NewFilmHandler(f *repository.FilmRepo) *FilmHandler {
	return &FilmHandler{Films: f}
}

type submitFilmReq struct {
	Title            string `json:"title"`
	Year             *int   `json:"year"`
	Synopsis         string `json:"synopsis"`
	RuntimeMinutes   *int   `json:"runtime_minutes"`
	Language         string `json:"language"`
	AgeRating        string `json:"age_rating"`
	UKAgeRating      string `json:"uk_age_rating"`
	Genre            string `json:"genre"`
	Country          string `json:"country"`
	HasDisk          bool   `json:"has_disk"`
	AvailabilityNote string `json:"availability_note"`
	PosterURL        string `json:"poster_url"`
	IMDBID           string `json:"imdb_id"`
}

type updateFilmReq struct {
	Title            *string `json:"title"`
	Year             *int    `json:"year"`
	Synopsis         *string `json:"synopsis"`
	RuntimeMinutes   *int    `json:"runtime_minutes"`
	Language         *string `json:"language"`
	AgeRating        *string `json:"age_rating"`
	UKAgeRating      *string `json:"uk_age_rating"`
	Genre            *string `json:"genre"`
	Country          *string `json:"country"`
	HasDisk          *bool   `json:"has_disk"`
	AvailabilityNote *string `json:"availability_note"`
	PosterURL        *string `json:"poster_url"`
	IMDBID           *string `json:"imdb_id"`
}

// Submit creates a film in intake. Any signed-in member can suggest one.
func (h *FilmHandler) Submit(c echo.Context) error {
	var req submitFilmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	uid, _ := c.Get("user_id").(uint64)

	film := &model.Film{
		Title:            req.Title,
		Year:             req.Year,
		Synopsis:         req.Synopsis,
		RuntimeMinutes:   req.RuntimeMinutes,
		Language:         req.Language,
		AgeRating:        req.AgeRating,
		UKAgeRating:      req.UKAgeRating,
		Genre:            req.Genre,
		Country:          req.Country,
		HasDisk:          req.HasDisk,
		AvailabilityNote: req.AvailabilityNote,
		PosterURL:        req.PosterURL,
		IMDBID:           req.IMDBID,
		CreatedBy:        uid,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Films.Create(ctx, film); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create film failed"})
	}
	return c.JSON(http.StatusCreated, film)
}

// List returns films filtered by status (?status=voting) or, with
// ?view=scheduled, the upcoming scheduled screenings.
func (h *FilmHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if c.QueryParam("view") == "scheduled" {
		films, err := h.Films.ListScheduled(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list films failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"films": films})
	}

	status, ok := workflow.Parse(c.QueryParam("status"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	films, err := h.Films.ListByStatus(ctx, status, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list films failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// Get returns one film by id.
func (h *FilmHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	film, err := h.Films.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load film failed"})
	}
	return c.JSON(http.StatusOK, film)
}

// UpdateDetails patches the descriptive fields of a film. Workflow fields
// cannot be set through this endpoint.
func (h *FilmHandler) UpdateDetails(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	var req updateFilmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	film, err := h.Films.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load film failed"})
	}

	applyFilmPatch(film, &req)
	if strings.TrimSpace(film.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	if err := h.Films.UpdateDetails(ctx, film); err != nil {
		if errors.Is(err, repository.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update film failed"})
	}

	fresh, err := h.Films.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load film failed"})
	}
	return c.JSON(http.StatusOK, fresh)
}

func applyFilmPatch(f *model.Film, req *updateFilmReq) {
	if req.Title != nil {
		f.Title = strings.TrimSpace(*req.Title)
	}
	if req.Year != nil {
		f.Year = req.Year
	}
	if req.Synopsis != nil {
		f.Synopsis = *req.Synopsis
	}
	if req.RuntimeMinutes != nil {
		f.RuntimeMinutes = req.RuntimeMinutes
	}
	if req.Language != nil {
		f.Language = *req.Language
	}
	if req.AgeRating != nil {
		f.AgeRating = *req.AgeRating
	}
	if req.UKAgeRating != nil {
		f.UKAgeRating = *req.UKAgeRating
	}
	if req.Genre != nil {
		f.Genre = *req.Genre
	}
	if req.Country != nil {
		f.Country = *req.Country
	}
	if req.HasDisk != nil {
		f.HasDisk = *req.HasDisk
	}
	if req.AvailabilityNote != nil {
		f.AvailabilityNote = *req.AvailabilityNote
	}
	if req.PosterURL != nil {
		f.PosterURL = *req.PosterURL
	}
	if req.IMDBID != nil {
		f.IMDBID = *req.IMDBID
	}
}
