package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/repository"
	"github.com/fleetfilm/fleetfilm-api/internal/service"
	"github.com/fleetfilm/fleetfilm-api/internal/workflow"
)

// PipelineHandler exposes the committee-facing status transitions. Every
// endpoint is a thin wrapper over the pipeline service; conflicts surface as
// 409 so the client re-reads instead of silently overwriting.
type PipelineHandler struct {
	Pipeline *service.Pipeline
}

func NewPipelineHandler(p *service.Pipeline) *PipelineHandler {
	return &PipelineHandler{Pipeline: p}
}

type distributorReq struct {
	Confirmed *bool `json:"confirmed"`
}

type scheduleReq struct {
	Date       string `json:"date"`        // "2006-01-02"
	Time       string `json:"time"`        // "15:04"
	LocationID uint64 `json:"location_id"`
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// MoveToReview: intake -> review_basic.
func (h *PipelineHandler) MoveToReview(c echo.Context) error {
	return h.transition(c, h.Pipeline.MoveToReview)
}

// StartVoting: viewing -> voting, clearing any stale ballots.
func (h *PipelineHandler) StartVoting(c echo.Context) error {
	return h.transition(c, h.Pipeline.StartVoting)
}

// SelectForProgramme: greenlist -> next_programme.
func (h *PipelineHandler) SelectForProgramme(c echo.Context) error {
	return h.transition(c, h.Pipeline.SelectForProgramme)
}

// Discard drops a film from any pre-decision stage.
func (h *PipelineHandler) Discard(c echo.Context) error {
	return h.transition(c, h.Pipeline.Discard)
}

// Restore returns a discarded film to intake.
func (h *PipelineHandler) Restore(c echo.Context) error {
	return h.transition(c, h.Pipeline.Restore)
}

// Archive retires a film, recording the status it was archived from.
func (h *PipelineHandler) Archive(c echo.Context) error {
	return h.transition(c, h.Pipeline.Archive)
}

func (h *PipelineHandler) transition(c echo.Context, op func(context.Context, uint64, uint64) error) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, id, uid); err != nil {
		return pipelineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ValidateBasic runs the basic criteria check. 204 on pass, 422 with the
// failing field names otherwise.
func (h *PipelineHandler) ValidateBasic(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	missing, err := h.Pipeline.ValidateBasic(ctx, id, uid)
	if err != nil {
		if errors.Is(err, service.ErrCriteriaNotMet) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":  "basic criteria not met",
				"fields": missing,
			})
		}
		return pipelineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResolveDistributor settles the uk_check stage with {"confirmed": bool}.
func (h *PipelineHandler) ResolveDistributor(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	var req distributorReq
	if err := c.Bind(&req); err != nil || req.Confirmed == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirmed required"})
	}
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Pipeline.ResolveDistributor(ctx, id, uid, *req.Confirmed); err != nil {
		return pipelineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ArchiveNextProgramme archives the whole next-programme board at once,
// typically after the programme has been published.
func (h *PipelineHandler) ArchiveNextProgramme(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	n, err := h.Pipeline.ArchiveNextProgramme(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "archive failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"archived": n})
}

// Schedule sets the viewing slot for a film.
func (h *PipelineHandler) Schedule(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !dateRe.MatchString(req.Date) || !timeRe.MatchString(req.Time) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date (YYYY-MM-DD) and time (HH:MM) required"})
	}
	if req.LocationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Pipeline.Schedule(ctx, id, req.Date, req.Time, req.LocationID); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "location not found"})
		}
		return pipelineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// pipelineError maps service/repository sentinels to HTTP statuses shared
// by every transition endpoint.
func pipelineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrFilmNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
	case errors.Is(err, repository.ErrStatusConflict),
		errors.Is(err, repository.ErrNotOpenForVoting),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrTerminalStatus):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
}
