package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/repository"
	"github.com/fleetfilm/fleetfilm-api/internal/service"
)

// VoteHandler serves ballot casting and tally reads. Voting is open to any
// signed-in member; only the committee moves films in and out of voting.
type VoteHandler struct {
	Pipeline *service.Pipeline
	Votes    *repository.VoteRepo
}

func NewVoteHandler(p *service.Pipeline, v *repository.VoteRepo) *VoteHandler {
	return &VoteHandler{Pipeline: p, Votes: v}
}

type castReq struct {
	Value int `json:"value"` // 1 yes, -1 no
}

// Cast records or replaces the caller's ballot on a film, returning the
// resulting tally and outcome. Re-voting is idempotent per voter.
func (h *VoteHandler) Cast(c echo.Context) error {
	filmID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	var req castReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tally, outcome, err := h.Pipeline.CastBallot(ctx, filmID, uid, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVoteValue):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must be 1 or -1"})
		case errors.Is(err, repository.ErrFilmNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		case errors.Is(err, repository.ErrNotOpenForVoting):
			return c.JSON(http.StatusConflict, echo.Map{"error": "film is not open for voting"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cast ballot failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"yes":     tally.Yes,
		"no":      tally.No,
		"outcome": outcome.String(),
	})
}

// Tally returns the current yes/no counts plus the caller's own ballot.
func (h *VoteHandler) Tally(c echo.Context) error {
	filmID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tally, err := h.Votes.Tally(ctx, filmID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tally failed"})
	}

	resp := echo.Map{"yes": tally.Yes, "no": tally.No}
	ballot, err := h.Votes.GetByVoter(ctx, filmID, uid)
	switch {
	case err == nil:
		resp["my_vote"] = ballot.Value
	case errors.Is(err, repository.ErrBallotNotFound):
		// no ballot yet, leave my_vote out
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tally failed"})
	}
	return c.JSON(http.StatusOK, resp)
}
