package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetfilm/fleetfilm-api/internal/repository"
	"github.com/fleetfilm/fleetfilm-api/internal/service"
)

func newVoteHandler(t *testing.T) (*VoteHandler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	votes := repository.NewVoteRepo(db)
	p := service.NewPipeline(
		repository.NewFilmRepo(db), votes, repository.NewLocationRepo(db), 4, nil)
	return NewVoteHandler(p, votes), mock, func() { db.Close() }
}

func voteContext(body, filmID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(http.MethodPut, "/v1/films/"+filmID+"/vote", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(http.MethodGet, "/v1/films/"+filmID+"/tally", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(filmID)
	c.Set("user_id", uint64(11))
	return c, rec
}

func TestCastRejectsStrongYes(t *testing.T) {
	h, _, cleanup := newVoteHandler(t)
	defer cleanup()

	// +2 was dropped from the ballot scale; only -1 and 1 survive.
	c, rec := voteContext(`{"value":2}`, "8")
	require.NoError(t, h.Cast(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCastReturnsTallyAndOutcome(t *testing.T) {
	h, mock, cleanup := newVoteHandler(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM films WHERE id=\\? FOR UPDATE").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("voting"))
	mock.ExpectExec("INSERT INTO votes").
		WithArgs(uint64(8), uint64(11), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT\\s+COALESCE").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"yes", "no"}).AddRow(2, 1))
	mock.ExpectCommit()

	c, rec := voteContext(`{"value":1}`, "8")
	require.NoError(t, h.Cast(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"yes":2,"no":1,"outcome":"pending"}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCastWhenVotingClosed(t *testing.T) {
	h, mock, cleanup := newVoteHandler(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM films WHERE id=\\? FOR UPDATE").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("uk_check"))
	mock.ExpectRollback()

	c, rec := voteContext(`{"value":-1}`, "8")
	require.NoError(t, h.Cast(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTallyIncludesOwnBallot(t *testing.T) {
	h, mock, cleanup := newVoteHandler(t)
	defer cleanup()

	mock.ExpectQuery("SELECT\\s+COALESCE").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"yes", "no"}).AddRow(3, 1))
	now := time.Now()
	mock.ExpectQuery("FROM votes").
		WithArgs(uint64(8), uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "film_id", "voter_id", "value", "created_at", "updated_at"}).
			AddRow(1, 8, 11, -1, now, now))

	c, rec := voteContext("", "8")
	require.NoError(t, h.Tally(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"yes":3,"no":1,"my_vote":-1}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
