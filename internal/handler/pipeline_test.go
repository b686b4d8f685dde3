package handler

import (
	"encoding/json"
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

func newPipelineHandler(t *testing.T) (*PipelineHandler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	p := service.NewPipeline(
		repository.NewFilmRepo(db),
		repository.NewVoteRepo(db),
		repository.NewLocationRepo(db),
		4,
		nil,
	)
	return NewPipelineHandler(p), mock, func() { db.Close() }
}

func transitionRequest(method, path, body string, filmID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(filmID)
	c.Set("user_id", uint64(7))
	c.Set("role", "COMMITTEE")
	return c, rec
}

func TestMoveToReviewNoContent(t *testing.T) {
	h, mock, cleanup := newPipelineHandler(t)
	defer cleanup()

	mock.ExpectExec("UPDATE films SET status=\\? WHERE id=\\? AND status=\\?").
		WithArgs("review_basic", uint64(5), "intake").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := transitionRequest(http.MethodPost, "/v1/films/5/review", "", "5")
	require.NoError(t, h.MoveToReview(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveToReviewConflict(t *testing.T) {
	h, mock, cleanup := newPipelineHandler(t)
	defer cleanup()

	// Zero rows updated and the film exists: someone else moved it first.
	mock.ExpectExec("UPDATE films SET status=\\? WHERE id=\\? AND status=\\?").
		WithArgs("review_basic", uint64(5), "intake").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(1))

	c, rec := transitionRequest(http.MethodPost, "/v1/films/5/review", "", "5")
	require.NoError(t, h.MoveToReview(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveToReviewNotFound(t *testing.T) {
	h, mock, cleanup := newPipelineHandler(t)
	defer cleanup()

	mock.ExpectExec("UPDATE films SET status=\\? WHERE id=\\? AND status=\\?").
		WithArgs("review_basic", uint64(99), "intake").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(0))

	c, rec := transitionRequest(http.MethodPost, "/v1/films/99/review", "", "99")
	require.NoError(t, h.MoveToReview(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateBasicUnprocessable(t *testing.T) {
	h, mock, cleanup := newPipelineHandler(t)
	defer cleanup()

	now := time.Now()
	// Film in review_basic with runtime over the cap and no country.
	rows := sqlmock.NewRows(filmCols).AddRow(
		3, "Lawrence of Arabia", 1962, "", 227, "English", "PG",
		"PG", "Adventure", "", false, "", "", "tt0056172",
		"review_basic", nil, false, nil, nil,
		nil, nil, nil, nil, 7, now, now)
	mock.ExpectQuery("FROM films WHERE id = \\?").
		WithArgs(uint64(3)).
		WillReturnRows(rows)

	c, rec := transitionRequest(http.MethodPost, "/v1/films/3/validate", "", "3")
	require.NoError(t, h.ValidateBasic(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "runtime_minutes: exceeds 150")
	assert.Contains(t, body.Fields, "country")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDistributorRequiresConfirmed(t *testing.T) {
	h, _, cleanup := newPipelineHandler(t)
	defer cleanup()

	c, rec := transitionRequest(http.MethodPost, "/v1/films/3/distributor", `{}`, "3")
	require.NoError(t, h.ResolveDistributor(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleRejectsBadSlot(t *testing.T) {
	h, _, cleanup := newPipelineHandler(t)
	defer cleanup()

	c, rec := transitionRequest(http.MethodPut, "/v1/films/3/schedule",
		`{"date":"14/03/2026","time":"7pm","location_id":1}`, "3")
	require.NoError(t, h.Schedule(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchiveNextProgrammeCounts(t *testing.T) {
	h, mock, cleanup := newPipelineHandler(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, title FROM films WHERE status=\\? FOR UPDATE").
		WithArgs("next_programme").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(1, "Roma").AddRow(2, "Ida").AddRow(3, "Amour"))
	mock.ExpectExec("UPDATE films SET archived_from=status, status=\\? WHERE status=\\?").
		WithArgs("archived", "next_programme").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	c, rec := transitionRequest(http.MethodPost, "/v1/films/next-programme/archive", "", "")
	require.NoError(t, h.ArchiveNextProgramme(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"archived":3}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
