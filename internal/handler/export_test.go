package handler

import (
	"encoding/csv"
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
)

var filmCols = []string{
	"id", "title", "year", "synopsis", "runtime_minutes", "language", "age_rating",
	"uk_age_rating", "genre", "country", "has_disk", "availability_note", "poster_url", "imdb_id",
	"status", "has_uk_distributor", "basic_pass", "archived_from", "green_at",
	"viewing_date", "viewing_time", "viewing_location_id", "viewing_location_name",
	"created_by", "created_at", "updated_at",
}

func TestExportGreenlistCSV(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	greenAt := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(filmCols).
		// Title with comma and quotes, synopsis with a newline: must survive
		// RFC 4180 quoting.
		AddRow(1, `Lock, "Stock"`, 1998, "line one\nline two", 107, "English", "R",
			"18", "Crime", "UK", true, "", "", "tt0120735",
			"greenlist", true, true, nil, greenAt,
			nil, nil, nil, nil, 7, now, now).
		AddRow(2, "Amelie", 2001, "", 122, "French", "",
			"15", "Comedy", "France", false, "", "", "tt0211915",
			"next_programme", false, true, nil, greenAt,
			nil, nil, nil, nil, 7, now, now).
		AddRow(3, "Untested", nil, "", nil, "", "",
			"", "", "", false, "", "", "",
			"greenlist", nil, true, nil, nil,
			nil, nil, nil, nil, 7, now, now)
	mock.ExpectQuery(`FROM films WHERE status IN \(\?,\?\)`).
		WithArgs("greenlist", "next_programme").
		WillReturnRows(rows)

	h := NewExportHandler(repository.NewFilmRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/export/greenlist.csv", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Greenlist(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "greenlist.csv")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus three films")

	assert.Equal(t, greenlistCSVHeader, records[0])

	// The tricky title round-trips through csv intact.
	assert.Equal(t, `Lock, "Stock"`, records[1][0])
	assert.Equal(t, "1998", records[1][1])
	assert.Equal(t, "107", records[1][2])
	assert.Equal(t, "Yes", records[1][7])
	assert.Equal(t, "2026-03-14", records[1][8])

	assert.Equal(t, "No", records[2][7])
	assert.Equal(t, "next_programme", records[2][9])

	// Unresolved distributor and missing year render as empty cells.
	assert.Equal(t, "", records[3][1])
	assert.Equal(t, "", records[3][7])
	assert.Equal(t, "", records[3][8])

	// Raw output is actually quoted, not just parseable.
	assert.Contains(t, rec.Body.String(), `"Lock, ""Stock"""`)

	require.NoError(t, mock.ExpectationsWereMet())
}
