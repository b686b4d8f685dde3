package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/model"
	"github.com/fleetfilm/fleetfilm-api/internal/repository"
	"github.com/fleetfilm/fleetfilm-api/internal/workflow"
)

// ExportHandler streams the green-list as CSV for offline programme
// planning. encoding/csv handles RFC 4180 quoting of commas, quotes and
// newlines in titles/synopses.
type ExportHandler struct {
	Films *repository.FilmRepo
}

func NewExportHandler(f *repository.FilmRepo) *ExportHandler {
	return &ExportHandler{Films: f}
}

var greenlistCSVHeader = []string{
	"Title", "Year", "Runtime (mins)", "Language", "Genre", "Country",
	"UK Age Rating", "UK Distributor?", "Green-listed At", "Status",
}

// Greenlist: GET /v1/export/greenlist.csv. Includes films already promoted
// to the next programme so the export matches what the committee sees.
func (h *ExportHandler) Greenlist(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	films, err := h.Films.ListByStatuses(ctx, workflow.StatusGreenlist, workflow.StatusNextProgramme)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	resp.Header().Set(echo.HeaderContentDisposition, `attachment; filename="greenlist.csv"`)
	resp.WriteHeader(http.StatusOK)

	w := csv.NewWriter(resp)
	if err := w.Write(greenlistCSVHeader); err != nil {
		return err
	}
	for i := range films {
		if err := w.Write(greenlistCSVRow(&films[i])); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func greenlistCSVRow(f *model.Film) []string {
	year := ""
	if f.Year != nil {
		year = strconv.Itoa(*f.Year)
	}
	runtime := ""
	if f.RuntimeMinutes != nil {
		runtime = strconv.Itoa(*f.RuntimeMinutes)
	}
	// Unknown distributor state renders as an empty cell, not "No".
	dist := ""
	if f.HasUKDistributor != nil {
		if *f.HasUKDistributor {
			dist = "Yes"
		} else {
			dist = "No"
		}
	}
	greenAt := ""
	if f.GreenAt != nil {
		greenAt = f.GreenAt.UTC().Format("2006-01-02")
	}
	return []string{
		f.Title, year, runtime, f.Language, f.Genre, f.Country,
		f.UKAgeRating, dist, greenAt, f.Status,
	}
}
