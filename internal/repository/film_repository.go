// Package repository contains data access logic for the film pipeline. This
// file defines FilmRepo, which persists films and performs every status
// transition as a single conditional UPDATE (`... WHERE id = ? AND status =
// ?`). A transition that matches no row means another committee member got
// there first; callers receive ErrStatusConflict instead of silently
// overwriting the newer status.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetfilm/fleetfilm-api/internal/model"
	"github.com/fleetfilm/fleetfilm-api/internal/workflow"
)

// ErrFilmNotFound indicates that a film was not located in the DB.
var ErrFilmNotFound = errors.New("film not found")

// ErrLocationNotFound indicates that a viewing location was not located in the DB.
var ErrLocationNotFound = errors.New("location not found")

// filmColumns is the canonical column list used by every SELECT so the
// scan order stays in one place.
const filmColumns = `id, title, year, synopsis, runtime_minutes, language, age_rating,
       uk_age_rating, genre, country, has_disk, availability_note, poster_url, imdb_id,
       status, has_uk_distributor, basic_pass, archived_from, green_at,
       viewing_date, viewing_time, viewing_location_id, viewing_location_name,
       created_by, created_at, updated_at`

// FilmRepo manages persistence for films.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo constructs a FilmRepo with the given DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin transactions
// spanning multiple repositories, e.g. the ballot-cast flow that touches
// both votes and films.
func (r *FilmRepo) DB() *sql.DB {
	return r.db
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFilm(s scanner) (*model.Film, error) {
	var (
		f        model.Film
		year     sql.NullInt64
		runtime  sql.NullInt64
		ukDist   sql.NullBool
		archFrom sql.NullString
		greenAt  sql.NullTime
		vDate    sql.NullString
		vTime    sql.NullString
		vLocID   sql.NullInt64
		vLocName sql.NullString
	)
	err := s.Scan(
		&f.ID, &f.Title, &year, &f.Synopsis, &runtime, &f.Language, &f.AgeRating,
		&f.UKAgeRating, &f.Genre, &f.Country, &f.HasDisk, &f.AvailabilityNote, &f.PosterURL, &f.IMDBID,
		&f.Status, &ukDist, &f.BasicPass, &archFrom, &greenAt,
		&vDate, &vTime, &vLocID, &vLocName,
		&f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		f.Year = &y
	}
	if runtime.Valid {
		m := int(runtime.Int64)
		f.RuntimeMinutes = &m
	}
	if ukDist.Valid {
		f.HasUKDistributor = &ukDist.Bool
	}
	if archFrom.Valid {
		f.ArchivedFrom = &archFrom.String
	}
	if greenAt.Valid {
		t := greenAt.Time
		f.GreenAt = &t
	}
	if vDate.Valid {
		f.ViewingDate = &vDate.String
	}
	if vTime.Valid {
		f.ViewingTime = &vTime.String
	}
	if vLocID.Valid {
		id := uint64(vLocID.Int64)
		f.ViewingLocation = &id
	}
	if vLocName.Valid {
		f.ViewingVenueName = &vLocName.String
	}
	return &f, nil
}

// Create inserts a newly submitted film and assigns the generated ID back to
// the struct. Status defaults to 'intake' in the DB. The inserted row is
// re-read to populate DB-default fields (status, created_at, updated_at).
func (r *FilmRepo) Create(ctx context.Context, f *model.Film) error {
	const q = `INSERT INTO films
        (title, year, synopsis, runtime_minutes, language, age_rating, uk_age_rating,
         genre, country, has_disk, availability_note, poster_url, imdb_id, created_by)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		f.Title, nullableInt(f.Year), f.Synopsis, nullableInt(f.RuntimeMinutes),
		f.Language, f.AgeRating, f.UKAgeRating, f.Genre, f.Country,
		f.HasDisk, f.AvailabilityNote, f.PosterURL, f.IMDBID, f.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	fresh, err := r.GetByID(ctx, f.ID)
	if err != nil {
		return err
	}
	*f = *fresh
	return nil
}

// GetByID retrieves a film by its ID. It returns ErrFilmNotFound if there is
// no matching row.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	q := `SELECT ` + filmColumns + ` FROM films WHERE id = ?`
	f, err := scanFilm(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListByStatus returns films in the given status ordered by creation time
// descending. When no films match it returns an empty slice and nil error.
func (r *FilmRepo) ListByStatus(ctx context.Context, status workflow.Status, limit int) ([]model.Film, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + filmColumns + ` FROM films WHERE status = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFilms(rows)
}

// ListByStatuses returns films in any of the given statuses, green-listed
// first by green_at then by creation time. Used by the CSV export.
func (r *FilmRepo) ListByStatuses(ctx context.Context, statuses ...workflow.Status) ([]model.Film, error) {
	if len(statuses) == 0 {
		return []model.Film{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	q := `SELECT ` + filmColumns + ` FROM films WHERE status IN (` + placeholders + `)
          ORDER BY green_at IS NULL, green_at ASC, created_at DESC`
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFilms(rows)
}

// ListScheduled returns non-archived, non-discarded films with a viewing
// date set, soonest first.
func (r *FilmRepo) ListScheduled(ctx context.Context) ([]model.Film, error) {
	q := `SELECT ` + filmColumns + ` FROM films
          WHERE viewing_date IS NOT NULL AND status NOT IN ('archived','discarded')
          ORDER BY viewing_date ASC, viewing_time ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFilms(rows)
}

func collectFilms(rows *sql.Rows) ([]model.Film, error) {
	result := []model.Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	return result, rows.Err()
}

// UpdateDetails updates the descriptive attributes of a film. Workflow
// fields (status, basic_pass, has_uk_distributor, ...) are deliberately not
// touched here.
func (r *FilmRepo) UpdateDetails(ctx context.Context, f *model.Film) error {
	const q = `UPDATE films SET title=?, year=?, synopsis=?, runtime_minutes=?, language=?,
        age_rating=?, uk_age_rating=?, genre=?, country=?, has_disk=?, availability_note=?,
        poster_url=?, imdb_id=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, q,
		f.Title, nullableInt(f.Year), f.Synopsis, nullableInt(f.RuntimeMinutes),
		f.Language, f.AgeRating, f.UKAgeRating, f.Genre, f.Country,
		f.HasDisk, f.AvailabilityNote, f.PosterURL, f.IMDBID, f.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the film does not exist or the values equal the current
		// row; distinguish so handlers can 404 correctly.
		if _, err := r.GetByID(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}

// TransitionStatus moves a film from one status to another, guarded on the
// current status. Returns ErrStatusConflict when the film exists but is no
// longer in `from`, and ErrFilmNotFound when it does not exist.
func (r *FilmRepo) TransitionStatus(ctx context.Context, id uint64, from, to workflow.Status) error {
	return r.transition(ctx, r.db, id, from, to)
}

// TransitionStatusTx is TransitionStatus running inside the caller's
// transaction. The caller must commit or roll back.
func (r *FilmRepo) TransitionStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to workflow.Status) error {
	return r.transition(ctx, tx, id, from, to)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *FilmRepo) transition(ctx context.Context, ex execer, id uint64, from, to workflow.Status) error {
	const q = `UPDATE films SET status=? WHERE id=? AND status=?`
	res, err := ex.ExecContext(ctx, q, string(to), id, string(from))
	if err != nil {
		return err
	}
	return r.checkTransition(ctx, res, id)
}

// checkTransition turns a zero-row conditional update into the right sentinel.
func (r *FilmRepo) checkTransition(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM films WHERE id=?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrFilmNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

// PassBasic moves a film from review_basic to viewing and records that the
// basic criteria passed, in one statement. The criteria check itself runs in
// the service layer; a concurrent transition between check and update is
// caught by the status guard.
func (r *FilmRepo) PassBasic(ctx context.Context, id uint64) error {
	const q = `UPDATE films SET status=?, basic_pass=1 WHERE id=? AND status=?`
	res, err := r.db.ExecContext(ctx, q,
		string(workflow.StatusViewing), id, string(workflow.StatusReviewBasic))
	if err != nil {
		return err
	}
	return r.checkTransition(ctx, res, id)
}

// SetDistributor resolves the uk_check stage. Confirmed moves the film to
// greenlist and stamps green_at; otherwise it is discarded. Both branches
// record the has_uk_distributor outcome.
func (r *FilmRepo) SetDistributor(ctx context.Context, id uint64, confirmed bool) error {
	var q string
	var to workflow.Status
	if confirmed {
		q = `UPDATE films SET status=?, has_uk_distributor=1, green_at=UTC_TIMESTAMP() WHERE id=? AND status=?`
		to = workflow.StatusGreenlist
	} else {
		q = `UPDATE films SET status=?, has_uk_distributor=0 WHERE id=? AND status=?`
		to = workflow.StatusDiscarded
	}
	res, err := r.db.ExecContext(ctx, q, string(to), id, string(workflow.StatusUKCheck))
	if err != nil {
		return err
	}
	return r.checkTransition(ctx, res, id)
}

// Discard moves a film to discarded from any of the statuses that allow a
// manual discard, and returns the status it left. The row is locked for the
// check so the returned status is the one the update actually saw.
func (r *FilmRepo) Discard(ctx context.Context, id uint64) (workflow.Status, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	from, err := r.StatusForUpdateTx(ctx, tx, id)
	if err != nil {
		return "", err
	}
	if _, err := workflow.Next(from, workflow.ActionDiscard); err != nil {
		return "", err
	}
	if err := r.transition(ctx, tx, id, from, workflow.StatusDiscarded); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return from, nil
}

// Restore returns a discarded film to intake. The status it was discarded
// from is not recorded, so restore always lands on intake.
func (r *FilmRepo) Restore(ctx context.Context, id uint64) error {
	return r.transition(ctx, r.db, id, workflow.StatusDiscarded, workflow.StatusIntake)
}

// Archive moves any non-archived film to archived, capturing the prior
// status into archived_from in the same statement so the provenance can
// never race with a concurrent transition.
func (r *FilmRepo) Archive(ctx context.Context, id uint64) error {
	const q = `UPDATE films SET archived_from=status, status=? WHERE id=? AND status<>?`
	res, err := r.db.ExecContext(ctx, q,
		string(workflow.StatusArchived), id, string(workflow.StatusArchived))
	if err != nil {
		return err
	}
	return r.checkTransition(ctx, res, id)
}

// FilmRef carries just enough of a film to publish an event about it.
type FilmRef struct {
	ID    uint64
	Title string
}

// ArchiveAllByStatus archives every film currently in the given status
// ("archive all" on the next programme board). The affected rows are locked,
// collected and updated in one transaction so the caller can publish an
// event per archived film.
func (r *FilmRepo) ArchiveAllByStatus(ctx context.Context, from workflow.Status) ([]FilmRef, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id, title FROM films WHERE status=? FOR UPDATE`, string(from))
	if err != nil {
		return nil, err
	}
	refs := []FilmRef{}
	for rows.Next() {
		var ref FilmRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			rows.Close()
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(refs) > 0 {
		const q = `UPDATE films SET archived_from=status, status=? WHERE status=?`
		if _, err := tx.ExecContext(ctx, q, string(workflow.StatusArchived), string(from)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return refs, nil
}

// SetSchedule records the viewing slot for a film. The venue name is
// denormalized at schedule time so it survives later edits to the location.
func (r *FilmRepo) SetSchedule(ctx context.Context, id uint64, date, timeOfDay string, locationID uint64, locationName string) error {
	const q = `UPDATE films SET viewing_date=?, viewing_time=?, viewing_location_id=?, viewing_location_name=?
               WHERE id=? AND status<>?`
	res, err := r.db.ExecContext(ctx, q, date, timeOfDay, locationID, locationName,
		id, string(workflow.StatusArchived))
	if err != nil {
		return err
	}
	return r.checkTransition(ctx, res, id)
}

// StatusForUpdateTx reads a film's status inside the caller's transaction
// with a row lock, serializing concurrent ballot casts on the same film.
func (r *FilmRepo) StatusForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (workflow.Status, error) {
	var s string
	err := tx.QueryRowContext(ctx, `SELECT status FROM films WHERE id=? FOR UPDATE`, id).Scan(&s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrFilmNotFound
		}
		return "", err
	}
	st, ok := workflow.Parse(s)
	if !ok {
		return "", fmt.Errorf("film %d has undefined status %q", id, s)
	}
	return st, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
