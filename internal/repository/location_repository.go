package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fleetfilm/fleetfilm-api/internal/model"
)

// LocationRepo manages persistence for screening venues.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo constructs a LocationRepo with the given DB handle.
func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const locationColumns = `id, name, line1, line2, town, county, postcode, created_at, updated_at`

// Create inserts a location and assigns the generated ID back to the struct.
func (r *LocationRepo) Create(ctx context.Context, l *model.Location) error {
	const q = `INSERT INTO locations (name, line1, line2, town, county, postcode) VALUES (?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, l.Name, l.Line1, l.Line2, l.Town, l.County, l.Postcode)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	fresh, err := r.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	*l = *fresh
	return nil
}

// GetByID retrieves a location by ID, returning ErrLocationNotFound when no
// row matches.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*model.Location, error) {
	var l model.Location
	err := r.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = ?`, id).Scan(
		&l.ID, &l.Name, &l.Line1, &l.Line2, &l.Town, &l.County, &l.Postcode,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns all locations ordered by name.
func (r *LocationRepo) List(ctx context.Context) ([]model.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM locations ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Location{}
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Line1, &l.Line2, &l.Town, &l.County,
			&l.Postcode, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// Update rewrites a location's fields. Films keep the venue name captured at
// schedule time, so edits here never rewrite history.
func (r *LocationRepo) Update(ctx context.Context, l *model.Location) error {
	const q = `UPDATE locations SET name=?, line1=?, line2=?, town=?, county=?, postcode=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, q, l.Name, l.Line1, l.Line2, l.Town, l.County, l.Postcode, l.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a location. Scheduled films keep their denormalized venue
// name; their viewing_location_id is nulled by the FK's ON DELETE SET NULL.
func (r *LocationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLocationNotFound
	}
	return nil
}
