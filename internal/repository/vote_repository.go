// Package repository: ballot persistence. The votes table carries a unique
// (film_id, voter_id) key, so casting is an upsert — a voter's second ballot
// overwrites the first instead of accumulating. Tally is a full re-scan of
// the film's ballots; it runs after every cast, inside the same transaction,
// so two simultaneous ballots cannot both observe a stale count.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fleetfilm/fleetfilm-api/internal/model"
	"github.com/fleetfilm/fleetfilm-api/internal/workflow"
)

// ErrBallotNotFound indicates the voter has not cast a ballot for the film.
var ErrBallotNotFound = errors.New("ballot not found")

// VoteRepo manages persistence for ballots.
type VoteRepo struct {
	db *sql.DB
}

// NewVoteRepo constructs a VoteRepo with the given DB handle.
func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// DB exposes the underlying sql.DB for transactions spanning repositories.
func (r *VoteRepo) DB() *sql.DB {
	return r.db
}

// CastTx upserts the voter's ballot for a film inside the caller's
// transaction. Re-casting with the same value is a no-op on the tally;
// re-casting with the other value moves one unit between buckets.
func (r *VoteRepo) CastTx(ctx context.Context, tx *sql.Tx, filmID, voterID uint64, value int) error {
	const q = `INSERT INTO votes (film_id, voter_id, value) VALUES (?,?,?)
               ON DUPLICATE KEY UPDATE value = VALUES(value)`
	_, err := tx.ExecContext(ctx, q, filmID, voterID, value)
	return err
}

// TallyTx counts the film's Yes and No ballots inside the caller's
// transaction.
func (r *VoteRepo) TallyTx(ctx context.Context, tx *sql.Tx, filmID uint64) (workflow.Tally, error) {
	return tally(ctx, tx, filmID)
}

// Tally counts the film's Yes and No ballots.
func (r *VoteRepo) Tally(ctx context.Context, filmID uint64) (workflow.Tally, error) {
	return tally(ctx, r.db, filmID)
}

// queryrower is satisfied by *sql.DB and *sql.Tx.
type queryrower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func tally(ctx context.Context, qr queryrower, filmID uint64) (workflow.Tally, error) {
	const q = `SELECT
            COALESCE(SUM(value = 1), 0)  AS yes,
            COALESCE(SUM(value = -1), 0) AS no
        FROM votes WHERE film_id = ?`
	var t workflow.Tally
	if err := qr.QueryRowContext(ctx, q, filmID).Scan(&t.Yes, &t.No); err != nil {
		return workflow.Tally{}, err
	}
	return t, nil
}

// ClearTx deletes every ballot for a film inside the caller's transaction.
// Run on entry to voting so ballots from an earlier round never count again
// after a discard/restore cycle.
func (r *VoteRepo) ClearTx(ctx context.Context, tx *sql.Tx, filmID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE film_id = ?`, filmID)
	return err
}

// GetByVoter returns the voter's current ballot for a film, or
// ErrBallotNotFound when none was cast.
func (r *VoteRepo) GetByVoter(ctx context.Context, filmID, voterID uint64) (*model.Ballot, error) {
	const q = `SELECT id, film_id, voter_id, value, created_at, updated_at
               FROM votes WHERE film_id = ? AND voter_id = ?`
	var b model.Ballot
	err := r.db.QueryRowContext(ctx, q, filmID, voterID).Scan(
		&b.ID, &b.FilmID, &b.VoterID, &b.Value, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBallotNotFound
		}
		return nil, err
	}
	return &b, nil
}
