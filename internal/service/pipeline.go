package service

import (
	"context"
	"errors"
	"time"

	"github.com/fleetfilm/fleetfilm-api/internal/model"
	"github.com/fleetfilm/fleetfilm-api/internal/queue"
	"github.com/fleetfilm/fleetfilm-api/internal/repository"
	"github.com/fleetfilm/fleetfilm-api/internal/workflow"
)

// ErrInvalidVoteValue is returned when a ballot value is not -1 or 1.
var ErrInvalidVoteValue = errors.New("vote value must be -1 or 1")

// ErrCriteriaNotMet is returned by ValidateBasic when the basic criteria
// check fails; the accompanying slice names the offending fields.
var ErrCriteriaNotMet = errors.New("basic criteria not met")

// Pipeline applies status transitions to films. Every transition is a
// conditional update in the repository; the voting flow additionally wraps
// ballot, tally and threshold transition in one transaction.
type Pipeline struct {
	Films     *repository.FilmRepo
	Votes     *repository.VoteRepo
	Locations *repository.LocationRepo
	Threshold int       // quorum: ballots of one kind needed to decide
	Events    Publisher // nil disables event publication
}

// NewPipeline constructs the pipeline service. Threshold values below 1 are
// clamped to 1 so a misconfigured deployment can never make voting undecidable.
func NewPipeline(films *repository.FilmRepo, votes *repository.VoteRepo, locations *repository.LocationRepo, threshold int, events Publisher) *Pipeline {
	if threshold < 1 {
		threshold = 1
	}
	return &Pipeline{Films: films, Votes: votes, Locations: locations, Threshold: threshold, Events: events}
}

// MoveToReview advances a film from intake to review_basic.
func (p *Pipeline) MoveToReview(ctx context.Context, filmID, actorID uint64) error {
	return p.simple(ctx, filmID, actorID, workflow.StatusIntake, workflow.StatusReviewBasic)
}

// SelectForProgramme advances a film from greenlist to next_programme.
func (p *Pipeline) SelectForProgramme(ctx context.Context, filmID, actorID uint64) error {
	return p.simple(ctx, filmID, actorID, workflow.StatusGreenlist, workflow.StatusNextProgramme)
}

func (p *Pipeline) simple(ctx context.Context, filmID, actorID uint64, from, to workflow.Status) error {
	if err := p.Films.TransitionStatus(ctx, filmID, from, to); err != nil {
		return err
	}
	p.emitStatusChanged(ctx, filmID, actorID, from, to)
	return nil
}

// ValidateBasic runs the basic criteria check on a film in review_basic.
// On pass the film moves to viewing with basic_pass set; on failure the film
// stays put and the names of the missing fields are returned with
// ErrCriteriaNotMet.
func (p *Pipeline) ValidateBasic(ctx context.Context, filmID, actorID uint64) ([]string, error) {
	f, err := p.Films.GetByID(ctx, filmID)
	if err != nil {
		return nil, err
	}
	st, _ := workflow.Parse(f.Status)
	if _, err := workflow.Next(st, workflow.ActionPassBasic); err != nil {
		return nil, err
	}
	bc := workflow.BasicCriteria{
		RuntimeMinutes: f.RuntimeMinutes,
		Language:       f.Language,
		UKAgeRating:    f.UKAgeRating,
		Genre:          f.Genre,
		Country:        f.Country,
	}
	if missing := bc.Missing(); len(missing) > 0 {
		return missing, ErrCriteriaNotMet
	}
	// The status guard in PassBasic catches a transition that raced the
	// check above.
	if err := p.Films.PassBasic(ctx, filmID); err != nil {
		return nil, err
	}
	p.emitStatusChanged(ctx, filmID, actorID, workflow.StatusReviewBasic, workflow.StatusViewing)
	return nil, nil
}

// StartVoting opens a film for ballots. Any ballots from a previous voting
// round (possible after a discard/restore cycle) are cleared in the same
// transaction as the transition.
func (p *Pipeline) StartVoting(ctx context.Context, filmID, actorID uint64) error {
	tx, err := p.Films.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	st, err := p.Films.StatusForUpdateTx(ctx, tx, filmID)
	if err != nil {
		return err
	}
	if _, err := workflow.Next(st, workflow.ActionStartVoting); err != nil {
		return err
	}
	if err := p.Votes.ClearTx(ctx, tx, filmID); err != nil {
		return err
	}
	if err := p.Films.TransitionStatusTx(ctx, tx, filmID, workflow.StatusViewing, workflow.StatusVoting); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	p.emitStatusChanged(ctx, filmID, actorID, workflow.StatusViewing, workflow.StatusVoting)
	return nil
}

// CastBallot upserts the voter's ballot, recomputes the tally, and applies
// the threshold transition if one is reached — all in one transaction, with
// the film row locked so concurrent ballots serialize. Ballots are accepted
// only while the film is in voting.
func (p *Pipeline) CastBallot(ctx context.Context, filmID, voterID uint64, value int) (workflow.Tally, workflow.Outcome, error) {
	if !model.ValidVoteValue(value) {
		return workflow.Tally{}, workflow.OutcomePending, ErrInvalidVoteValue
	}
	tx, err := p.Votes.DB().BeginTx(ctx, nil)
	if err != nil {
		return workflow.Tally{}, workflow.OutcomePending, err
	}
	defer func() { _ = tx.Rollback() }()

	st, err := p.Films.StatusForUpdateTx(ctx, tx, filmID)
	if err != nil {
		return workflow.Tally{}, workflow.OutcomePending, err
	}
	if st != workflow.StatusVoting {
		return workflow.Tally{}, workflow.OutcomePending, repository.ErrNotOpenForVoting
	}
	if err := p.Votes.CastTx(ctx, tx, filmID, voterID, value); err != nil {
		return workflow.Tally{}, workflow.OutcomePending, err
	}
	tally, err := p.Votes.TallyTx(ctx, tx, filmID)
	if err != nil {
		return workflow.Tally{}, workflow.OutcomePending, err
	}
	outcome := workflow.Decide(tally, p.Threshold)
	var to workflow.Status
	if action, ok := outcome.Action(); ok {
		to, err = workflow.Next(workflow.StatusVoting, action)
		if err != nil {
			return workflow.Tally{}, workflow.OutcomePending, err
		}
		if err := p.Films.TransitionStatusTx(ctx, tx, filmID, workflow.StatusVoting, to); err != nil {
			return workflow.Tally{}, workflow.OutcomePending, err
		}
	}
	if err := tx.Commit(); err != nil {
		return workflow.Tally{}, workflow.OutcomePending, err
	}
	if to != "" {
		// Tally-triggered: no single actor to attribute the transition to.
		p.emitStatusChanged(ctx, filmID, 0, workflow.StatusVoting, to)
	}
	return tally, outcome, nil
}

// ResolveDistributor settles the uk_check stage: confirmed films enter the
// green-list (stamping green_at), the rest are discarded.
func (p *Pipeline) ResolveDistributor(ctx context.Context, filmID, actorID uint64, confirmed bool) error {
	if err := p.Films.SetDistributor(ctx, filmID, confirmed); err != nil {
		return err
	}
	to := workflow.StatusGreenlist
	if !confirmed {
		to = workflow.StatusDiscarded
	}
	p.emitStatusChanged(ctx, filmID, actorID, workflow.StatusUKCheck, to)
	if confirmed {
		p.emitGreenlisted(ctx, filmID)
	}
	return nil
}

// Discard drops a film from any stage that allows a manual discard. The
// repository reports the stage it left from under the same row lock as the
// update, so the published event never names a stale status.
func (p *Pipeline) Discard(ctx context.Context, filmID, actorID uint64) error {
	from, err := p.Films.Discard(ctx, filmID)
	if err != nil {
		return err
	}
	p.emitStatusChanged(ctx, filmID, actorID, from, workflow.StatusDiscarded)
	return nil
}

// Restore returns a discarded film to intake.
func (p *Pipeline) Restore(ctx context.Context, filmID, actorID uint64) error {
	return p.simple(ctx, filmID, actorID, workflow.StatusDiscarded, workflow.StatusIntake)
}

// Archive retires a film from any non-terminal status, recording where it
// was archived from. The update captures the prior status into
// archived_from, and the event reads it back from there rather than from a
// pre-read that a concurrent transition could have outdated.
func (p *Pipeline) Archive(ctx context.Context, filmID, actorID uint64) error {
	if err := p.Films.Archive(ctx, filmID); err != nil {
		return err
	}
	f, err := p.Films.GetByID(ctx, filmID)
	if err != nil {
		// Archived; the event is best-effort.
		return nil
	}
	from := workflow.Status("")
	if f.ArchivedFrom != nil {
		from, _ = workflow.Parse(*f.ArchivedFrom)
	}
	p.emitStatusChangedTitled(ctx, f.ID, f.Title, actorID, from, workflow.StatusArchived)
	return nil
}

// ArchiveNextProgramme archives every film on the next-programme board and
// returns how many were archived. One event per film, same as the
// single-film archive path.
func (p *Pipeline) ArchiveNextProgramme(ctx context.Context) (int64, error) {
	archived, err := p.Films.ArchiveAllByStatus(ctx, workflow.StatusNextProgramme)
	if err != nil {
		return 0, err
	}
	for _, f := range archived {
		p.emitStatusChangedTitled(ctx, f.ID, f.Title, 0, workflow.StatusNextProgramme, workflow.StatusArchived)
	}
	return int64(len(archived)), nil
}

// Schedule records a viewing slot for a film at a saved location. The venue
// name is denormalized onto the film so later venue edits do not rewrite
// history.
func (p *Pipeline) Schedule(ctx context.Context, filmID uint64, date, timeOfDay string, locationID uint64) error {
	loc, err := p.Locations.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	return p.Films.SetSchedule(ctx, filmID, date, timeOfDay, loc.ID, loc.Name)
}

func (p *Pipeline) emitStatusChanged(ctx context.Context, filmID, actorID uint64, from, to workflow.Status) {
	if p.Events == nil {
		return
	}
	title := ""
	if f, err := p.Films.GetByID(ctx, filmID); err == nil {
		title = f.Title
	}
	p.emitStatusChangedTitled(ctx, filmID, title, actorID, from, to)
}

func (p *Pipeline) emitStatusChangedTitled(ctx context.Context, filmID uint64, title string, actorID uint64, from, to workflow.Status) {
	if p.Events == nil {
		return
	}
	_ = p.Events.StatusChanged(ctx, queue.FilmStatusChangedEvent{
		FilmID:     filmID,
		Title:      title,
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorID:    actorID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Pipeline) emitGreenlisted(ctx context.Context, filmID uint64) {
	if p.Events == nil {
		return
	}
	f, err := p.Films.GetByID(ctx, filmID)
	if err != nil {
		return
	}
	greenAt := ""
	if f.GreenAt != nil {
		greenAt = f.GreenAt.UTC().Format(time.RFC3339)
	}
	_ = p.Events.Greenlisted(ctx, queue.FilmGreenlistedEvent{
		FilmID:    f.ID,
		Title:     f.Title,
		Year:      f.Year,
		IMDBID:    f.IMDBID,
		GreenAt:   greenAt,
		PosterURL: f.PosterURL,
	})
}
