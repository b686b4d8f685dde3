// Package workflow defines the film status pipeline: the set of statuses a
// film moves through from submission to archival, the actions that move it,
// and the guards attached to those actions. The rules live here as pure
// functions; persistence and HTTP concerns stay in repository and handler.
package workflow

import (
	"errors"
	"fmt"
)

// Status is the single field that drives which list a film appears in and
// which actions are offered on it.
type Status string

const (
	StatusIntake        Status = "intake"         // newly submitted, awaiting triage
	StatusReviewBasic   Status = "review_basic"   // basic criteria being checked
	StatusViewing       Status = "viewing"        // committee watching the film
	StatusVoting        Status = "voting"         // open for ballots
	StatusUKCheck       Status = "uk_check"       // approved, awaiting distributor check
	StatusGreenlist     Status = "greenlist"      // cleared for UK distribution, awaiting a slot
	StatusNextProgramme Status = "next_programme" // slotted into the upcoming programme
	StatusDiscarded     Status = "discarded"      // dropped; restorable to intake
	StatusArchived      Status = "archived"       // terminal
)

// Statuses lists every defined status, in pipeline order.
var Statuses = []Status{
	StatusIntake,
	StatusReviewBasic,
	StatusViewing,
	StatusVoting,
	StatusUKCheck,
	StatusGreenlist,
	StatusNextProgramme,
	StatusDiscarded,
	StatusArchived,
}

// Parse maps a raw string onto a defined Status.
func Parse(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	_, ok := Parse(string(s))
	return ok
}

// Terminal reports whether no transition out of s exists.
func (s Status) Terminal() bool { return s == StatusArchived }

// Action names a user- or tally-triggered transition.
type Action string

const (
	ActionMoveToReview   Action = "move_to_review"   // intake -> review_basic
	ActionPassBasic      Action = "pass_basic"       // review_basic -> viewing (guarded)
	ActionStartVoting    Action = "start_voting"     // viewing -> voting
	ActionApprove        Action = "approve"          // voting -> uk_check (tally)
	ActionReject         Action = "reject"           // voting -> discarded (tally)
	ActionConfirmUKDist  Action = "confirm_uk_dist"  // uk_check -> greenlist
	ActionNoUKDist       Action = "no_uk_dist"       // uk_check -> discarded
	ActionSelectForSlot  Action = "select_for_slot"  // greenlist -> next_programme
	ActionDiscard        Action = "discard"          // several -> discarded
	ActionRestore        Action = "restore"          // discarded -> intake
	ActionArchive        Action = "archive"          // any non-terminal -> archived
)

var (
	// ErrTerminalStatus is returned for any action on an archived film.
	ErrTerminalStatus = errors.New("film is archived")
	// ErrInvalidTransition is returned when the action is not defined for
	// the film's current status.
	ErrInvalidTransition = errors.New("invalid transition")
)

// transitions maps each action to the statuses it may be applied from and
// the status it produces. Archive is handled separately because it applies
// to every non-terminal status.
var transitions = map[Action]map[Status]Status{
	ActionMoveToReview:  {StatusIntake: StatusReviewBasic},
	ActionPassBasic:     {StatusReviewBasic: StatusViewing},
	ActionStartVoting:   {StatusViewing: StatusVoting},
	ActionApprove:       {StatusVoting: StatusUKCheck},
	ActionReject:        {StatusVoting: StatusDiscarded},
	ActionConfirmUKDist: {StatusUKCheck: StatusGreenlist},
	ActionNoUKDist:      {StatusUKCheck: StatusDiscarded},
	ActionSelectForSlot: {StatusGreenlist: StatusNextProgramme},
	ActionRestore:       {StatusDiscarded: StatusIntake},
	ActionDiscard: {
		StatusIntake:      StatusDiscarded,
		StatusReviewBasic: StatusDiscarded,
		StatusViewing:     StatusDiscarded,
		StatusVoting:      StatusDiscarded,
		StatusUKCheck:     StatusDiscarded,
	},
}

// Next returns the status produced by applying action a to a film currently
// in status from. It returns ErrTerminalStatus for archived films and
// ErrInvalidTransition when the action is not defined for the current status.
func Next(from Status, a Action) (Status, error) {
	if from.Terminal() {
		return "", ErrTerminalStatus
	}
	if a == ActionArchive {
		return StatusArchived, nil
	}
	to, ok := transitions[a][from]
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a, from)
	}
	return to, nil
}

// Discardable lists the statuses a film may be manually discarded from.
func Discardable() []Status {
	ds := make([]Status, 0, len(transitions[ActionDiscard]))
	for _, st := range Statuses {
		if _, ok := transitions[ActionDiscard][st]; ok {
			ds = append(ds, st)
		}
	}
	return ds
}
