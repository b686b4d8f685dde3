package workflow

// Tally aggregates the ballots cast for one film.
type Tally struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// Outcome is the result of checking a tally against the quorum threshold.
type Outcome int

const (
	OutcomePending  Outcome = iota // neither threshold reached
	OutcomeApproved                // yes count reached the threshold
	OutcomeRejected                // no count reached the threshold
)

// Decide checks the tally against the threshold. The yes count is checked
// first, so a tally where both buckets reach the threshold simultaneously
// resolves to approval. That ordering matches the club's long-standing
// practice and is covered by tests; change it only with the committee's
// sign-off.
func Decide(t Tally, threshold int) Outcome {
	if threshold <= 0 {
		return OutcomePending
	}
	if t.Yes >= threshold {
		return OutcomeApproved
	}
	if t.No >= threshold {
		return OutcomeRejected
	}
	return OutcomePending
}

// Action returns the pipeline action implied by the outcome, and whether
// one is implied at all.
func (o Outcome) Action() (Action, bool) {
	switch o {
	case OutcomeApproved:
		return ActionApprove, true
	case OutcomeRejected:
		return ActionReject, true
	}
	return "", false
}

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeRejected:
		return "rejected"
	}
	return "pending"
}
