package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name      string
		tally     Tally
		threshold int
		want      Outcome
	}{
		{"below both", Tally{Yes: 3, No: 2}, 4, OutcomePending},
		{"yes reaches", Tally{Yes: 4, No: 0}, 4, OutcomeApproved},
		{"no reaches", Tally{Yes: 1, No: 4}, 4, OutcomeRejected},
		{"tie favours approval", Tally{Yes: 4, No: 4}, 4, OutcomeApproved},
		{"threshold one", Tally{Yes: 1}, 1, OutcomeApproved},
		{"zero threshold never decides", Tally{Yes: 10, No: 10}, 0, OutcomePending},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Decide(c.tally, c.threshold))
		})
	}
}

func TestOutcomeAction(t *testing.T) {
	a, ok := OutcomeApproved.Action()
	assert.True(t, ok)
	assert.Equal(t, ActionApprove, a)

	a, ok = OutcomeRejected.Action()
	assert.True(t, ok)
	assert.Equal(t, ActionReject, a)

	_, ok = OutcomePending.Action()
	assert.False(t, ok)
}
