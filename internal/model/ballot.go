package model

import "time"

// Ballot vote values. Earlier drafts of the club's voting rules also allowed
// a +2 "strong pick"; the current rules accept exactly Yes and No.
const (
	VoteYes = 1
	VoteNo  = -1
)

// Ballot is one voter's Yes/No value for one film, stored in the `votes`
// table. The (film_id, voter_id) pair is unique, so casting again
// overwrites rather than accumulates.
type Ballot struct {
	ID        uint64    `json:"id"`         // votes.id
	FilmID    uint64    `json:"film_id"`    // votes.film_id
	VoterID   uint64    `json:"voter_id"`   // votes.voter_id
	Value     int       `json:"value"`      // votes.value (-1 or 1)
	CreatedAt time.Time `json:"created_at"` // votes.created_at
	UpdatedAt time.Time `json:"updated_at"` // votes.updated_at
}

// ValidVoteValue reports whether v is an accepted ballot value.
func ValidVoteValue(v int) bool {
	return v == VoteYes || v == VoteNo
}
