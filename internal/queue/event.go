// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used on the default exchange.
const (
	StatusChangedQueue = "film.status.changed"
	GreenlistedQueue   = "film.greenlisted"
)

// FilmStatusChangedEvent is published after every successful pipeline
// transition. It carries enough for downstream consumers to log or notify
// without querying the primary database.
type FilmStatusChangedEvent struct {
	FilmID     uint64 `json:"film_id"`
	Title      string `json:"title"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    uint64 `json:"actor_id,omitempty"` // zero for tally-triggered transitions
	OccurredAt string `json:"occurred_at"`
}

// FilmGreenlistedEvent is published when a film clears the UK distribution
// check and enters the green-list.
type FilmGreenlistedEvent struct {
	FilmID    uint64 `json:"film_id"`
	Title     string `json:"title"`
	Year      *int   `json:"year,omitempty"`
	IMDBID    string `json:"imdb_id,omitempty"`
	GreenAt   string `json:"green_at"`
	PosterURL string `json:"poster_url,omitempty"`
}
