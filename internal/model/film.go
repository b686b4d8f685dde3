package model

import "time"

// Film represents a submitted film as stored in the `films` table.
// Descriptive attributes come from the submitter and the OMDb lookup;
// workflow attributes are owned by the status pipeline and must only be
// mutated through the repository's conditional updates.
//
// Nullable columns are mapped to pointer types so that "never set" is
// distinguishable from a zero value (e.g. HasUKDistributor is unknown
// until the uk_check stage resolves it one way or the other).
type Film struct {
	ID               uint64     `json:"id"`                          // films.id
	Title            string     `json:"title"`                       // films.title
	Year             *int       `json:"year"`                        // films.year (nullable)
	Synopsis         string     `json:"synopsis"`                    // films.synopsis
	RuntimeMinutes   *int       `json:"runtime_minutes"`             // films.runtime_minutes (nullable)
	Language         string     `json:"language"`                    // films.language
	AgeRating        string     `json:"age_rating"`                  // films.age_rating (source certification)
	UKAgeRating      string     `json:"uk_age_rating"`               // films.uk_age_rating (BBFC mapping)
	Genre            string     `json:"genre"`                       // films.genre
	Country          string     `json:"country"`                     // films.country
	HasDisk          bool       `json:"has_disk"`                    // films.has_disk
	AvailabilityNote string     `json:"availability_note"`           // films.availability_note
	PosterURL        string     `json:"poster_url"`                  // films.poster_url
	IMDBID           string     `json:"imdb_id"`                     // films.imdb_id (external catalog id)
	Status           string     `json:"status"`                      // films.status (workflow.Status value)
	HasUKDistributor *bool      `json:"has_uk_distributor"`          // films.has_uk_distributor (nullable)
	BasicPass        bool       `json:"basic_pass"`                  // films.basic_pass
	ArchivedFrom     *string    `json:"archived_from,omitempty"`     // films.archived_from (set on archival only)
	GreenAt          *time.Time `json:"green_at,omitempty"`          // films.green_at (set on entering greenlist)
	ViewingDate      *string    `json:"viewing_date,omitempty"`      // films.viewing_date ("2006-01-02", nullable)
	ViewingTime      *string    `json:"viewing_time,omitempty"`      // films.viewing_time ("15:04", nullable)
	ViewingLocation  *uint64    `json:"viewing_location_id,omitempty"` // films.viewing_location_id (nullable FK)
	ViewingVenueName *string    `json:"viewing_location_name,omitempty"` // films.viewing_location_name (denormalized at schedule time)
	CreatedBy        uint64     `json:"created_by"`                  // films.created_by
	CreatedAt        time.Time  `json:"created_at"`                  // films.created_at
	UpdatedAt        time.Time  `json:"updated_at"`                  // films.updated_at
}
