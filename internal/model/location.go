package model

import "time"

// Location is a named screening venue with free-text address fields,
// stored in the `locations` table. Addresses are usually filled from the
// postcode lookup but can be entered by hand when the lookup degrades.
type Location struct {
	ID        uint64    `json:"id"`         // locations.id
	Name      string    `json:"name"`       // locations.name
	Line1     string    `json:"line1"`      // locations.line1
	Line2     string    `json:"line2"`      // locations.line2
	Town      string    `json:"town"`       // locations.town
	County    string    `json:"county"`     // locations.county
	Postcode  string    `json:"postcode"`   // locations.postcode
	CreatedAt time.Time `json:"created_at"` // locations.created_at
	UpdatedAt time.Time `json:"updated_at"` // locations.updated_at
}
