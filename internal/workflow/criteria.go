package workflow

// MaxRuntimeMinutes is the longest runtime the club will programme. Films
// over this length fail the basic criteria check.
const MaxRuntimeMinutes = 150

// BasicCriteria carries the descriptive fields checked before a film may
// leave review_basic for viewing.
type BasicCriteria struct {
	RuntimeMinutes *int
	Language       string
	UKAgeRating    string
	Genre          string
	Country        string
}

// Missing returns the names of the criteria fields that are absent or out of
// bounds, in a stable order. An empty result means the film passes and may
// move to viewing with basic_pass set.
func (bc BasicCriteria) Missing() []string {
	var missing []string
	switch {
	case bc.RuntimeMinutes == nil:
		missing = append(missing, "runtime_minutes")
	case *bc.RuntimeMinutes > MaxRuntimeMinutes:
		missing = append(missing, "runtime_minutes: exceeds 150")
	}
	if bc.Language == "" {
		missing = append(missing, "language")
	}
	if bc.UKAgeRating == "" {
		missing = append(missing, "uk_age_rating")
	}
	if bc.Genre == "" {
		missing = append(missing, "genre")
	}
	if bc.Country == "" {
		missing = append(missing, "country")
	}
	return missing
}
