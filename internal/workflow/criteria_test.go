package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(n int) *int { return &n }

func TestBasicCriteriaPassAtLimit(t *testing.T) {
	bc := BasicCriteria{
		RuntimeMinutes: intp(150),
		Language:       "English",
		UKAgeRating:    "12A",
		Genre:          "Drama",
		Country:        "UK",
	}
	assert.Empty(t, bc.Missing())
}

func TestBasicCriteriaRuntimeOverLimit(t *testing.T) {
	bc := BasicCriteria{
		RuntimeMinutes: intp(151),
		Language:       "English",
		UKAgeRating:    "12A",
		Genre:          "Drama",
		Country:        "UK",
	}
	assert.Equal(t, []string{"runtime_minutes: exceeds 150"}, bc.Missing())
}

func TestBasicCriteriaRuntimeUnknown(t *testing.T) {
	bc := BasicCriteria{
		Language:    "English",
		UKAgeRating: "12A",
		Genre:       "Drama",
		Country:     "UK",
	}
	assert.Equal(t, []string{"runtime_minutes"}, bc.Missing())
}

func TestBasicCriteriaReportsEveryMissingField(t *testing.T) {
	bc := BasicCriteria{RuntimeMinutes: intp(120)}
	assert.Equal(t,
		[]string{"language", "uk_age_rating", "genre", "country"},
		bc.Missing())
}
