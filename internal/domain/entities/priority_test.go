package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityFromSlug(t *testing.T) {
	assert.Equal(t, PriorityMostImportant, PriorityFromSlug("most_important"))
	assert.Equal(t, PriorityImportant, PriorityFromSlug("important"))
	assert.Equal(t, PriorityNormal, PriorityFromSlug("normal"))

	// The mapping is total: anything unrecognised falls through to normal.
	for _, slug := range []string{"", "urgent", "MOST_IMPORTANT", "3"} {
		assert.Equal(t, PriorityNormal, PriorityFromSlug(slug), "slug %q", slug)
	}
}

func TestPriorityLabelRoundTrip(t *testing.T) {
	cases := []struct {
		slug  string
		num   Priority
		label string
	}{
		{"most_important", 1, "Most important"},
		{"important", 2, "Important"},
		{"normal", 3, "Normal"},
	}
	for _, c := range cases {
		p := PriorityFromSlug(c.slug)
		assert.Equal(t, c.num, p)
		assert.Equal(t, c.label, p.Label())
		assert.Equal(t, c.slug, p.Slug())
		assert.True(t, p.IsValid())
	}
}

func TestPriorityLabel_OutOfRange(t *testing.T) {
	// Defensive: out-of-range ordinals still map to one of the three labels.
	assert.Equal(t, "Most important", Priority(0).Label())
	assert.Equal(t, "Normal", Priority(7).Label())
	assert.False(t, Priority(0).IsValid())
	assert.False(t, Priority(4).IsValid())
}
