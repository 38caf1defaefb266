package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		expected, matched int
		want              string
	}{
		{0, 0, "0.0"},
		{4, 3, "75.0"},
		{3, 2, "66.7"},
		{3, 1, "33.3"},
		{1, 1, "100.0"},
		{7, 0, "0.0"},
	}
	for _, tt := range tests {
		s := Summarize(tt.expected, tt.matched, 10)
		assert.Equal(t, tt.want, s.RateString(), "%d/%d", tt.matched, tt.expected)
		assert.Equal(t, tt.expected-tt.matched, s.Unmatched)
		assert.Equal(t, 10, s.Observed)
	}
}

func TestSummarize_ZeroExpectedRateIsZero(t *testing.T) {
	s := Summarize(0, 0, 0)
	assert.True(t, s.Rate.IsZero())
}
