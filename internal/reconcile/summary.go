package reconcile

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the counts of a completed reconciliation.
type Summary struct {
	Expected  int
	Matched   int
	Unmatched int
	Observed  int
	Rate      decimal.Decimal // matched / expected * 100; zero with no expected amounts
}

// Summarize derives a Summary from raw counts.
func Summarize(expected, matched, observed int) Summary {
	s := Summary{
		Expected:  expected,
		Matched:   matched,
		Unmatched: expected - matched,
		Observed:  observed,
		Rate:      decimal.Zero,
	}
	if expected > 0 {
		s.Rate = decimal.NewFromInt(int64(matched)).Mul(hundred).Div(decimal.NewFromInt(int64(expected)))
	}
	return s
}

// RateString renders the match rate with one decimal, e.g. "66.7".
func (s Summary) RateString() string {
	return s.Rate.StringFixed(1)
}
