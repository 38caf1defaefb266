// Package reconcile matches expected amounts against statement movements.
//
// Matching is greedy and order dependent: each expected amount, in input
// order, takes the first movement, in input order, whose magnitude is
// within the tolerance. By default a movement stays available after it
// matches, so several equal expected amounts can share one movement.
//
// Example usage:
//
//	m := reconcile.NewMatcher(reconcile.DefaultConfig())
//	res, err := m.Reconcile(expected, movements)
//	if err != nil {
//		// errors.Is(err, reconcile.ErrMissingData)
//	}
//	fmt.Println(res.Summary.RateString())
package reconcile

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/extratos/verifier/internal/model"
)

// ErrMissingData is returned when reconciliation lacks movements or expected amounts.
var ErrMissingData = errors.New("missing data")

// DefaultTolerance is one cent.
var DefaultTolerance = decimal.New(1, -2)

// Config holds matcher configuration.
type Config struct {
	Tolerance decimal.Decimal // amounts closer than this are equal
	OneToOne  bool            // a movement satisfies at most one expected amount
}

// DefaultConfig returns a one-cent tolerance with movement reuse.
func DefaultConfig() Config {
	return Config{Tolerance: DefaultTolerance}
}

// Result is the partition of expected amounts produced by Reconcile.
type Result struct {
	Matched   []model.Match          // in expected order
	Unmatched []model.ExpectedAmount // in expected order
	All       []model.Match          // every expected amount, in order
	Summary   Summary
}

// Matcher matches expected amounts against movements.
type Matcher struct {
	config Config
}

// NewMatcher creates a Matcher. A non-positive tolerance falls back to DefaultTolerance.
func NewMatcher(config Config) *Matcher {
	if !config.Tolerance.IsPositive() {
		config.Tolerance = DefaultTolerance
	}
	return &Matcher{config: config}
}

// Config returns the configuration in effect.
func (m *Matcher) Config() Config { return m.config }

// Reconcile partitions expected into matched and unmatched amounts.
func (m *Matcher) Reconcile(expected []model.ExpectedAmount, observed []model.Transaction) (Result, error) {
	if len(observed) == 0 {
		return Result{}, fmt.Errorf("%w: no statement movements to compare against", ErrMissingData)
	}
	if len(expected) == 0 {
		return Result{}, fmt.Errorf("%w: no expected amounts", ErrMissingData)
	}

	var used []bool
	if m.config.OneToOne {
		used = make([]bool, len(observed))
	}

	res := Result{All: make([]model.Match, 0, len(expected))}
	for _, e := range expected {
		idx := m.find(e.Amount.Abs(), observed, used)
		if idx < 0 {
			res.Unmatched = append(res.Unmatched, e)
			res.All = append(res.All, model.Match{Expected: e})
			continue
		}
		if used != nil {
			used[idx] = true
		}

		txn := observed[idx]
		match := model.Match{Expected: e, Transaction: &txn}
		res.Matched = append(res.Matched, match)
		res.All = append(res.All, match)
	}

	res.Summary = Summarize(len(expected), len(res.Matched), len(observed))
	return res, nil
}

// find returns the index of the first available movement within tolerance, or -1.
func (m *Matcher) find(want decimal.Decimal, observed []model.Transaction, used []bool) int {
	for i, txn := range observed {
		if used != nil && used[i] {
			continue
		}
		if want.Sub(txn.Magnitude()).Abs().LessThan(m.config.Tolerance) {
			return i
		}
	}
	return -1
}

// Reconcile runs a Matcher with DefaultConfig.
func Reconcile(expected []model.ExpectedAmount, observed []model.Transaction) (Result, error) {
	return NewMatcher(DefaultConfig()).Reconcile(expected, observed)
}
