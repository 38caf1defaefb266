package model

import (
	"github.com/shopspring/decimal"
)

// Transaction is one movement parsed from a bank statement export.
type Transaction struct {
	Date        string          // as exported, never parsed
	Description string          // display only
	Amount      decimal.Decimal // signed as exported
	RawAmount   string          // amount field before normalization
}

// Magnitude returns the unsigned amount used for matching.
func (t Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// ExpectedAmount is an amount the operator expects to find among the movements.
type ExpectedAmount struct {
	Amount decimal.Decimal // never negative
	Raw    string          // token as typed or prefilled
}

// Match pairs an expected amount with the movement that satisfied it.
type Match struct {
	Expected    ExpectedAmount
	Transaction *Transaction // nil when nothing matched
}

// Found reports whether a movement was matched.
func (m Match) Found() bool {
	return m.Transaction != nil
}
