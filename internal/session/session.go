// Package session holds the state of one reconciliation run: the
// statements loaded so far, the expected amounts, and the last result.
//
// A Session is a plain value. Operations return the next value instead of
// mutating the receiver, so a failed step leaves the caller's copy intact.
package session

import (
	"fmt"
	"slices"

	"github.com/extratos/verifier/internal/model"
	"github.com/extratos/verifier/internal/reconcile"
)

// StatementInfo summarizes one processed statement export.
type StatementInfo struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
}

// Session is the accumulated state of a reconciliation run.
type Session struct {
	Statements   []StatementInfo
	Records      []model.Transaction // in statement order
	ExpectedText string
	Expected     []model.ExpectedAmount
	Result       *reconcile.Result // nil until a reconcile succeeds
}

// Reconciled reports whether the session holds a result.
func (s Session) Reconciled() bool { return s.Result != nil }

// Sample returns up to n records from the start of the session.
func (s Session) Sample(n int) []model.Transaction {
	if n <= 0 {
		return nil
	}
	if n > len(s.Records) {
		n = len(s.Records)
	}
	return slices.Clone(s.Records[:n])
}

// Reset returns an empty session.
func (s Session) Reset() Session { return Session{} }

func (s Session) String() string {
	return fmt.Sprintf("session{statements=%d records=%d expected=%d reconciled=%t}",
		len(s.Statements), len(s.Records), len(s.Expected), s.Reconciled())
}

// withStatement returns a copy of s with info and records appended. Any
// previous result no longer describes the records and is dropped.
func (s Session) withStatement(info StatementInfo, records []model.Transaction) Session {
	next := s
	next.Statements = append(slices.Clone(s.Statements), info)
	next.Records = append(slices.Clone(s.Records), records...)
	next.Result = nil
	return next
}
