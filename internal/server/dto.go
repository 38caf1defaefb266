package server

import (
	"github.com/extratos/verifier/internal/model"
	"github.com/extratos/verifier/internal/reconcile"
	"github.com/extratos/verifier/internal/session"
)

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeNotFound    = "not_found"
	ErrCodeBadRequest  = "bad_request"
	ErrCodeMissingData = "missing_data"
	ErrCodeInternal    = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// CreateSessionResponse is returned when a session is created.
type CreateSessionResponse struct {
	ID string `json:"id"`
}

// MovementResponse is one statement movement.
type MovementResponse struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// SessionResponse describes the state of a session.
type SessionResponse struct {
	ID           string                  `json:"id"`
	Statements   []session.StatementInfo `json:"statements"`
	TotalRecords int                     `json:"total_records"`
	Sample       []MovementResponse      `json:"sample"`
	ExpectedText string                  `json:"expected_text,omitempty"`
	Reconciled   bool                    `json:"reconciled"`
}

// StatementsResponse is returned after statements are uploaded.
type StatementsResponse struct {
	Added        []session.StatementInfo `json:"added"`
	TotalRecords int                     `json:"total_records"`
	Sample       []MovementResponse      `json:"sample"`
}

// PrefillResponse carries expected-amount text read from a spreadsheet.
type PrefillResponse struct {
	ExpectedText string `json:"expected_text"`
}

// ReconcileRequest is the body of POST /api/sessions/:id/reconcile.
type ReconcileRequest struct {
	ExpectedText string `json:"expected_text"`
}

// SummaryResponse mirrors reconcile.Summary with the rate pre-rendered.
type SummaryResponse struct {
	Expected  int    `json:"expected"`
	Observed  int    `json:"observed"`
	Matched   int    `json:"matched"`
	Unmatched int    `json:"unmatched"`
	Rate      string `json:"rate"`
}

// ExpectedResponse is one expected amount.
type ExpectedResponse struct {
	Amount string `json:"amount"`
	Raw    string `json:"raw"`
}

// MatchResponse pairs an expected amount with the movement that satisfied it.
type MatchResponse struct {
	Expected ExpectedResponse `json:"expected"`
	Movement MovementResponse `json:"movement"`
}

// ReconcileResponse is returned by a successful reconcile.
type ReconcileResponse struct {
	Summary   SummaryResponse    `json:"summary"`
	Matched   []MatchResponse    `json:"matched"`
	Unmatched []ExpectedResponse `json:"unmatched"`
}

func newMovementResponse(t model.Transaction) MovementResponse {
	return MovementResponse{Date: t.Date, Description: t.Description, Amount: t.Amount.StringFixed(2)}
}

func newMovementResponses(records []model.Transaction) []MovementResponse {
	out := make([]MovementResponse, 0, len(records))
	for _, t := range records {
		out = append(out, newMovementResponse(t))
	}
	return out
}

func newExpectedResponse(e model.ExpectedAmount) ExpectedResponse {
	return ExpectedResponse{Amount: e.Amount.StringFixed(2), Raw: e.Raw}
}

func newReconcileResponse(res reconcile.Result) ReconcileResponse {
	resp := ReconcileResponse{
		Summary: SummaryResponse{
			Expected:  res.Summary.Expected,
			Observed:  res.Summary.Observed,
			Matched:   res.Summary.Matched,
			Unmatched: res.Summary.Unmatched,
			Rate:      res.Summary.RateString(),
		},
		Matched:   make([]MatchResponse, 0, len(res.Matched)),
		Unmatched: make([]ExpectedResponse, 0, len(res.Unmatched)),
	}
	for _, m := range res.Matched {
		if !m.Found() {
			continue
		}
		resp.Matched = append(resp.Matched, MatchResponse{
			Expected: newExpectedResponse(m.Expected),
			Movement: newMovementResponse(*m.Transaction),
		})
	}
	for _, e := range res.Unmatched {
		resp.Unmatched = append(resp.Unmatched, newExpectedResponse(e))
	}
	return resp
}
