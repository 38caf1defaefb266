package commands

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/extratos/verifier/internal/model"
	"github.com/extratos/verifier/internal/reconcile"
	"github.com/extratos/verifier/internal/session"
)

// Preview sizes for console output. The written report lists everything.
const (
	sampleSize          = 5
	expectedPreviewSize = 10
	matchPreviewSize    = 10
)

func money(d decimal.Decimal, currency string) string {
	return d.StringFixed(2) + currency
}

func printStatement(w io.Writer, info session.StatementInfo) {
	if info.Skipped > 0 {
		fmt.Fprintf(w, "✓ %s: %d movements (%d rows skipped)\n", info.Name, info.Records, info.Skipped)
		return
	}
	fmt.Fprintf(w, "✓ %s: %d movements\n", info.Name, info.Records)
}

func printMovements(w io.Writer, title string, records []model.Transaction, currency string) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for i, t := range records {
		fmt.Fprintf(w, "  %d. %s | %s | %s\n", i+1, t.Date, t.Description, money(t.Amount, currency))
	}
}

func printExpected(w io.Writer, expected []model.ExpectedAmount, currency string) {
	fmt.Fprintf(w, "\nExpected amounts: %d\n", len(expected))
	for i, e := range expected {
		if i == expectedPreviewSize {
			fmt.Fprintf(w, "  ... and %d more\n", len(expected)-expectedPreviewSize)
			break
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, money(e.Amount, currency))
	}
}

func printResult(w io.Writer, res reconcile.Result, currency string) {
	s := res.Summary
	fmt.Fprintf(w, "\nMatched %d of %d expected amounts (%s%%) against %d movements\n",
		s.Matched, s.Expected, s.RateString(), s.Observed)

	if len(res.Unmatched) > 0 {
		fmt.Fprintf(w, "\nUnmatched (%d):\n", len(res.Unmatched))
		for i, e := range res.Unmatched {
			fmt.Fprintf(w, "  %d. %s ('%s')\n", i+1, money(e.Amount, currency), e.Raw)
		}
	}

	if len(res.Matched) > 0 {
		fmt.Fprintf(w, "\nMatches (%d):\n", len(res.Matched))
		for i, m := range res.Matched {
			if i == matchPreviewSize {
				fmt.Fprintf(w, "  ... and %d more\n", len(res.Matched)-matchPreviewSize)
				break
			}
			fmt.Fprintf(w, "  %d. %s → %s - %s\n", i+1, money(m.Expected.Amount, currency), m.Transaction.Date, m.Transaction.Description)
		}
	}
}
