// Package report renders reconciliation results for people and spreadsheets.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/extratos/verifier/internal/model"
	"github.com/extratos/verifier/internal/reconcile"
)

// ContentType is the MIME type of the text report.
const ContentType = "text/plain; charset=utf-8"

const (
	bannerWidth    = 60
	timestampFmt   = "2006-01-02 15:04:05"
	filenamePrefix = "report_extratos_"
)

// Options control report rendering.
type Options struct {
	GeneratedAt time.Time // omitted when zero
	Currency    string    // appended to every amount, e.g. "€"
	Labels      Labels
}

// DefaultOptions renders English labels with a euro suffix.
func DefaultOptions() Options {
	return Options{Currency: "€", Labels: EnglishLabels}
}

// Filename returns the report file name for the day of t.
func Filename(t time.Time) string {
	return filenamePrefix + t.Format("2006-01-02") + ".txt"
}

// CSVFilename returns the CSV export file name for the day of t.
func CSVFilename(t time.Time) string {
	return filenamePrefix + t.Format("2006-01-02") + ".csv"
}

// Format renders res and the full movement list as a plain-text report.
// The summary is always present; other sections appear only when non-empty.
func Format(res reconcile.Result, records []model.Transaction, opts Options) string {
	if opts.Labels == (Labels{}) {
		opts.Labels = EnglishLabels
	}
	l := opts.Labels
	s := res.Summary

	var b strings.Builder
	banner := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", banner, l.Title, banner)
	if !opts.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "%s: %s\n\n", l.GeneratedAt, opts.GeneratedAt.Format(timestampFmt))
	}

	section(&b, l.Summary, 20)
	fmt.Fprintf(&b, "%s: %d\n", l.TotalExpected, s.Expected)
	fmt.Fprintf(&b, "%s: %d\n", l.Movements, s.Observed)
	fmt.Fprintf(&b, "%s: %d\n", l.Matched, s.Matched)
	fmt.Fprintf(&b, "%s: %d\n", l.Unmatched, s.Unmatched)
	fmt.Fprintf(&b, "%s: %s%%\n\n", l.MatchRate, s.RateString())

	if len(res.Unmatched) > 0 {
		section(&b, l.UnmatchedList, 30)
		for i, e := range res.Unmatched {
			fmt.Fprintf(&b, "%d. %s ('%s')\n", i+1, opts.money(e.Amount), e.Raw)
		}
		b.WriteString("\n")
	}

	if len(res.Matched) > 0 {
		section(&b, l.MatchedList, 35)
		for i, m := range res.Matched {
			if m.Transaction == nil {
				continue
			}
			fmt.Fprintf(&b, "%d. %s → %s - %s\n", i+1, opts.money(m.Expected.Amount), m.Transaction.Date, m.Transaction.Description)
		}
		b.WriteString("\n")
	}

	if len(records) > 0 {
		section(&b, l.AllMovements, 40)
		for i, t := range records {
			fmt.Fprintf(&b, "%d. %s - %s - %s\n", i+1, t.Date, t.Description, opts.money(t.Amount))
		}
	}

	return b.String()
}

func (o Options) money(d decimal.Decimal) string {
	return d.StringFixed(2) + o.Currency
}

func section(b *strings.Builder, title string, width int) {
	fmt.Fprintf(b, "%s\n%s\n", title, strings.Repeat("-", width))
}
