package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/extratos/verifier/internal/amount"
	"github.com/extratos/verifier/internal/model"
)

// Reasons a candidate data row is skipped. Amount failures wrap
// amount.ErrNotANumber instead.
var (
	ErrTooFewFields       = errors.New("too few fields")
	ErrMissingDate        = errors.New("missing date")
	ErrMissingDescription = errors.New("missing description")
)

// Row is the outcome of one candidate data line: a record, or the reason
// it was skipped.
type Row struct {
	Line   int // 1-based line number in the export
	Record model.Transaction
	Err    error
}

// OK reports whether the row produced a record.
func (r Row) OK() bool { return r.Err == nil }

// Records keeps the successful rows, in order.
func Records(rows []Row) []model.Transaction {
	var txns []model.Transaction
	for _, r := range rows {
		if r.OK() {
			txns = append(txns, r.Record)
		}
	}
	return txns
}

// Skipped counts the rows that did not produce a record.
func Skipped(rows []Row) int {
	n := 0
	for _, r := range rows {
		if !r.OK() {
			n++
		}
	}
	return n
}

// StatementParser extracts movements from one delimited export layout.
type StatementParser struct {
	layout  Layout
	amounts *amount.Normalizer
}

// NewStatementParser creates a parser for layout. A nil normalizer means amount.Default().
func NewStatementParser(layout Layout, n *amount.Normalizer) *StatementParser {
	if n == nil {
		n = amount.Default()
	}
	return &StatementParser{layout: layout, amounts: n}
}

// Format returns the layout name.
func (p *StatementParser) Format() string { return p.layout.Name }

// Rows scans text line by line. Nothing before the header is considered;
// after it, every non-blank line holding a separator is a candidate row.
func (p *StatementParser) Rows(text string) []Row {
	var rows []Row
	headerFound := false
	for i, line := range splitLines(text) {
		if p.layout.IsHeader(line) {
			headerFound = true
			continue
		}
		if !headerFound || strings.TrimSpace(line) == "" || !strings.Contains(line, p.layout.Separator) {
			continue
		}
		rows = append(rows, p.parseRow(i+1, line))
	}
	return rows
}

func (p *StatementParser) parseRow(lineNo int, line string) Row {
	fields := strings.Split(line, p.layout.Separator)
	if len(fields) < p.layout.MinFields {
		return Row{Line: lineNo, Err: fmt.Errorf("%w: got %d, need %d", ErrTooFewFields, len(fields), p.layout.MinFields)}
	}

	date := strings.TrimSpace(fields[p.layout.DateCol])
	desc := strings.TrimSpace(fields[p.layout.DescriptionCol])
	raw := strings.TrimSpace(fields[p.layout.AmountCol])

	amt, err := p.amounts.Normalize(raw)
	if err != nil {
		return Row{Line: lineNo, Err: fmt.Errorf("parsing amount: %w", err)}
	}
	if date == "" {
		return Row{Line: lineNo, Err: ErrMissingDate}
	}
	if desc == "" {
		return Row{Line: lineNo, Err: ErrMissingDescription}
	}

	return Row{
		Line: lineNo,
		Record: model.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amt,
			RawAmount:   raw,
		},
	}
}
