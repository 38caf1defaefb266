package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extratos/verifier/internal/model"
	"github.com/extratos/verifier/internal/reconcile"
)

// CSVHeader is the header row of the CSV export.
const CSVHeader = "status,expected,raw,date,description,amount"

const (
	numFields = 6
	colStatus = 0
	colExpect = 1
	colRaw    = 2
	colDate   = 3
	colDesc   = 4
	colAmount = 5
)

// Match statuses written to the CSV export.
const (
	StatusMatched   = "matched"
	StatusUnmatched = "unmatched"
)

// WriteCSV writes one row per expected amount, in input order.
func WriteCSV(w io.Writer, res reconcile.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range res.All {
		if err := cw.Write(MarshalMatch(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalMatch converts a Match to a CSV row.
func MarshalMatch(m model.Match) []string {
	row := make([]string, numFields)
	row[colExpect] = m.Expected.Amount.StringFixed(2)
	row[colRaw] = m.Expected.Raw

	if !m.Found() {
		row[colStatus] = StatusUnmatched
		return row
	}

	row[colStatus] = StatusMatched
	row[colDate] = m.Transaction.Date
	row[colDesc] = m.Transaction.Description
	row[colAmount] = m.Transaction.Amount.StringFixed(2)
	return row
}
