// Package runlog keeps an append-only CSV history of reconcile runs next
// to the reports they produced.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FileName is the run log written into the report directory.
const FileName = "extratos-runs.csv"

// Header is the CSV header for the run log.
const Header = "id,timestamp,statements,movements,expected,matched,unmatched,rate,report"

const (
	numFields     = 9
	colID         = 0
	colTimestamp  = 1
	colStatements = 2
	colMovements  = 3
	colExpected   = 4
	colMatched    = 5
	colUnmatched  = 6
	colRate       = 7
	colReport     = 8

	statementSep = "|"
)

// Entry is one reconcile run.
type Entry struct {
	ID         string // "2025-01-15-001"
	Timestamp  time.Time
	Statements []string
	Movements  int
	Expected   int
	Matched    int
	Unmatched  int
	Rate       decimal.Decimal
	Report     string // report file name
}

// FormatID returns a run ID like "2025-01-15-001".
func FormatID(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%03d", day.Format(time.DateOnly), seq)
}

// ParseID splits a run ID into its day and sequence number.
func ParseID(id string) (time.Time, int, error) {
	if len(id) < len(time.DateOnly)+2 || id[len(time.DateOnly)] != '-' {
		return time.Time{}, 0, fmt.Errorf("invalid run ID format: %q", id)
	}
	day, err := time.Parse(time.DateOnly, id[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid day in run ID %q: %w", id, err)
	}
	seq, err := strconv.Atoi(id[len(time.DateOnly)+1:])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid sequence in run ID %q: %w", id, err)
	}
	return day, seq, nil
}

// NextID returns the ID following the last run of the same day in entries.
func NextID(entries []Entry, at time.Time) string {
	day := at.Format(time.DateOnly)
	maxSeq := 0
	for _, e := range entries {
		d, seq, err := ParseID(e.ID)
		if err != nil || d.Format(time.DateOnly) != day {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return FormatID(at, maxSeq+1)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colStatements] = strings.Join(e.Statements, statementSep)
	row[colMovements] = strconv.Itoa(e.Movements)
	row[colExpected] = strconv.Itoa(e.Expected)
	row[colMatched] = strconv.Itoa(e.Matched)
	row[colUnmatched] = strconv.Itoa(e.Unmatched)
	row[colRate] = e.Rate.StringFixed(1)
	row[colReport] = e.Report
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 0, 4)
	for _, col := range []int{colMovements, colExpected, colMatched, colUnmatched} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts = append(counts, n)
	}

	rate, err := decimal.NewFromString(record[colRate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rate %q: %w", record[colRate], err)
	}

	var statements []string
	if record[colStatements] != "" {
		statements = strings.Split(record[colStatements], statementSep)
	}

	return Entry{
		ID:         record[colID],
		Timestamp:  ts,
		Statements: statements,
		Movements:  counts[0],
		Expected:   counts[1],
		Matched:    counts[2],
		Unmatched:  counts[3],
		Rate:       rate,
		Report:     record[colReport],
	}, nil
}

// Append writes entries to <dir>/extratos-runs.csv, creating the file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/extratos-runs.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
