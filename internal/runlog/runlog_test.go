package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		ID:         "2025-01-15-001",
		Timestamp:  testTime,
		Statements: []string{"extrato_1.csv", "extrato_2.csv"},
		Movements:  3,
		Expected:   3,
		Matched:    2,
		Unmatched:  1,
		Rate:       decimal.RequireFromString("66.7"),
		Report:     "report_extratos_2025-01-15.txt",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, Header+"\n"+
		"2025-01-15-001,2025-01-15T10:30:00Z,extrato_1.csv|extrato_2.csv,3,3,2,1,66.7,report_extratos_2025-01-15.txt\n",
		string(data))
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.ID = "2025-01-15-002"
	e2.Statements = []string{"extrato_3.csv"}
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-01-15-001", entries[0].ID)
	assert.Equal(t, []string{"extrato_3.csv"}, entries[1].Statements)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.True(t, original.Rate.Equal(got.Rate))
	got.Timestamp, got.Rate = original.Timestamp, original.Rate
	assert.Equal(t, original, got)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 9 fields")
}

func TestUnmarshalEntry_BadCount(t *testing.T) {
	row := MarshalEntry(testEntry())
	row[colMatched] = "two"
	_, err := UnmarshalEntry(row)
	assert.ErrorContains(t, err, `parsing count "two"`)
}

func TestAppend_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestIDs(t *testing.T) {
	assert.Equal(t, "2025-01-15-007", FormatID(testTime, 7))

	day, seq, err := ParseID("2025-01-15-012")
	require.NoError(t, err)
	assert.Equal(t, 12, seq)
	assert.Equal(t, "2025-01-15", day.Format(time.DateOnly))

	for _, bad := range []string{"", "2025-01-15", "2025-13-01-001", "2025-01-15-x"} {
		_, _, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestNextID(t *testing.T) {
	assert.Equal(t, "2025-01-15-001", NextID(nil, testTime))

	e1 := testEntry()
	e2 := testEntry()
	e2.ID = "2025-01-15-004"
	other := testEntry()
	other.ID = "2025-01-14-009"
	assert.Equal(t, "2025-01-15-005", NextID([]Entry{e1, e2, other}, testTime))
}
