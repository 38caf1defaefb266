package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extratos/verifier/internal/config"
	"github.com/extratos/verifier/internal/logging"
	"github.com/extratos/verifier/internal/reconcile"
	"github.com/extratos/verifier/internal/runlog"
	"github.com/extratos/verifier/internal/source"
)

var fixedNow = time.Date(2025, 1, 15, 18, 45, 0, 0, time.UTC)

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

func TestRunReconcile(t *testing.T) {
	out := t.TempDir()
	var buf bytes.Buffer

	err := runReconcile(&buf, config.Default(), logging.Discard(),
		[]string{fixturePath("extrato_1.csv"), fixturePath("extrato_2.csv")},
		reconcileOptions{expected: "50, 120.00, 30", outDir: out, csv: true}, fixedNow)
	require.NoError(t, err)

	console := buf.String()
	assert.Contains(t, console, "✓ extrato_2.csv: 1 movements")
	assert.Contains(t, console, "Total movements: 3")
	assert.Contains(t, console, "1. 02-01-2025 | COMPRA 1234 SUPERMERCADO | -50.00€")
	assert.Contains(t, console, "Expected amounts: 3")
	assert.Contains(t, console, "Unmatched (1):")
	assert.Contains(t, console, "1. 30.00€ ('30')")

	data, err := os.ReadFile(filepath.Join(out, "report_extratos_2025-01-15.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Generated: 2025-01-15 18:45:00")
	assert.Contains(t, string(data), "Match rate: 66.7%")

	csvData, err := os.ReadFile(filepath.Join(out, "report_extratos_2025-01-15.csv"))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(csvData), "\n"))

	runs, err := runlog.Read(out)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2025-01-15-001", runs[0].ID)
	assert.Equal(t, []string{"extrato_1.csv", "extrato_2.csv"}, runs[0].Statements)
	assert.Equal(t, "66.7", runs[0].Rate.StringFixed(1))
}

func TestHistoryCommand(t *testing.T) {
	out := t.TempDir()
	for i := 0; i < 2; i++ {
		err := runReconcile(&bytes.Buffer{}, config.Default(), logging.Discard(),
			[]string{fixturePath("extrato_2.csv")},
			reconcileOptions{expected: "75.50", outDir: out}, fixedNow)
		require.NoError(t, err)
	}

	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"history", "--out", out})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "2025-01-15-001")
	assert.Contains(t, buf.String(), "2025-01-15-002")
	assert.Contains(t, buf.String(), "1/1 matched (100.0%)")
}

func TestRunReconcile_ExpectedFromSpreadsheet(t *testing.T) {
	out := t.TempDir()
	var buf bytes.Buffer

	err := runReconcile(&buf, config.Default(), logging.Discard(),
		[]string{fixturePath("extrato_1.csv")},
		reconcileOptions{expectedFile: fixturePath("cofre.csv"), outDir: out}, fixedNow)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Matched 2 of 4 expected amounts (50.0%)")
}

func TestRunReconcile_Directory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"extrato_1.csv", "extrato_2.csv"} {
		data, err := os.ReadFile(fixturePath(name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	var buf bytes.Buffer
	err := runReconcile(&buf, config.Default(), logging.Discard(), nil,
		reconcileOptions{dir: dir, expected: "75.50", outDir: filepath.Join(dir, "out")}, fixedNow)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Matched 1 of 1 expected amounts (100.0%)")
	assert.FileExists(t, filepath.Join(dir, "out", "report_extratos_2025-01-15.txt"))
}

func TestRunReconcile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		opts   reconcileOptions
		target error
	}{
		{"no statements", nil, reconcileOptions{expected: "50"}, reconcile.ErrMissingData},
		{"no expected", []string{fixturePath("extrato_1.csv")}, reconcileOptions{}, reconcile.ErrMissingData},
		{"nothing parses", []string{fixturePath("extrato_1.csv")}, reconcileOptions{expected: "abc"}, reconcile.ErrMissingData},
		{"missing file", []string{fixturePath("nope.csv")}, reconcileOptions{expected: "50"}, source.ErrSourceRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.outDir = t.TempDir()
			err := runReconcile(&bytes.Buffer{}, config.Default(), logging.Discard(), tt.args, tt.opts, fixedNow)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestExtractCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extract", "--all", fixturePath("extrato_1.csv"), fixturePath("statement_en.csv")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ statement_en.csv: 1 movements")
	assert.Contains(t, out.String(), "3. 03-02-2025 | CARD PAYMENT | -12.34€")
}

func TestReadExpected_CombinesFileAndFlag(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "valores.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("10,00\n20,00\n"), 0o644))

	text, err := readExpected(nil, reconcileOptions{expectedFile: listPath, expected: "30"}, "auto")
	require.NoError(t, err)
	assert.Equal(t, "10,00\n20,00\n\n30", text)
}
