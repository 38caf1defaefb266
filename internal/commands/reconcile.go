package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/extratos/verifier/internal/config"
	"github.com/extratos/verifier/internal/reconcile"
	"github.com/extratos/verifier/internal/report"
	"github.com/extratos/verifier/internal/runlog"
	"github.com/extratos/verifier/internal/session"
	"github.com/extratos/verifier/internal/source"
)

type reconcileOptions struct {
	dir          string
	expected     string
	expectedFile string
	outDir       string
	csv          bool
}

func newReconcileCommand(g *globalFlags) *cobra.Command {
	var opts reconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile [statement...]",
		Short: "Match expected amounts against statement movements and write a report",
		Long: `Reads one or more bank statement exports, matches every expected amount
against the movements by absolute value, prints a summary and writes
report_extratos_YYYY-MM-DD.txt to the output directory.

Expected amounts come from --expected ("50, 120.00, 30") and/or
--expected-file (a spreadsheet, or a text file in the same format).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			return runReconcile(cmd.OutOrStdout(), cfg, logger, args, opts, time.Now())
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "also read every .csv/.txt export in this directory")
	cmd.Flags().StringVarP(&opts.expected, "expected", "e", "", "expected amounts, separated by commas or newlines")
	cmd.Flags().StringVarP(&opts.expectedFile, "expected-file", "f", "", "spreadsheet (.xlsx, .csv) or text file with expected amounts")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "report directory (default from config)")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "also write a CSV export")

	return cmd
}

func runReconcile(w io.Writer, cfg *config.Config, logger *log.Logger, args []string, opts reconcileOptions, now time.Time) error {
	paths, err := statementPaths(args, opts.dir)
	if err != nil {
		return err
	}

	svc, err := session.NewService(cfg, logger)
	if err != nil {
		return err
	}

	sess, err := loadStatements(w, svc, paths, cfg.Statements.Encoding, logger)
	if err != nil {
		return err
	}
	printMovements(w, "Sample of movements:", sess.Sample(sampleSize), cfg.Report.Currency)

	expectedText, err := readExpected(svc, opts, cfg.Statements.Encoding)
	if err != nil {
		return err
	}

	sess, err = svc.Reconcile(sess, expectedText)
	if err != nil {
		return err
	}
	printExpected(w, sess.Expected, cfg.Report.Currency)
	printResult(w, *sess.Result, cfg.Report.Currency)

	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.Report.OutDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	text, err := svc.Report(sess, now)
	if err != nil {
		return err
	}
	reportPath := filepath.Join(outDir, report.Filename(now))
	if err := os.WriteFile(reportPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(w, "\nReport written to %s\n", reportPath)

	if opts.csv || cfg.Report.CSV {
		var buf bytes.Buffer
		if err := svc.WriteCSV(&buf, sess); err != nil {
			return fmt.Errorf("rendering CSV: %w", err)
		}
		csvPath := filepath.Join(outDir, report.CSVFilename(now))
		if err := os.WriteFile(csvPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		fmt.Fprintf(w, "CSV written to %s\n", csvPath)
	}

	entry, err := logRun(outDir, sess, filepath.Base(reportPath), now)
	if err != nil {
		return err
	}
	logger.Info("report written", "path", reportPath, "run", entry.ID)
	return nil
}

// logRun appends this run to the run log kept in the report directory.
func logRun(dir string, sess session.Session, reportName string, now time.Time) (runlog.Entry, error) {
	entries, err := runlog.Read(dir)
	if err != nil {
		return runlog.Entry{}, err
	}

	names := make([]string, 0, len(sess.Statements))
	for _, st := range sess.Statements {
		names = append(names, st.Name)
	}
	s := sess.Result.Summary
	entry := runlog.Entry{
		ID:         runlog.NextID(entries, now),
		Timestamp:  now,
		Statements: names,
		Movements:  s.Observed,
		Expected:   s.Expected,
		Matched:    s.Matched,
		Unmatched:  s.Unmatched,
		Rate:       s.Rate,
		Report:     reportName,
	}
	if err := runlog.Append(dir, []runlog.Entry{entry}); err != nil {
		return runlog.Entry{}, err
	}
	return entry, nil
}

// readExpected combines the expected-amount file (if any) and the inline list.
func readExpected(svc *session.Service, opts reconcileOptions, encoding string) (string, error) {
	var parts []string
	if opts.expectedFile != "" {
		text, err := readExpectedFile(svc, opts.expectedFile, encoding)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	if strings.TrimSpace(opts.expected) != "" {
		parts = append(parts, opts.expected)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: pass --expected or --expected-file", reconcile.ErrMissingData)
	}
	return strings.Join(parts, "\n"), nil
}

func readExpectedFile(svc *session.Service, path, encoding string) (string, error) {
	if source.IsSpreadsheet(path) {
		grid, err := source.ReadGrid(path)
		if err != nil {
			return "", err
		}
		return svc.PrefillExpected(grid), nil
	}
	return source.ReadStatement(path, encoding)
}
