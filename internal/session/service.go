package session

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/extratos/verifier/internal/amount"
	"github.com/extratos/verifier/internal/config"
	"github.com/extratos/verifier/internal/importer"
	"github.com/extratos/verifier/internal/logging"
	"github.com/extratos/verifier/internal/reconcile"
	"github.com/extratos/verifier/internal/report"
)

// CustomLayout names the layout built from configured header labels.
const CustomLayout = "custom"

// Service applies session operations with collaborators built once from config.
type Service struct {
	parser  importer.Parser
	amounts *amount.Normalizer
	matcher *reconcile.Matcher
	report  report.Options
	logger  *log.Logger
}

// NewService builds the parser, normalizer, matcher and report options
// described by cfg. A nil logger discards output.
func NewService(cfg *config.Config, logger *log.Logger) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	conv, err := amount.ParseConvention(cfg.Amounts.Convention)
	if err != nil {
		return nil, err
	}
	amounts := amount.NewNormalizer(conv, cfg.Amounts.CurrencyMarkers...)

	registry := importer.DefaultRegistry()
	format := cfg.Statements.Layout
	if len(cfg.Statements.HeaderLabels) > 0 {
		custom := importer.Portuguese
		custom.Name = CustomLayout
		custom.HeaderLabels = cfg.Statements.HeaderLabels
		if err := custom.Validate(); err != nil {
			return nil, err
		}
		registry.Register(custom)
		if format == "" || strings.EqualFold(format, importer.AutoFormat) {
			format = CustomLayout
		}
	}
	parser, err := importer.NewParser(registry, format, amounts)
	if err != nil {
		return nil, err
	}

	tol, err := cfg.Matching.ToleranceDecimal()
	if err != nil {
		return nil, err
	}
	matcher := reconcile.NewMatcher(reconcile.Config{Tolerance: tol, OneToOne: cfg.Matching.OneToOne})

	labels, err := report.LabelsFor(cfg.Report.Language)
	if err != nil {
		return nil, err
	}

	return &Service{
		parser:  parser,
		amounts: amounts,
		matcher: matcher,
		report:  report.Options{Currency: cfg.Report.Currency, Labels: labels},
		logger:  logging.WithSystem(logger, "session"),
	}, nil
}

// Parser returns the statement parser in use.
func (svc *Service) Parser() importer.Parser { return svc.parser }

// Normalizer returns the amount normalizer in use.
func (svc *Service) Normalizer() *amount.Normalizer { return svc.amounts }

// AddStatement parses the decoded text of one export and appends its
// movements to s. Rows that cannot be read are counted, not fatal.
func (svc *Service) AddStatement(s Session, name, text string) (Session, StatementInfo) {
	rows := svc.parser.Rows(text)
	records := importer.Records(rows)
	for _, row := range rows {
		if !row.OK() {
			svc.logger.Debug("skipped row", "statement", name, "line", row.Line, "err", row.Err)
		}
	}

	info := StatementInfo{Name: name, Records: len(records), Skipped: importer.Skipped(rows)}
	svc.logger.Info("statement processed", "statement", name, "records", info.Records, "skipped", info.Skipped)
	return s.withStatement(info, records), info
}

// Reconcile reads the expected amounts from text and matches them against
// the session's movements. On error s is returned unchanged.
func (svc *Service) Reconcile(s Session, expectedText string) (Session, error) {
	expected := importer.ExpectedFromText(expectedText, svc.amounts)
	res, err := svc.matcher.Reconcile(expected, s.Records)
	if err != nil {
		return s, err
	}

	next := s
	next.ExpectedText = expectedText
	next.Expected = expected
	next.Result = &res

	svc.logger.Info("reconciled",
		"expected", res.Summary.Expected,
		"matched", res.Summary.Matched,
		"unmatched", res.Summary.Unmatched,
		"rate", res.Summary.RateString())
	return next, nil
}

// ReportOptions returns the configured report options stamped with at.
func (svc *Service) ReportOptions(at time.Time) report.Options {
	opts := svc.report
	opts.GeneratedAt = at
	return opts
}

// Report renders the text report of the last reconciliation.
func (svc *Service) Report(s Session, at time.Time) (string, error) {
	if s.Result == nil {
		return "", fmt.Errorf("%w: nothing has been reconciled", reconcile.ErrMissingData)
	}
	return report.Format(*s.Result, s.Records, svc.ReportOptions(at)), nil
}

// WriteCSV writes the per-expected-amount CSV export of the last reconciliation.
func (svc *Service) WriteCSV(w io.Writer, s Session) error {
	if s.Result == nil {
		return fmt.Errorf("%w: nothing has been reconciled", reconcile.ErrMissingData)
	}
	return report.WriteCSV(w, *s.Result)
}

// PrefillExpected turns a decoded spreadsheet into editable expected-amount text.
func (svc *Service) PrefillExpected(grid [][]string) string {
	values := importer.ExpectedFromGrid(grid, svc.amounts)
	svc.logger.Debug("prefilled expected amounts", "count", len(values))
	return importer.FormatExpectedText(values)
}
