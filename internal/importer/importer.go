package importer

import (
	"fmt"
	"strings"

	"github.com/extratos/verifier/internal/amount"
	"github.com/extratos/verifier/internal/model"
)

// Parser turns the decoded text of one statement export into rows.
type Parser interface {
	Rows(text string) []Row
	Format() string
}

// Layout describes where a statement export keeps its columns.
type Layout struct {
	Name           string
	HeaderLabels   []string // a line containing all of these is the header
	Separator      string
	DateCol        int
	DescriptionCol int
	AmountCol      int
	MinFields      int
}

// IsHeader reports whether line is this layout's header row.
func (l Layout) IsHeader(line string) bool {
	if len(l.HeaderLabels) == 0 {
		return false
	}
	for _, label := range l.HeaderLabels {
		if !strings.Contains(line, label) {
			return false
		}
	}
	return true
}

// Validate checks that every referenced column fits within MinFields.
func (l Layout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("layout has no name")
	}
	if len(l.HeaderLabels) == 0 {
		return fmt.Errorf("layout %s: no header labels", l.Name)
	}
	if l.Separator == "" {
		return fmt.Errorf("layout %s: empty separator", l.Name)
	}
	for _, col := range []int{l.DateCol, l.DescriptionCol, l.AmountCol} {
		if col < 0 || col >= l.MinFields {
			return fmt.Errorf("layout %s: column %d outside %d required fields", l.Name, col, l.MinFields)
		}
	}
	return nil
}

// Portuguese is the export layout of Portuguese retail banks.
var Portuguese = Layout{
	Name:           "pt",
	HeaderLabels:   []string{"Data mov.", "Descrição", "Montante"},
	Separator:      ";",
	DateCol:        0,
	DescriptionCol: 2,
	AmountCol:      3,
	MinFields:      4,
}

// English is the same export with English column labels.
var English = Layout{
	Name:           "en",
	HeaderLabels:   []string{"Date of movement", "Description", "Amount"},
	Separator:      ";",
	DateCol:        0,
	DescriptionCol: 2,
	AmountCol:      3,
	MinFields:      4,
}

// AutoFormat selects the layout from the header found in each export.
const AutoFormat = "auto"

// Registry holds named statement layouts.
type Registry struct {
	layouts map[string]Layout
	order   []string
}

// NewRegistry creates an empty layout registry.
func NewRegistry() *Registry {
	return &Registry{layouts: make(map[string]Layout)}
}

// Register adds a layout. Panics on duplicate names or invalid layouts.
func (r *Registry) Register(l Layout) {
	if err := l.Validate(); err != nil {
		panic(err.Error())
	}
	key := strings.ToLower(l.Name)
	if _, ok := r.layouts[key]; ok {
		panic("duplicate statement layout: " + key)
	}
	r.layouts[key] = l
	r.order = append(r.order, key)
}

// Get returns the layout registered under name.
func (r *Registry) Get(name string) (Layout, bool) {
	l, ok := r.layouts[strings.ToLower(name)]
	return l, ok
}

// Formats lists layout names in registration order.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.order...)
}

// Detect returns the layout whose header appears first in text.
func (r *Registry) Detect(text string) (Layout, bool) {
	for _, line := range splitLines(text) {
		for _, key := range r.order {
			if l := r.layouts[key]; l.IsHeader(line) {
				return l, true
			}
		}
	}
	return Layout{}, false
}

// DefaultRegistry returns a registry with the built-in layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Portuguese)
	r.Register(English)
	return r
}

// NewParser returns the parser for format, or an auto-detecting parser
// when format is AutoFormat.
func NewParser(r *Registry, format string, n *amount.Normalizer) (Parser, error) {
	if strings.EqualFold(format, AutoFormat) || format == "" {
		return &AutoParser{registry: r, amounts: n}, nil
	}
	l, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("unknown statement layout %q (known: %s, %s)", format, strings.Join(r.Formats(), ", "), AutoFormat)
	}
	return NewStatementParser(l, n), nil
}

// AutoParser picks a registered layout per export.
type AutoParser struct {
	registry *Registry
	amounts  *amount.Normalizer
}

// Format returns the parser name.
func (p *AutoParser) Format() string { return AutoFormat }

// Rows parses text with the first layout whose header it contains. Text
// without any known header yields no rows.
func (p *AutoParser) Rows(text string) []Row {
	l, ok := p.registry.Detect(text)
	if !ok {
		return nil
	}
	return NewStatementParser(l, p.amounts).Rows(text)
}

// Parse returns the movements p extracts from text.
func Parse(p Parser, text string) []model.Transaction {
	return Records(p.Rows(text))
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
