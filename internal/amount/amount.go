// Package amount turns the currency strings found in bank exports and
// spreadsheets into decimal amounts.
//
// A token goes through three steps: currency markers and whitespace are
// removed, the decimal mark is disambiguated according to a Convention,
// and the remainder is parsed as a decimal literal. Tokens that do not
// survive the last step yield ErrNotANumber, as do values outside the
// finite float64 range or with exponents beyond maxExponent.
//
// The whole token must be a literal: trailing debit markers such as
// "50,00-" or "12,50 D" are not read, and statement rows carrying them
// are counted as skipped.
package amount

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotANumber is returned when no amount can be read from a token.
var ErrNotANumber = errors.New("not a number")

// Convention decides which of '.' and ',' is the decimal mark.
type Convention int

const (
	// CommaDecimal reads "1.234,56" as 1234.56 and "1234,56" as 1234.56.
	CommaDecimal Convention = iota
	// PointDecimal reads "1,234.56" as 1234.56 and treats a lone ',' as grouping.
	PointDecimal
)

func (c Convention) String() string {
	switch c {
	case CommaDecimal:
		return "comma"
	case PointDecimal:
		return "point"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// ParseConvention maps a configuration value to a Convention.
func ParseConvention(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "comma", "eu", "pt":
		return CommaDecimal, nil
	case "point", "us", "en":
		return PointDecimal, nil
	default:
		return 0, fmt.Errorf("unknown amount convention %q", name)
	}
}

// DefaultCurrencyMarkers are stripped from every token before parsing.
var DefaultCurrencyMarkers = []string{"EUR", "€"}

// maxExponent bounds the decimal exponent of an accepted amount.
const maxExponent = 30

// literal is the only shape accepted after cleanup.
var literal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Normalizer parses currency strings under a fixed convention.
type Normalizer struct {
	convention Convention
	markers    []string
}

// NewNormalizer creates a Normalizer. With no markers, DefaultCurrencyMarkers are used.
func NewNormalizer(c Convention, markers ...string) *Normalizer {
	if len(markers) == 0 {
		markers = DefaultCurrencyMarkers
	}
	return &Normalizer{convention: c, markers: markers}
}

var defaultNormalizer = NewNormalizer(CommaDecimal)

// Default returns the comma-decimal Normalizer with the default markers.
func Default() *Normalizer { return defaultNormalizer }

// Normalize parses raw with the default Normalizer.
func Normalize(raw string) (decimal.Decimal, error) {
	return defaultNormalizer.Normalize(raw)
}

// Convention returns the decimal-mark convention in use.
func (n *Normalizer) Convention() Convention { return n.convention }

// Normalize converts raw into a signed amount. The sign is preserved;
// callers that compare magnitudes take the absolute value themselves.
func (n *Normalizer) Normalize(raw string) (decimal.Decimal, error) {
	clean := n.clean(raw)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}

	clean = n.canonical(clean)
	if !literal.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrNotANumber, raw, err)
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, fmt.Errorf("%w: %q: exponent out of range", ErrNotANumber, raw)
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("%w: %q: not a finite number", ErrNotANumber, raw)
	}
	return d, nil
}

func (n *Normalizer) clean(raw string) string {
	s := strings.TrimSpace(raw)
	for _, m := range n.markers {
		if m != "" {
			s = strings.ReplaceAll(s, m, "")
		}
	}
	// strings.Fields also splits on NBSP, which some exports use for grouping.
	return strings.Join(strings.Fields(s), "")
}

func (n *Normalizer) canonical(s string) string {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch n.convention {
	case PointDecimal:
		if hasComma {
			s = strings.ReplaceAll(s, ",", "")
		}
	default:
		switch {
		case hasDot && hasComma:
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		case hasComma:
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	return s
}
