package importer

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/extratos/verifier/internal/amount"
	"github.com/extratos/verifier/internal/model"
)

// ExpectedFromText reads a comma/newline separated list of amounts.
// Every token that normalizes becomes one ExpectedAmount holding its
// absolute value; order and duplicates are kept.
func ExpectedFromText(text string, n *amount.Normalizer) []model.ExpectedAmount {
	if n == nil {
		n = amount.Default()
	}

	var values []model.ExpectedAmount
	for _, line := range splitLines(text) {
		for _, part := range strings.Split(line, ",") {
			token := strings.TrimSpace(part)
			if token == "" {
				continue
			}
			v, err := n.Normalize(token)
			if err != nil {
				continue
			}
			values = append(values, model.ExpectedAmount{Amount: v.Abs(), Raw: token})
		}
	}
	return values
}

// ExpectedFromGrid collects the strictly positive amounts found in any
// cell of a decoded spreadsheet, deduplicated and sorted descending.
func ExpectedFromGrid(grid [][]string, n *amount.Normalizer) []decimal.Decimal {
	if n == nil {
		n = amount.Default()
	}

	var values []decimal.Decimal
	for _, row := range grid {
		for _, cell := range row {
			v, err := n.Normalize(cell)
			if err != nil || !v.IsPositive() {
				continue
			}
			values = append(values, v.Abs())
		}
	}

	sort.SliceStable(values, func(i, j int) bool {
		return values[i].GreaterThan(values[j])
	})

	unique := values[:0]
	for i, v := range values {
		if i > 0 && v.Equal(unique[len(unique)-1]) {
			continue
		}
		unique = append(unique, v)
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}

// FormatExpectedText renders values as the editable list ExpectedFromText reads.
func FormatExpectedText(values []decimal.Decimal) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.StringFixed(2)
	}
	return strings.Join(parts, ", ")
}
