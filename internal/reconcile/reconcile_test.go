package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extratos/verifier/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expected(values ...string) []model.ExpectedAmount {
	out := make([]model.ExpectedAmount, len(values))
	for i, v := range values {
		out[i] = model.ExpectedAmount{Amount: dec(v).Abs(), Raw: v}
	}
	return out
}

func movement(desc, amount string) model.Transaction {
	return model.Transaction{Date: "02-01-2025", Description: desc, Amount: dec(amount), RawAmount: amount}
}

func TestReconcile_Scenario(t *testing.T) {
	observed := []model.Transaction{
		movement("mov1", "50.00"),
		movement("mov2", "120.00"),
		movement("mov3", "75.50"),
	}

	res, err := Reconcile(expected("50", "120.00", "30"), observed)
	require.NoError(t, err)

	require.Len(t, res.Matched, 2)
	assert.Equal(t, "mov1", res.Matched[0].Transaction.Description)
	assert.Equal(t, "mov2", res.Matched[1].Transaction.Description)
	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, "30.00", res.Unmatched[0].Amount.StringFixed(2))

	assert.Equal(t, 3, res.Summary.Expected)
	assert.Equal(t, 2, res.Summary.Matched)
	assert.Equal(t, 1, res.Summary.Unmatched)
	assert.Equal(t, 3, res.Summary.Observed)
	assert.Equal(t, "66.7", res.Summary.RateString())
}

func TestReconcile_Tolerance(t *testing.T) {
	tests := []struct {
		observed string
		match    bool
	}{
		{"100.009", true},
		{"99.991", true},
		{"-100.00", true},
		{"100.01", false},
		{"100.02", false},
		{"99.99", false},
	}
	for _, tt := range tests {
		res, err := Reconcile(expected("100.00"), []model.Transaction{movement("m", tt.observed)})
		require.NoError(t, err)
		assert.Equal(t, tt.match, len(res.Matched) == 1, "100.00 vs %s", tt.observed)
	}
}

func TestReconcile_FirstMatchInOrder(t *testing.T) {
	observed := []model.Transaction{
		movement("other", "10.00"),
		movement("first", "-25.00"),
		movement("second", "25.00"),
	}
	res, err := Reconcile(expected("25"), observed)
	require.NoError(t, err)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "first", res.Matched[0].Transaction.Description)
}

func TestReconcile_ReusesMovementByDefault(t *testing.T) {
	observed := []model.Transaction{movement("only", "40.00")}
	res, err := Reconcile(expected("40", "40"), observed)
	require.NoError(t, err)

	require.Len(t, res.Matched, 2)
	assert.Equal(t, "only", res.Matched[0].Transaction.Description)
	assert.Equal(t, "only", res.Matched[1].Transaction.Description)
	assert.Empty(t, res.Unmatched)
}

func TestReconcile_OneToOne(t *testing.T) {
	m := NewMatcher(Config{Tolerance: DefaultTolerance, OneToOne: true})
	observed := []model.Transaction{movement("a", "40.00"), movement("b", "40.00")}

	res, err := m.Reconcile(expected("40", "40", "40"), observed)
	require.NoError(t, err)
	require.Len(t, res.Matched, 2)
	assert.Equal(t, "a", res.Matched[0].Transaction.Description)
	assert.Equal(t, "b", res.Matched[1].Transaction.Description)
	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, "66.7", res.Summary.RateString())
}

func TestReconcile_OrderPreservedAndComplete(t *testing.T) {
	observed := []model.Transaction{movement("a", "1"), movement("b", "3"), movement("c", "5")}
	in := expected("5", "2", "1", "4", "3", "6")

	res, err := Reconcile(in, observed)
	require.NoError(t, err)
	assert.Equal(t, len(in), len(res.Matched)+len(res.Unmatched))
	require.Len(t, res.All, len(in))

	var matched, unmatched []string
	for _, m := range res.Matched {
		matched = append(matched, m.Expected.Raw)
	}
	for _, u := range res.Unmatched {
		unmatched = append(unmatched, u.Raw)
	}
	assert.Equal(t, []string{"5", "1", "3"}, matched)
	assert.Equal(t, []string{"2", "4", "6"}, unmatched)

	for i, m := range res.All {
		assert.Equal(t, in[i].Raw, m.Expected.Raw)
	}
	assert.False(t, res.All[1].Found())
}

func TestReconcile_MissingData(t *testing.T) {
	_, err := Reconcile(expected("1"), nil)
	require.ErrorIs(t, err, ErrMissingData)
	assert.Contains(t, err.Error(), "movements")

	_, err = Reconcile(nil, []model.Transaction{movement("a", "1")})
	require.ErrorIs(t, err, ErrMissingData)
	assert.Contains(t, err.Error(), "expected amounts")
}

func TestReconcile_MatchedTransactionIsACopy(t *testing.T) {
	observed := []model.Transaction{movement("orig", "9.99")}
	res, err := Reconcile(expected("9.99"), observed)
	require.NoError(t, err)

	res.Matched[0].Transaction.Description = "changed"
	assert.Equal(t, "orig", observed[0].Description)
}

func TestNewMatcher_DefaultsTolerance(t *testing.T) {
	m := NewMatcher(Config{})
	assert.True(t, m.Config().Tolerance.Equal(dec("0.01")))

	m = NewMatcher(Config{Tolerance: dec("0.5")})
	res, err := m.Reconcile(expected("10"), []model.Transaction{movement("a", "10.40")})
	require.NoError(t, err)
	assert.Len(t, res.Matched, 1)
}
