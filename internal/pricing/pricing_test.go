package pricing

import (
	"sync"
	"testing"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(price string, qty int64) domain.LineItem {
	return domain.LineItem{Item: domain.MenuItem{Name: "item", Price: d(price)}, Quantity: qty}
}

func TestCompute_TwoItemsNoDiscount(t *testing.T) {
	totals, err := Compute([]domain.LineItem{line("14.99", 1), line("8.99", 1)}, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "23.98", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "23.98", totals.Total.StringFixed(2))
}

func TestCompute_QuarterDiscountTruncates(t *testing.T) {
	totals, err := Compute([]domain.LineItem{line("12.99", 1)}, d("0.25"))
	require.NoError(t, err)

	assert.Equal(t, "12.99", totals.Subtotal.StringFixed(2))
	assert.True(t, totals.Discount.Equal(d("3.2475")), "discount %s", totals.Discount)
	assert.Equal(t, "9.74", totals.Total.StringFixed(2))
}

func TestCompute_SubtotalIsTruncatedNotRounded(t *testing.T) {
	// 7.995 * 3 = 23.985
	totals, err := Compute([]domain.LineItem{line("7.995", 3)}, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "23.98", totals.Subtotal.StringFixed(2))
}

func TestCompute_DiscountBounds(t *testing.T) {
	items := []domain.LineItem{line("12.99", 2), line("0.01", 7)}

	none, err := Compute(items, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, none.Total.Equal(none.Subtotal))

	full, err := Compute(items, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, "0.00", full.Total.StringFixed(2))
}

func TestCompute_InvalidDiscount(t *testing.T) {
	items := []domain.LineItem{line("1.00", 1)}

	_, err := Compute(items, d("1.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = Compute(items, d("-0.10"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCompute_MissingAndEmptyItems(t *testing.T) {
	_, err := Compute(nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrMissingItems)

	totals, err := Compute([]domain.LineItem{}, d("0.5"))
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestCompute_NegativePriceRejected(t *testing.T) {
	_, err := Compute([]domain.LineItem{line("-1.00", 1)}, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApply_OverwritesCallerTotals(t *testing.T) {
	order := &domain.Order{
		Items:       []domain.LineItem{line("70.00", 1)},
		DiscountPct: d("0.3"),
		Subtotal:    d("1.00"),
		Total:       d("0.01"),
	}

	require.NoError(t, Apply(order))
	assert.Equal(t, "70.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "49.00", order.Total.StringFixed(2))
	assert.True(t, order.DiscountPct.Equal(d("0.3")))
}

func TestApply_Idempotent(t *testing.T) {
	order := &domain.Order{
		Items:       []domain.LineItem{line("12.99", 3), line("4.49", 2)},
		DiscountPct: d("0.15"),
	}

	require.NoError(t, Apply(order))
	subtotal, total := order.Subtotal, order.Total

	require.NoError(t, Apply(order))
	assert.True(t, subtotal.Equal(order.Subtotal))
	assert.True(t, total.Equal(order.Total))
}

func TestCompute_ConcurrentCalls(t *testing.T) {
	items := []domain.LineItem{line("14.99", 1), line("8.99", 1)}

	var wg sync.WaitGroup
	results := make([]Totals, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Compute(items, d("0.10"))
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "21.58", r.Total.StringFixed(2))
	}
}

func TestCompute_SubtotalDigitLimit(t *testing.T) {
	items := make([]domain.LineItem, 100)
	for i := range items {
		items[i] = line("99999999.99", 999)
	}
	totals, err := Compute(items, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "9989999999001.00", totals.Subtotal.StringFixed(2))

	_, err = Compute(append(items, line("99999999.99", 999)), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
