// Package pricing computes order totals. It performs no I/O and keeps no state, so every
// function is safe for concurrent use.
package pricing

import (
	"fmt"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/money"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

type Totals struct {
	Subtotal decimal.Decimal
	// Discount is kept at full precision; only Subtotal and Total are truncated.
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Compute sums price × quantity over items in order, truncates the subtotal to two digits,
// applies discountPct and truncates the total.
// A nil items slice is reported as ErrMissingItems; an empty one prices to zero.
func Compute(items []domain.LineItem, discountPct decimal.Decimal) (Totals, error) {
	if items == nil {
		return Totals{}, domain.ErrMissingItems
	}
	if err := ValidateDiscount(discountPct); err != nil {
		return Totals{}, err
	}

	sum := decimal.Zero
	for i, line := range items {
		if line.Item.Price.IsNegative() {
			return Totals{}, fmt.Errorf("%w: items[%d].price is negative", domain.ErrValidation, i)
		}
		sum = sum.Add(line.Item.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}

	subtotal := money.Floor2(sum)
	if !money.FitsDigits(subtotal, money.AmountDigits) {
		return Totals{}, fmt.Errorf("%w: subtotal %s exceeds %d digits", domain.ErrValidation, subtotal, money.AmountDigits)
	}
	discount := subtotal.Mul(discountPct)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    money.Floor2(subtotal.Sub(discount)),
	}, nil
}

// Apply overwrites o.Subtotal and o.Total with server-computed values. Whatever the caller
// put in those fields is discarded.
func Apply(o *domain.Order) error {
	totals, err := Compute(o.Items, o.DiscountPct)
	if err != nil {
		return err
	}
	o.Subtotal = totals.Subtotal
	o.Total = totals.Total
	return nil
}

func ValidateDiscount(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(one) {
		return fmt.Errorf("%w: got %s", domain.ErrInvalidDiscount, pct)
	}
	return nil
}
