// Package money holds the decimal coercion helpers shared by pricing, storage codecs and the
// HTTP layer. Amounts are decimal.Decimal end to end; Float is the only conversion to a binary
// floating-point value and is meant for response serialization.
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for monetary amounts.
const Scale = 2

const (
	// PriceDigits is the total digit budget of a menu price.
	PriceDigits = 10
	// AmountDigits is the total digit budget of an order subtotal or total.
	AmountDigits = 15

	maxExponent  = 32
	maxInputSize = 64
)

var magnitudeLimit = decimal.New(1, maxExponent)

// Parse converts numeric and numeric-string representations into an exact decimal.
// Values whose exponent or magnitude falls outside ±10^32 are rejected before any arithmetic
// touches them.
func Parse(v any) (decimal.Decimal, error) {
	d, err := parse(v)
	if err != nil {
		return decimal.Zero, err
	}
	if err := inRange(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func parse(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, fmt.Errorf("%w: <nil>", domain.ErrInvalidNumeric)
		}
		return *n, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case float32:
		return parseFloat(float64(n))
	case float64:
		return parseFloat(n)
	case json.Number:
		return parseString(n.String())
	case string:
		return parseString(n)
	default:
		return decimal.Zero, fmt.Errorf("%w: %v (%T)", domain.ErrInvalidNumeric, v, v)
	}
}

// ParseQuantity is Parse restricted to integral values.
func ParseQuantity(v any) (int64, error) {
	d, err := Parse(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: quantity %s is not an integer", domain.ErrInvalidNumeric, d)
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("%w: quantity %s out of range", domain.ErrInvalidNumeric, d)
	}
	return d.IntPart(), nil
}

// Floor2 truncates d toward zero at two fractional digits. Amounts are never rounded up.
func Floor2(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(Scale)
}

// HasScale reports whether d carries no significant digits beyond two fractional places.
func HasScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// FitsDigits reports whether d fits a decimal with maxDigits digits in total, Scale of them
// fractional. d must already carry no more than Scale significant fractional digits.
func FitsDigits(d decimal.Decimal, maxDigits int) bool {
	return d.Abs().LessThan(decimal.New(1, int32(maxDigits-Scale)))
}

// Float converts d for the wire. Callers must not feed the result back into arithmetic.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func parseFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrInvalidNumeric, f)
	}
	return decimal.NewFromFloat(f), nil
}

func inRange(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < -maxExponent || exp > maxExponent {
		return fmt.Errorf("%w: exponent %d out of range", domain.ErrInvalidNumeric, exp)
	}
	if d.Abs().GreaterThanOrEqual(magnitudeLimit) {
		return fmt.Errorf("%w: magnitude out of range", domain.ErrInvalidNumeric)
	}
	return nil
}

func parseString(s string) (decimal.Decimal, error) {
	if len(s) > maxInputSize {
		return decimal.Zero, fmt.Errorf("%w: %d characters is too long", domain.ErrInvalidNumeric, len(s))
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidNumeric, s)
	}
	return d, nil
}
