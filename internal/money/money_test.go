package money

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AcceptedRepresentations(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"decimal", decimal.RequireFromString("12.99"), "12.99"},
		{"int", 3, "3"},
		{"int64", int64(7), "7"},
		{"float", 12.99, "12.99"},
		{"json number", json.Number("8.99"), "8.99"},
		{"string", "14.99", "14.99"},
		{"padded string", " 0.25 ", "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestParse_RejectsNonNumeric(t *testing.T) {
	for _, in := range []any{"abc", "", nil, true, math.NaN(), math.Inf(1), []int{1}} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, domain.ErrInvalidNumeric, "input %v", in)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestParse_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"huge exponent string", "1e400"},
		{"huge exponent json number", json.Number("1e400")},
		{"tiny exponent string", "1e-999999999"},
		{"tiny exponent zero", "0e-999999999"},
		{"huge float", 1e300},
		{"magnitude at limit", "100000000000000000000000000000000"},
		{"too many characters", "0." + strings.Repeat("1", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			_, err := Parse(tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidNumeric)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), q)

	q, err = ParseQuantity(2.0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), q)

	_, err = ParseQuantity("1.5")
	assert.ErrorIs(t, err, domain.ErrInvalidNumeric)

	_, err = ParseQuantity("1e400")
	assert.ErrorIs(t, err, domain.ErrInvalidNumeric)
}

func TestFloor2_Truncates(t *testing.T) {
	assert.Equal(t, "23.98", Floor2(decimal.RequireFromString("23.985")).StringFixed(2))
	assert.Equal(t, "9.74", Floor2(decimal.RequireFromString("9.7425")).StringFixed(2))
	assert.Equal(t, "0.99", Floor2(decimal.RequireFromString("0.999999")).StringFixed(2))
	assert.Equal(t, "5.00", Floor2(decimal.NewFromInt(5)).StringFixed(2))
}

func TestHasScale(t *testing.T) {
	assert.True(t, HasScale(decimal.RequireFromString("12.99")))
	assert.True(t, HasScale(decimal.RequireFromString("12.990")))
	assert.False(t, HasScale(decimal.RequireFromString("12.999")))
}

func TestFitsDigits(t *testing.T) {
	assert.True(t, FitsDigits(decimal.RequireFromString("99999999.99"), PriceDigits))
	assert.True(t, FitsDigits(decimal.RequireFromString("-99999999.99"), PriceDigits))
	assert.False(t, FitsDigits(decimal.RequireFromString("100000000"), PriceDigits))
	assert.False(t, FitsDigits(decimal.RequireFromString("12345678901"), PriceDigits))
	assert.True(t, FitsDigits(decimal.RequireFromString("9999999999999.99"), AmountDigits))
	assert.False(t, FitsDigits(decimal.RequireFromString("10000000000000"), AmountDigits))
}

func TestFloat(t *testing.T) {
	assert.Equal(t, 12.99, Float(decimal.RequireFromString("12.99")))
}
