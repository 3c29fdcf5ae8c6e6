package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
)

// Amount is a fixed-point monetary value stored in integer minor units.
type Amount struct {
	cents int64
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

func FromCents(cents int64) Amount {
	return Amount{cents: cents}
}

// Parse converts decimal user input (e.g. "12.345") into an Amount, rounding
// half away from zero to 2 places before storage.
func Parse(value string) (Amount, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	return fromDecimal(dec), nil
}

// FromFloat converts a float input to an Amount with the same rounding rule
// as Parse.
func FromFloat(value float64) Amount {
	return fromDecimal(decimal.NewFromFloat(value))
}

func fromDecimal(dec decimal.Decimal) Amount {
	return Amount{cents: dec.Round(2).Shift(2).IntPart()}
}

func (a Amount) Cents() int64 {
	return a.cents
}

func (a Amount) IsNegative() bool {
	return a.cents < 0
}

func (a Amount) Add(other Amount) Amount {
	return Amount{cents: a.cents + other.cents}
}

// Sub subtracts other from a and rejects negative results; monetary fields in
// an order are non-negative by contract.
func (a Amount) Sub(other Amount) (Amount, error) {
	result := a.cents - other.cents
	if result < 0 {
		return Amount{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid amount: result is negative")
	}
	return Amount{cents: result}, nil
}

func (a Amount) MulQty(qty int) Amount {
	return Amount{cents: a.cents * int64(qty)}
}

// MulRateBps applies a basis-point rate (e.g. tax) and rounds the result
// half away from zero to whole cents.
func (a Amount) MulRateBps(bps int64) Amount {
	product := decimal.New(a.cents, 0).
		Mul(decimal.New(bps, 0)).
		Div(decimal.New(10000, 0))
	return Amount{cents: product.Round(0).IntPart()}
}

// Cmp returns -1, 0 or +1 comparing a against other.
func (a Amount) Cmp(other Amount) int {
	switch {
	case a.cents < other.cents:
		return -1
	case a.cents > other.cents:
		return 1
	default:
		return 0
	}
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.cents, -2)
}

// Format renders the amount for display in the given ISO currency code.
func (a Amount) Format(currencyCode string) string {
	value := a.Decimal().StringFixed(2)
	if symbol, ok := currencySymbols[currencyCode]; ok {
		return symbol + value
	}
	return fmt.Sprintf("%s %s", value, currencyCode)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}
