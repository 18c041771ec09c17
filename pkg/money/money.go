// Package money carries monetary values with a fixed two-digit wire format.
package money

import "github.com/shopspring/decimal"

// Amount is a decimal that always renders two fraction digits, matching the
// NUMERIC(10,2) columns it round-trips through. decimal's own String trims
// trailing zeros, which would turn 46.00 into 46 on the wire.
type Amount struct {
	decimal.Decimal
}

func New(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

func (a Amount) String() string { return a.Decimal.StringFixed(2) }

// MarshalJSON emits a quoted fixed-point string. Unmarshalling is inherited
// from decimal and accepts both JSON numbers and strings.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Decimal.StringFixed(2) + `"`), nil
}
