package immunize

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency amounts are shown in when none is given.
const DefaultCurrency = money.USD

// Money represents a monetary value, as shown to the user.
//
// The numerical core works with float64, Money is only used to present
// amounts with the right number of digits for their currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns value, in currency cur.
func M[T float64 | int | int64 | decimal.Decimal](value T, cur string) Money {
	return Money{value: newDecimal(value), cur: cur}
}

func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted for its currency, e.g. "$1,009.36".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.value.IsZero() }

// Mul returns m scaled by f.
func (m Money) Mul(f float64) Money {
	return Money{value: m.value.Mul(decimal.NewFromFloat(f)), cur: m.cur}
}

// Round returns m rounded to the minor unit of its currency.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur}
}
