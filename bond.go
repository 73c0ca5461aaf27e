package immunize

import (
	"math"
	"strconv"
)

// Bond is a priced stream of cash flows, one per period.
//
// CashFlows[i] is paid at the end of period i+1, so a bond of maturity M has
// exactly M cash flows. A Bond is never modified once loaded.
type Bond struct {
	Name      string // optional label, used in reports only
	Price     float64
	Maturity  int
	CashFlows []float64
}

// Label returns the bond name, or a default one based on its index.
func (b Bond) Label(index int) string {
	if b.Name != "" {
		return b.Name
	}
	return "Cash Flow #" + strconv.Itoa(index+1)
}

// Validate checks that b is a standard bond: positive price and maturity, one
// non-negative cash flow per period, not all zero.
func (b Bond) Validate() error {
	return validateBond(b.CashFlows, b.Price, b.Maturity)
}

func validateBond(cashFlows []float64, price float64, maturity int) error {
	if !isFinite(price) || price <= 0 {
		return invalidf("price must be positive, got %v", price)
	}
	if maturity <= 0 {
		return invalidf("maturity must be positive, got %d", maturity)
	}
	if len(cashFlows) != maturity {
		return invalidf("expected %d cash flows for maturity %d, got %d", maturity, maturity, len(cashFlows))
	}
	total := 0.0
	for i, c := range cashFlows {
		if !isFinite(c) || c < 0 {
			return invalidf("cash flow #%d must be a non-negative number, got %v", i+1, c)
		}
		total += c
	}
	if total == 0 {
		return invalidf("all cash flows are zero")
	}
	return nil
}

// DebtObligation is a lump-sum debt of Amount, due in DueIn periods.
type DebtObligation struct {
	Amount float64
	DueIn  float64
}

// Validate checks that both the amount and the horizon are positive.
func (o DebtObligation) Validate() error {
	if !isFinite(o.Amount) || o.Amount <= 0 {
		return invalidf("obligation amount must be positive, got %v", o.Amount)
	}
	if !isFinite(o.DueIn) || o.DueIn <= 0 {
		return invalidf("obligation due time must be positive, got %v", o.DueIn)
	}
	return nil
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
