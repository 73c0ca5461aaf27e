package immunize

import "math"

// BondMetrics are the risk figures of a bond at its yield to maturity.
type BondMetrics struct {
	Yield     float64
	Duration  float64 // Macaulay duration, in periods
	Convexity float64
}

// Duration returns the Macaulay duration of the cash flows at the given yield:
// the present value weighted average time of payment, normalized by price.
func Duration(cashFlows []float64, price float64, maturity int, yield float64) (float64, error) {
	if err := checkShape(cashFlows, price, maturity); err != nil {
		return math.NaN(), err
	}
	d := 0.0
	for i := 1; i <= maturity; i++ {
		d += float64(i) * cashFlows[i-1] / math.Pow(1+yield, float64(i))
	}
	return d / price, nil
}

// Convexity returns the convexity of the cash flows at the given yield.
func Convexity(cashFlows []float64, price float64, maturity int, yield float64) (float64, error) {
	if err := checkShape(cashFlows, price, maturity); err != nil {
		return math.NaN(), err
	}
	c := 0.0
	for j := 1; j <= maturity; j++ {
		c += float64(j*(j+1)) * cashFlows[j-1] / math.Pow(1+yield, float64(j+2))
	}
	return c / price, nil
}

// checkShape is the part of bond validation the metrics depend on.
func checkShape(cashFlows []float64, price float64, maturity int) error {
	if !isFinite(price) || price <= 0 {
		return invalidf("price must be positive, got %v", price)
	}
	if maturity <= 0 {
		return invalidf("maturity must be positive, got %d", maturity)
	}
	if len(cashFlows) != maturity {
		return invalidf("expected %d cash flows for maturity %d, got %d", maturity, maturity, len(cashFlows))
	}
	return nil
}

// Metrics solves the bond yield, then computes its duration and convexity at
// that yield. It also returns the number of Newton-Raphson steps used.
func (s YieldSolver) Metrics(b Bond) (BondMetrics, int, error) {
	y, iter, err := s.Solve(b.CashFlows, b.Price, b.Maturity)
	if err != nil {
		return BondMetrics{}, iter, err
	}
	// shape is already validated by Solve.
	d, _ := Duration(b.CashFlows, b.Price, b.Maturity, y)
	c, _ := Convexity(b.CashFlows, b.Price, b.Maturity, y)
	return BondMetrics{Yield: y, Duration: d, Convexity: c}, iter, nil
}
