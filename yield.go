package immunize

import (
	"fmt"
	"math"
)

const (
	// DefaultYieldTolerance is the residual |f(r)| below which a yield is accepted.
	DefaultYieldTolerance = 1e-10
	// DefaultYieldMaxIter bounds the number of Newton-Raphson steps.
	DefaultYieldMaxIter = 100
)

// YieldSolver finds the periodic yield to maturity of a bond.
//
// The yield r is the root of
//
//	f(r) = P(1+r)^M - Σ_{i=0}^{M-1} C[i](1+r)^(M-1-i)
//
// searched with Newton-Raphson from r = 0. Its zero value uses the default
// tolerance and iteration budget.
type YieldSolver struct {
	Tolerance float64 // accept r when |f(r)| < Tolerance
	MaxIter   int     // fail with ErrNoConvergence past this many steps
}

func (s YieldSolver) tolerance() float64 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultYieldTolerance
}

func (s YieldSolver) maxIter() int {
	if s.MaxIter > 0 {
		return s.MaxIter
	}
	return DefaultYieldMaxIter
}

// Solve returns the yield of the bond and the number of Newton-Raphson steps it took.
func (s YieldSolver) Solve(cashFlows []float64, price float64, maturity int) (rate float64, iterations int, err error) {
	if err := validateBond(cashFlows, price, maturity); err != nil {
		return math.NaN(), 0, err
	}
	tol, maxIter := s.tolerance(), s.maxIter()

	r := 0.0
	for iter := 0; iter < maxIter; iter++ {
		f := yieldFunc(cashFlows, price, maturity, r)
		if math.Abs(f) < tol {
			return r, iter, nil
		}
		d := yieldDeriv(cashFlows, price, maturity, r)
		if d == 0 || !isFinite(d) {
			return r, iter, fmt.Errorf("%w: zero derivative at r=%g (step %d)", ErrNoConvergence, r, iter)
		}
		r -= f / d
		if !isFinite(r) {
			return r, iter, fmt.Errorf("%w: diverged at step %d", ErrNoConvergence, iter)
		}
	}
	if f := yieldFunc(cashFlows, price, maturity, r); math.Abs(f) < tol {
		return r, maxIter, nil
	}
	// the tolerance is absolute, large prices may need a larger one.
	return r, maxIter, fmt.Errorf("%w: |f(r)| still above %g after %d steps, try a larger tolerance", ErrNoConvergence, tol, maxIter)
}

// SolveYield returns the yield to maturity of a bond using the default solver.
func SolveYield(cashFlows []float64, price float64, maturity int) (float64, error) {
	r, _, err := YieldSolver{}.Solve(cashFlows, price, maturity)
	return r, err
}

// yieldFunc computes f(r) = P(1+r)^M - Σ C[i](1+r)^(M-1-i).
func yieldFunc(cashFlows []float64, price float64, maturity int, r float64) float64 {
	result := price * math.Pow(1+r, float64(maturity))
	for i := 0; i < maturity; i++ {
		result -= cashFlows[i] * math.Pow(1+r, float64(maturity-1-i))
	}
	return result
}

// yieldDeriv computes f'(r).
func yieldDeriv(cashFlows []float64, price float64, maturity int, r float64) float64 {
	result := float64(maturity) * price * math.Pow(1+r, float64(maturity-1))
	for j := 0; j < maturity-1; j++ {
		result -= cashFlows[j] * float64(maturity-1-j) * math.Pow(1+r, float64(maturity-2-j))
	}
	return result
}
