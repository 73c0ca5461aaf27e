package immunize

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Allocation is an immunizing portfolio: the fraction of each $1 of present
// value to invest in each bond.
type Allocation struct {
	Weights   []float64 // one per bond, non-negative, summing to 1
	Duration  float64   // realized portfolio duration
	Convexity float64   // realized (maximum) portfolio convexity
}

// Holding is a bond with a non-zero weight in an Allocation.
type Holding struct {
	Index  int
	Weight float64
}

// Holdings returns the bonds actually held, in index order.
func (a Allocation) Holdings() []Holding {
	var h []Holding
	for i, w := range a.Weights {
		if w != 0 {
			h = append(h, Holding{Index: i, Weight: w})
		}
	}
	return h
}

// Formulate loads into engine the linear program that immunizes o:
//
//	maximize   Σ w_i C_i
//	subject to Σ w_i D_i = o.DueIn
//	           Σ w_i     = 1
//	           w_i >= 0
//
// where D_i and C_i are the duration and convexity of bond i. Portfolio
// duration and convexity are the weighted averages of the bonds' ones, so
// the program is exactly linear. engine must have one variable per bond.
func Formulate(engine LPEngine, metrics []BondMetrics, o DebtObligation) error {
	if len(metrics) == 0 {
		return invalidf("no bond to build a portfolio from")
	}
	if err := o.Validate(); err != nil {
		return err
	}
	durations := make([]float64, len(metrics))
	ones := make([]float64, len(metrics))
	convexities := make([]float64, len(metrics))
	for i, m := range metrics {
		durations[i] = m.Duration
		ones[i] = 1
		convexities[i] = m.Convexity
	}
	if err := engine.AddConstraint(durations, EQ, o.DueIn); err != nil {
		return fmt.Errorf("%w: duration constraint: %v", ErrSolver, err)
	}
	if err := engine.AddConstraint(ones, EQ, 1); err != nil {
		return fmt.Errorf("%w: budget constraint: %v", ErrSolver, err)
	}
	if err := engine.SetObjective(convexities, Maximize); err != nil {
		return fmt.Errorf("%w: objective: %v", ErrSolver, err)
	}
	return nil
}

// Immunize formulates and solves the immunization program with engine.
//
// It returns ErrInfeasible when no combination of the bonds matches the
// obligation duration, which is a normal outcome, and ErrSolver when the
// engine fails.
func Immunize(engine LPEngine, metrics []BondMetrics, o DebtObligation) (Allocation, error) {
	if err := Formulate(engine, metrics, o); err != nil {
		return Allocation{}, err
	}
	status, err := engine.Solve()
	switch status {
	case Optimal:
	case Infeasible:
		return Allocation{}, fmt.Errorf("%w: no portfolio meets the duration constraint of %v periods", ErrInfeasible, o.DueIn)
	case Unbounded:
		return Allocation{}, fmt.Errorf("%w: program is unbounded", ErrSolver)
	default:
		if err == nil {
			err = fmt.Errorf("unexpected status %v", status)
		}
		return Allocation{}, fmt.Errorf("%w: %v", ErrSolver, err)
	}

	w := engine.Variables()
	if len(w) != len(metrics) {
		return Allocation{}, fmt.Errorf("%w: expected %d variables, got %d", ErrSolver, len(metrics), len(w))
	}
	a := Allocation{Weights: w, Convexity: engine.Objective()}
	for i, m := range metrics {
		a.Duration += w[i] * m.Duration
	}
	if !scalar.EqualWithinAbsOrRel(floats.Sum(w), 1, 1e-6, 1e-6) {
		return Allocation{}, fmt.Errorf("%w: weights sum to %v", ErrSolver, floats.Sum(w))
	}
	return a, nil
}
