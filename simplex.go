package immunize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// DefaultLPTolerance is the tolerance used by SimplexEngine to consider a value zero.
const DefaultLPTolerance = 1e-9

// SimplexEngine is an LPEngine backed by gonum's simplex implementation.
//
// gonum solves programs in standard form (minimize cᵀx, Ax = b, x >= 0), so
// inequalities get a slack column each, a maximized objective is negated and
// redundant equalities are removed before calling lp.Simplex.
type SimplexEngine struct {
	Tol float64

	n     int
	rows  [][]float64
	kinds []ConstraintKind
	rhs   []float64
	obj   []float64
	sense Sense

	status    Status
	objective float64
	x         []float64
}

// NewSimplexEngine returns a SimplexEngine with n decision variables.
func NewSimplexEngine(n int) *SimplexEngine {
	return &SimplexEngine{n: n, obj: make([]float64, n)}
}

// SimplexFactory is the EngineFactory for SimplexEngine.
func SimplexFactory(n int) LPEngine { return NewSimplexEngine(n) }

func (e *SimplexEngine) tol() float64 {
	if e.Tol > 0 {
		return e.Tol
	}
	return DefaultLPTolerance
}

func (e *SimplexEngine) checkCoeffs(coeffs []float64) error {
	if len(coeffs) != e.n {
		return fmt.Errorf("expected %d coefficients, got %d", e.n, len(coeffs))
	}
	for i, a := range coeffs {
		if !isFinite(a) {
			return fmt.Errorf("coefficient #%d is not a finite number: %v", i, a)
		}
	}
	return nil
}

func (e *SimplexEngine) AddConstraint(coeffs []float64, kind ConstraintKind, rhs float64) error {
	if err := e.checkCoeffs(coeffs); err != nil {
		return fmt.Errorf("cannot add constraint: %w", err)
	}
	if kind != EQ && kind != LE && kind != GE {
		return fmt.Errorf("cannot add constraint: unknown kind %v", kind)
	}
	if !isFinite(rhs) {
		return fmt.Errorf("cannot add constraint: right hand side is not a finite number: %v", rhs)
	}
	e.rows = append(e.rows, append([]float64(nil), coeffs...))
	e.kinds = append(e.kinds, kind)
	e.rhs = append(e.rhs, rhs)
	e.status = NotSolved
	return nil
}

func (e *SimplexEngine) SetObjective(coeffs []float64, sense Sense) error {
	if err := e.checkCoeffs(coeffs); err != nil {
		return fmt.Errorf("cannot set objective: %w", err)
	}
	e.obj = append([]float64(nil), coeffs...)
	e.sense = sense
	e.status = NotSolved
	return nil
}

func (e *SimplexEngine) Status() Status       { return e.status }
func (e *SimplexEngine) Objective() float64   { return e.objective }
func (e *SimplexEngine) Variables() []float64 { return append([]float64(nil), e.x...) }

func (e *SimplexEngine) Solve() (Status, error) {
	x, status, err := e.solve()
	e.status = status
	e.x = nil
	e.objective = math.NaN()
	if status == Optimal {
		e.x = x[:e.n]
		e.objective = floats.Dot(e.obj, e.x)
	}
	return status, err
}

// solve returns the optimal standard form solution (structural variables first).
func (e *SimplexEngine) solve() ([]float64, Status, error) {
	tol := e.tol()
	if e.n == 0 {
		return nil, Error, errors.New("no decision variable")
	}

	// Standard form: one slack column per inequality.
	slacks := 0
	for _, k := range e.kinds {
		if k != EQ {
			slacks++
		}
	}
	cols := e.n + slacks
	A := make([][]float64, len(e.rows))
	b := make([]float64, len(e.rows))
	s := e.n
	for i, row := range e.rows {
		A[i] = make([]float64, cols)
		copy(A[i], row)
		switch e.kinds[i] {
		case LE:
			A[i][s] = 1
			s++
		case GE:
			A[i][s] = -1
			s++
		}
		b[i] = e.rhs[i]
		if b[i] < 0 {
			floats.Scale(-1, A[i])
			b[i] = -b[i]
		}
	}
	c := make([]float64, cols)
	copy(c, e.obj)
	if e.sense == Maximize {
		floats.Scale(-1, c)
	}

	keep, consistent := independentRows(A, b, tol)
	if !consistent {
		return nil, Infeasible, nil
	}

	// Columns with no coefficient left are free of any constraint: they either
	// make the program unbounded or sit at zero.
	var active []int
	for j := 0; j < cols; j++ {
		zero := true
		for _, i := range keep {
			if A[i][j] != 0 {
				zero = false
				break
			}
		}
		if !zero {
			active = append(active, j)
			continue
		}
		if c[j] < -tol {
			return nil, Unbounded, nil
		}
	}

	x := make([]float64, cols)
	m, n := len(keep), len(active)
	if m == 0 {
		// every column is free and has a non-negative cost.
		return x, Optimal, nil
	}

	sa := mat.NewDense(m, n, nil)
	sb := make([]float64, m)
	sc := make([]float64, n)
	for r, i := range keep {
		for k, j := range active {
			sa.Set(r, k, A[i][j])
		}
		sb[r] = b[i]
	}
	for k, j := range active {
		sc[k] = c[j]
	}

	var sx []float64
	if m == n {
		// Exactly constrained: the unique solution is optimal if it is non-negative.
		var v mat.VecDense
		if err := v.SolveVec(sa, mat.NewVecDense(m, sb)); err != nil {
			return nil, Error, fmt.Errorf("linear solve: %w", err)
		}
		sx = make([]float64, n)
		for k := range sx {
			sx[k] = v.AtVec(k)
			if sx[k] < -tol {
				return nil, Infeasible, nil
			}
		}
	} else {
		_, opt, err := lp.Simplex(sc, sa, sb, tol, nil)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, Infeasible, nil
		case errors.Is(err, lp.ErrUnbounded):
			return nil, Unbounded, nil
		case err != nil:
			return nil, Error, fmt.Errorf("simplex: %w", err)
		}
		sx = opt
	}

	for k, j := range active {
		v := sx[k]
		if math.Abs(v) < tol {
			v = 0
		}
		x[j] = v
	}

	// The solution must satisfy the original rows, redundant ones included.
	for i := range A {
		lhs := floats.Dot(A[i], x)
		if math.Abs(lhs-b[i]) > tol*math.Max(1, math.Abs(b[i]))*1e3 {
			return nil, Error, fmt.Errorf("solution violates constraint #%d: %g != %g", i+1, lhs, b[i])
		}
	}
	return x, Optimal, nil
}

// independentRows selects a maximal set of linearly independent rows of [A|b].
//
// A row that is a combination of previous rows is dropped when its right hand
// side agrees, and makes the system inconsistent otherwise.
func independentRows(A [][]float64, b []float64, tol float64) (keep []int, consistent bool) {
	type pivotRow struct {
		col int
		row []float64
		rhs float64
	}
	var basis []pivotRow
	for i, row := range A {
		r := append([]float64(nil), row...)
		rb := b[i]
		scale := math.Max(1, floats.Norm(row, math.Inf(1)))
		for _, p := range basis {
			f := r[p.col]
			if f == 0 {
				continue
			}
			floats.AddScaled(r, -f, p.row)
			rb -= f * p.rhs
		}
		col := floats.MaxIdx(absAll(r))
		if math.Abs(r[col]) <= tol*scale {
			if math.Abs(rb) > tol*math.Max(1, math.Abs(b[i])) {
				return nil, false
			}
			continue
		}
		f := r[col]
		floats.Scale(1/f, r)
		basis = append(basis, pivotRow{col: col, row: r, rhs: rb / f})
		keep = append(keep, i)
	}
	return keep, true
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}
