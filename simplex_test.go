package immunize

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type constraint struct {
	coeffs []float64
	kind   ConstraintKind
	rhs    float64
}

func TestSimplexEngine_Solve(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		constraints []constraint
		objective   []float64
		sense       Sense
		wantStatus  Status
		wantObj     float64
		wantX       []float64 // nil when the optimum is not unique
	}{
		{
			name: "inequalities",
			n:    2,
			constraints: []constraint{
				{[]float64{1, 2}, LE, 4},
				{[]float64{3, 1}, LE, 6},
			},
			objective:  []float64{1, 1},
			sense:      Maximize,
			wantStatus: Optimal,
			wantObj:    2.8,
			wantX:      []float64{1.6, 1.2},
		},
		{
			name: "greater or equal",
			n:    2,
			constraints: []constraint{
				{[]float64{1, 1}, GE, 2},
			},
			objective:  []float64{1, 1},
			sense:      Minimize,
			wantStatus: Optimal,
			wantObj:    2,
		},
		{
			name: "single variable",
			n:    1,
			constraints: []constraint{
				{[]float64{1}, EQ, 3},
			},
			objective:  []float64{2},
			sense:      Maximize,
			wantStatus: Optimal,
			wantObj:    6,
			wantX:      []float64{3},
		},
		{
			name: "dependent equalities",
			n:    2,
			constraints: []constraint{
				{[]float64{1, 1}, EQ, 1},
				{[]float64{2, 2}, EQ, 2},
			},
			objective:  []float64{1, 0},
			sense:      Maximize,
			wantStatus: Optimal,
			wantObj:    1,
			wantX:      []float64{1, 0},
		},
		{
			name: "immunization",
			n:    2,
			constraints: []constraint{
				{[]float64{1, 3641.0 / 1331}, EQ, 2},
				{[]float64{1, 1}, EQ, 1},
			},
			objective:  []float64{1.652893, 8.756233},
			sense:      Maximize,
			wantStatus: Optimal,
			wantObj:    979.0/2310*1.652893 + 1331.0/2310*8.756233,
			wantX:      []float64{979.0 / 2310, 1331.0 / 2310},
		},
		{
			name:       "no constraint",
			n:          2,
			objective:  []float64{1, 2},
			sense:      Minimize,
			wantStatus: Optimal,
			wantObj:    0,
			wantX:      []float64{0, 0},
		},
		{
			name: "inconsistent equalities",
			n:    2,
			constraints: []constraint{
				{[]float64{1, 1}, EQ, 1},
				{[]float64{1, 1}, EQ, 2},
			},
			objective:  []float64{1, 1},
			sense:      Maximize,
			wantStatus: Infeasible,
		},
		{
			name: "negative solution",
			n:    1,
			constraints: []constraint{
				{[]float64{1}, EQ, -1},
			},
			objective:  []float64{1},
			sense:      Minimize,
			wantStatus: Infeasible,
		},
		{
			name: "empty interval",
			n:    1,
			constraints: []constraint{
				{[]float64{1}, GE, 5},
				{[]float64{1}, LE, 3},
			},
			objective:  []float64{1},
			sense:      Minimize,
			wantStatus: Infeasible,
		},
		{
			name: "unconstrained variable",
			n:    2,
			constraints: []constraint{
				{[]float64{1, 0}, LE, 1},
			},
			objective:  []float64{1, 1},
			sense:      Maximize,
			wantStatus: Unbounded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewSimplexEngine(tt.n)
			for _, c := range tt.constraints {
				if err := e.AddConstraint(c.coeffs, c.kind, c.rhs); err != nil {
					t.Fatalf("AddConstraint() unexpected error: %v", err)
				}
			}
			if err := e.SetObjective(tt.objective, tt.sense); err != nil {
				t.Fatalf("SetObjective() unexpected error: %v", err)
			}
			status, err := e.Solve()
			if err != nil {
				t.Fatalf("Solve() unexpected error: %v", err)
			}
			if status != tt.wantStatus || e.Status() != tt.wantStatus {
				t.Fatalf("Solve() = %v, want %v", status, tt.wantStatus)
			}
			if status != Optimal {
				if x := e.Variables(); len(x) != 0 {
					t.Errorf("Variables() = %v, want none", x)
				}
				return
			}
			if math.Abs(e.Objective()-tt.wantObj) > 1e-6 {
				t.Errorf("Objective() = %v, want %v", e.Objective(), tt.wantObj)
			}
			x := e.Variables()
			for i, v := range x {
				if v < 0 {
					t.Errorf("Variables()[%d] = %v, want non-negative", i, v)
				}
			}
			if tt.wantX != nil {
				if diff := cmp.Diff(tt.wantX, x, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
					t.Errorf("Variables() mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestSimplexEngine_InvalidProgram(t *testing.T) {
	e := NewSimplexEngine(2)
	if e.Status() != NotSolved {
		t.Errorf("Status() = %v, want %v", e.Status(), NotSolved)
	}
	if err := e.AddConstraint([]float64{1}, EQ, 1); err == nil {
		t.Error("AddConstraint() with a wrong number of coefficients succeeded")
	}
	if err := e.AddConstraint([]float64{1, math.NaN()}, EQ, 1); err == nil {
		t.Error("AddConstraint() with a NaN coefficient succeeded")
	}
	if err := e.AddConstraint([]float64{1, 1}, ConstraintKind(42), 1); err == nil {
		t.Error("AddConstraint() with an unknown kind succeeded")
	}
	if err := e.AddConstraint([]float64{1, 1}, EQ, math.Inf(1)); err == nil {
		t.Error("AddConstraint() with an infinite right hand side succeeded")
	}
	if err := e.SetObjective([]float64{1, 2, 3}, Maximize); err == nil {
		t.Error("SetObjective() with a wrong number of coefficients succeeded")
	}

	status, err := NewSimplexEngine(0).Solve()
	if status != Error || err == nil {
		t.Errorf("Solve() without variables = %v, %v, want %v and an error", status, err, Error)
	}
}

func TestConstraintKind_String(t *testing.T) {
	for k, want := range map[ConstraintKind]string{EQ: "=", LE: "<=", GE: ">=", 7: "ConstraintKind(7)"} {
		if got := k.String(); got != want {
			t.Errorf("ConstraintKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
