package immunize

import "fmt"

// ConstraintKind is the relation between the left and right hand side of a
// linear constraint.
type ConstraintKind int

const (
	EQ ConstraintKind = iota // Σ a_i x_i = b
	LE                       // Σ a_i x_i <= b
	GE                       // Σ a_i x_i >= b
)

func (k ConstraintKind) String() string {
	switch k {
	case EQ:
		return "="
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return fmt.Sprintf("ConstraintKind(%d)", int(k))
	}
}

// Sense is the optimization direction of the objective.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Status is the outcome of solving a linear program.
type Status int

const (
	NotSolved Status = iota
	Optimal
	Infeasible
	Unbounded
	Error
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "not solved"
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// LPEngine is a linear programming backend.
//
// All decision variables are continuous and non-negative. Coefficient vectors
// have one entry per decision variable, the number of variables being fixed
// when the engine is created.
type LPEngine interface {
	// AddConstraint adds Σ coeffs[i] x_i (kind) rhs.
	AddConstraint(coeffs []float64, kind ConstraintKind, rhs float64) error
	// SetObjective sets the linear objective to optimize.
	SetObjective(coeffs []float64, sense Sense) error
	// Solve solves the program. A non-nil error is only returned with the Error status,
	// infeasible or unbounded programs are not errors.
	Solve() (Status, error)
	// Status returns the status of the last Solve.
	Status() Status
	// Objective returns the optimal objective value, in the sense it was set.
	Objective() float64
	// Variables returns the optimal value of each decision variable.
	Variables() []float64
}

// EngineFactory creates an LPEngine with the given number of decision variables.
type EngineFactory func(variables int) LPEngine
