package immunize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options configures Analyze. Its zero value is ready to use.
type Options struct {
	Solver  YieldSolver   // Newton-Raphson settings
	Engine  EngineFactory // defaults to SimplexFactory
	Workers int           // bonds solved concurrently, defaults to GOMAXPROCS
}

// BondResult is the outcome of the analysis of a single bond.
type BondResult struct {
	Bond       Bond
	Metrics    BondMetrics
	Iterations int     // Newton-Raphson steps used to solve the yield
	Coverage   float64 // present value of the obligation / bond price
	Err        error   // *BondError when the bond could not be analyzed
}

// OK reports whether the bond metrics are available.
func (r BondResult) OK() bool { return r.Err == nil }

// PortfolioStatus is the outcome of the portfolio selection step.
type PortfolioStatus int

const (
	PortfolioSkipped    PortfolioStatus = iota // no bond could be analyzed
	PortfolioOptimal                           // an immunizing portfolio was found
	PortfolioInfeasible                        // no portfolio meets the duration constraint
	PortfolioFailed                            // the LP engine failed
)

func (s PortfolioStatus) String() string {
	switch s {
	case PortfolioSkipped:
		return "skipped"
	case PortfolioOptimal:
		return "optimal"
	case PortfolioInfeasible:
		return "infeasible"
	case PortfolioFailed:
		return "failed"
	default:
		return fmt.Sprintf("PortfolioStatus(%d)", int(s))
	}
}

// Analysis is the complete result of immunizing an obligation with a set of bonds.
type Analysis struct {
	Obligation   DebtObligation
	Bonds        []BondResult
	AverageYield float64 // over the bonds that could be analyzed
	PresentValue float64 // of the obligation, NaN when no bond could be analyzed

	Status       PortfolioStatus
	Allocation   Allocation // weights indexed like Bonds, valid when Status is PortfolioOptimal
	PortfolioErr error      // why Status is not PortfolioOptimal
}

// Failed returns the errors of the bonds that could not be analyzed.
func (a *Analysis) Failed() []error {
	var errs []error
	for _, r := range a.Bonds {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// Analyze computes the metrics of every bond, the present value of the
// obligation and the immunizing portfolio.
//
// A bond that fails (invalid, or whose yield does not converge) is reported in
// its BondResult and left out of the portfolio, it does not affect other bonds.
// An infeasible or failed portfolio is reported in the Analysis status. The
// only errors returned are an invalid obligation and a cancelled context.
func Analyze(ctx context.Context, bonds []Bond, o DebtObligation, opts Options) (*Analysis, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	a := &Analysis{
		Obligation:   o,
		Bonds:        make([]BondResult, len(bonds)),
		AverageYield: math.NaN(),
		PresentValue: math.NaN(),
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, b := range bonds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a.Bonds[i] = analyzeBond(opts.Solver, i, b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		yields  []float64
		metrics []BondMetrics
		index   []int // metrics[k] is the bond index[k]
	)
	for i, r := range a.Bonds {
		if !r.OK() {
			log.Printf("warning, %v", r.Err)
			continue
		}
		yields = append(yields, r.Metrics.Yield)
		metrics = append(metrics, r.Metrics)
		index = append(index, i)
	}
	if len(metrics) == 0 {
		a.PortfolioErr = errors.New("no bond could be analyzed")
		return a, nil
	}

	a.AverageYield = AverageYield(yields)
	pv, err := PresentValue(yields, o)
	if err != nil {
		return nil, err
	}
	a.PresentValue = pv
	for _, i := range index {
		a.Bonds[i].Coverage = Coverage(pv, a.Bonds[i].Bond)
	}

	factory := opts.Engine
	if factory == nil {
		factory = SimplexFactory
	}
	alloc, err := Immunize(factory(len(metrics)), metrics, o)
	switch {
	case err == nil:
		a.Status = PortfolioOptimal
		a.Allocation = Allocation{
			Weights:   make([]float64, len(bonds)),
			Duration:  alloc.Duration,
			Convexity: alloc.Convexity,
		}
		for k, w := range alloc.Weights {
			a.Allocation.Weights[index[k]] = w
		}
	case errors.Is(err, ErrInfeasible):
		a.Status = PortfolioInfeasible
		a.PortfolioErr = err
	default:
		a.Status = PortfolioFailed
		a.PortfolioErr = err
	}
	return a, nil
}

func analyzeBond(s YieldSolver, i int, b Bond) BondResult {
	m, iter, err := s.Metrics(b)
	r := BondResult{Bond: b, Metrics: m, Iterations: iter}
	if err != nil {
		r.Err = &BondError{Index: i, Err: err}
	}
	return r
}
