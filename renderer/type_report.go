package renderer

import (
	"math"
	"strings"

	"github.com/etnz/immunize"
)

// DefaultScales are the example present values the allocation is scaled to,
// in addition to the obligation own present value.
var DefaultScales = []float64{500, 750, 1000}

// ReportOptions configures NewReport.
type ReportOptions struct {
	Title    string    // defaults to "Bond Immunization"
	Currency string    // defaults to immunize.DefaultCurrency
	Scales   []float64 // example present values, nil means DefaultScales
	// NoObligationScale skips scaling the allocation to the obligation present value.
	NoObligationScale bool
}

// Report is the data of the markdown reports.
// Numbers that are amounts are Money, so that they render with their currency.
type Report struct {
	Title      string           `json:"title"`
	Obligation ReportObligation `json:"obligation"`
	Bonds      []ReportBond     `json:"bonds"`

	Status     string `json:"status"`
	Optimal    bool   `json:"optimal,omitempty"`
	Infeasible bool   `json:"infeasible,omitempty"`
	Failed     bool   `json:"failed,omitempty"`
	Message    string `json:"message,omitempty"` // why there is no portfolio

	Duration  float64         `json:"duration,omitempty"`
	Convexity float64         `json:"convexity,omitempty"`
	Holdings  []ReportHolding `json:"holdings,omitempty"`
	Scales    []ReportScale   `json:"scales,omitempty"`
}

// ReportObligation describes the debt to immunize.
type ReportObligation struct {
	Amount       immunize.Money   `json:"amount"`
	DueIn        float64          `json:"dueIn"`
	Valued       bool             `json:"valued"` // false when no bond could be analyzed
	AverageYield immunize.Percent `json:"averageYield"`
	PresentValue immunize.Money   `json:"presentValue"`
}

// ReportBond is a row of the bonds table.
type ReportBond struct {
	Number     int              `json:"number"` // one based
	Label      string           `json:"label"`
	Price      immunize.Money   `json:"price"`
	Maturity   int              `json:"maturity"`
	Yield      immunize.Percent `json:"yield"`
	Duration   float64          `json:"duration"`
	Convexity  float64          `json:"convexity"`
	Coverage   float64          `json:"coverage"`
	Iterations int              `json:"iterations"`
	Error      string           `json:"error,omitempty"`
}

// ReportHolding is a bond bought by the immunizing portfolio.
type ReportHolding struct {
	Number int              `json:"number"`
	Label  string           `json:"label"`
	Weight float64          `json:"weight"` // per unit of present value
	Share  immunize.Percent `json:"share"`
}

// ReportScale is the immunizing portfolio for a given present value.
type ReportScale struct {
	PresentValue immunize.Money   `json:"presentValue"`
	Purchases    []ReportPurchase `json:"purchases"`
}

// ReportPurchase is the amount to invest in a bond.
type ReportPurchase struct {
	Label  string         `json:"label"`
	Amount immunize.Money `json:"amount"`
}

// NewReport creates the report data from an analysis.
func NewReport(a *immunize.Analysis, opts ReportOptions) *Report {
	cur := opts.Currency
	if cur == "" {
		cur = immunize.DefaultCurrency
	}
	title := opts.Title
	if title == "" {
		title = "Bond Immunization"
	}

	r := &Report{
		Title: title,
		Obligation: ReportObligation{
			Amount: immunize.M(a.Obligation.Amount, cur),
			DueIn:  a.Obligation.DueIn,
		},
		Bonds:  make([]ReportBond, 0, len(a.Bonds)),
		Status: a.Status.String(),
	}
	if !math.IsNaN(a.PresentValue) {
		r.Obligation.Valued = true
		r.Obligation.AverageYield = immunize.AsPercent(a.AverageYield)
		r.Obligation.PresentValue = immunize.M(a.PresentValue, cur)
	}

	for i, b := range a.Bonds {
		rb := ReportBond{
			Number:     i + 1,
			Label:      cell(b.Bond.Label(i)),
			Price:      immunize.M(b.Bond.Price, cur),
			Maturity:   b.Bond.Maturity,
			Iterations: b.Iterations,
		}
		if b.Err != nil {
			rb.Error = cell(unwrapBond(b.Err).Error())
		} else {
			rb.Yield = immunize.AsPercent(b.Metrics.Yield)
			rb.Duration = b.Metrics.Duration
			rb.Convexity = b.Metrics.Convexity
			rb.Coverage = b.Coverage
		}
		r.Bonds = append(r.Bonds, rb)
	}

	switch a.Status {
	case immunize.PortfolioOptimal:
		r.Optimal = true
	case immunize.PortfolioInfeasible:
		r.Infeasible = true
	default:
		r.Failed = true
	}
	if a.PortfolioErr != nil {
		r.Message = a.PortfolioErr.Error()
	}
	if !r.Optimal {
		return r
	}

	r.Duration = a.Allocation.Duration
	r.Convexity = a.Allocation.Convexity
	holdings := a.Allocation.Holdings()
	for _, h := range holdings {
		r.Holdings = append(r.Holdings, ReportHolding{
			Number: h.Index + 1,
			Label:  cell(a.Bonds[h.Index].Bond.Label(h.Index)),
			Weight: h.Weight,
			Share:  immunize.AsPercent(h.Weight),
		})
	}

	scales := opts.Scales
	if scales == nil {
		scales = DefaultScales
	}
	scales = append([]float64(nil), scales...)
	if !opts.NoObligationScale {
		scales = append(scales, a.PresentValue)
	}
	for _, s := range scales {
		pv := immunize.M(s, cur)
		scale := ReportScale{PresentValue: pv}
		for _, h := range r.Holdings {
			amount := pv.Mul(h.Weight).Round()
			if amount.IsZero() {
				continue
			}
			scale.Purchases = append(scale.Purchases, ReportPurchase{Label: h.Label, Amount: amount})
		}
		r.Scales = append(r.Scales, scale)
	}
	return r
}

// unwrapBond removes the "bond #n" prefix, the report already shows it.
func unwrapBond(err error) error {
	if be, ok := err.(*immunize.BondError); ok {
		return be.Err
	}
	return err
}

// cell makes s safe to use in a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
