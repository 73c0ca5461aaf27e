package immunize

import "math"

// MarshalJSON writes a bond result, either its metrics or its error.
func (r BondResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("name", r.Bond.Name)
	w.Append("price", r.Bond.Price)
	w.Append("maturity", r.Bond.Maturity)
	if r.Err != nil {
		w.Append("error", r.Err.Error())
		return w.MarshalJSON()
	}
	w.Append("yield", r.Metrics.Yield)
	w.Append("duration", r.Metrics.Duration)
	w.Append("convexity", r.Metrics.Convexity)
	w.Append("coverage", r.Coverage)
	w.Append("iterations", r.Iterations)
	return w.MarshalJSON()
}

// MarshalJSON writes the analysis, the allocation being the sparse list of holdings.
func (a *Analysis) MarshalJSON() ([]byte, error) {
	type jholding struct {
		Bond   int     `json:"bond"` // one based, like in reports
		Weight float64 `json:"weight"`
	}
	var w jsonObjectWriter
	w.Append("obligation", map[string]float64{"amount": a.Obligation.Amount, "dueIn": a.Obligation.DueIn})
	// NaN when no bond could be analyzed, a zero yield is still written.
	if !math.IsNaN(a.PresentValue) {
		w.Append("averageYield", a.AverageYield)
		w.Append("presentValue", a.PresentValue)
	}
	w.Append("bonds", a.Bonds)
	w.Append("status", a.Status.String())
	if a.Status == PortfolioOptimal {
		holdings := []jholding{}
		for _, h := range a.Allocation.Holdings() {
			holdings = append(holdings, jholding{Bond: h.Index + 1, Weight: h.Weight})
		}
		w.Append("allocation", holdings)
		w.Append("duration", a.Allocation.Duration)
		w.Append("convexity", a.Allocation.Convexity)
	}
	if a.PortfolioErr != nil {
		w.Append("error", a.PortfolioErr.Error())
	}
	return w.MarshalJSON()
}
