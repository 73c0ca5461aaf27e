package immunize

import (
	"math"
)

// PresentValue returns the present value of the obligation, discounted at the
// average of the given bond yields over the obligation horizon.
//
// A single representative rate is used instead of a term structure. This is
// a modeling choice and changing it changes every reported figure.
func PresentValue(yields []float64, o DebtObligation) (float64, error) {
	if err := o.Validate(); err != nil {
		return math.NaN(), err
	}
	if len(yields) == 0 {
		return math.NaN(), invalidf("no yield to average")
	}
	avg := AverageYield(yields)
	return o.Amount / math.Pow(1+avg, o.DueIn), nil
}

// AverageYield is the arithmetic mean of yields.
func AverageYield(yields []float64) float64 {
	sum := 0.0
	for _, y := range yields {
		sum += y
	}
	return sum / float64(len(yields))
}

// Coverage returns the fraction of the bond that would meet an obligation of
// present value pv. It is informational, the optimizer does not use it.
func Coverage(pv float64, b Bond) float64 {
	return pv / b.Price
}
