package immunize

import "fmt"

// Percent is a ratio expressed in percent, e.g. a yield of 0.1 is Percent(10).
type Percent float64

// AsPercent converts a ratio to a Percent.
func AsPercent(ratio float64) Percent { return Percent(ratio * 100) }

func (p Percent) String() string {
	return fmt.Sprintf("%.4f%%", float64(p))
}
