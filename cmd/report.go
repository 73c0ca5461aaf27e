package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/immunize"
	"github.com/etnz/immunize/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	title     string
	scales    string
	noPVScale bool
	json      bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "full immunization report of a bond dataset" }
func (*reportCmd) Usage() string {
	return `immunize report [-scale <pv,...>] [-no-pv-scale] [-json] <dataset>

  Solves the yield, duration and convexity of every bond in the dataset, values
  the obligation and selects the portfolio with the largest convexity whose
  duration matches the obligation horizon.

  The allocation is given per unit of present value, then scaled to each
  present value of -scale and to the obligation own present value.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", "", "Title of the report")
	f.StringVar(&c.scales, "scale", "500,750,1000", "Comma separated present values to scale the allocation to")
	f.BoolVar(&c.noPVScale, "no-pv-scale", false, "Do not scale the allocation to the obligation present value")
	f.BoolVar(&c.json, "json", false, "Print the analysis as JSON instead of a markdown report")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	scales, err := parseScales(c.scales)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -scale: %v\n", err)
		return subcommands.ExitUsageError
	}
	d, status := LoadDataset(f)
	if status != subcommands.ExitSuccess {
		return status
	}
	a, err := immunize.Analyze(ctx, d.Bonds, d.Obligation, Options())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding analysis: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		r := renderer.NewReport(a, renderer.ReportOptions{
			Title:             c.title,
			Currency:          *currency,
			Scales:            scales,
			NoObligationScale: c.noPVScale,
		})
		printMarkdown(renderer.RenderReport(r))
	}
	return portfolioExitStatus(a)
}

// portfolioExitStatus is a failure only when the LP engine failed, an
// infeasible portfolio is a normal outcome.
func portfolioExitStatus(a *immunize.Analysis) subcommands.ExitStatus {
	if a.Status == immunize.PortfolioFailed {
		fmt.Fprintf(os.Stderr, "Error computing the portfolio: %v\n", a.PortfolioErr)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// parseScales parses a comma separated list of positive amounts.
func parseScales(s string) ([]float64, error) {
	scales := []float64{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", field)
		}
		if v <= 0 {
			return nil, fmt.Errorf("amount must be positive, got %v", v)
		}
		scales = append(scales, v)
	}
	return scales, nil
}
