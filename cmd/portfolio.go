package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/immunize"
	"github.com/etnz/immunize/renderer"
	"github.com/google/subcommands"
)

type portfolioCmd struct {
	scales string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "immunizing portfolio with the largest convexity" }
func (*portfolioCmd) Usage() string {
	return `immunize portfolio [-scale <pv,...>] <dataset>

  Displays only the immunizing portfolio of the dataset.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scales, "scale", "", "Comma separated present values to scale the allocation to")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	r := renderer.NewReport(a, renderer.ReportOptions{Currency: *currency, Scales: scales})
	printMarkdown(renderer.RenderPortfolio(r))
	return portfolioExitStatus(a)
}
