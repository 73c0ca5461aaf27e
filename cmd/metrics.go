package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/immunize"
	"github.com/etnz/immunize/renderer"
	"github.com/google/subcommands"
)

type metricsCmd struct {
	verbose bool
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "yield, duration and convexity of each bond" }
func (*metricsCmd) Usage() string {
	return `immunize metrics [-v] <dataset>

  Solves the yield to maturity of every bond in the dataset and displays it
  with the bond duration, convexity and coverage of the obligation.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "v", false, "Also log the number of Newton-Raphson steps of each bond")
}

func (c *metricsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, status := LoadDataset(f)
	if status != subcommands.ExitSuccess {
		return status
	}
	a, err := immunize.Analyze(ctx, d.Bonds, d.Obligation, Options())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	if c.verbose {
		for i, b := range a.Bonds {
			if b.OK() {
				log.Printf("bond #%d: yield solved in %d steps", i+1, b.Iterations)
			}
		}
	}
	r := renderer.NewReport(a, renderer.ReportOptions{Currency: *currency})
	printMarkdown(renderer.RenderMetrics(r))
	return subcommands.ExitSuccess
}
