// Package cmd implements the CLI application to immunize a debt obligation with bonds.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/immunize"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "analysis")
	c.Register(&metricsCmd{}, "analysis")
	c.Register(&portfolioCmd{}, "analysis")

	c.Register(&fmtCmd{}, "datasets")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	maxIter        = flag.Int("max-iter", immunize.DefaultYieldMaxIter, "Maximum number of Newton-Raphson steps to solve a yield")
	tolerance      = flag.Float64("tolerance", immunize.DefaultYieldTolerance, "Residual below which a yield is accepted")
	workers        = flag.Int("workers", 0, "Number of bonds solved concurrently (0 means one per CPU)")
	currency       = flag.String("currency", immunize.DefaultCurrency, "Currency of the amounts in the dataset")
	bondsPath      = flag.String("bonds-path", immunize.DefaultBondsPath, "jsonpath selecting the bonds in a JSON dataset")
	obligationPath = flag.String("obligation-path", immunize.DefaultObligationPath, "jsonpath selecting the obligation in a JSON dataset")
	plain          = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
)

// Options returns the analysis options set by the global flags.
func Options() immunize.Options {
	return immunize.Options{
		Solver:  immunize.YieldSolver{Tolerance: *tolerance, MaxIter: *maxIter},
		Workers: *workers,
	}
}

// LoadDataset loads the dataset file given as the single positional argument.
func LoadDataset(f *flag.FlagSet) (*immunize.Dataset, subcommands.ExitStatus) {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting exactly one dataset file")
		return nil, subcommands.ExitUsageError
	}
	d, err := immunize.LoadDataset(f.Arg(0), immunize.LoadOptions{BondsPath: *bondsPath, ObligationPath: *obligationPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return d, subcommands.ExitSuccess
}

// printMarkdown prints md on the standard output, rendered for the terminal unless -plain is set.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
