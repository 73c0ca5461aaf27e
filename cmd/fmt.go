package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/immunize"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	outputFile string
	write      bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats a dataset into the canonical text format"
}
func (*fmtCmd) Usage() string {
	return `immunize fmt [-w | -o <file>] <dataset>

  Reads a dataset (text or JSON), checks every bond and the obligation, and
  writes it back in the canonical text format. By default the result is
  printed on the standard output.

Usage Examples:
# Converts a JSON dataset to text.
$ immunize fmt -o bonds.txt bonds.json

# Formats a text dataset in-place.
$ immunize fmt -w bonds.txt
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.outputFile, "o", "", "Write the formatted dataset to this file.")
	f.BoolVar(&p.write, "w", false, "Write the formatted dataset back to the input file.")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.write && p.outputFile != "" {
		fmt.Fprintln(os.Stderr, "-w and -o flags cannot be used together")
		return subcommands.ExitUsageError
	}
	d, status := LoadDataset(f)
	if status != subcommands.ExitSuccess {
		return status
	}

	// Values are only warned about, the file is still a valid dataset.
	if err := d.Obligation.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: obligation: %v\n", err)
	}
	for i, b := range d.Bonds {
		if err := b.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", &immunize.BondError{Index: i, Err: err})
		}
	}

	var b bytes.Buffer
	if err := immunize.EncodeDataset(&b, d); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting dataset: %v\n", err)
		return subcommands.ExitFailure
	}

	output := p.outputFile
	if p.write {
		output = f.Arg(0)
	}
	if output == "" {
		fmt.Print(b.String())
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(output, b.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ Successfully formatted %q.\n", output)
	return subcommands.ExitSuccess
}
