package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
)

const scenario = `# two bonds immunizing 10000 due in 2 periods
2
1000 1 1100
1000 3 100 100 1100
10000 2
`

// writeDataset writes content into a temporary dataset file and returns its path.
func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

// execute runs cmd with args, as the commander would.
func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	*plain = true
	t.Cleanup(func() { *plain = false })

	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("invalid arguments %q: %v", args, err)
	}
	return cmd.Execute(context.Background(), f)
}

func TestParseScales(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		want      []float64
		expectErr bool
	}{
		{"default", "500,750,1000", []float64{500, 750, 1000}, false},
		{"spaces", " 500 , 1009.36 ", []float64{500, 1009.36}, false},
		{"empty", "", []float64{}, false},
		{"trailing comma", "500,", []float64{500}, false},
		{"not a number", "500,abc", nil, true},
		{"negative", "-500", nil, true},
		{"zero", "0", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseScales(tc.input)
			if hasErr := err != nil; hasErr != tc.expectErr {
				t.Fatalf("parseScales(%q) returned error: %v, want error: %v", tc.input, err, tc.expectErr)
			}
			if tc.expectErr {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("parseScales(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestCommandsExitStatus(t *testing.T) {
	feasible := writeDataset(t, "bonds.txt", scenario)
	infeasible := writeDataset(t, "far.txt", "2\n1000 1 1100\n1000 3 100 100 1100\n10000 5\n")
	jsonDataset := writeDataset(t, "bonds.json", `{"bonds":[{"price":1000,"cashFlows":[1100]},{"price":1000,"cashFlows":[100,100,1100]}],"obligation":{"amount":10000,"dueIn":2}}`)
	badObligation := writeDataset(t, "bad.txt", "1\n1000 1 1100\n-1 2\n")
	corrupted := writeDataset(t, "corrupted.txt", "2\n1000 1 1100\n")

	testCases := []struct {
		name string
		cmd  subcommands.Command
		args []string
		want subcommands.ExitStatus
	}{
		{"report", &reportCmd{}, []string{feasible}, subcommands.ExitSuccess},
		{"report json", &reportCmd{}, []string{"-json", feasible}, subcommands.ExitSuccess},
		{"report json dataset", &reportCmd{}, []string{jsonDataset}, subcommands.ExitSuccess},
		{"report infeasible", &reportCmd{}, []string{infeasible}, subcommands.ExitSuccess},
		{"report invalid obligation", &reportCmd{}, []string{badObligation}, subcommands.ExitFailure},
		{"report corrupted", &reportCmd{}, []string{corrupted}, subcommands.ExitFailure},
		{"report missing file", &reportCmd{}, []string{filepath.Join(t.TempDir(), "missing.txt")}, subcommands.ExitFailure},
		{"report no file", &reportCmd{}, nil, subcommands.ExitUsageError},
		{"report bad scale", &reportCmd{}, []string{"-scale", "x", feasible}, subcommands.ExitUsageError},
		{"metrics", &metricsCmd{}, []string{"-v", feasible}, subcommands.ExitSuccess},
		{"portfolio", &portfolioCmd{}, []string{"-scale", "100", feasible}, subcommands.ExitSuccess},
		{"portfolio infeasible", &portfolioCmd{}, []string{infeasible}, subcommands.ExitSuccess},
		{"fmt", &fmtCmd{}, []string{feasible}, subcommands.ExitSuccess},
		{"fmt -w -o", &fmtCmd{}, []string{"-w", "-o", "x", feasible}, subcommands.ExitUsageError},
		{"topic", &topicCmd{}, nil, subcommands.ExitSuccess},
		{"topic unknown", &topicCmd{}, []string{"no-such-topic"}, subcommands.ExitFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := execute(t, tc.cmd, tc.args...); got != tc.want {
				t.Errorf("%s %q = %v, want %v", tc.cmd.Name(), tc.args, got, tc.want)
			}
		})
	}
}

func TestFmtConvertsJSON(t *testing.T) {
	input := writeDataset(t, "bonds.json", `{
  "portfolio": {
    "candidates": [
      {"name": "Zero", "price": 1000, "maturity": 1, "cashFlows": [1100]},
      {"price": 1000, "cashFlows": [100, 100, 1100]}
    ],
    "debt": {"amount": 10000, "dueIn": 2}
  }
}`)
	output := filepath.Join(t.TempDir(), "bonds.txt")

	*bondsPath = "$.portfolio.candidates"
	*obligationPath = "$.portfolio.debt"
	t.Cleanup(func() {
		*bondsPath = "$.bonds"
		*obligationPath = "$.obligation"
	})

	if got := execute(t, &fmtCmd{}, "-o", output, input); got != subcommands.ExitSuccess {
		t.Fatalf("fmt returned %v", got)
	}
	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("fmt did not write the output: %v", err)
	}
	want := `# bonds: price maturity cash flows...
2
# Zero
1000 1 1100
1000 3 100 100 1100
# obligation: amount, then due time
10000
2
`
	if diff := cmp.Diff(want, string(content)); diff != "" {
		t.Errorf("fmt output mismatch (-want +got):\n%s", diff)
	}
}
