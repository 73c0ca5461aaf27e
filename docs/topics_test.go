package docs

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fenced block kinds of a documentation scenario. A setup block writes the
// dataset files of a fresh scenario, a run block calls immunize and keeps its
// output for the next console block, a check block asserts on the files.
const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	consoleCheck = "console check"
	bashCheck    = "bash check"
)

var topicLine = regexp.MustCompile(`^\*\s+([^:]+):`)

// TestTopics checks that the topic list of readme.md and the embedded topics
// are the same.
func TestTopics(t *testing.T) {
	readme, err := GetTopic("readme")
	if err != nil {
		t.Fatalf("GetTopic(readme) unexpected error: %v", err)
	}
	var listed []string
	for _, line := range strings.Split(readme, "\n") {
		if m := topicLine.FindStringSubmatch(line); m != nil {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("readme.md lists %q: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() unexpected error: %v", err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

// TestScenarios runs the immunize sessions shown in the topics and in the
// project README against a freshly built binary.
func TestScenarios(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping documentation scenarios in short mode")
	}
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash is required to run the documentation scenarios")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	bin := filepath.Join(t.TempDir(), "immunize")
	if out, err := exec.Command("go", "build", "-o", bin, "../immunize/").CombinedOutput(); err != nil {
		t.Fatalf("go build immunize: %v\n%s", err, out)
	}
	env := append(os.Environ(), "PATH="+filepath.Dir(bin)+string(os.PathListSeparator)+os.Getenv("PATH"))

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			s := scenario{env: env, dir: t.TempDir()}
			for _, b := range readBlocks(t, file) {
				s.play(t, b)
			}
		})
	}
}

// block is a scenario step, found at File:Line.
type block struct {
	Kind   string
	Script string
	File   string
	Line   int
}

// readBlocks returns the scenario blocks of a markdown file, other fenced
// blocks are examples for the reader only.
func readBlocks(t *testing.T, file string) []block {
	t.Helper()
	src, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read %s: %v", file, err)
	}
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var blocks []block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(fcb.Info.Segment.Value(src))
		switch kind {
		case bashSetup, bashRun, consoleCheck, bashCheck:
		default:
			return ast.WalkContinue, nil
		}
		var script strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			seg := fcb.Lines().At(i)
			script.Write(seg.Value(src))
		}
		blocks = append(blocks, block{
			Kind:   kind,
			Script: script.String(),
			File:   file,
			// goldmark has no positions, count the lines up to the info string.
			Line: bytes.Count(src[:fcb.Info.Segment.Start], []byte{'\n'}) + 1,
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// scenario is the state carried from one block to the next: the directory
// holding the datasets and the output of the last immunize run.
type scenario struct {
	env    []string
	dir    string
	output string
}

func (s *scenario) play(t *testing.T, b block) {
	t.Helper()
	if b.Kind == consoleCheck {
		want := strings.TrimSpace(b.Script)
		got := strings.ReplaceAll(strings.TrimSpace(s.output), "\t", "        ")
		if got != want {
			t.Errorf("%s:%d: immunize output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q", b.File, b.Line, got, want, got, want)
		}
		return
	}
	if b.Kind == bashSetup {
		s.dir = t.TempDir()
	}

	cmd := exec.Command("bash", "-c", "set -e; "+b.Script)
	cmd.Dir = s.dir
	cmd.Env = s.env
	out, err := cmd.CombinedOutput()
	if b.Kind == bashRun {
		s.output = string(out)
	}
	if err == nil {
		return
	}
	if b.Kind == bashCheck {
		t.Errorf("%s:%d: %s failed: %v\n%s", b.File, b.Line, b.Kind, err, out)
		return
	}
	t.Fatalf("%s:%d: %s failed: %v\n%s", b.File, b.Line, b.Kind, err, out)
}
