package immunize

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// This file contains the codecs of the bond dataset.
//
// The text format is a stream of whitespace separated numbers:
//
//	N                                   number of bonds
//	price maturity cf_1 ... cf_maturity  N times
//	amount                              obligation amount
//	dueIn                               obligation horizon
//
// A '#' starts a comment that runs to the end of the line.
//
// The JSON format is any JSON document, the bonds and the obligation being
// selected with jsonpath expressions (see DefaultBondsPath and DefaultObligationPath).

const (
	DefaultBondsPath      = "$.bonds"
	DefaultObligationPath = "$.obligation"
)

// Dataset is the input of an analysis: a set of bonds and the obligation to immunize.
type Dataset struct {
	Bonds      []Bond
	Obligation DebtObligation
}

// token is a word of the text format, with its position for error messages.
type token struct {
	text string
	line int
}

type tokenizer struct {
	tokens []token
	pos    int
}

func tokenize(r io.Reader) (*tokenizer, error) {
	t := &tokenizer{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, f := range strings.Fields(text) {
			t.tokens = append(t.tokens, token{text: f, line: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *tokenizer) next(what string) (token, error) {
	if t.pos >= len(t.tokens) {
		return token{}, fmt.Errorf("unexpected end of input, expecting %s", what)
	}
	tok := t.tokens[t.pos]
	t.pos++
	return tok, nil
}

func (t *tokenizer) readFloat(what string) (float64, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil || !isFinite(v) {
		return 0, fmt.Errorf("line %d: %s: invalid number %q", tok.line, what, tok.text)
	}
	return v, nil
}

func (t *tokenizer) readInt(what string) (int, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok.text)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: invalid integer %q", tok.line, what, tok.text)
	}
	if v < 0 {
		return 0, fmt.Errorf("line %d: %s: must not be negative, got %d", tok.line, what, v)
	}
	return v, nil
}

// DecodeDataset reads a dataset in the text format.
//
// Only the structure is checked here, values (like a non positive price) are
// checked by the analysis so that one bad bond does not prevent reporting the others.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	t, err := tokenize(r)
	if err != nil {
		return nil, err
	}
	n, err := t.readInt("number of bonds")
	if err != nil {
		return nil, err
	}
	d := &Dataset{Bonds: make([]Bond, 0, min(n, 1024))}
	for i := 1; i <= n; i++ {
		var b Bond
		if b.Price, err = t.readFloat(fmt.Sprintf("price of bond #%d", i)); err != nil {
			return nil, err
		}
		if b.Maturity, err = t.readInt(fmt.Sprintf("maturity of bond #%d", i)); err != nil {
			return nil, err
		}
		if left := len(t.tokens) - t.pos; b.Maturity > left {
			return nil, fmt.Errorf("unexpected end of input, expecting %d cash flows of bond #%d, got %d", b.Maturity, i, left)
		}
		b.CashFlows = make([]float64, b.Maturity)
		for j := range b.CashFlows {
			if b.CashFlows[j], err = t.readFloat(fmt.Sprintf("cash flow #%d of bond #%d", j+1, i)); err != nil {
				return nil, err
			}
		}
		d.Bonds = append(d.Bonds, b)
	}
	if d.Obligation.Amount, err = t.readFloat("obligation amount"); err != nil {
		return nil, err
	}
	if d.Obligation.DueIn, err = t.readFloat("obligation due time"); err != nil {
		return nil, err
	}
	if t.pos < len(t.tokens) {
		tok := t.tokens[t.pos]
		return nil, fmt.Errorf("line %d: unexpected %q after the obligation", tok.line, tok.text)
	}
	return d, nil
}

// EncodeDataset writes d in the canonical text format. Bond names are written
// as comments, the text format has no other place for them.
func EncodeDataset(w io.Writer, d *Dataset) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# bonds: price maturity cash flows...\n")
	fmt.Fprintf(bw, "%d\n", len(d.Bonds))
	for _, b := range d.Bonds {
		if b.Name != "" {
			fmt.Fprintf(bw, "# %s\n", strings.ReplaceAll(b.Name, "\n", " "))
		}
		fields := []string{formatFloat(b.Price), strconv.Itoa(b.Maturity)}
		for _, c := range b.CashFlows {
			fields = append(fields, formatFloat(c))
		}
		fmt.Fprintln(bw, strings.Join(fields, " "))
	}
	fmt.Fprintf(bw, "# obligation: amount, then due time\n")
	fmt.Fprintf(bw, "%s\n%s\n", formatFloat(d.Obligation.Amount), formatFloat(d.Obligation.DueIn))
	return bw.Flush()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// DecodeDatasetJSON reads a dataset from a JSON document. bondsPath selects the
// list of bonds and obligationPath the obligation object, empty paths mean the
// default ones.
//
// A bond is an object {"name", "price", "maturity", "cashFlows"}, where
// maturity defaults to the number of cash flows. The obligation is an object
// {"amount", "dueIn"}.
func DecodeDatasetJSON(r io.Reader, bondsPath, obligationPath string) (*Dataset, error) {
	if bondsPath == "" {
		bondsPath = DefaultBondsPath
	}
	if obligationPath == "" {
		obligationPath = DefaultObligationPath
	}

	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	type jbond struct {
		Name      string    `json:"name"`
		Price     float64   `json:"price"`
		Maturity  *int      `json:"maturity"`
		CashFlows []float64 `json:"cashFlows"`
	}
	type jobligation struct {
		Amount float64 `json:"amount"`
		DueIn  float64 `json:"dueIn"`
	}

	var jbonds []jbond
	if err := selectJSON(jobj, bondsPath, &jbonds); err != nil {
		return nil, fmt.Errorf("error reading bonds at %q: %w", bondsPath, err)
	}
	jval, err := jsonpath.Get(obligationPath, jobj)
	if err != nil {
		return nil, fmt.Errorf("error reading obligation at %q: %w", obligationPath, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	var jo jobligation
	if err := remarshal(jval, &jo); err != nil {
		return nil, fmt.Errorf("error reading obligation at %q: %w", obligationPath, err)
	}

	d := &Dataset{Obligation: DebtObligation{Amount: jo.Amount, DueIn: jo.DueIn}}
	for _, jb := range jbonds {
		b := Bond{Name: jb.Name, Price: jb.Price, Maturity: len(jb.CashFlows), CashFlows: jb.CashFlows}
		if jb.Maturity != nil {
			b.Maturity = *jb.Maturity
		}
		d.Bonds = append(d.Bonds, b)
	}
	return d, nil
}

// selectJSON evaluates path on jobj and decodes the result into v.
func selectJSON(jobj any, path string, v any) error {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return err
	}
	return remarshal(jval, v)
}

// remarshal converts a generic JSON value into a typed one.
func remarshal(jval any, v any) error {
	if jval == nil {
		return errors.New("nothing selected")
	}
	raw, err := json.Marshal(jval)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// LoadOptions configures LoadDataset for JSON files.
type LoadOptions struct {
	BondsPath      string
	ObligationPath string
}

// LoadDataset reads a dataset file. Files with a .json extension are decoded
// as JSON, any other file as text.
func LoadDataset(path string, opts LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset file %q: %w", path, err)
	}
	defer f.Close()

	var d *Dataset
	if strings.EqualFold(filepath.Ext(path), ".json") {
		d, err = DecodeDatasetJSON(f, opts.BondsPath, opts.ObligationPath)
	} else {
		d, err = DecodeDataset(f)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode dataset file %q: %w", path, err)
	}
	return d, nil
}
