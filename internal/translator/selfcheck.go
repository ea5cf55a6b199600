package translator

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed selfcheck.yaml
var builtinCases []byte

// Case is one phrase with the expression it should translate to. Pattern,
// when set, is the rule id the phrase must be classified by.
type Case struct {
	Phrase  string `yaml:"phrase"`
	Expect  string `yaml:"expect"`
	Pattern string `yaml:"pattern,omitempty"`
}

// Mismatch is a failed Case with what the translator produced instead.
type Mismatch struct {
	Case       Case
	Expression string
	PatternID  string
}

// Report summarizes a Check run.
type Report struct {
	Total  int
	Passed int
	Failed []Mismatch
}

// LoadCases parses a YAML list of cases.
func LoadCases(r io.Reader) ([]Case, error) {
	var cases []Case
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cases); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	for i, c := range cases {
		if Normalize(c.Phrase) == "" {
			return nil, fmt.Errorf("case %d: empty phrase", i+1)
		}
	}
	return cases, nil
}

// BuiltinCases returns the corpus shipped with the package.
func BuiltinCases() ([]Case, error) {
	return LoadCases(bytes.NewReader(builtinCases))
}

// Check translates every case and compares normalized expressions.
func (t *Translator) Check(cases []Case) Report {
	rep := Report{Total: len(cases)}
	for _, c := range cases {
		res, _ := t.Translate(c.Phrase)
		ok := Normalize(res.Expression) == Normalize(c.Expect)
		if c.Pattern != "" && res.PatternID != c.Pattern {
			ok = false
		}
		if ok {
			rep.Passed++
			continue
		}
		rep.Failed = append(rep.Failed, Mismatch{Case: c, Expression: res.Expression, PatternID: res.PatternID})
	}
	return rep
}
