package translator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// term is one resolved sub-phrase.
type term struct {
	expr        string
	mathForm    string
	explanation string
}

var (
	isWordRe       = regexp.MustCompile(`\bis\b`)
	singleLetterRe = regexp.MustCompile(`^[a-z]$`)

	numeralFactorRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:times\b|x\b|\*)`)
	wordFactorRe    = regexp.MustCompile(`\b(` + numberWordAlternation + `)\s+(?:times\b|x\b|\*)`)
)

var fillerWords = map[string]bool{"a": true, "an": true, "the": true, "of": true}

// parseSimpleTerm classifies text as the placeholder variable, a
// single-letter variable, a number, or an opaque symbol, in that order.
func parseSimpleTerm(text string) term {
	normalized := Normalize(text)
	t := strings.Join(strings.Fields(isWordRe.ReplaceAllString(normalized, "")), " ")
	if t == "" {
		t = normalized
	}
	if t == "" {
		t = "?"
	}

	if mentionsVariable(t) {
		return term{expr: "x", mathForm: "x", explanation: fmt.Sprintf("\"%s\" → use variable x", text)}
	}
	if singleLetterRe.MatchString(t) {
		return term{expr: t, mathForm: t, explanation: "Variable " + t}
	}
	if v, ok := WordToNumber(t); ok {
		n := formatNumber(v)
		return term{expr: n, mathForm: n, explanation: "Number " + n}
	}
	return term{expr: t, mathForm: t, explanation: fmt.Sprintf("Treat \"%s\" as symbol %s", text, t)}
}

func mentionsVariable(t string) bool {
	return strings.Contains(t, "number") || strings.Contains(t, "variable")
}

// detectVariable returns the first ASCII letter of text, lowercased, or x.
func detectVariable(text string) string {
	for _, r := range text {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return string(unicode.ToLower(r))
		}
	}
	return "x"
}

// variableIn picks the variable a multiplicative phrase applies to once its
// cue has been removed: "a number" wording means x, a standalone letter
// wins next, and detectVariable decides the rest.
func variableIn(rest string) string {
	t := Normalize(rest)
	if mentionsVariable(t) {
		return "x"
	}
	var kept []string
	for _, w := range strings.Fields(t) {
		if fillerWords[w] {
			continue
		}
		if singleLetterRe.MatchString(w) {
			return w
		}
		kept = append(kept, w)
	}
	return detectVariable(strings.Join(kept, " "))
}

// factor is a multiplicative cue found in a phrase.
type factor struct {
	value float64
	cue   string
	rest  string
}

// factorFromText finds the first multiplicative cue: twice/double, thrice,
// a numeral followed by times/x/*, then a number word followed by the same.
func factorFromText(text string) (factor, bool) {
	t := Normalize(text)

	for _, w := range []string{"twice", "double"} {
		if i := strings.Index(t, w); i >= 0 {
			return newFactor(t, 2, i, i+len(w)), true
		}
	}
	if i := strings.Index(t, "thrice"); i >= 0 {
		return newFactor(t, 3, i, i+len("thrice")), true
	}
	if loc := numeralFactorRe.FindStringSubmatchIndex(t); loc != nil {
		if v, ok := WordToNumber(t[loc[2]:loc[3]]); ok {
			return newFactor(t, v, loc[0], loc[1]), true
		}
	}
	if loc := wordFactorRe.FindStringSubmatchIndex(t); loc != nil {
		if v, ok := WordToNumber(t[loc[2]:loc[3]]); ok {
			return newFactor(t, v, loc[0], loc[1]), true
		}
	}
	return factor{}, false
}

func newFactor(t string, v float64, start, end int) factor {
	return factor{
		value: v,
		cue:   t[start:end],
		rest:  strings.Join(strings.Fields(t[:start]+" "+t[end:]), " "),
	}
}

// parseMultiplicative resolves "twice a number", "5 times y", "half of x"
// and "a third of n", deferring to parseSimpleTerm for anything else.
func parseMultiplicative(text string) term {
	t := Normalize(text)
	if f, ok := factorFromText(t); ok {
		k := formatNumber(f.value)
		v := variableIn(f.rest)
		return term{expr: k + v, mathForm: k + v, explanation: k + " × " + v}
	}
	if rest, ok := after(t, "half of"); ok {
		v := variableIn(rest)
		return term{expr: "0.5" + v, mathForm: `\tfrac{1}{2}` + v, explanation: "Half means multiply by 1/2"}
	}
	if rest, ok := after(t, "third of"); ok {
		v := variableIn(rest)
		return term{expr: "(" + v + ")/3", mathForm: `\frac{` + v + `}{3}`, explanation: "Third means divide by 3"}
	}
	return parseSimpleTerm(text)
}

func after(t, marker string) (string, bool) {
	i := strings.Index(t, marker)
	if i < 0 {
		return "", false
	}
	return t[i+len(marker):], true
}
