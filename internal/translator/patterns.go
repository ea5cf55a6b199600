package translator

import (
	"fmt"
	"slices"
	"strings"
)

// Pattern ids. They are persisted by history and mistake logs and
// branched on by practice classification, so they never change.
const (
	IDMoreThan          = "more_than"
	IDLessThan          = "less_than"
	IDSumOf             = "sum_of"
	IDDifferenceBetween = "difference_between"
	IDProductOf         = "product_of"
	IDQuotientOf        = "quotient_of"
	IDTimes             = "times"
	IDIncreased         = "increased"
	IDAtLeast           = "inequality_at_least"
	IDAtMost            = "inequality_at_most"
	IDPercentOf         = "percent_of"
	IDRatio             = "ratio"
	IDFunctionOf        = "function_of"
	IDDerivative        = "derivative"
	IDIntegral          = "integral"
	IDProbability       = "probability"
	IDConsecutive       = "consecutive"
	IDRate              = "rate"
)

// Pattern is one grammatical category: a detector over normalized text and
// a builder for the matched captures.
type Pattern struct {
	ID     string
	Label  string
	detect func(text string) (Match, bool)
	build  func(m Match) Result
}

// registry returns the rules in priority order. Earlier rules shadow later
// ones on overlapping text, so the order is part of the contract.
func registry(t *Translator) []Pattern {
	return []Pattern{
		{
			ID: IDMoreThan, Label: "Addition (reversed order)",
			detect: infix{connectives: []string{"more than", "greater than"}, split: lazy, notAfter: "no", left: "a", right: "b"}.match,
			build:  t.buildMoreThan,
		},
		{
			ID: IDLessThan, Label: "Subtraction (reversal)",
			detect: infix{connectives: []string{"less than", "fewer than"}, split: lazy, notAfter: "no", left: "a", right: "b"}.match,
			build:  t.buildLessThan,
		},
		{
			ID: IDSumOf, Label: "Sum of two parts",
			detect: infix{prefixes: []string{"the sum of"}, connectives: []string{"and"}, split: greedy, left: "a", right: "b"}.match,
			build:  t.buildSum,
		},
		{
			ID: IDDifferenceBetween, Label: "Difference between",
			detect: infix{prefixes: []string{"the difference between"}, connectives: []string{"and"}, split: greedy, left: "a", right: "b"}.match,
			build:  t.buildDifference,
		},
		{
			ID: IDProductOf, Label: "Product of two parts",
			detect: infix{prefixes: []string{"the product of"}, connectives: []string{"and"}, split: greedy, left: "a", right: "b"}.match,
			build:  t.buildProduct,
		},
		{
			ID: IDQuotientOf, Label: "Quotient of",
			detect: infix{prefixes: []string{"the quotient of"}, connectives: []string{"and"}, split: greedy, left: "a", right: "b"}.match,
			build:  t.buildQuotient,
		},
		{
			ID: IDTimes, Label: "Multiplicative phrase",
			detect: leadingFactor{}.match,
			build:  t.buildTimes,
		},
		{
			ID: IDIncreased, Label: "Increased / decreased",
			detect: infix{connectives: []string{"increased by", "decreased by"}, split: lazy, left: "base", right: "delta", op: "op"}.match,
			build:  t.buildIncreased,
		},
		{
			ID: IDAtLeast, Label: "At least / No less than",
			detect: infix{connectives: []string{"at least", "no less than", "minimum of"}, split: lazy, left: "left", right: "right"}.match,
			build:  t.buildAtLeast,
		},
		{
			ID: IDAtMost, Label: "At most / No more than",
			detect: infix{connectives: []string{"at most", "no more than", "max of", "maximum of"}, split: lazy, left: "left", right: "right"}.match,
			build:  t.buildAtMost,
		},
		{
			ID: IDPercentOf, Label: "Percent of",
			detect: percentSign{infix{connectives: []string{"percent of"}, split: lazy, left: "p", right: "base"}}.match,
			build:  t.buildPercent,
		},
		{
			ID: IDRatio, Label: "Ratio of A to B",
			detect: infix{prefixes: []string{"ratio of", "the ratio of"}, connectives: []string{"to"}, split: greedy, left: "a", right: "b"}.match,
			build:  t.buildRatio,
		},
		{
			ID: IDFunctionOf, Label: "Function notation",
			detect: newPattern(`^(?P<fn>[a-z]) of (?P<input>[a-z])(?: |$)`).match,
			build:  t.buildFunction,
		},
		{
			ID: IDDerivative, Label: "Derivative wording",
			detect: containsAny{"rate of change", "derivative", "slope of tangent"}.match,
			build:  t.buildDerivative,
		},
		{
			ID: IDIntegral, Label: "Integral wording",
			detect: containsAny{"area under", "accumulated change", "integral"}.match,
			build:  t.buildIntegral,
		},
		{
			ID: IDProbability, Label: "Probability & conditional",
			detect: newPattern(`probability of (?P<a>[a-z])(?: given (?P<b>[a-z]))?(?: |$)`).match,
			build:  t.buildProbability,
		},
		{
			ID: IDConsecutive, Label: "Consecutive integers",
			detect: newPattern(`consecutive (?:(?P<kind>even|odd) )?integers`).match,
			build:  t.buildConsecutive,
		},
		{
			ID: IDRate, Label: "Rate / per",
			detect: infix{connectives: []string{"per"}, split: lazy, left: "a", right: "b"}.match,
			build:  t.buildRate,
		},
	}
}

// between returns a random integer in [lo, hi].
func (t *Translator) between(lo, hi int) int { return lo + t.rnd.IntN(hi-lo+1) }

func (t *Translator) pick(options ...string) string { return options[t.rnd.IntN(len(options))] }

func appendTrap(traps []string, trap string) []string {
	if trap == "" || slices.Contains(traps, trap) {
		return traps
	}
	return append(traps, trap)
}

func (t *Translator) buildMoreThan(m Match) Result {
	left := parseMultiplicative(m.Group("a"))
	right := parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  right.expr + " + " + left.expr,
		MathForm:    right.mathForm + " + " + left.mathForm,
		Explanation: []string{right.explanation, `"more than" means add`, left.explanation + " added after"},
		Traps:       []string{"Order matters: “more than” adds to the quantity that comes after the phrase."},
		Generator: func() string {
			return fmt.Sprintf("%d %s than %s", t.between(2, 10), t.pick("more", "greater"), t.pick("twice a number", "a number", "three times a number"))
		},
	}
}

func (t *Translator) buildLessThan(m Match) Result {
	sub := parseMultiplicative(m.Group("a"))
	base := parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  base.expr + " - " + sub.expr,
		MathForm:    base.mathForm + " - " + sub.mathForm,
		Explanation: []string{base.explanation, "“less than” means subtract the earlier amount", "Subtract " + sub.explanation},
		Traps:       []string{"Reverse order: subtract the first quantity from the second."},
		Generator: func() string {
			return fmt.Sprintf("%d %s than %s", t.between(1, 9), t.pick("less", "fewer"), t.pick("three times a number", "twice a number", "a number"))
		},
	}
}

func (t *Translator) buildSum(m Match) Result {
	a, b := parseMultiplicative(m.Group("a")), parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  a.expr + " + " + b.expr,
		MathForm:    a.mathForm + " + " + b.mathForm,
		Explanation: []string{"Sum means add", a.explanation, b.explanation},
		Traps:       []string{},
		Generator:   func() string { return fmt.Sprintf("the sum of %d and a number", t.between(1, 8)) },
	}
}

func (t *Translator) buildDifference(m Match) Result {
	a, b := parseMultiplicative(m.Group("a")), parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  a.expr + " - " + b.expr,
		MathForm:    a.mathForm + " - " + b.mathForm,
		Explanation: []string{"Difference means subtract first minus second", a.explanation, b.explanation},
		Traps:       []string{"Order stays as written for “difference between A and B”: do A - B."},
		Generator:   func() string { return fmt.Sprintf("the difference between a number and %d", t.between(1, 6)) },
	}
}

func (t *Translator) buildProduct(m Match) Result {
	a, b := parseMultiplicative(m.Group("a")), parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  a.expr + " * " + b.expr,
		MathForm:    a.mathForm + ` \cdot ` + b.mathForm,
		Explanation: []string{"Product means multiply", a.explanation, b.explanation},
		Traps:       []string{"Remember parentheses if parts are sums/differences."},
		Generator:   func() string { return fmt.Sprintf("the product of %d and a number", t.between(1, 5)) },
	}
}

func (t *Translator) buildQuotient(m Match) Result {
	a, b := parseMultiplicative(m.Group("a")), parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  a.expr + " / " + b.expr,
		MathForm:    `\frac{` + a.mathForm + `}{` + b.mathForm + `}`,
		Explanation: []string{"Quotient means divide first by second", a.explanation, b.explanation},
		Traps:       []string{"Division is not commutative: keep the order."},
		Generator:   func() string { return fmt.Sprintf("the quotient of %d and a number", t.between(1, 12)) },
	}
}

// maxTimesNesting bounds how many multiplicative cues are resolved through
// the registry. Deeper cues go to parseMultiplicative, so each level costs
// one pass of the detectors over the remaining text.
const maxTimesNesting = 8

// nested is a sub-phrase resolved either by a registered rule or by
// parseMultiplicative.
type nested struct {
	term
	lines []string
	traps []string
}

func (t *Translator) nestedPhrase(text string, depth int) nested {
	text = Normalize(text)
	if depth < maxTimesNesting {
		for _, p := range t.patterns {
			m, ok := p.detect(text)
			if !ok {
				continue
			}
			var r Result
			if p.ID == IDTimes {
				r = t.timesAt(m, depth)
			} else {
				r = p.build(m)
			}
			return nested{term: term{expr: r.Expression, mathForm: r.MathForm}, lines: r.Explanation, traps: r.Traps}
		}
	}
	s := parseMultiplicative(text)
	return nested{term: s, lines: []string{s.explanation}}
}

func (t *Translator) buildTimes(m Match) Result { return t.timesAt(m, 0) }

// timesAt builds a multiplicative phrase found depth levels below the top.
func (t *Translator) timesAt(m Match, depth int) Result {
	factorText := m.Group("factor")
	k := 1.0
	if f, ok := factorFromText(factorText); ok {
		k = f.value
	}
	ks := formatNumber(k)
	rest := t.nestedPhrase(m.Group("rest"), depth+1)

	res := Result{
		Explanation: append([]string{fmt.Sprintf("%s → multiply by %s", factorText, ks)}, rest.lines...),
		Traps:       []string{},
		Generator: func() string {
			if t.rnd.IntN(2) == 0 {
				return fmt.Sprintf("%d times the sum of a number and 2", t.between(2, 6))
			}
			return fmt.Sprintf("twice the difference between a number and %d", t.between(1, 9))
		},
	}
	if singleLetterRe.MatchString(rest.expr) {
		res.Expression = ks + rest.expr
		res.MathForm = ks + rest.mathForm
	} else {
		res.Expression = ks + "(" + rest.expr + ")"
		res.MathForm = ks + `\left(` + rest.mathForm + `\right)`
		res.Traps = appendTrap(res.Traps, "Keep the whole quantity in parentheses before multiplying.")
	}
	for _, tr := range rest.traps {
		res.Traps = appendTrap(res.Traps, tr)
	}
	return res
}

func (t *Translator) buildIncreased(m Match) Result {
	base := parseMultiplicative(m.Group("base"))
	delta := parseMultiplicative(m.Group("delta"))
	conn := m.Group("op")
	op, verb, word := "+", "add", "increased"
	if strings.HasPrefix(conn, "decreased") {
		op, verb, word = "-", "subtract", "decreased"
	}
	return Result{
		Expression:  base.expr + " " + op + " " + delta.expr,
		MathForm:    base.mathForm + " " + op + " " + delta.mathForm,
		Explanation: []string{base.explanation, conn + " means " + verb, delta.explanation},
		Traps:       []string{},
		Generator:   func() string { return fmt.Sprintf("a number %s by %d", word, t.between(1, 7)) },
	}
}

func (t *Translator) buildAtLeast(m Match) Result {
	left, right := parseMultiplicative(m.Group("left")), parseMultiplicative(m.Group("right"))
	return Result{
		Expression:  left.expr + " >= " + right.expr,
		MathForm:    left.mathForm + ` \ge ` + right.mathForm,
		Explanation: []string{left.explanation, "“at least / no less than” → ≥", right.explanation},
		Traps:       []string{"≥ direction: value cannot be smaller than the bound."},
		Generator: func() string {
			return fmt.Sprintf("a number is %s %d", t.pick("at least", "no less than"), t.between(1, 9))
		},
	}
}

func (t *Translator) buildAtMost(m Match) Result {
	left, right := parseMultiplicative(m.Group("left")), parseMultiplicative(m.Group("right"))
	return Result{
		Expression:  left.expr + " <= " + right.expr,
		MathForm:    left.mathForm + ` \le ` + right.mathForm,
		Explanation: []string{left.explanation, "“at most / no more than” → ≤", right.explanation},
		Traps:       []string{"≤ direction: value cannot exceed the bound."},
		Generator: func() string {
			return fmt.Sprintf("a number is %s %d", t.pick("at most", "no more than"), t.between(1, 12))
		},
	}
}

func (t *Translator) buildPercent(m Match) Result {
	p := parseSimpleTerm(m.Group("p"))
	base := parseMultiplicative(m.Group("base"))
	traps := []string{"Percent must be divided by 100 before multiplying."}

	var coef, coefMath, line string
	if v, ok := WordToNumber(p.expr); ok {
		coef = formatNumber(v / 100)
		coefMath = coef
		line = fmt.Sprintf("Convert percent: %s%% → %s", p.expr, coef)
	} else {
		// A symbolic figure keeps its division by 100 rather than
		// producing a number out of nothing.
		coef = "(" + p.expr + "/100)"
		coefMath = `\frac{` + p.mathForm + `}{100}`
		line = fmt.Sprintf("Convert percent: %s%% → %s/100", p.expr, p.expr)
		traps = append(traps, "The percent figure is not a number, so it stays divided by 100.")
	}
	return Result{
		Expression:  joinCoefficient(coef, base.expr, " * "),
		MathForm:    joinCoefficient(coefMath, base.mathForm, ` \cdot `),
		Explanation: []string{line, base.explanation},
		Traps:       traps,
		Generator:   func() string { return fmt.Sprintf("%d percent of a number", t.between(11, 90)) },
	}
}

// joinCoefficient writes coef next to base, separated by sep when base
// starts with a digit and plain juxtaposition would merge the numbers.
func joinCoefficient(coef, base, sep string) string {
	if base != "" && (isDigit(rune(base[0])) || base[0] == '.' || base[0] == '-') {
		return coef + sep + base
	}
	return coef + base
}

func (t *Translator) buildRatio(m Match) Result {
	a, b := parseMultiplicative(m.Group("a")), parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  a.expr + "/" + b.expr,
		MathForm:    `\frac{` + a.mathForm + `}{` + b.mathForm + `}`,
		Explanation: []string{"Ratio uses division A/B", a.explanation, b.explanation},
		Traps:       []string{"Order matters: ratio of A to B = A/B."},
		Generator:   func() string { return fmt.Sprintf("ratio of %d to a number", t.between(1, 5)) },
	}
}

// functionChain reads "f of g of x" as [f g x].
func functionChain(text string) []string {
	words := strings.Fields(text)
	var chain []string
	for i := 0; i < len(words); i += 2 {
		if !singleLetterRe.MatchString(words[i]) {
			break
		}
		chain = append(chain, words[i])
		if i+1 >= len(words) || words[i+1] != "of" {
			break
		}
	}
	return chain
}

func (t *Translator) buildFunction(m Match) Result {
	chain := functionChain(m.Text)
	if len(chain) < 2 {
		chain = []string{m.Group("fn"), m.Group("input")}
	}
	inner := chain[len(chain)-1]
	var lines []string
	for i := len(chain) - 2; i >= 0; i-- {
		fn := chain[i]
		applied := fn + "(" + inner + ")"
		lines = append(lines, fmt.Sprintf("“%s of %s” means function %s", fn, inner, applied))
		inner = applied
	}
	return Result{
		Expression:  inner,
		MathForm:    inner,
		Explanation: lines,
		Traps:       []string{"Use parentheses for function input."},
		Generator:   func() string { return t.pick("f of g of x", "f of x", "g of t", "h of f of x") },
	}
}

func (t *Translator) buildDerivative(Match) Result {
	return Result{
		Expression:  "dy/dx",
		MathForm:    `\frac{dy}{dx}`,
		Explanation: []string{"“rate of change” → derivative dy/dx"},
		Traps:       []string{"Specify variables: with respect to x means denominator x."},
		Generator: func() string {
			return t.pick("derivative of f at x", "the rate of change of y with respect to x", "slope of tangent to the curve")
		},
	}
}

func (t *Translator) buildIntegral(Match) Result {
	return Result{
		Expression:  "∫ f(x) dx",
		MathForm:    `\int f(x)\,dx`,
		Explanation: []string{"“area under/accumulated change” → integral"},
		Traps:       []string{"Include bounds if provided; units accumulate."},
		Generator: func() string {
			return t.pick("area under v from 0 to t", "the accumulated change in water volume", "the integral of f")
		},
	}
}

func (t *Translator) buildProbability(m Match) Result {
	a, b := parseSimpleTerm(m.Group("a")).expr, m.Group("b")
	res := Result{
		Expression:  "P(" + a + ")",
		MathForm:    "P(" + a + ")",
		Explanation: []string{"Probability of " + a},
		Traps:       []string{"Conditional probability uses vertical bar | meaning “given”."},
		Generator: func() string {
			return t.pick("probability of A given B", "probability of E", "the probability of B given A")
		},
	}
	if b != "" {
		b = parseSimpleTerm(b).expr
		res.Expression = "P(" + a + "|" + b + ")"
		res.MathForm = "P(" + a + ` \mid ` + b + ")"
		res.Explanation = []string{"Probability of " + a + " given " + b}
	}
	return res
}

func (t *Translator) buildConsecutive(m Match) Result {
	res := Result{
		Expression:  "n, n+1, n+2",
		MathForm:    "n, n+1, n+2",
		Explanation: []string{"Consecutive integers increase by 1"},
		Traps:       []string{"Odd/even sequences use +2 increments."},
		Generator: func() string {
			return fmt.Sprintf("%s consecutive %sintegers", t.pick("three", "the first of three"), t.pick("even ", "odd ", ""))
		},
	}
	switch m.Group("kind") {
	case "even":
		res.Expression, res.MathForm = "n, n+2, n+4", "n, n+2, n+4"
		res.Explanation = []string{"Even integers jump by 2"}
	case "odd":
		res.Expression, res.MathForm = "n, n+2, n+4", "n, n+2, n+4"
		res.Explanation = []string{"Odd integers jump by 2"}
	}
	return res
}

func (t *Translator) buildRate(m Match) Result {
	a, b := parseMultiplicative(m.Group("a")), parseMultiplicative(m.Group("b"))
	return Result{
		Expression:  a.expr + "/" + b.expr,
		MathForm:    `\frac{` + a.mathForm + `}{` + b.mathForm + `}`,
		Explanation: []string{"“per” means divide", a.explanation, b.explanation},
		Traps:       []string{"Units flip if you invert per-phrases."},
		Generator: func() string {
			return fmt.Sprintf("%d %s per %s", t.between(11, 100), t.pick("miles", "dollars", "words"), t.pick("hour", "pound", "minute"))
		},
	}
}
