package translator

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// FallbackID is the pattern id reported when no rule matched.
const FallbackID = "fallback"

// Result is the translation of one phrase.
type Result struct {
	Expression  string   `json:"expression"`
	MathForm    string   `json:"mathForm"`
	Explanation []string `json:"explanation"`
	Traps       []string `json:"traps"`
	PatternID   string   `json:"patternId"`
	Label       string   `json:"label"`

	// Generator returns a fresh practice phrase that translates through the
	// same rule. Nil for fallback results.
	Generator func() string `json:"-"`
}

// Rand is the randomness practice generators draw from.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Option configures a Translator.
type Option func(*Translator)

// WithRand makes generators draw from r. Calls are serialized, so a
// *rand.Rand may be shared between goroutines.
func WithRand(r Rand) Option {
	return func(t *Translator) {
		if r != nil {
			t.rnd = &lockedRand{r: r}
		}
	}
}

// Translator turns phrases into expressions. It is safe for concurrent use.
type Translator struct {
	rnd      Rand
	patterns []Pattern
}

// New returns a Translator with the standard rule registry.
func New(opts ...Option) *Translator {
	t := &Translator{rnd: globalRand{}}
	for _, o := range opts {
		o(t)
	}
	t.patterns = registry(t)
	return t
}

var std = New()

// Default returns the package default Translator.
func Default() *Translator { return std }

// Translate translates phrase with the package default Translator.
func Translate(phrase string) (Result, bool) { return std.Translate(phrase) }

// Translate normalizes phrase and builds the result of the first rule whose
// detector matches. ok is false only when the phrase is empty after
// normalization; any other input yields a result, possibly the fallback.
func (t *Translator) Translate(phrase string) (res Result, ok bool) {
	text := Normalize(phrase)
	if text == "" {
		return Result{}, false
	}
	for _, p := range t.patterns {
		m, matched := p.detect(text)
		if !matched {
			continue
		}
		res = p.build(m)
		res.PatternID = p.ID
		res.Label = p.Label
		if len(res.Explanation) == 0 {
			res.Explanation = []string{p.Label}
		}
		if res.Traps == nil {
			res.Traps = []string{}
		}
		return res, true
	}
	return fallback(text), true
}

// PatternInfo describes one registered rule.
type PatternInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Patterns lists the registry in priority order.
func (t *Translator) Patterns() []PatternInfo {
	out := make([]PatternInfo, 0, len(t.patterns))
	for _, p := range t.patterns {
		out = append(out, PatternInfo{ID: p.ID, Label: p.Label})
	}
	return out
}

// Patterns lists the default registry in priority order.
func Patterns() []PatternInfo { return std.Patterns() }

const rephraseTrap = "Phrase may be ambiguous. Try adding “of”, “more than”, etc."

func fallback(text string) Result {
	simple := parseSimpleTerm(text)
	explanation := []string{simple.explanation, "No specific pattern matched; review wording."}
	if hint, ok := closestConnective(text); ok {
		explanation = append(explanation, "Closest known wording: “"+hint+"”")
	}
	return Result{
		Expression:  simple.expr,
		MathForm:    simple.mathForm,
		Explanation: explanation,
		Traps:       []string{rephraseTrap},
		PatternID:   FallbackID,
		Label:       "Unrecognized",
	}
}

// connectiveVocabulary is the wording the registry understands, compared
// against misspelled input when nothing matched.
var connectiveVocabulary = []string{
	"more than", "greater than", "less than", "fewer than",
	"the sum of", "the difference between", "the product of", "the quotient of",
	"increased by", "decreased by", "at least", "at most",
	"no less than", "no more than", "percent of", "ratio of", "probability of",
	"consecutive integers", "rate of change", "derivative", "integral", "area under",
}

const maxHintDistance = 2

// closestConnective finds a connective within a small edit distance of some
// run of words in text. Exact hits are ignored since they would have matched
// a rule already, or are used in a way no rule accepts.
func closestConnective(text string) (string, bool) {
	words := strings.Fields(text)
	best, bestDist := "", maxHintDistance+1
	for _, c := range connectiveVocabulary {
		n := len(strings.Fields(c))
		for i := 0; i+n <= len(words); i++ {
			window := strings.Join(words[i:i+n], " ")
			if window == c {
				continue
			}
			if d := levenshtein.ComputeDistance(window, c); d < bestDist && d*3 < len(c) {
				best, bestDist = c, d
			}
		}
	}
	return best, best != ""
}
