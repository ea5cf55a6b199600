package translator

import (
	"regexp"
	"strings"
)

// Match is a successful detection: the normalized text plus named captures.
type Match struct {
	Text   string
	Groups map[string]string
}

// Group returns the named capture, or "" when it did not participate.
func (m Match) Group(name string) string { return m.Groups[name] }

// span says where the left capture of an infix phrase ends.
type span int

const (
	// lazy ends the left capture at the first connective.
	lazy span = iota
	// greedy ends the left capture at the last connective.
	greedy
)

// infix matches "[prefix] LEFT connective RIGHT" on normalized text.
// Connectives are whole-word phrases; both captures must be non-empty.
type infix struct {
	prefixes    []string
	connectives []string
	split       span
	// notAfter rejects a connective whose preceding word is this one.
	notAfter string
	// left, right and op name the captures; op is optional.
	left, right, op string
}

func (r infix) match(text string) (Match, bool) {
	body, ok := stripPrefix(text, r.prefixes)
	if !ok {
		return Match{}, false
	}

	best, bestConn := -1, ""
	for _, c := range r.connectives {
		needle := " " + c + " "
		for from := 0; ; {
			i := strings.Index(body[from:], needle)
			if i < 0 {
				break
			}
			i += from
			from = i + 1
			if i == 0 || i+len(needle) >= len(body) {
				continue
			}
			if r.notAfter != "" && lastWord(body[:i]) == r.notAfter {
				continue
			}
			if best < 0 || (r.split == lazy && i < best) || (r.split == greedy && i > best) {
				best, bestConn = i, c
			}
		}
	}
	if best < 0 {
		return Match{}, false
	}

	groups := map[string]string{
		r.left:  body[:best],
		r.right: body[best+len(bestConn)+2:],
	}
	if r.op != "" {
		groups[r.op] = bestConn
	}
	return Match{Text: text, Groups: groups}, true
}

// percentSignRe finds a '%' written after a figure, with or without a space.
var percentSignRe = regexp.MustCompile(`(\d) ?%`)

// percentSign spells out "20%" as "20 percent" before matching.
type percentSign struct{ infix }

func (p percentSign) match(text string) (Match, bool) {
	return p.infix.match(percentSignRe.ReplaceAllString(text, "$1 percent"))
}

// stripPrefix removes the first of prefixes that leads text as whole words.
// An empty prefix list always succeeds.
func stripPrefix(text string, prefixes []string) (string, bool) {
	if len(prefixes) == 0 {
		return text, true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(text, p+" ") {
			return text[len(p)+1:], true
		}
	}
	return "", false
}

func lastWord(s string) string {
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		return s[i+1:]
	}
	return s
}

// containsAny matches when text contains any of the phrases anywhere.
type containsAny []string

func (c containsAny) match(text string) (Match, bool) {
	for _, p := range c {
		if strings.Contains(text, p) {
			return Match{Text: text, Groups: map[string]string{"cue": p}}, true
		}
	}
	return Match{}, false
}

// pattern matches a regular expression with named groups. Expressions are
// written against normalized text, so single spaces separate words.
type pattern struct{ re *regexp.Regexp }

func newPattern(expr string) pattern { return pattern{re: regexp.MustCompile(expr)} }

func (p pattern) match(text string) (Match, bool) {
	sub := p.re.FindStringSubmatch(text)
	if sub == nil {
		return Match{}, false
	}
	groups := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name != "" && i < len(sub) {
			groups[name] = sub[i]
		}
	}
	return Match{Text: text, Groups: groups}, true
}

// leadingFactor matches a phrase opening with a multiplicative cue:
// twice, thrice, double, "<numeral> times" or "<number word> times".
type leadingFactor struct{}

func (leadingFactor) match(text string) (Match, bool) {
	words := strings.Fields(text)
	n := 0
	switch {
	case len(words) > 1 && (words[0] == "twice" || words[0] == "thrice" || words[0] == "double"):
		n = 1
	case len(words) > 2 && words[1] == "times":
		if _, ok := WordToNumber(words[0]); ok {
			n = 2
		}
	}
	if n == 0 {
		return Match{}, false
	}
	return Match{Text: text, Groups: map[string]string{
		"factor": strings.Join(words[:n], " "),
		"rest":   strings.Join(words[n:], " "),
	}}, true
}
