package translator

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes compatibility forms and drops combining marks, so
// "Ｔｗｉｃｅ" and "twíce" both reach the matcher as "twice".
var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

const strippedPunctuation = ",.;:!?"

// Normalize lowercases text, strips punctuation and collapses whitespace.
// A '.' between two digits is a decimal point and survives. The result
// is stable: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	folded, _, err := transform.String(foldMarks, text)
	if err != nil {
		folded = text
	}
	rs := []rune(strings.ToLower(folded))

	var b strings.Builder
	b.Grow(len(rs))
	for i, r := range rs {
		if strings.ContainsRune(strippedPunctuation, r) {
			if r == '.' && i > 0 && i+1 < len(rs) && isDigit(rs[i-1]) && isDigit(rs[i+1]) {
				b.WriteRune(r)
			}
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
