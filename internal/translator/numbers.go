package translator

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// numberWords maps spelled-out numbers to values. Compound forms such as
// "twenty one" are not combined.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
	"eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13,
	"fourteen": 14, "fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90, "hundred": 100,
}

var numeralRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// numberWordAlternation is the table's keys, longest first, joined for use
// inside a regular expression.
var numberWordAlternation = func() string {
	words := make([]string, 0, len(numberWords))
	for w := range numberWords {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return strings.Join(words, "|")
}()

// WordToNumber resolves a decimal numeral or a single number word.
func WordToNumber(token string) (float64, bool) {
	if token == "" {
		return 0, false
	}
	if numeralRe.MatchString(token) {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	if v, ok := numberWords[token]; ok {
		return float64(v), true
	}
	return 0, false
}

// formatNumber renders v in its shortest decimal form ("2", "0.2", "12.5").
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
