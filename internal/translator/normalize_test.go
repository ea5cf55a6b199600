package translator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Three MORE than, a Number!! ": "three more than a number",
		"2.5 times x":                    "2.5 times x",
		"the end.":                       "the end",
		"1,000 per day":                  "1000 per day",
		"a;b:c?d":                        "abcd",
		"tab\tand\nnewline":              "tab and newline",
		"Ｔｗｉｃｅ a number":                "twice a number",
		"twíce a númber":                 "twice a number",
		"?!.;":                           "",
		"":                               "",
	}
	for in, want := range cases {
		require.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"3 More than TWICE a number.",
		"1..2 and 1.2.3",
		"x .5 and 5. y",
		"  spaced   out\t\ttext  ",
		"İstanbul café",
		"½ of a number",
		"?",
	}
	for _, in := range inputs {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestWordToNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  float64
		ok    bool
	}{
		{"7", 7, true},
		{"2.5", 2.5, true},
		{"-3", -3, true},
		{"twenty", 20, true},
		{"hundred", 100, true},
		{"twenty one", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		got, ok := WordToNumber(tc.token)
		require.Equal(t, tc.ok, ok, "token %q", tc.token)
		require.Equal(t, tc.want, got, "token %q", tc.token)
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2", formatNumber(2))
	require.Equal(t, "0.2", formatNumber(20.0/100))
	require.Equal(t, "0.07", formatNumber(7.0/100))
	require.Equal(t, "12.5", formatNumber(12.5))
	require.Equal(t, "0", formatNumber(0))
}
