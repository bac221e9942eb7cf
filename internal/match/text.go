package match

import (
	"strings"
	"unicode"

	"github.com/raphaelgruber/circlemap/internal/vocab"
)

const minTokenLen = 4

// fuzzy reports a case-insensitive substring match in either direction.
func fuzzy(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// sharedLabel picks the order-independent display form of two matching strings.
func sharedLabel(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case len(a) < len(b):
		return a
	case len(b) < len(a):
		return b
	case a < b:
		return a
	default:
		return b
	}
}

// tokens returns the lowercase words of s that carry meaning.
func tokens(s string, v *vocab.Vocabulary) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= minTokenLen && !v.IsStopWord(w) {
			out = append(out, w)
		}
	}
	return out
}

// textMatch is fuzzy plus a shared meaningful word, so "AI mentorship"
// matches "mentorship for founders".
func textMatch(a, b string, v *vocab.Vocabulary) bool {
	if fuzzy(a, b) {
		return true
	}
	tb := tokens(b, v)
	for _, ta := range tokens(a, v) {
		for _, w := range tb {
			if ta == w {
				return true
			}
		}
	}
	return false
}

// firstMatch returns the first pair (x from xs, y from ys) that match.
func firstMatch(xs, ys []string, v *vocab.Vocabulary) (string, string, bool) {
	for _, x := range xs {
		for _, y := range ys {
			if textMatch(x, y, v) {
				return x, y, true
			}
		}
	}
	return "", "", false
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
