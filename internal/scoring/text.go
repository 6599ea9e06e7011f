package scoring

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// normalizeText trims, collapses inner whitespace and casefolds unless the
// comparison is case sensitive.
func normalizeText(s string, caseSensitive bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// words splits s into words with punctuation dropped.
func words(s string, caseSensitive bool) []string {
	out := make([]string, 0, 8)
	var current []rune
	flush := func() {
		if len(current) > 0 {
			out = append(out, string(current))
			current = current[:0]
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r):
			// skip
		default:
			if !caseSensitive {
				r = unicode.ToLower(r)
			}
			current = append(current, r)
		}
	}
	flush()
	return out
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
func containsPhrase(text, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(text) {
		return false
	}
	for i := 0; i+len(phrase) <= len(text); i++ {
		match := true
		for j := range phrase {
			if text[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// parseDecimalLoose accepts "10.4", " 10.4 ", "10,4" and "10.4 cm".
func parseDecimalLoose(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	if v, err := decimal.NewFromString(s); err == nil {
		return v, true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if v, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1)); err == nil {
			return v, true
		}
	}
	if fields := strings.Fields(s); len(fields) > 1 {
		return parseDecimalLoose(fields[0])
	}
	return decimal.Zero, false
}
