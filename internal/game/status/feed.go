package status

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cory-johannsen/castbot/internal/game/ability"
)

// Listed reports whether effects contains any of names, ignoring case and
// apostrophes. An empty or malformed readout lists nothing.
func Listed(effects string, names []string) bool {
	e := ability.Normalize(effects)
	if e == "" {
		return false
	}
	for _, n := range names {
		v := ability.Normalize(n)
		if v != "" && strings.Contains(e, v) {
			return true
		}
	}
	return false
}

// Suffix returns the number that follows one of names in effects, as in
// "Rage II 14" or "Rage II (12.5s)". Occurrences that run into another word,
// such as "Rage I" inside "Rage II", are skipped.
func Suffix(effects string, names []string) (float64, bool) {
	e := ability.Normalize(effects)
	for _, n := range names {
		v := ability.Normalize(n)
		if v == "" {
			continue
		}
		for from := 0; from < len(e); {
			i := strings.Index(e[from:], v)
			if i < 0 {
				break
			}
			end := from + i + len(v)
			if f, ok := number(e[end:]); ok {
				return f, true
			}
			from = from + i + 1
		}
	}
	return 0, false
}

// number parses the numeric token at the start of s after separators.
func number(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return 0, false
	}
	s = strings.TrimLeft(s, " \t:-([=")
	n := 0
	for n < len(s) && (s[n] >= '0' && s[n] <= '9' || s[n] == '.') {
		n++
	}
	if n == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
