// Package numeric implements the value-parsing grammar the line
// protocol uses for numeric payloads, plus the line trimming applied
// before parsing. Formatting of outgoing values lives in protocol.
package numeric

import (
	"strconv"
	"strings"
)

// ParseFloat parses s as a float64 using the same tolerant grammar as
// the original simulator's str_to_double: strtod-style parsing, with
// any amount of trailing space/tab (but not other characters) ignored
// after the numeric portion. Overflow and strings with no numeric
// prefix both fail.
func ParseFloat(s string) (float64, bool) {
	prefix, rest := numericPrefix(s)
	if prefix == "" {
		return 0, false
	}

	rest = strings.TrimLeft(rest, " \t")
	if rest != "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// numericPrefix splits s into the longest leading substring that
// strconv.ParseFloat could plausibly accept (sign, digits, decimal
// point, exponent) and whatever follows it.
func numericPrefix(s string) (prefix, rest string) {
	i := 0
	n := len(s)

	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digitsBefore := 0
	for i < n && isDigit(s[i]) {
		i++
		digitsBefore++
	}

	digitsAfter := 0
	if i < n && s[i] == '.' {
		j := i + 1
		for j < n && isDigit(s[j]) {
			j++
			digitsAfter++
		}
		if digitsAfter > 0 {
			i = j
		}
	}

	if digitsBefore == 0 && digitsAfter == 0 {
		return "", s
	}

	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < n && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			i = j
		}
	}

	return s[:i], s[i:]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Trim removes leading and trailing ASCII whitespace (space, tab, CR,
// LF) the same way the original simulator's trim() does, ahead of
// line parsing.
func Trim(s string) string {
	return strings.Trim(s, " \t\r\n")
}
