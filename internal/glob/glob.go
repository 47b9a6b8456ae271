// Package glob implements the single-wildcard pattern matching used by
// the LIST command: '*' matches any substring, everything else must
// match literally.
package glob

import "strings"

// Match reports whether str matches pattern. An empty pattern matches
// everything. Matching is literal except for '*', which is resolved
// by repeatedly locating the next literal segment's first occurrence
// in the remaining string — the same greedy-leftmost algorithm as the
// original simulator's pattern_match.
func Match(pattern, str string) bool {
	if pattern == "" {
		return true
	}

	p := pattern
	s := str

	for len(p) > 0 {
		if p[0] == '*' {
			p = p[1:]
			if len(p) == 0 {
				return true // trailing '*' matches the rest of the string
			}

			// Locate the literal segment up to the next '*' (or the end of
			// the pattern); the literal comparison below then consumes it
			// and the following '*' is handled on a later iteration.
			seg := p
			if star := strings.IndexByte(p, '*'); star >= 0 {
				seg = p[:star]
			}
			idx := strings.Index(s, seg)
			if idx < 0 {
				return false
			}
			s = s[idx:]
			continue
		}

		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		p = p[1:]
		s = s[1:]
	}

	return len(s) == 0
}
