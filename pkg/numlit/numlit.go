// Package numlit parses numeric literals written in the notations used by
// Z80 assemblers, and evaluates small constant expressions built from them.
package numlit

import (
	"regexp"
	"strconv"
	"strings"
)

// rule is one notation: a pattern whose first submatch holds the digits,
// and the radix those digits are written in.
type rule struct {
	re    *regexp.Regexp
	radix int
}

// rules are tried in order; the first matching pattern decides the radix.
// Several prefixes and suffixes are substrings of each other ("0x1B" also
// ends in B, "017O" also starts with 0), so the most specific go first.
var rules = []rule{
	{regexp.MustCompile(`^0X([0-9A-F]+)$`), 16},
	{regexp.MustCompile(`^[#$&]([0-9A-F]+)$`), 16},
	{regexp.MustCompile(`^([0-9][0-9A-F]*)H$`), 16},
	{regexp.MustCompile(`^[0@]([0-7]+)$`), 8},
	{regexp.MustCompile(`^([0-7]+)O$`), 8},
	{regexp.MustCompile(`^%([01]+)$`), 2},
	{regexp.MustCompile(`^([01]+)B$`), 2},
	{regexp.MustCompile(`^([0-9]+)$`), 10},
}

// Parse returns the value of a single numeric literal such as "0x1F",
// "$1F", "1Fh", "017o", "%101" or "10". It reports false for anything
// else, including symbols and out-of-alphabet digits; it never panics.
func Parse(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for _, r := range rules {
		m := r.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], r.radix, 64)
		if err != nil {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

// IsNumber reports whether s is a numeric literal.
func IsNumber(s string) bool {
	_, ok := Parse(s)
	return ok
}
