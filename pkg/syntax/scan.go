// Package syntax turns raw assembler source lines into normalized
// statements: labels and comments removed, statements split, whitespace
// collapsed and everything outside quoted literals upper-cased.
package syntax

import (
	"strings"
)

// quotes tracks whether a scan position lies inside a quoted literal. The
// apostrophe of the shadow register pair AF' never opens a literal.
type quotes struct {
	open byte
}

// step consumes s[i] and reports whether it was inside (or delimiting) a
// literal.
func (q *quotes) step(s string, i int) bool {
	c := s[i]
	if q.open != 0 {
		if c == q.open {
			q.open = 0
		}
		return true
	}
	if c == '"' || c == '\'' && !afterAF(s, i) {
		q.open = c
		return true
	}
	return false
}

func afterAF(s string, i int) bool {
	return i >= 2 && strings.EqualFold(s[i-2:i], "AF")
}

// stripComment cuts s at the first comment marker found outside quotes.
func stripComment(s string, markers []string) string {
	var q quotes
	for i := 0; i < len(s); i++ {
		if q.step(s, i) {
			continue
		}
		for _, m := range markers {
			if strings.HasPrefix(s[i:], m) {
				return s[:i]
			}
		}
	}
	return s
}

// splitOutside splits s at every sep found outside quotes.
func splitOutside(s string, sep byte) []string {
	var parts []string
	var q quotes
	start := 0
	for i := 0; i < len(s); i++ {
		if q.step(s, i) {
			continue
		}
		if s[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// clean collapses runs of whitespace into one space, trims, and upper-cases
// everything outside quoted literals.
func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var q quotes
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if q.step(s, i) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteByte(c)
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Split separates a normalized statement into its mnemonic and its
// comma-separated operands. Commas inside quoted literals do not split.
// An operand list ending in a comma yields an empty last operand.
func Split(line string) (string, []string) {
	line = strings.TrimSpace(line)
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return line, nil
	}
	rest := strings.TrimSpace(line[i+1:])
	if rest == "" {
		return line[:i], nil
	}
	ops := splitOutside(rest, ',')
	for j := range ops {
		ops[j] = strings.TrimSpace(ops[j])
	}
	return line[:i], ops
}

// Join is the inverse of Split.
func Join(mnemonic string, operands []string) string {
	if len(operands) == 0 {
		return mnemonic
	}
	return mnemonic + " " + strings.Join(operands, ",")
}
