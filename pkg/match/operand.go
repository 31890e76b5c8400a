package match

import (
	"strings"

	"github.com/oisee/z80-asm-meter/pkg/numlit"
)

// kind is the closed vocabulary of operand placeholders used by the
// instruction table.
type kind uint8

const (
	kindImmediate   kind = iota // n, nn, o, b: anything that is not a register
	kindVerbatim                // a register, pair or condition spelled exactly
	kindReg8                    // r: B, C, D, E, H or L
	kindIndexOffset             // IX+o, IY+o
	kindIndexHigh               // IXh, IYh
	kindIndexLow                // IXl, IYl
	kindIndexByte               // IXp, IYp: either half
	kindReg8Index               // p, q: B, C, D, E or an index register half
	kindLiteral                 // a fixed number: IM 0, RST 38H, OUT (C),0
	kindIndirect                // (inner)
)

var kindNames = [...]string{
	"immediate", "verbatim", "reg8", "index+offset", "index-high",
	"index-low", "index-byte", "reg8/index-byte", "literal", "indirect",
}

func (k kind) String() string { return kindNames[k] }

// operand is one compiled pattern operand.
type operand struct {
	kind  kind
	text  string   // verbatim or literal spelling; "IX" or "IY" for index kinds
	value int      // kindLiteral
	inner *operand // kindIndirect
}

// verbatim names must be matched character for character.
var verbatim = setOf(
	"A", "B", "C", "D", "E", "H", "L", "F", "I", "R",
	"AF", "AF'", "BC", "DE", "HL", "SP", "IX", "IY",
	"IXH", "IXL", "IYH", "IYL",
	"NZ", "Z", "NC", "PO", "PE", "P", "M",
)

var reg8 = setOf("B", "C", "D", "E", "H", "L")

var reg8NoHL = setOf("B", "C", "D", "E")

// Spellings of the index register halves accepted across assemblers.
var (
	indexHigh = map[string]map[string]bool{
		"IX": setOf("IXH", "HX", "XH"),
		"IY": setOf("IYH", "HY", "YH"),
	}
	indexLow = map[string]map[string]bool{
		"IX": setOf("IXL", "LX", "XL"),
		"IY": setOf("IYL", "LY", "YL"),
	}
)

// registers holds every register spelling; the default rule never gives a
// full score to one of these.
var registers = setOf(
	"A", "B", "C", "D", "E", "H", "L", "F", "I", "R",
	"AF", "AF'", "BC", "DE", "HL", "SP", "IX", "IY",
	"IXH", "HX", "XH", "IXL", "LX", "XL",
	"IYH", "HY", "YH", "IYL", "LY", "YL",
)

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// compile classifies one operand of a table pattern. Indirection is only
// recognized at the top level.
func compile(tok string, top bool) operand {
	if top && len(tok) > 2 && tok[0] == '(' && tok[len(tok)-1] == ')' {
		inner := compile(tok[1:len(tok)-1], false)
		return operand{kind: kindIndirect, text: tok, inner: &inner}
	}
	switch tok {
	case "r":
		return operand{kind: kindReg8}
	case "p":
		return operand{kind: kindReg8Index, text: "IX"}
	case "q":
		return operand{kind: kindReg8Index, text: "IY"}
	case "IX+o", "IY+o":
		return operand{kind: kindIndexOffset, text: tok[:2]}
	case "IXh", "IYh":
		return operand{kind: kindIndexHigh, text: tok[:2]}
	case "IXl", "IYl":
		return operand{kind: kindIndexLow, text: tok[:2]}
	case "IXp", "IYp":
		return operand{kind: kindIndexByte, text: tok[:2]}
	}
	if verbatim[tok] {
		return operand{kind: kindVerbatim, text: tok}
	}
	if v, ok := numlit.Parse(tok); ok {
		return operand{kind: kindLiteral, text: tok, value: v}
	}
	return operand{kind: kindImmediate, text: tok}
}

// score rates how well a source operand fits this pattern operand.
func (o *operand) score(cand string) float64 {
	switch o.kind {
	case kindVerbatim:
		return bool01(cand == o.text)
	case kindReg8:
		return bool01(reg8[cand])
	case kindIndexOffset:
		return bool01(isIndexExpr(cand, o.text))
	case kindIndexHigh:
		return bool01(indexHigh[o.text][cand])
	case kindIndexLow:
		return bool01(indexLow[o.text][cand])
	case kindIndexByte:
		return bool01(isIndexByte(cand, o.text))
	case kindReg8Index:
		return bool01(reg8NoHL[cand] || isIndexByte(cand, o.text))
	case kindLiteral:
		// A number of another value is rejected rather than left to the
		// default rule, so "IM 2" cannot stop at "IM 0".
		if cand == strings.ToUpper(o.text) {
			return 1
		}
		if v, ok := numlit.Parse(cand); ok {
			return bool01(v == o.value)
		}
	case kindIndirect:
		if o.inner.kind == kindIndexOffset && isBareIndex(cand, o.inner.text) {
			return 1
		}
		inner, ok := stripIndirection(cand)
		if !ok {
			return 0
		}
		return o.inner.score(inner)
	}
	return scoreImmediate(cand)
}

// scoreImmediate is the fallback when text alone cannot tell a number from
// a label or an expression. A register in that position is accepted with
// less confidence.
func scoreImmediate(cand string) float64 {
	if inner, ok := stripIndirection(cand); ok {
		cand = inner
	}
	if registers[cand] || isIndexExpr(cand, "IX") || isIndexExpr(cand, "IY") {
		return 0.75
	}
	return 1
}

func bool01(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func isIndexByte(cand, reg string) bool {
	return indexHigh[reg][cand] || indexLow[reg][cand]
}

// isIndexExpr reports whether cand is reg, optionally followed by an
// offset: "IX", "IX+5", "IX-OFS".
func isIndexExpr(cand, reg string) bool {
	if !strings.HasPrefix(cand, reg) {
		return false
	}
	return len(cand) == len(reg) || !isWordByte(cand[len(reg)])
}

// isBareIndex accepts the SDCC form where the offset precedes the
// indirection: "(IX)", "5 (IX)", "[IY]".
func isBareIndex(cand, reg string) bool {
	return strings.HasSuffix(cand, "("+reg+")") || strings.HasSuffix(cand, "["+reg+"]")
}

func isWordByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

// stripIndirection removes one level of parentheses or brackets when the
// opening delimiter closes at the end of cand.
func stripIndirection(cand string) (string, bool) {
	if len(cand) < 2 {
		return "", false
	}
	lp, rp := cand[0], cand[len(cand)-1]
	if !(lp == '(' && rp == ')' || lp == '[' && rp == ']') {
		return "", false
	}
	depth := 0
	for i := 0; i < len(cand); i++ {
		switch cand[i] {
		case lp:
			depth++
		case rp:
			depth--
			if depth == 0 && i != len(cand)-1 {
				return "", false
			}
		}
	}
	return strings.TrimSpace(cand[1 : len(cand)-1]), true
}
