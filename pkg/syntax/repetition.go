package syntax

import (
	"github.com/oisee/z80-asm-meter/pkg/numlit"
)

// Repetition recognizes the directives that open and close a repeated
// block. It only reports the repeat count; the caller replicates the
// enclosed lines.
type Repetition interface {
	// Open reports whether line opens a repeat block, and how many times
	// the block repeats.
	Open(line string) (count int, ok bool)

	// Close reports whether line closes the innermost repeat block.
	Close(line string) bool
}

// ReptEndm is the generic "REPT n ... ENDM" form.
type ReptEndm struct{}

func (ReptEndm) Open(line string) (int, bool) {
	return openBlock(line, "REPT")
}

func (ReptEndm) Close(line string) bool {
	return closeBlock(line, "ENDM")
}

// DupEdup is the sjasmplus form: "DUP n ... EDUP" or "REPT n ... ENDR".
type DupEdup struct{}

func (DupEdup) Open(line string) (int, bool) {
	if n, ok := openBlock(line, "DUP"); ok {
		return n, true
	}
	return openBlock(line, "REPT")
}

func (DupEdup) Close(line string) bool {
	return closeBlock(line, "EDUP") || closeBlock(line, "ENDR")
}

// openBlock accepts the directive with an optional count and an optional
// second operand (an iteration variable). A missing, non-positive or
// unevaluable count repeats the block once.
func openBlock(line, directive string) (int, bool) {
	mnemonic, ops := Split(line)
	if !isDirective(mnemonic, directive) || len(ops) > 2 {
		return 0, false
	}
	if len(ops) == 0 {
		return 1, true
	}
	n, ok := numlit.Eval(ops[0])
	if !ok || n <= 0 {
		return 1, true
	}
	return n, true
}

func closeBlock(line, directive string) bool {
	mnemonic, ops := Split(line)
	return isDirective(mnemonic, directive) && len(ops) == 0
}

// isDirective accepts the directive with or without a leading dot.
func isDirective(mnemonic, directive string) bool {
	return mnemonic == directive || len(mnemonic) > 1 && mnemonic[0] == '.' && mnemonic[1:] == directive
}
