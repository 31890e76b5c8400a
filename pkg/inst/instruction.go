package inst

import (
	"fmt"
	"strings"
)

// InstructionSet tags the CPU variant family an instruction belongs to.
type InstructionSet string

const (
	Standard InstructionSet = "S" // Z80, documented and undocumented
	Next     InstructionSet = "N" // ZX Spectrum Next extensions (Z80N)
)

// Cycles is a (min, max) cost pair. Min and Max differ only for
// instructions whose cost depends on a condition (taken/not taken).
type Cycles struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Add returns the element-wise sum of two pairs.
func (c Cycles) Add(o Cycles) Cycles {
	return Cycles{c.Min + o.Min, c.Max + o.Max}
}

// Scale returns the pair multiplied by n.
func (c Cycles) Scale(n int) Cycles {
	return Cycles{c.Min * n, c.Max * n}
}

// String renders "max" or "max/min" (taken/not taken order).
func (c Cycles) String() string {
	if c.Min == c.Max {
		return fmt.Sprintf("%d", c.Max)
	}
	return fmt.Sprintf("%d/%d", c.Max, c.Min)
}

// Timing holds the cost of an instruction on each supported platform.
type Timing struct {
	Z80 Cycles `json:"z80"` // T-states
	MSX Cycles `json:"msx"` // T-states including the M1 wait state
	CPC Cycles `json:"cpc"` // NOP-equivalents
}

// Add returns the platform-wise sum of two timings.
func (t Timing) Add(o Timing) Timing {
	return Timing{t.Z80.Add(o.Z80), t.MSX.Add(o.MSX), t.CPC.Add(o.CPC)}
}

// Pattern is one row of the instruction table: a canonical instruction or
// a parametric family of instructions.
type Pattern struct {
	Set    InstructionSet
	Text   string // mnemonic plus operands, e.g. "ADD A,(IX+o)"
	Timing Timing
	Opcode string // hex bytes, may hold placeholders ("DD 86 o", "80+r")
	Size   int    // bytes
}

// Metered is anything whose cost can be accumulated: instructions and
// data directives alike.
type Metered interface {
	Text() string
	Timing() Timing
	Bytes() string
	Size() int
}

// Instruction is a concrete catalog entry. Instructions are created when a
// catalog is built and never change afterwards, so they can be shared
// freely between goroutines.
type Instruction struct {
	pattern  Pattern
	mnemonic string
	operands []string
}

func newInstruction(p Pattern) *Instruction {
	mnemonic, operands := split(p.Text)
	return &Instruction{pattern: p, mnemonic: mnemonic, operands: operands}
}

// split separates "LD A,(HL)" into "LD" and ["A", "(HL)"].
func split(text string) (string, []string) {
	text = strings.TrimSpace(text)
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return text, nil
	}
	parts := strings.Split(text[i+1:], ",")
	for j := range parts {
		parts[j] = strings.TrimSpace(parts[j])
	}
	return text[:i], parts
}

func (in *Instruction) Set() InstructionSet { return in.pattern.Set }
func (in *Instruction) Text() string        { return in.pattern.Text }
func (in *Instruction) Timing() Timing      { return in.pattern.Timing }
func (in *Instruction) Bytes() string       { return in.pattern.Opcode }
func (in *Instruction) Size() int           { return in.pattern.Size }
func (in *Instruction) Pattern() Pattern    { return in.pattern }

// Mnemonic returns the first token of the instruction text.
func (in *Instruction) Mnemonic() string { return in.mnemonic }

// Operands returns the comma-separated operands of the instruction text.
// The slice is shared and must not be modified.
func (in *Instruction) Operands() []string { return in.operands }

func (in *Instruction) String() string { return in.pattern.Text }
