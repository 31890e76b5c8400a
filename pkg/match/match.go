// Package match identifies the catalog instruction a normalized source
// statement stands for. Each candidate sharing the statement's mnemonic is
// scored in [0, 1]; 1 is an exact match, 0 a rejection, and anything in
// between an accepted but uncertain match.
package match

import (
	"slices"

	"github.com/oisee/z80-asm-meter/pkg/directive"
	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

// Options configures a Matcher.
type Options struct {
	// Sets are the instruction sets candidates may come from. Empty means
	// the standard set only.
	Sets []inst.InstructionSet

	// Policy selects how storage blocks are metered.
	Policy directive.Policy
}

// Matcher scores statements against a catalog. It is immutable once built
// and safe for concurrent use.
type Matcher struct {
	catalog  *inst.Catalog
	sets     []inst.InstructionSet
	synth    *directive.Synthesizer
	operands map[*inst.Instruction][]operand
}

// New compiles the operand patterns of every catalog instruction.
func New(c *inst.Catalog, opts Options) *Matcher {
	sets := opts.Sets
	if len(sets) == 0 {
		sets = []inst.InstructionSet{inst.Standard}
	}
	m := &Matcher{
		catalog:  c,
		sets:     sets,
		synth:    directive.NewSynthesizer(c, opts.Policy),
		operands: make(map[*inst.Instruction][]operand, c.Len()),
	}
	for _, in := range c.All() {
		ops := make([]operand, len(in.Operands()))
		for i, tok := range in.Operands() {
			ops[i] = compile(tok, true)
		}
		m.operands[in] = ops
	}
	return m
}

// Match meters one normalized statement. It returns the best instruction,
// or the directive (or repeated instructions) a data definition stands
// for, or nothing when the statement is not recognized.
func (m *Matcher) Match(line string) []inst.Metered {
	mnemonic, ops := syntax.Split(line)
	if len(m.catalog.Candidates(mnemonic)) == 0 {
		out, _ := m.synth.Synthesize(mnemonic, ops)
		return out
	}
	if in, _ := m.best(mnemonic, ops); in != nil {
		return []inst.Metered{in}
	}
	return nil
}

// Best returns the best scoring instruction for a statement and its score.
// The first candidate in table order with a score of exactly 1 wins;
// otherwise the highest positive score wins, earlier candidates winning
// ties. It returns nil and 0 when no candidate scores above 0.
func (m *Matcher) Best(line string) (*inst.Instruction, float64) {
	mnemonic, ops := syntax.Split(line)
	return m.best(mnemonic, ops)
}

func (m *Matcher) best(mnemonic string, ops []string) (*inst.Instruction, float64) {
	var best *inst.Instruction
	var top float64
	for _, in := range m.catalog.Candidates(mnemonic) {
		if !m.enabled(in) {
			continue
		}
		s := m.score(in, mnemonic, ops)
		if s == 1 {
			return in, 1
		}
		if s > top {
			best, top = in, s
		}
	}
	return best, top
}

// Scored is one candidate with its score.
type Scored struct {
	Instruction *inst.Instruction
	Score       float64
}

// Rank scores every enabled candidate for a statement, in table order.
func (m *Matcher) Rank(line string) []Scored {
	mnemonic, ops := syntax.Split(line)
	var out []Scored
	for _, in := range m.catalog.Candidates(mnemonic) {
		if m.enabled(in) {
			out = append(out, Scored{in, m.score(in, mnemonic, ops)})
		}
	}
	return out
}

// Score rates a statement against a single instruction, regardless of the
// enabled instruction sets.
func (m *Matcher) Score(in *inst.Instruction, line string) float64 {
	mnemonic, ops := syntax.Split(line)
	return m.score(in, mnemonic, ops)
}

func (m *Matcher) enabled(in *inst.Instruction) bool {
	return slices.Contains(m.sets, in.Set())
}

// explicitA lists the mnemonics SDCC writes with a redundant leading "A,".
var explicitA = setOf(
	"SUB", "AND", "OR", "XOR", "CP",
	"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL",
)

func (m *Matcher) score(in *inst.Instruction, mnemonic string, ops []string) float64 {
	if in.Mnemonic() != mnemonic {
		return 0
	}
	if slices.Contains(ops, "") {
		return 0
	}

	expected, ok := m.operands[in]
	if !ok {
		return 0
	}
	pattern := in.Operands()
	switch len(ops) - len(expected) {
	case 0:
	case -1:
		// Implicit accumulator: "ADD B" for "ADD A,B".
		if mnemonic == "LD" || len(pattern) != 2 || pattern[0] != "A" {
			return 0
		}
		expected = expected[1:]
	case 1:
		// Explicit accumulator: "SUB A,B" for "SUB B".
		if !explicitA[mnemonic] || len(pattern) != 1 || ops[0] != "A" {
			return 0
		}
		ops = ops[1:]
	default:
		return 0
	}

	total := 1.0
	for i := range expected {
		total *= expected[i].score(ops[i])
		if total == 0 {
			return 0
		}
	}
	return total
}
