package inst

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Register encoding order used when a family such as "ADD A,r" is expanded.
// Encoding: low three bits rrr (B=000, C=001, D=010, E=011, H=100, L=101, A=111).
var (
	regNames = [7]string{"A", "B", "C", "D", "E", "H", "L"}
	regEnc   = [7]uint8{7, 0, 1, 2, 3, 4, 5}
)

// expandable matches single-byte opcodes of the form "base+r".
var expandable = regexp.MustCompile(`^([0-9A-F]{2})\+r$`)

// Catalog indexes every concrete instruction by mnemonic and by opcode.
// A Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	all        []*Instruction
	byMnemonic map[string][]*Instruction
	byOpcode   map[string]*Instruction
}

// NewCatalog expands the patterns into concrete instructions and indexes
// them. Mnemonic buckets keep table order. When two instructions share an
// opcode the later one wins the opcode index.
func NewCatalog(patterns []Pattern) *Catalog {
	c := &Catalog{
		byMnemonic: make(map[string][]*Instruction),
		byOpcode:   make(map[string]*Instruction),
	}
	for _, p := range patterns {
		for _, in := range Expand(p) {
			c.all = append(c.all, in)
			c.byMnemonic[in.mnemonic] = append(c.byMnemonic[in.mnemonic], in)
			c.byOpcode[in.pattern.Opcode] = in
		}
	}
	return c
}

// LoadCatalog builds a catalog from the built-in instruction table.
func LoadCatalog() (*Catalog, error) {
	patterns, err := DefaultTable()
	if err != nil {
		return nil, err
	}
	return NewCatalog(patterns), nil
}

// Expand turns a pattern into its concrete instructions. A one-byte pattern
// whose opcode is "XX+r" becomes seven instructions, one per register in
// the order A, B, C, D, E, H, L, with opcode XX plus the register encoding.
// Any other pattern yields a single instruction.
func Expand(p Pattern) []*Instruction {
	m := expandable.FindStringSubmatch(p.Opcode)
	if m == nil || p.Size != 1 {
		return []*Instruction{newInstruction(p)}
	}
	base, _ := strconv.ParseUint(m[1], 16, 8)

	mnemonic, operands := split(p.Text)
	out := make([]*Instruction, 0, len(regNames))
	for i, reg := range regNames {
		q := p
		q.Text = substitute(mnemonic, operands, "r", reg)
		q.Opcode = fmt.Sprintf("%02X", uint8(base)+regEnc[i])
		out = append(out, newInstruction(q))
	}
	return out
}

// substitute rebuilds instruction text with every operand equal to
// placeholder replaced by value.
func substitute(mnemonic string, operands []string, placeholder, value string) string {
	ops := make([]string, len(operands))
	for i, op := range operands {
		if op == placeholder {
			op = value
		}
		ops[i] = op
	}
	if len(ops) == 0 {
		return mnemonic
	}
	return mnemonic + " " + strings.Join(ops, ",")
}

// Candidates returns the instructions sharing a mnemonic, in table order.
// The slice is shared and must not be modified.
func (c *Catalog) Candidates(mnemonic string) []*Instruction {
	return c.byMnemonic[mnemonic]
}

// ByOpcode returns the instruction encoded exactly as opcode, e.g. "00".
func (c *Catalog) ByOpcode(opcode string) (*Instruction, bool) {
	in, ok := c.byOpcode[opcode]
	return in, ok
}

// All returns every instruction in table order.
func (c *Catalog) All() []*Instruction {
	return c.all
}

// Len returns the number of concrete instructions.
func (c *Catalog) Len() int {
	return len(c.all)
}

// Mnemonics returns the number of distinct mnemonics.
func (c *Catalog) Mnemonics() int {
	return len(c.byMnemonic)
}
