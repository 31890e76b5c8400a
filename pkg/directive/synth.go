package directive

import (
	"fmt"

	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/numlit"
	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

// Policy selects how storage blocks are metered.
type Policy uint8

const (
	// KeepDirectives meters a storage block as data.
	KeepDirectives Policy = iota

	// ExpandInstructions meters a storage block as count copies of the
	// one-byte instruction whose opcode equals the fill value, when there
	// is one. An unspecified fill is NOP.
	ExpandInstructions
)

// MaxStorage is the largest storage block accepted: the whole address space.
const MaxStorage = 0x10000

// defaultFill is the opcode used for a storage block without a fill value
// under ExpandInstructions.
const defaultFill = "00"

// Synthesizer builds directives from data-definition statements.
type Synthesizer struct {
	catalog *inst.Catalog
	policy  Policy
}

// NewSynthesizer returns a synthesizer. The catalog is only consulted for
// storage blocks under ExpandInstructions and may be nil otherwise.
func NewSynthesizer(c *inst.Catalog, p Policy) *Synthesizer {
	return &Synthesizer{catalog: c, policy: p}
}

// Synthesize meters one data-definition statement. It reports false when
// mnemonic is not a data directive or its operands are rejected: no
// operands, an empty operand, or a storage count that is not a number in
// [0, MaxStorage].
func (s *Synthesizer) Synthesize(mnemonic string, ops []string) ([]inst.Metered, bool) {
	kind, ok := Lookup(mnemonic)
	if !ok || len(ops) == 0 {
		return nil, false
	}
	for _, op := range ops {
		if op == "" {
			return nil, false
		}
	}

	text := syntax.Join(mnemonic, ops)
	switch kind {
	case Byte:
		return one(&Directive{Kind: Byte, text: text, data: byteList(ops)}), true
	case Word:
		return one(&Directive{Kind: Word, text: text, data: wordList(ops)}), true
	}
	return s.storage(text, ops)
}

func one(d *Directive) []inst.Metered { return []inst.Metered{d} }

func byteList(ops []string) []string {
	var data []string
	for _, op := range ops {
		if str, ok := unquote(op); ok {
			for i := 0; i < len(str); i++ {
				data = append(data, hexByte(int(str[i])))
			}
			continue
		}
		if v, ok := numlit.Eval(op); ok {
			data = append(data, hexByte(v))
		} else {
			data = append(data, UnknownByte)
		}
	}
	return data
}

func wordList(ops []string) []string {
	data := make([]string, 0, 2*len(ops))
	for _, op := range ops {
		if v, ok := numlit.Eval(op); ok {
			v &= 0xFFFF
			data = append(data, hexByte(v), hexByte(v>>8))
		} else {
			data = append(data, UnknownWord, UnknownWord)
		}
	}
	return data
}

func (s *Synthesizer) storage(text string, ops []string) ([]inst.Metered, bool) {
	if len(ops) > 2 {
		return nil, false
	}
	count, ok := numlit.Eval(ops[0])
	if !ok || count < 0 || count > MaxStorage {
		return nil, false
	}

	fill := UnknownByte
	if len(ops) == 2 {
		if v, ok := numlit.Eval(ops[1]); ok {
			fill = hexByte(v)
		}
	}

	if s.policy == ExpandInstructions && count > 0 {
		opcode := fill
		if len(ops) == 1 {
			opcode = defaultFill
		}
		if in, ok := s.instruction(opcode); ok {
			out := make([]inst.Metered, count)
			for i := range out {
				out[i] = in
			}
			return out, true
		}
	}

	data := make([]string, count)
	for i := range data {
		data[i] = fill
	}
	return one(&Directive{Kind: Storage, text: text, data: data}), true
}

// instruction finds the one-byte instruction encoded as opcode.
func (s *Synthesizer) instruction(opcode string) (*inst.Instruction, bool) {
	if s.catalog == nil || opcode == UnknownByte {
		return nil, false
	}
	in, ok := s.catalog.ByOpcode(opcode)
	if !ok || in.Size() != 1 {
		return nil, false
	}
	return in, true
}

func hexByte(v int) string {
	return fmt.Sprintf("%02X", v&0xFF)
}

// unquote decodes an operand that is exactly one quoted string. Either
// quote character may delimit it; a doubled delimiter inside stands for
// one delimiter character.
func unquote(op string) (string, bool) {
	if len(op) < 2 || op[0] != '"' && op[0] != '\'' {
		return "", false
	}
	q := op[0]
	var b []byte
	for i := 1; i < len(op); i++ {
		if op[i] != q {
			b = append(b, op[i])
			continue
		}
		if i+1 < len(op) && op[i+1] == q {
			b = append(b, q)
			i++
			continue
		}
		// closing quote must end the operand
		return string(b), i == len(op)-1
	}
	return "", false
}
