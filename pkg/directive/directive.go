// Package directive synthesizes pseudo-instructions for data definitions:
// byte lists, word lists and storage blocks. A directive carries a size
// and a byte sequence but no execution time.
package directive

import (
	"strings"

	"github.com/oisee/z80-asm-meter/pkg/inst"
)

// Kind is the family a data directive belongs to.
type Kind uint8

const (
	Byte    Kind = iota // DB and friends
	Word                // DW and friends
	Storage             // DS and friends
)

var kindNames = [...]string{"byte", "word", "storage"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Placeholder tokens for values that cannot be evaluated from the text.
const (
	UnknownByte = "n"
	UnknownWord = "nn"
)

// spellings maps every accepted directive mnemonic to its kind.
var spellings = map[string]Kind{
	"DB": Byte, "DEFB": Byte, "DEFM": Byte, "DM": Byte, ".DB": Byte, "BYTE": Byte, ".BYTE": Byte,
	"DW": Word, "DEFW": Word, ".DW": Word, "WORD": Word, ".WORD": Word,
	"DS": Storage, "DEFS": Storage, ".DS": Storage, "BLOCK": Storage, ".BLOCK": Storage,
}

// Lookup reports whether mnemonic names a data directive, and which kind.
func Lookup(mnemonic string) (Kind, bool) {
	k, ok := spellings[mnemonic]
	return k, ok
}

// Directive is a data pseudo-instruction. It implements inst.Metered with
// zero timing on every platform.
type Directive struct {
	Kind Kind
	text string
	data []string // two hex digits per byte, or a placeholder token
}

func (d *Directive) Text() string        { return d.text }
func (d *Directive) Timing() inst.Timing { return inst.Timing{} }
func (d *Directive) Bytes() string       { return strings.Join(d.data, " ") }
func (d *Directive) Size() int           { return len(d.data) }

// Data returns the byte tokens. The slice is shared and must not be
// modified.
func (d *Directive) Data() []string { return d.data }

func (d *Directive) String() string { return d.text }
