package inst

import (
	"fmt"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// Platform selects which instruction sets are visible and which timing
// column is reported.
type Platform int

const (
	Z80  Platform = iota // plain Z80, T-states
	MSX                  // Z80 with the M1 wait state
	CPC                  // Amstrad CPC, NOP-equivalents
	Z80N                 // ZX Spectrum Next, Z80 timing plus Z80N extensions
)

var platformNames = [...]string{"z80", "msx", "cpc", "z80n"}

var platformTree = prefixtree.New[Platform]()

func init() {
	for _, p := range Platforms() {
		platformTree.Add(p.String(), p)
	}
}

// Platforms returns every supported platform.
func Platforms() []Platform {
	return []Platform{Z80, MSX, CPC, Z80N}
}

// ParsePlatform resolves a platform name. Any unambiguous prefix is
// accepted ("m" for msx, "c" for cpc).
func ParsePlatform(name string) (Platform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Platforms() {
		if p.String() == name {
			return p, nil
		}
	}
	p, err := platformTree.FindValue(name)
	if err != nil {
		return Z80, fmt.Errorf("platform %q: %w", name, err)
	}
	return p, nil
}

func (p Platform) String() string {
	if p < 0 || int(p) >= len(platformNames) {
		return fmt.Sprintf("Platform(%d)", int(p))
	}
	return platformNames[p]
}

// Sets returns the instruction sets enabled on the platform.
func (p Platform) Sets() []InstructionSet {
	if p == Z80N {
		return []InstructionSet{Standard, Next}
	}
	return []InstructionSet{Standard}
}

// Cycles picks the platform's column out of a timing.
func (p Platform) Cycles(t Timing) Cycles {
	switch p {
	case MSX:
		return t.MSX
	case CPC:
		return t.CPC
	}
	return t.Z80
}

// Unit names what Cycles counts on the platform.
func (p Platform) Unit() string {
	if p == CPC {
		return "NOPs"
	}
	return "clock cycles"
}
