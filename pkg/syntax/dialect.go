package syntax

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// Dialect describes how one family of assemblers lays out a source line.
type Dialect struct {
	Name string

	// Label matches a label at the start of a line (comment already removed).
	Label *regexp.Regexp

	// Comments are the markers that start a comment running to end of line.
	Comments []string

	// Separator splits several statements on one line; 0 means none.
	Separator byte

	// Repetition recognizes the dialect's repeat-block directives.
	Repetition Repetition

	// RegisterLists allows "PUSH AF,BC" as shorthand for several pushes.
	RegisterLists bool

	// FakeInstructions enables sjasmplus fake instructions such as "LD BC,DE".
	FakeInstructions bool
}

var (
	// A leading token ending in ':' (or '::' for exported labels).
	defaultLabel = regexp.MustCompile(`^\s*[^\s:;,'"()]+::?`)

	// sjasmplus treats anything in column 0 as a label, colon or not.
	sjasmplusLabel = regexp.MustCompile(`^(?:[^\s:;,'"()]+:{0,2}|\s+[^\s:;,'"()]+::?(?:\s|$))`)
)

var (
	Default = &Dialect{
		Name:       "default",
		Label:      defaultLabel,
		Comments:   []string{";", "//"},
		Repetition: ReptEndm{},
	}

	Sjasmplus = &Dialect{
		Name:             "sjasmplus",
		Label:            sjasmplusLabel,
		Comments:         []string{";", "//"},
		Separator:        ':',
		Repetition:       DupEdup{},
		RegisterLists:    true,
		FakeInstructions: true,
	}

	Tniasm = &Dialect{
		Name:       "tniasm",
		Label:      defaultLabel,
		Comments:   []string{";"},
		Separator:  '|',
		Repetition: ReptEndm{},
	}
)

var dialectTree = prefixtree.New[*Dialect]()

func init() {
	for _, d := range Dialects() {
		dialectTree.Add(d.Name, d)
	}
}

// Dialects returns the built-in dialects.
func Dialects() []*Dialect {
	return []*Dialect{Default, Sjasmplus, Tniasm}
}

// ParseDialect resolves a dialect name or any unambiguous prefix of one.
func ParseDialect(name string) (*Dialect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range Dialects() {
		if d.Name == name {
			return d, nil
		}
	}
	d, err := dialectTree.FindValue(name)
	if err != nil {
		return nil, fmt.Errorf("syntax %q: %w", name, err)
	}
	return d, nil
}

func (d *Dialect) String() string { return d.Name }
