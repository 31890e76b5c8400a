package syntax

// Normalizer cleans raw source lines for one dialect.
type Normalizer struct {
	dialect *Dialect
}

// NewNormalizer returns a normalizer for d; nil selects Default.
func NewNormalizer(d *Dialect) *Normalizer {
	if d == nil {
		d = Default
	}
	return &Normalizer{dialect: d}
}

// Dialect returns the dialect the normalizer was built for.
func (n *Normalizer) Dialect() *Dialect { return n.dialect }

// Normalize turns one raw line into zero or more statements. The comment
// and the label are removed, the line is split on the dialect's statement
// separator, whitespace is collapsed and text outside quoted literals is
// upper-cased. Dialect shorthands (register lists, fake instructions) are
// rewritten into the statements they stand for.
func (n *Normalizer) Normalize(raw string) []string {
	d := n.dialect
	line := stripComment(raw, d.Comments)
	if d.Label != nil {
		if loc := d.Label.FindStringIndex(line); loc != nil {
			line = line[loc[1]:]
		}
	}

	parts := []string{line}
	if d.Separator != 0 {
		parts = splitOutside(line, d.Separator)
	}

	var out []string
	for _, part := range parts {
		s := clean(part)
		if s == "" {
			continue
		}
		out = append(out, n.rewrite(s)...)
	}
	return out
}

func (n *Normalizer) rewrite(s string) []string {
	d := n.dialect
	if !d.RegisterLists && !d.FakeInstructions {
		return []string{s}
	}
	mnemonic, ops := Split(s)
	if d.RegisterLists {
		if out, ok := registerList(mnemonic, ops); ok {
			return out
		}
	}
	if d.FakeInstructions {
		if out, ok := fakeInstruction(mnemonic, ops); ok {
			return out
		}
	}
	return []string{s}
}
