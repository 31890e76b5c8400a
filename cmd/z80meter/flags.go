package main

import (
	"fmt"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/spf13/pflag"

	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

var (
	_ pflag.Value = platformValue{}
	_ pflag.Value = dialectValue{}
	_ pflag.Value = formatValue{}
)

// platformValue binds --platform to an inst.Platform.
type platformValue struct{ p *inst.Platform }

func (v platformValue) String() string {
	if v.p == nil {
		return ""
	}
	return v.p.String()
}

func (v platformValue) Set(s string) error {
	p, err := inst.ParsePlatform(s)
	if err != nil {
		return err
	}
	*v.p = p
	return nil
}

func (platformValue) Type() string { return "platform" }

// dialectValue binds --syntax to a syntax.Dialect.
type dialectValue struct{ d **syntax.Dialect }

func (v dialectValue) String() string {
	if v.d == nil || *v.d == nil {
		return ""
	}
	return (*v.d).Name
}

func (v dialectValue) Set(s string) error {
	d, err := syntax.ParseDialect(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

func (dialectValue) Type() string { return "syntax" }

// outputFormat selects how metered sources are printed.
type outputFormat int

const (
	formatTable   outputFormat = iota // one aligned row per source
	formatSummary                     // one status line per source
	formatBytes                       // the opcode listing per source
)

var formatNames = [...]string{"table", "summary", "bytes"}

var formatTree = prefixtree.New[outputFormat]()

func init() {
	for i, name := range formatNames {
		formatTree.Add(name, outputFormat(i))
	}
}

func (f outputFormat) String() string { return formatNames[f] }

// formatValue binds --format to an outputFormat.
type formatValue struct{ f *outputFormat }

func (v formatValue) String() string {
	if v.f == nil {
		return ""
	}
	return v.f.String()
}

func (v formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	f, err := formatTree.FindValue(s)
	if err != nil {
		return fmt.Errorf("format %q: %w", s, err)
	}
	*v.f = f
	return nil
}

func (formatValue) Type() string { return "format" }
