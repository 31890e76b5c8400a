package meter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/match"
	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

var (
	ErrTooManyLines = errors.New("too many lines")
	ErrTooManyLoC   = errors.New("too many lines of code")
)

// Options configures a Meter. Zero limits mean unlimited.
type Options struct {
	Dialect  *syntax.Dialect
	MaxLines int // source lines
	MaxLoC   int // metered statements, after repeat blocks are expanded
}

// Meter meters whole sources: it normalizes each line, expands repeat
// blocks, matches every statement and accumulates the results. A Meter
// holds no per-call state and may be shared between goroutines.
type Meter struct {
	matcher *match.Matcher
	norm    *syntax.Normalizer
	opts    Options
}

// New returns a Meter matching statements with m.
func New(m *match.Matcher, opts Options) *Meter {
	norm := syntax.NewNormalizer(opts.Dialect)
	opts.Dialect = norm.Dialect()
	return &Meter{matcher: m, norm: norm, opts: opts}
}

// Statement is one normalized statement and what it metered to.
type Statement struct {
	Line    int    // 1-based source line
	Text    string // normalized text
	Results []inst.Metered
}

// Matched reports whether the statement metered to anything.
func (s Statement) Matched() bool { return len(s.Results) > 0 }

// Report is the outcome of metering one source.
type Report struct {
	Lines      int // source lines read
	Statements []Statement
	Totals     Totals
}

// Source meters a multi-line source text.
func (m *Meter) Source(src string) (*Report, error) {
	src = strings.TrimRight(src, "\r\n")
	if src == "" {
		return m.Lines(nil)
	}
	return m.Lines(strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n"))
}

// Read meters a source read line by line from r.
func (m *Meter) Read(r io.Reader) (*Report, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if m.opts.MaxLines > 0 && len(lines) > m.opts.MaxLines {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyLines, m.opts.MaxLines)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return m.Lines(lines)
}

// Lines meters a source already split into lines.
func (m *Meter) Lines(lines []string) (*Report, error) {
	if m.opts.MaxLines > 0 && len(lines) > m.opts.MaxLines {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyLines, len(lines), m.opts.MaxLines)
	}

	var stmts []statement
	for i, raw := range lines {
		for _, s := range m.norm.Normalize(raw) {
			stmts = append(stmts, statement{line: i + 1, text: s})
		}
	}
	stmts, err := expand(stmts, m.opts.Dialect.Repetition, m.opts.MaxLoC)
	if err != nil {
		return nil, err
	}

	rep := &Report{Lines: len(lines), Statements: make([]Statement, 0, len(stmts))}
	var acc Accumulator
	for _, s := range stmts {
		results := m.matcher.Match(s.text)
		acc.Add(results)
		if m.opts.MaxLoC > 0 && acc.Totals().LoC > m.opts.MaxLoC {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyLoC, m.opts.MaxLoC)
		}
		rep.Statements = append(rep.Statements, Statement{Line: s.line, Text: s.text, Results: results})
	}
	rep.Totals = acc.Totals()
	return rep, nil
}

// Statement meters a single line, which may hold several statements.
func (m *Meter) Statement(line string) []Statement {
	var out []Statement
	for _, s := range m.norm.Normalize(line) {
		out = append(out, Statement{Line: 1, Text: s, Results: m.matcher.Match(s)})
	}
	return out
}
