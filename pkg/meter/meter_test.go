package meter

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/oisee/z80-asm-meter/pkg/directive"
	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/match"
	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

func newMeter(t *testing.T, opts Options) *Meter {
	t.Helper()
	c, err := inst.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return New(match.New(c, match.Options{}), opts)
}

func TestSource(t *testing.T) {
	tests := []struct {
		name    string
		dialect *syntax.Dialect
		src     string
		z80     inst.Cycles
		size    int
		loc     int
	}{
		{"straight line", nil, "start: ld a,5 ; load\n  ret\n", inst.Cycles{Min: 17, Max: 17}, 3, 2},
		{"conditional", nil, "loop: djnz loop", inst.Cycles{Min: 8, Max: 13}, 2, 1},
		{"data", nil, "  db 1,2,3\n  dw 0", inst.Cycles{}, 5, 2},
		{"unmatched", nil, "  org 8000h\n  nop", inst.Cycles{Min: 4, Max: 4}, 1, 1},
		{"blank and comments", nil, "\n; header\n\n  nop\n", inst.Cycles{Min: 4, Max: 4}, 1, 1},
		{"repeat", nil, "  rept 3\n  nop\n  endm", inst.Cycles{Min: 12, Max: 12}, 3, 3},
		{"nested repeat", nil, "  rept 2\n  rept 3\n  nop\n  endm\n  inc a\n  endm", inst.Cycles{Min: 32, Max: 32}, 8, 8},
		{"unterminated repeat", nil, "  rept 2\n  nop", inst.Cycles{Min: 8, Max: 8}, 2, 2},
		{"stray endm", nil, "  endm\n  nop", inst.Cycles{Min: 4, Max: 4}, 1, 1},
		{"sjasmplus dup", syntax.Sjasmplus, " dup 2 : nop : edup", inst.Cycles{Min: 8, Max: 8}, 2, 2},
		{"sjasmplus push list", syntax.Sjasmplus, " push af,bc", inst.Cycles{Min: 22, Max: 22}, 2, 2},
		{"tniasm", syntax.Tniasm, "nop | halt", inst.Cycles{Min: 8, Max: 8}, 2, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := newMeter(t, Options{Dialect: tc.dialect}).Source(tc.src)
			if err != nil {
				t.Fatalf("Source: %v", err)
			}
			got := rep.Totals
			if got.Timing.Z80 != tc.z80 || got.Size != tc.size || got.LoC != tc.loc {
				t.Errorf("got z80 %v size %d loc %d want z80 %v size %d loc %d",
					got.Timing.Z80, got.Size, got.LoC, tc.z80, tc.size, tc.loc)
			}
		})
	}
}

func TestReport(t *testing.T) {
	m := newMeter(t, Options{})
	rep, err := m.Source("  ld a,5\n  org 0\n  ret")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Lines != 3 {
		t.Errorf("Lines: got %d want 3", rep.Lines)
	}
	if len(rep.Statements) != 3 {
		t.Fatalf("Statements: got %d want 3", len(rep.Statements))
	}
	if s := rep.Statements[1]; s.Matched() || s.Line != 2 || s.Text != "ORG 0" {
		t.Errorf("unmatched statement: got %+v", s)
	}
	want := []string{"3E", "n", "C9"}
	if !reflect.DeepEqual(rep.Totals.Bytes, want) {
		t.Errorf("Bytes: got %v want %v", rep.Totals.Bytes, want)
	}
	msx := inst.Cycles{Min: 19, Max: 19}
	if rep.Totals.Timing.MSX != msx {
		t.Errorf("MSX: got %v want %v", rep.Totals.Timing.MSX, msx)
	}
}

func TestExpandedStorage(t *testing.T) {
	c, err := inst.LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	m := New(match.New(c, match.Options{Policy: directive.ExpandInstructions}), Options{})
	rep, err := m.Source("  ds 4")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Totals.LoC != 1 || rep.Totals.Size != 4 || rep.Totals.Timing.Z80.Max != 16 {
		t.Errorf("got %+v", rep.Totals)
	}
}

func TestLimits(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		src  string
		want error
	}{
		{"lines", Options{MaxLines: 2}, "nop\nnop\nnop", ErrTooManyLines},
		{"loc", Options{MaxLoC: 2}, " nop\n nop\n nop", ErrTooManyLoC},
		{"expansion", Options{MaxLoC: 5}, " rept 10\n nop\n endm", ErrTooManyLoC},
		{"huge count", Options{}, " rept 0x7FFFFFFFFFFFFFFF\n nop\n endm", ErrTooManyLoC},
		{"huge empty block", Options{}, " rept 0x7FFFFFFFFFFFFFFF\n endm", nil},
		{"huge block of comments", Options{}, " rept 0x7FFFFFFFFFFFFFFF\n ; none\n endm", nil},
		{"within limits", Options{MaxLines: 3, MaxLoC: 3}, " nop\n nop\n nop", nil},
		{"unmatched lines are not code", Options{MaxLoC: 1}, " org 0\n nop\n end", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newMeter(t, tc.opts).Source(tc.src)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v want %v", err, tc.want)
			}
		})
	}

	_, err := newMeter(t, Options{MaxLines: 1}).Read(strings.NewReader(" nop\n nop\n"))
	if !errors.Is(err, ErrTooManyLines) {
		t.Errorf("Read: got %v want %v", err, ErrTooManyLines)
	}
}

func TestStatement(t *testing.T) {
	m := newMeter(t, Options{Dialect: syntax.Sjasmplus})
	got := m.Statement("  ld bc,de")
	if len(got) != 2 || got[0].Text != "LD B,D" || got[1].Text != "LD C,E" {
		t.Fatalf("got %+v", got)
	}
	for _, s := range got {
		if !s.Matched() {
			t.Errorf("%q did not match", s.Text)
		}
	}
}

func TestAccumulator(t *testing.T) {
	c, err := inst.LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	nop, _ := c.ByOpcode("00")
	halt, _ := c.ByOpcode("76")

	var acc Accumulator
	acc.Add(nil)
	acc.Add([]inst.Metered{nop, nop})
	acc.Add([]inst.Metered{halt})

	got := acc.Totals()
	if got.LoC != 2 || got.Size != 3 || got.Timing.Z80.Max != 12 || got.Timing.CPC.Max != 3 {
		t.Errorf("got %+v", got)
	}
	if !reflect.DeepEqual(got.Bytes, []string{"00", "00", "76"}) {
		t.Errorf("Bytes: got %v", got.Bytes)
	}
	acc.Reset()
	if acc.Totals().LoC != 0 {
		t.Error("Reset did not clear totals")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestPool(t *testing.T) {
	p := NewPool(newMeter(t, Options{MaxLines: 10}), 2)
	tasks := []Task{
		ReaderTask("b.asm", strings.NewReader(" ret\n")),
		ReaderTask("a.asm", strings.NewReader(" ld a,1\n ld b,a\n")),
		ReaderTask("c.asm", failingReader{}),
		FileTask("does-not-exist.asm"),
	}
	var log strings.Builder
	p.RunTasks(tasks, &log)

	metered, failed := p.Stats()
	if metered != 2 || failed != 2 {
		t.Errorf("Stats: got (%d, %d) want (2, 2)", metered, failed)
	}
	entries := p.Results.Entries()
	if len(entries) != 4 {
		t.Fatalf("got %d entries want 4", len(entries))
	}
	if e := entries[0]; e.Name != "a.asm" || e.LoC != 2 || e.Size != 3 || e.Timing.Z80.Max != 11 {
		t.Errorf("a.asm: got %+v", e)
	}
	if e := entries[2]; e.Name != "c.asm" || !e.Failed() {
		t.Errorf("c.asm: got %+v", e)
	}
	if e := entries[3]; !e.Failed() {
		t.Errorf("missing file: got %+v", e)
	}
	for _, want := range []string{"metered: a.asm (2 LoC, 3 bytes)", "metered: b.asm", "FAILED: c.asm", "FAILED: does-not-exist.asm"} {
		if !strings.Contains(log.String(), want) {
			t.Errorf("log: missing %q in %q", want, log.String())
		}
	}

	quiet := NewPool(newMeter(t, Options{}), 1)
	quiet.RunTasks([]Task{ReaderTask("x.asm", strings.NewReader(" nop\n"))}, nil)
	if metered, _ := quiet.Stats(); metered != 1 {
		t.Errorf("quiet pool: got %d metered want 1", metered)
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name  string
		stmts []statement
		want  int
		err   error
	}{
		{"empty block", []statement{{1, "REPT 0x7FFFFFFFFFFFFFFF"}, {2, "ENDM"}}, 0, nil},
		{"nested empty block", []statement{{1, "REPT 0x7FFFFFFFFFFFFFFF"}, {2, "REPT 2"}, {3, "ENDM"}, {4, "ENDM"}}, 0, nil},
		{"huge count", []statement{{1, "REPT 0x7FFFFFFFFFFFFFFF"}, {2, "NOP"}, {3, "ENDM"}}, 0, ErrTooManyLoC},
		{"nested", []statement{{1, "NOP"}, {2, "REPT 2"}, {3, "REPT 3"}, {4, "NOP"}, {5, "ENDM"}, {6, "ENDM"}}, 7, nil},
		{"open at end", []statement{{1, "REPT 4"}, {2, "NOP"}}, 4, nil},
		{"at the limit", []statement{{1, "REPT 8"}, {2, "NOP"}, {3, "ENDM"}}, 8, nil},
		{"over the limit", []statement{{1, "NOP"}, {2, "REPT 8"}, {3, "NOP"}, {4, "ENDM"}}, 0, ErrTooManyLoC},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := expand(tc.stmts, syntax.ReptEndm{}, 8)
			if !errors.Is(err, tc.err) {
				t.Fatalf("got %v want %v", err, tc.err)
			}
			if len(got) != tc.want {
				t.Errorf("got %d statements want %d", len(got), tc.want)
			}
		})
	}
}
