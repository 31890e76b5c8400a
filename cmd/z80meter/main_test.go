package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/result"
	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestFlagValues(t *testing.T) {
	var p inst.Platform
	if err := (platformValue{&p}).Set("m"); err != nil || p != inst.MSX {
		t.Errorf("platform m: got %v, %v", p, err)
	}
	if err := (platformValue{&p}).Set("spectrum"); err == nil {
		t.Error("platform spectrum: expected error")
	}

	var d *syntax.Dialect
	if err := (dialectValue{&d}).Set("sj"); err != nil || d != syntax.Sjasmplus {
		t.Errorf("syntax sj: got %v, %v", d, err)
	}

	var f outputFormat
	tests := []struct {
		in   string
		want outputFormat
	}{
		{"table", formatTable},
		{"s", formatSummary},
		{"BYTES", formatBytes},
	}
	for _, tc := range tests {
		if err := (formatValue{&f}).Set(tc.in); err != nil || f != tc.want {
			t.Errorf("format %q: got %v, %v want %v", tc.in, f, err, tc.want)
		}
	}
	if err := (formatValue{&f}).Set("xml"); err == nil {
		t.Error("format xml: expected error")
	}
}

func TestSummary(t *testing.T) {
	nop := inst.Timing{
		Z80: inst.Cycles{Min: 4, Max: 4},
		MSX: inst.Cycles{Min: 5, Max: 5},
		CPC: inst.Cycles{Min: 1, Max: 1},
	}
	tests := []struct {
		platform inst.Platform
		entry    result.Entry
		want     string
	}{
		{inst.Z80, result.Entry{Size: 1, LoC: 1, Timing: nop}, "z80: 4 clock cycles, 1 byte (1 LoC)"},
		{inst.MSX, result.Entry{Size: 2, LoC: 2, Timing: nop.Add(nop)}, "msx: 10 clock cycles, 2 bytes (2 LoC)"},
		{inst.CPC, result.Entry{Size: 1, LoC: 1, Timing: nop}, "cpc: 1 NOPs, 1 byte (1 LoC)"},
	}
	for _, tc := range tests {
		if got := summary(tc.platform, tc.entry); got != tc.want {
			t.Errorf("got %q want %q", got, tc.want)
		}
	}
}

func TestJoinBytes(t *testing.T) {
	b := []string{"3E", "n", "C9"}
	if got := joinBytes(b, 0); got != "3E n C9" {
		t.Errorf("unlimited: got %q", got)
	}
	if got := joinBytes(b, 2); got != "3E n ..." {
		t.Errorf("limited: got %q", got)
	}
}

func TestMeterCmd(t *testing.T) {
	src := "start: ld a,5\n  ret\n"

	out, err := run(t, src, "meter", "--format", "summary")
	if err != nil {
		t.Fatal(err)
	}
	if want := "<stdin>: z80: 17 clock cycles, 3 bytes (2 LoC)\n"; out != want {
		t.Errorf("got %q want %q", out, want)
	}

	out, err = run(t, src, "meter", "-f", "s", "--platform", "msx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "msx: 19 clock cycles") {
		t.Errorf("msx: got %q", out)
	}

	_, err = run(t, "nop\nnop\n", "meter", "--max-lines", "1")
	if err == nil {
		t.Error("max-lines: expected error")
	}
}

func TestMeterVerbose(t *testing.T) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetArgs([]string{"meter", "-v", "-f", "summary"})
	cmd.SetIn(strings.NewReader(" ld a,5\n ret\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := errOut.String(); !strings.Contains(got, "metered: <stdin> (2 LoC, 3 bytes)") {
		t.Errorf("stderr: got %q", got)
	}
	if strings.Contains(out.String(), "metered:") {
		t.Errorf("progress written to stdout: %q", out.String())
	}
}

func TestMeterFilesAndReport(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.asm")
	b := filepath.Join(dir, "b.asm")
	writeFile(t, a, " rept 4\n nop\n endm\n")
	writeFile(t, b, " db \"hi\"\n")
	report := filepath.Join(dir, "out.json")

	out, err := run(t, "", "meter", a, b, "--json", report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "total") {
		t.Errorf("no total row:\n%s", out)
	}

	out, err = run(t, "", "report", report, "-f", "bytes")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a.asm: 00 00 00 00") || !strings.Contains(out, "b.asm: 68 69") {
		t.Errorf("report:\n%s", out)
	}
}

func TestLineCmd(t *testing.T) {
	out, err := run(t, "", "line", "ld a,5")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "LD A,n") || !strings.Contains(out, "z80: 7 clock cycles, 2 bytes (1 LoC)") {
		t.Errorf("got:\n%s", out)
	}

	out, err = run(t, "", "line", "-s", "sjasmplus", "push", "af,bc")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "PUSH AF") || !strings.Contains(out, "PUSH BC") {
		t.Errorf("register list:\n%s", out)
	}
}

func TestExplainCmd(t *testing.T) {
	out, err := run(t, "", "explain", "in a,(b)")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "* 0.75  IN A,(n)") || !strings.Contains(out, "0.00  IN A,(C)") {
		t.Errorf("got:\n%s", out)
	}
}

func TestCatalogCmd(t *testing.T) {
	if _, err := run(t, "", "catalog", "mirror"); err == nil {
		t.Error("MIRROR on z80: expected error")
	}
	out, err := run(t, "", "catalog", "mirror", "-p", "z80n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "MIRROR A") {
		t.Errorf("got:\n%s", out)
	}
}
