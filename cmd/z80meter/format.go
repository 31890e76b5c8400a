package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/oisee/z80-asm-meter/pkg/inst"
	"github.com/oisee/z80-asm-meter/pkg/meter"
	"github.com/oisee/z80-asm-meter/pkg/result"
)

// printEntries prints one line per metered source, then a total when
// there is more than one.
func printEntries(w io.Writer, entries []result.Entry, p inst.Platform, f outputFormat, maxBytes int) {
	if f == formatTable {
		fmt.Fprintf(w, "%-24s %9s %9s %9s %6s %5s\n", "source", "z80", "msx", "cpc", "bytes", "loc")
	}
	for _, e := range entries {
		printEntry(w, e, p, f, maxBytes)
	}
	if len(entries) > 1 {
		printEntry(w, total(entries), p, f, maxBytes)
	}
}

func printEntry(w io.Writer, e result.Entry, p inst.Platform, f outputFormat, maxBytes int) {
	if e.Failed() {
		fmt.Fprintf(w, "%-24s error: %s\n", e.Name, e.Error)
		return
	}
	switch f {
	case formatSummary:
		fmt.Fprintf(w, "%s: %s\n", e.Name, summary(p, e))
	case formatBytes:
		fmt.Fprintf(w, "%s: %s\n", e.Name, joinBytes(e.Bytes, maxBytes))
	default:
		fmt.Fprintf(w, "%-24s %9s %9s %9s %6d %5d\n", e.Name,
			e.Timing.Z80, e.Timing.MSX, e.Timing.CPC, e.Size, e.LoC)
	}
}

// printMetered prints one instruction or directive with all its timings.
func printMetered(w io.Writer, m inst.Metered, maxBytes int) {
	t := m.Timing()
	fmt.Fprintf(w, "%-20s %7s %7s %7s %3d  %s\n", m.Text(),
		t.Z80, t.MSX, t.CPC, m.Size(), joinBytes(strings.Fields(m.Bytes()), maxBytes))
}

// summary is the one-line status text: "z80: 17 clock cycles, 3 bytes (2 LoC)".
func summary(p inst.Platform, e result.Entry) string {
	size := "bytes"
	if e.Size == 1 {
		size = "byte"
	}
	return fmt.Sprintf("%s: %s %s, %d %s (%d LoC)",
		p, p.Cycles(e.Timing), p.Unit(), e.Size, size, e.LoC)
}

func joinBytes(bytes []string, max int) string {
	if max > 0 && len(bytes) > max {
		return strings.Join(bytes[:max], " ") + " ..."
	}
	return strings.Join(bytes, " ")
}

func total(entries []result.Entry) result.Entry {
	return result.Sum("total", entries)
}

func totalsEntry(t meter.Totals) result.Entry {
	return result.Entry{Name: "line", LoC: t.LoC, Size: t.Size, Timing: t.Timing, Bytes: t.Bytes}
}
