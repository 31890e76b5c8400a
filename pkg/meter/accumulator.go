// Package meter folds metered statements into totals: execution time on
// each platform, encoded size, lines of code and the byte listing.
package meter

import (
	"strings"

	"github.com/oisee/z80-asm-meter/pkg/inst"
)

// Totals is the cumulative cost of a sequence of statements.
type Totals struct {
	Timing inst.Timing
	Size   int
	LoC    int      // statements that metered to at least one result
	Bytes  []string // opcode bytes in order, placeholders included
}

// Accumulator sums the results of successive statements.
type Accumulator struct {
	totals Totals
}

// Add folds the results of one statement. A statement that metered to
// nothing does not count as a line of code.
func (a *Accumulator) Add(results []inst.Metered) {
	if len(results) == 0 {
		return
	}
	a.totals.LoC++
	for _, r := range results {
		a.totals.Timing = a.totals.Timing.Add(r.Timing())
		a.totals.Size += r.Size()
		a.totals.Bytes = append(a.totals.Bytes, strings.Fields(r.Bytes())...)
	}
}

// Totals returns the sums so far.
func (a *Accumulator) Totals() Totals {
	return a.totals
}

// Reset clears the sums.
func (a *Accumulator) Reset() {
	a.totals = Totals{}
}
