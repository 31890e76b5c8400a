package result

import (
	"sort"
	"sync"

	"github.com/oisee/z80-asm-meter/pkg/inst"
)

// Entry is the metered cost of one named source.
type Entry struct {
	Name   string      `json:"name"`
	Lines  int         `json:"lines"` // source lines read
	LoC    int         `json:"loc"`   // statements that metered to something
	Size   int         `json:"size"`
	Timing inst.Timing `json:"timing"`
	Bytes  []string    `json:"bytes,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Failed reports whether the source could not be metered.
func (e Entry) Failed() bool { return e.Error != "" }

// Table collects entries from concurrent workers.
type Table struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts an entry into the table.
func (t *Table) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Entries returns a copy of all entries, sorted by name.
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sum folds entries into one, skipping failed ones. Bytes are not carried.
func Sum(name string, entries []Entry) Entry {
	total := Entry{Name: name}
	for _, e := range entries {
		if e.Failed() {
			continue
		}
		total.Lines += e.Lines
		total.LoC += e.LoC
		total.Size += e.Size
		total.Timing = total.Timing.Add(e.Timing)
	}
	return total
}
