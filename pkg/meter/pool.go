package meter

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/oisee/z80-asm-meter/pkg/result"
)

// Task is one named source to meter.
type Task struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileTask meters the file at path.
func FileTask(path string) Task {
	return Task{Name: path, Open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

// ReaderTask meters r. It is read once.
func ReaderTask(name string, r io.Reader) Task {
	return Task{Name: name, Open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil }}
}

// Pool meters several sources in parallel with one shared Meter.
type Pool struct {
	NumWorkers int
	Results    *result.Table
	meter      *Meter
	metered    atomic.Int64
	failed     atomic.Int64
	logMu      sync.Mutex
}

// NewPool creates a pool with the given number of workers.
func NewPool(m *Meter, numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		NumWorkers: numWorkers,
		Results:    result.NewTable(),
		meter:      m,
	}
}

// Stats returns how many sources were metered and how many failed.
func (p *Pool) Stats() (metered, failed int64) {
	return p.metered.Load(), p.failed.Load()
}

// RunTasks distributes tasks across workers. Every task adds exactly one
// entry to Results; a failed task records its error there. Progress is
// written to log when it is not nil.
func (p *Pool) RunTasks(tasks []Task, log io.Writer) {
	ch := make(chan Task, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	var wg sync.WaitGroup
	for i := 0; i < p.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range ch {
				p.processTask(task, log)
			}
		}()
	}
	wg.Wait()
}

func (p *Pool) processTask(task Task, log io.Writer) {
	entry, err := p.meterTask(task)
	if err != nil {
		p.failed.Add(1)
		entry = result.Entry{Name: task.Name, Error: err.Error()}
		p.logf(log, "  FAILED: %s: %v\n", task.Name, err)
	} else {
		p.metered.Add(1)
		p.logf(log, "  metered: %s (%d LoC, %d bytes)\n", task.Name, entry.LoC, entry.Size)
	}
	p.Results.Add(entry)
}

func (p *Pool) logf(log io.Writer, format string, args ...any) {
	if log == nil {
		return
	}
	p.logMu.Lock()
	defer p.logMu.Unlock()
	fmt.Fprintf(log, format, args...)
}

func (p *Pool) meterTask(task Task) (result.Entry, error) {
	r, err := task.Open()
	if err != nil {
		return result.Entry{}, err
	}
	defer r.Close()

	rep, err := p.meter.Read(r)
	if err != nil {
		return result.Entry{}, fmt.Errorf("%s: %w", task.Name, err)
	}
	return Entry(task.Name, rep), nil
}

// Entry converts a report into a result entry.
func Entry(name string, rep *Report) result.Entry {
	return result.Entry{
		Name:   name,
		Lines:  rep.Lines,
		LoC:    rep.Totals.LoC,
		Size:   rep.Totals.Size,
		Timing: rep.Totals.Timing,
		Bytes:  rep.Totals.Bytes,
	}
}
