package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pranshuparmar/expost/internal/output"
)

// Lines prints one line per change of a tracker's offset. It is meant for
// output that is not a terminal, where redrawing bars would only add noise.
type Lines struct {
	mu sync.Mutex
	p  output.Printer
}

func NewLines(w io.Writer) *Lines {
	return &Lines{p: output.NewPrinter(w, false)}
}

func (l *Lines) Track(label string, total uint64) Tracker {
	return &lineTracker{lines: l, label: label, total: total}
}

func (l *Lines) Wait() {}

type lineTracker struct {
	lines *Lines
	label string
	total uint64

	seen bool
	last uint64
	done bool
}

func (t *lineTracker) Update(pos uint64) {
	t.lines.mu.Lock()
	defer t.lines.mu.Unlock()

	if t.done || (t.seen && pos == t.last) {
		return
	}
	t.seen, t.last = true, pos
	t.lines.p.Printf("%s %s / %s (%s)\n", t.label, humanize.IBytes(pos), humanize.IBytes(t.total), percent(pos, t.total))
}

func (t *lineTracker) Finish() {
	t.lines.mu.Lock()
	defer t.lines.mu.Unlock()

	if t.done {
		return
	}
	t.done = true
	t.lines.p.Printf("%s done\n", t.label)
}

func (t *lineTracker) Fail(err error) {
	t.lines.mu.Lock()
	defer t.lines.mu.Unlock()

	if t.done {
		return
	}
	t.done = true
	t.lines.p.Printf("%s failed: %s\n", t.label, err)
}

func percent(pos, total uint64) string {
	if total == 0 {
		return "100.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(pos)/float64(total)*100)
}
