// Package tui is an interactive full-screen display built on bubbletea.
package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pranshuparmar/expost/internal/display"
)

// Display runs a bubbletea program for the lifetime of a session. Trackers
// talk to it with messages, which the program applies one at a time.
type Display struct {
	prog *tea.Program
	done chan error

	mu     sync.Mutex
	nextID int
	err    error
}

type Option func(*options)

type options struct {
	interrupt func()
	teaOpts   []tea.ProgramOption
}

// WithInterrupt is called once when the user asks to stop watching
func WithInterrupt(fn func()) Option {
	return func(o *options) { o.interrupt = fn }
}

// WithOutput draws on w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.teaOpts = append(o.teaOpts, tea.WithOutput(w))
	}
}

// WithIO replaces the terminal. A nil input disables keyboard handling.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.teaOpts = append(o.teaOpts, tea.WithInput(in), tea.WithOutput(out), tea.WithoutSignalHandler())
	}
}

func New(title string, opts ...Option) *Display {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	d := &Display{
		prog: tea.NewProgram(newModel(title, o.interrupt), o.teaOpts...),
		done: make(chan error, 1),
	}
	go func() {
		_, err := d.prog.Run()
		d.done <- err
	}()
	return d
}

func (d *Display) Track(label string, total uint64) display.Tracker {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.mu.Unlock()

	d.prog.Send(addMsg{id: id, label: label, total: total})
	return &tracker{id: id, prog: d.prog}
}

// Wait seals the display and blocks until the program has drawn its last
// frame and exited.
func (d *Display) Wait() {
	d.prog.Send(sealMsg{})
	err := <-d.done

	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

// Err returns the error the program exited with, if any
func (d *Display) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

type tracker struct {
	id   int
	prog *tea.Program
}

func (t *tracker) Update(pos uint64) {
	t.prog.Send(updateMsg{id: t.id, pos: pos})
}

func (t *tracker) Finish() {
	t.prog.Send(finishMsg{id: t.id})
}

func (t *tracker) Fail(err error) {
	t.prog.Send(failMsg{id: t.id, err: err})
}
