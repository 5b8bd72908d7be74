package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("57")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
)

type rowState int

const (
	rowRunning rowState = iota
	rowDone
	rowFailed
)

type row struct {
	label  string
	total  uint64
	pos    uint64
	state  rowState
	reason string
}

type addMsg struct {
	id    int
	label string
	total uint64
}

type updateMsg struct {
	id  int
	pos uint64
}

type finishMsg struct {
	id int
}

type failMsg struct {
	id  int
	err error
}

// sealMsg tells the model no more rows will be added
type sealMsg struct{}

type tuiModel struct {
	title     string
	rows      []*row
	bar       progress.Model
	sealed    bool
	stopping  bool
	interrupt func()
	width     int
}

func newModel(title string, interrupt func()) tuiModel {
	return tuiModel{
		title:     title,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		interrupt: interrupt,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.stopping {
				m.stopping = true
				if m.interrupt != nil {
					m.interrupt()
				}
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-60))
	case addMsg:
		for len(m.rows) <= msg.id {
			m.rows = append(m.rows, nil)
		}
		m.rows[msg.id] = &row{label: msg.label, total: msg.total}
	case updateMsg:
		if r := m.row(msg.id); r != nil && r.state == rowRunning {
			r.pos = msg.pos
		}
	case finishMsg:
		if r := m.row(msg.id); r != nil && r.state == rowRunning {
			r.state = rowDone
			r.pos = r.total
		}
	case failMsg:
		if r := m.row(msg.id); r != nil && r.state == rowRunning {
			r.state = rowFailed
			r.reason = msg.err.Error()
		}
	case sealMsg:
		m.sealed = true
	}

	if m.sealed && m.settled() {
		return m, tea.Quit
	}
	return m, nil
}

func (m tuiModel) row(id int) *row {
	if id < 0 || id >= len(m.rows) {
		return nil
	}
	return m.rows[id]
}

// settled reports whether every row reached a terminal state
func (m tuiModel) settled() bool {
	for _, r := range m.rows {
		if r != nil && r.state == rowRunning {
			return false
		}
	}
	return true
}

func (m tuiModel) View() string {
	var b strings.Builder

	title := m.title
	if m.stopping && !m.settled() {
		title += " (stopping)"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	width := 0
	for _, r := range m.rows {
		if r != nil {
			width = max(width, lipgloss.Width(r.label))
		}
	}

	for _, r := range m.rows {
		if r == nil {
			continue
		}
		label := labelStyle.Render(r.label + strings.Repeat(" ", width-lipgloss.Width(r.label)))
		b.WriteString(" " + label + " " + m.bar.ViewAs(fraction(r.pos, r.total)) + " ")

		counts := fmt.Sprintf("%s / %s", humanize.IBytes(r.pos), humanize.IBytes(r.total))
		switch r.state {
		case rowDone:
			b.WriteString(doneStyle.Render("done") + " " + dimStyle.Render(counts))
		case rowFailed:
			b.WriteString(failStyle.Render("failed") + " " + dimStyle.Render(counts+": "+r.reason))
		default:
			b.WriteString(dimStyle.Render(counts))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("\n  q: stop watching") + "\n")
	return b.String()
}

func fraction(pos, total uint64) float64 {
	if total == 0 {
		return 1
	}
	return min(1, float64(pos)/float64(total))
}
