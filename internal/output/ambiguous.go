package output

import (
	"io"

	"github.com/pranshuparmar/expost/pkg/model"
)

// RenderAmbiguous lists the processes a name matched and how to pick one
func RenderAmbiguous(w io.Writer, matches []model.ProcessSummary, path string) {
	p := NewPrinter(w, false)

	p.Printf("Multiple matching processes found:\n\n")
	for i, m := range matches {
		cmdline := m.Cmdline
		if cmdline == "" {
			cmdline = m.Command
		}
		p.Printf("[%d] PID %d   %s\n", i+1, m.PID, cmdline)
	}
	p.Printf("\nRe-run with:\n  expost <pid> %s\n", path)
}
