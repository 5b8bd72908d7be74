package output

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pranshuparmar/expost/pkg/model"
)

// RenderHeader announces what is about to be observed
func RenderHeader(w io.Writer, proc model.Process, target model.TargetFile, fds []int, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)

	p.Printf("Watching %s (%s) in %s %s\n",
		p.paint(colorGreen, target.Path),
		humanize.IBytes(target.Size),
		proc.Command,
		p.paint(colorDim, "(pid "+itoa(proc.PID)+", user "+proc.User+")"),
	)
	p.Printf("Descriptors: %v\n", fds)
}

// RenderNothing reports that the process does not have the file open
func RenderNothing(w io.Writer, pid int, path string, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)
	p.Printf("Nothing to track: pid %d has no descriptor open on %s\n", pid, p.paint(colorYellow, path))
}

// RenderSummary lists the terminal state of every descriptor
func RenderSummary(w io.Writer, r model.Result, colorEnabled bool) {
	p := NewPrinter(w, colorEnabled)

	for _, d := range r.Descriptors {
		switch d.Status {
		case model.StatusFinished:
			p.Printf("  %s %s  %s\n", p.paint(colorGreen, "done  "), d.Descriptor, humanize.IBytes(d.Offset))
		default:
			p.Printf("  %s %s  at %s: %s\n", p.paint(colorRed, "failed"), d.Descriptor, humanize.IBytes(d.Offset), d.Reason)
		}
	}

	failed := len(r.Failed())
	if failed == 0 {
		p.Printf("%s\n", p.paint(colorGreen, plural(len(r.Descriptors), "descriptor")+" finished"))
		return
	}
	p.Printf("%s\n", p.paint(colorRed, itoa(failed)+" of "+plural(len(r.Descriptors), "descriptor")+" failed"))
}

func ToJSON(r model.Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return itoa(n) + " " + noun + "s"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
