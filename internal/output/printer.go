package output

import (
	"fmt"
	"io"
)

// ansiString is trusted escape-sequence text that bypasses sanitizing
type ansiString string

const (
	colorReset  = ansiString("\033[0m")
	colorRed    = ansiString("\033[31m")
	colorGreen  = ansiString("\033[32m")
	colorYellow = ansiString("\033[33m")
	colorDim    = ansiString("\033[2m")
)

// Printer writes terminal-safe output. String-like arguments (string,
// []byte, error, fmt.Stringer) are sanitized, everything else is printed
// as is.
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer, color bool) Printer {
	return Printer{w: w, color: color}
}

func (p Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, sanitizeArgs(args)...)
}

func (p Printer) Println(args ...any) {
	fmt.Fprintln(p.w, sanitizeArgs(args)...)
}

// paint wraps s in color when the printer has colors enabled
func (p Printer) paint(color ansiString, s string) ansiString {
	s = SanitizeTerminal(s)
	if !p.color {
		return ansiString(s)
	}
	return color + ansiString(s) + colorReset
}

func sanitizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case ansiString:
			out[i] = string(v)
		case string:
			out[i] = SanitizeTerminal(v)
		case []byte:
			out[i] = SanitizeTerminal(string(v))
		case error:
			out[i] = SanitizeTerminal(v.Error())
		case fmt.Stringer:
			out[i] = SanitizeTerminal(v.String())
		default:
			out[i] = a
		}
	}
	return out
}
