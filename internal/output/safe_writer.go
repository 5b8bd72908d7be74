package output

import (
	"io"
	"sync"
)

// SafeTerminalWriter sanitizes everything written through it and keeps
// concurrent writers from interleaving. Logs and error messages go through
// one since they carry paths and command lines of processes we don't
// control.
type SafeTerminalWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewSafeTerminalWriter(w io.Writer) *SafeTerminalWriter {
	return &SafeTerminalWriter{w: w}
}

func (s *SafeTerminalWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, SanitizeTerminal(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
