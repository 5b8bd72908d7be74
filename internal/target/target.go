// Package target turns the process argument of the command line into a PID.
// It accepts a PID literal or the name of a running process.
package target

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pranshuparmar/expost/pkg/model"
)

var (
	ErrNoSuchProcess   = errors.New("no matching process")
	ErrAmbiguousTarget = errors.New("ambiguous target")
)

// Lister enumerates running processes
type Lister interface {
	Processes() ([]model.ProcessSummary, error)
}

// AmbiguousError lists every process a name matched
type AmbiguousError struct {
	Name    string
	Matches []model.ProcessSummary
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches %d processes", e.Name, len(e.Matches))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguousTarget
}

func Resolve(l Lister, value string) (int, error) {
	if pid, err := strconv.ParseUint(value, 10, strconv.IntSize-1); err == nil {
		return int(pid), nil
	}
	return ResolveName(l, value)
}

// ResolveName finds the single process called name. An exact command match
// wins over substring matches on the command or the command line. Our own
// process and its parent are never candidates, nor are grep-like processes.
func ResolveName(l Lister, name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: empty name", ErrNoSuchProcess)
	}

	procs, err := l.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	lowerName := strings.ToLower(name)
	selfPid := os.Getpid()
	parentPid := os.Getppid()

	var exact, partial []model.ProcessSummary
	for _, p := range procs {
		if p.PID == selfPid || p.PID == parentPid {
			continue
		}
		comm := strings.ToLower(p.Command)
		cmdline := strings.ToLower(p.Cmdline)
		if strings.Contains(comm, "grep") {
			continue
		}

		switch {
		case comm == lowerName:
			exact = append(exact, p)
		case strings.Contains(comm, lowerName), strings.Contains(cmdline, lowerName):
			partial = append(partial, p)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = partial
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: no running process named %q", ErrNoSuchProcess, name)
	case 1:
		return matches[0].PID, nil
	default:
		return 0, &AmbiguousError{Name: name, Matches: matches}
	}
}
