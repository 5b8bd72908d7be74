package proc

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pranshuparmar/expost/pkg/model"
)

// Describe returns what is known about pid. Missing details are reported as
// "unknown" rather than failing, the process may be gone already.
func (r *Resolver) Describe(pid int) model.Process {
	info := model.Process{
		PID:     pid,
		Command: "unknown",
		Cmdline: "unknown",
		User:    "unknown",
	}

	p, err := r.fs.Proc(pid)
	if err != nil {
		return info
	}
	if comm, err := p.Comm(); err == nil && comm != "" {
		info.Command = comm
	}
	if args, err := p.CmdLine(); err == nil && len(args) > 0 {
		info.Cmdline = strings.Join(args, " ")
	}
	info.User = ownerOf(filepath.Join(r.root, strconv.Itoa(pid)))

	return info
}

// Processes lists every process visible under the procfs root
func (r *Resolver) Processes() ([]model.ProcessSummary, error) {
	procs, err := r.fs.AllProcs()
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ProcessSummary, 0, len(procs))
	for _, p := range procs {
		s := model.ProcessSummary{PID: p.PID}
		// processes can exit while we walk the list
		if comm, err := p.Comm(); err == nil {
			s.Command = comm
		}
		if args, err := p.CmdLine(); err == nil {
			s.Cmdline = strings.Join(args, " ")
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PID < summaries[j].PID
	})

	return summaries, nil
}
