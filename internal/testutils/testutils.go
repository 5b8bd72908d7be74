// Package testutils builds fake procfs trees and scripted fdinfo records
// for tests.
package testutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/pranshuparmar/expost/internal/proc"
	"github.com/pranshuparmar/expost/pkg/model"
	"github.com/stretchr/testify/require"
)

// ProcFS is a directory laid out like /proc for a handful of fake processes
type ProcFS struct {
	t    *testing.T
	root string
}

func NewProcFS(t *testing.T) *ProcFS {
	t.Helper()
	return &ProcFS{t: t, root: t.TempDir()}
}

func (f *ProcFS) Root() string {
	return f.root
}

// AddProcess creates the process directory with its fd and fdinfo tables
func (f *ProcFS) AddProcess(pid int, comm string, args ...string) {
	f.t.Helper()
	dir := f.procDir(pid)
	require.NoError(f.t, os.MkdirAll(filepath.Join(dir, "fd"), 0o755))
	require.NoError(f.t, os.MkdirAll(filepath.Join(dir, "fdinfo"), 0o755))
	require.NoError(f.t, os.WriteFile(filepath.Join(dir, "comm"), []byte(comm+"\n"), 0o644))
	cmdline := strings.Join(args, "\x00")
	if cmdline != "" {
		cmdline += "\x00"
	}
	require.NoError(f.t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte(cmdline), 0o644))
}

// AddDescriptor links fd to target and writes an fdinfo record at pos
func (f *ProcFS) AddDescriptor(pid, fd int, target string, pos uint64) {
	f.t.Helper()
	require.NoError(f.t, os.Symlink(target, filepath.Join(f.procDir(pid), "fd", strconv.Itoa(fd))))
	f.SetPos(pid, fd, pos)
}

func (f *ProcFS) SetPos(pid, fd int, pos uint64) {
	f.t.Helper()
	f.WriteStatus(pid, fd, FDInfo(pos))
}

// WriteStatus replaces the fdinfo record of fd with record verbatim
func (f *ProcFS) WriteStatus(pid, fd int, record string) {
	f.t.Helper()
	path := filepath.Join(f.procDir(pid), "fdinfo", strconv.Itoa(fd))
	require.NoError(f.t, os.WriteFile(path, []byte(record), 0o644))
}

func (f *ProcFS) procDir(pid int) string {
	return filepath.Join(f.root, strconv.Itoa(pid))
}

// DataFile creates a file of size bytes under a fresh temp dir and returns
// its canonical path.
func DataFile(t *testing.T, name string, size int) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

// FDInfo renders a record shaped like a regular file's fdinfo
func FDInfo(pos uint64) string {
	return fmt.Sprintf("pos:\t%d\nflags:\t0100000\nmnt_id:\t29\nino:\t1234567\n", pos)
}

// ScriptedStatus plays back one record per rewind. Once the script runs
// out it keeps serving the last record, or fails like a closed descriptor
// when built with ThenGone.
type ScriptedStatus struct {
	records []string
	next    int
	gone    bool
	cur     *strings.Reader
	closed  atomic.Bool
	reads   atomic.Int32
}

func Script(records ...string) *ScriptedStatus {
	return &ScriptedStatus{records: records}
}

func (s *ScriptedStatus) ThenGone() *ScriptedStatus {
	s.gone = true
	return s
}

func (s *ScriptedStatus) Seek(offset int64, whence int) (int64, error) {
	if offset != 0 || whence != io.SeekStart {
		return 0, fmt.Errorf("unexpected seek %d/%d", offset, whence)
	}
	if s.next >= len(s.records) {
		if s.gone || len(s.records) == 0 {
			return 0, syscall.ENOENT
		}
		s.next = len(s.records) - 1
	}
	s.cur = strings.NewReader(s.records[s.next])
	s.next++
	s.reads.Add(1)
	return 0, nil
}

func (s *ScriptedStatus) Read(p []byte) (int, error) {
	if s.cur == nil {
		return 0, io.EOF
	}
	return s.cur.Read(p)
}

func (s *ScriptedStatus) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *ScriptedStatus) Closed() bool {
	return s.closed.Load()
}

// Reads is the number of records served so far
func (s *ScriptedStatus) Reads() int {
	return int(s.reads.Load())
}

// Opener hands out scripted records by descriptor number
type Opener map[int]*ScriptedStatus

func (o Opener) Open(d model.Descriptor) (proc.StatusFile, error) {
	s, ok := o[d.FD]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: d.String(), Err: syscall.ENOENT}
	}
	return s, nil
}
