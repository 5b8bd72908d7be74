package proc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pranshuparmar/expost/pkg/model"
	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"
)

// DefaultRoot is where procfs is normally mounted
const DefaultRoot = procfs.DefaultMountPoint

// StatusFile is an open fdinfo record. Samplers rewind and re-read the same
// handle instead of reopening it.
type StatusFile interface {
	io.ReadSeeker
	io.Closer
}

// Resolver answers questions about other processes' open descriptors
// from a procfs tree rooted at an arbitrary mount point.
type Resolver struct {
	root string
	fs   procfs.FS
	log  logrus.FieldLogger
}

func NewResolver(root string, log logrus.FieldLogger) (*Resolver, error) {
	if root == "" {
		root = DefaultRoot
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open procfs at %s: %w", root, err)
	}
	return &Resolver{root: root, fs: fs, log: log}, nil
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns, in ascending order, the descriptors of pid whose link
// target equals path exactly. path must already be canonical. Entries that
// disappear while the table is walked are skipped.
func (r *Resolver) Resolve(pid int, path string) ([]int, error) {
	p, err := r.fs.Proc(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %w", ErrProcessUnavailable, pid, err)
	}
	fds, err := p.FileDescriptors()
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %w", ErrProcessUnavailable, pid, err)
	}

	var matches []int
	for _, fd := range fds {
		link, err := os.Readlink(r.fdPath(pid, int(fd)))
		if err != nil {
			r.log.WithFields(logrus.Fields{"pid": pid, "fd": fd}).WithError(err).Debug("skipping descriptor")
			continue
		}
		if link == path {
			matches = append(matches, int(fd))
		}
	}
	sort.Ints(matches)

	return matches, nil
}

// Size returns the size of the file behind the first of fds that can still
// be stat'ed, falling back to path itself.
func (r *Resolver) Size(pid int, fds []int, path string) (uint64, error) {
	for _, fd := range fds {
		fi, err := os.Stat(r.fdPath(pid, fd))
		if err == nil {
			return uint64(fi.Size()), nil
		}
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return uint64(fi.Size()), nil
}

// OpenStatus opens the fdinfo record of d
func (r *Resolver) OpenStatus(d model.Descriptor) (StatusFile, error) {
	return os.Open(filepath.Join(r.root, strconv.Itoa(d.PID), "fdinfo", strconv.Itoa(d.FD)))
}

func (r *Resolver) fdPath(pid, fd int) string {
	return filepath.Join(r.root, strconv.Itoa(pid), "fd", strconv.Itoa(fd))
}
