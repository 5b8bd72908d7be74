package model

import (
	"fmt"
	"time"
)

// TargetFile is the file being observed. Size is read once when descriptors
// are discovered and is assumed fixed for the rest of the session.
type TargetFile struct {
	Path string `json:"path"`
	Size uint64 `json:"size"`
}

// Descriptor identifies one open file descriptor of another process.
// Its validity is owned by that process and may end at any time.
type Descriptor struct {
	PID int `json:"pid"`
	FD  int `json:"fd"`
}

func (d Descriptor) String() string {
	return fmt.Sprintf("/proc/%d/fd/%d", d.PID, d.FD)
}

// Sample is one observed offset of a descriptor. Offsets are not monotonic:
// the observed process may seek backwards.
type Sample struct {
	FD     int
	Offset uint64
	At     time.Time
}
