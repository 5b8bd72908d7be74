//go:build linux

package proc

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
)

// ownerOf returns the name of the user owning path, or its uid when the
// name cannot be looked up
func ownerOf(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "unknown"
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "unknown"
	}

	uid := strconv.FormatUint(uint64(stat.Uid), 10)
	if stat.Uid == 0 {
		return "root"
	}
	if u, err := user.LookupId(uid); err == nil {
		return u.Username
	}
	return uid
}
