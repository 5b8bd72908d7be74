package proc

import "errors"

var (
	// ErrProcessUnavailable means the descriptor table of the target process
	// could not be enumerated. Nothing can be observed.
	ErrProcessUnavailable = errors.New("process unavailable")

	// ErrNoMatchingDescriptors is available to callers that treat an empty
	// resolution as terminal. Resolve itself never returns it.
	ErrNoMatchingDescriptors = errors.New("no descriptor references the file")

	// ErrDescriptorGone means a previously resolved descriptor's status record
	// can no longer be read (closed descriptor, exited process).
	ErrDescriptorGone = errors.New("descriptor gone")

	// ErrMalformedStatus means the status record was read but carries no
	// parseable pos: line.
	ErrMalformedStatus = errors.New("malformed status record")
)
