package proc

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

const posLabel = "pos:"

// ParsePos extracts the file offset from an fdinfo record:
//
//	pos:	4096
//	flags:	0100000
//	mnt_id:	29
//
// Only the first pos: line is considered.
func ParsePos(record []byte) (uint64, error) {
	scanner := bufio.NewScanner(bytes.NewReader(record))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, posLabel) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, posLabel))
		pos, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: pos value %q", ErrMalformedStatus, value)
		}
		return pos, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedStatus, err)
	}
	return 0, fmt.Errorf("%w: no pos line", ErrMalformedStatus)
}
