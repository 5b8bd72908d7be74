package target

import (
	"errors"
	"os"
	"testing"

	"github.com/pranshuparmar/expost/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister []model.ProcessSummary

func (s staticLister) Processes() ([]model.ProcessSummary, error) {
	return s, nil
}

type failingLister struct{}

func (failingLister) Processes() ([]model.ProcessSummary, error) {
	return nil, errors.New("permission denied")
}

var procs = staticLister{
	{PID: 100, Command: "rsync", Cmdline: "rsync -a /src /dst"},
	{PID: 200, Command: "dd", Cmdline: "dd if=/data/file of=/dev/sdb"},
	{PID: 300, Command: "ddrescue", Cmdline: "ddrescue /dev/sda img"},
	{PID: 400, Command: "grep", Cmdline: "grep rsync"},
	{PID: 500, Command: "gzip", Cmdline: "gzip -9 big.log"},
	{PID: 501, Command: "gzip", Cmdline: "gzip -9 other.log"},
}

func TestResolvePID(t *testing.T) {
	pid, err := Resolve(failingLister{}, "1234")
	require.NoError(t, err)
	assert.Equal(t, 1234, pid)
}

func TestResolveName(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"rsync", 100},
		{"RSYNC", 100},
		{"dd", 200},
		{"ddres", 300},
		{"big.log", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid, err := Resolve(procs, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pid)
		})
	}
}

func TestResolveNameAmbiguous(t *testing.T) {
	_, err := Resolve(procs, "gzip")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousTarget)

	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Len(t, amb.Matches, 2)
	assert.Contains(t, err.Error(), `"gzip" matches 2 processes`)
}

func TestResolveNameMissing(t *testing.T) {
	_, err := Resolve(procs, "postgres")
	assert.ErrorIs(t, err, ErrNoSuchProcess)

	_, err = Resolve(procs, " ")
	assert.ErrorIs(t, err, ErrNoSuchProcess)
}

func TestResolveNameSkipsSelf(t *testing.T) {
	self := staticLister{{PID: os.Getpid(), Command: "target.test"}}
	_, err := Resolve(self, "target.test")
	assert.ErrorIs(t, err, ErrNoSuchProcess)
}

func TestResolveNameListError(t *testing.T) {
	_, err := Resolve(failingLister{}, "rsync")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSuchProcess)
}
