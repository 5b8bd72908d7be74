package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pranshuparmar/expost/internal/display"
	"github.com/pranshuparmar/expost/internal/proc"
	"github.com/pranshuparmar/expost/internal/sampler"
	"github.com/pranshuparmar/expost/internal/session"
	"github.com/pranshuparmar/expost/internal/testutils"
	"github.com/pranshuparmar/expost/pkg/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	trackers map[string]*recordedTracker
	waited   bool
}

type recordedTracker struct {
	mu       sync.Mutex
	total    uint64
	updates  []uint64
	finished bool
	err      error
}

func newRecorder() *recorder {
	return &recorder{trackers: map[string]*recordedTracker{}}
}

func (r *recorder) Track(label string, total uint64) display.Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &recordedTracker{total: total}
	r.trackers[label] = t
	return t
}

func (r *recorder) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waited = true
}

func (r *recorder) tracker(t *testing.T, label string) *recordedTracker {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.trackers[label]
	require.True(t, ok, "no tracker %q", label)
	return tr
}

func (t *recordedTracker) Update(pos uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updates = append(t.updates, pos)
}

func (t *recordedTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = true
}

func (t *recordedTracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

var target = model.TargetFile{Path: "/data/file", Size: 1000}

func newCoordinator(d display.Display, open sampler.Opener) *session.Coordinator {
	s := sampler.New(open, sampler.WithInterval(time.Millisecond))
	return session.New(d, s, logrus.New())
}

func TestTwoDescriptorsFinish(t *testing.T) {
	rec := newRecorder()
	opener := testutils.Opener{
		5: testutils.Script(testutils.FDInfo(500), testutils.FDInfo(1000)),
		9: testutils.Script(testutils.FDInfo(0), testutils.FDInfo(1000)),
	}

	res := newCoordinator(rec, opener.Open).Run(context.Background(), 1234, target, []int{9, 5})

	require.True(t, res.OK())
	require.NoError(t, res.Err())
	require.Len(t, res.Descriptors, 2)
	assert.Equal(t, 5, res.Descriptors[0].FD)
	assert.Equal(t, 9, res.Descriptors[1].FD)
	for _, d := range res.Descriptors {
		assert.Equal(t, model.StatusFinished, d.Status)
		assert.EqualValues(t, 1000, d.Offset)
	}

	t5 := rec.tracker(t, "/proc/1234/fd/5")
	assert.Equal(t, []uint64{500, 1000}, t5.updates)
	assert.EqualValues(t, 1000, t5.total)
	assert.True(t, t5.finished)

	t9 := rec.tracker(t, "/proc/1234/fd/9")
	assert.Equal(t, []uint64{0, 1000}, t9.updates)
	assert.True(t, t9.finished)

	assert.True(t, rec.waited)
	assert.True(t, opener[5].Closed())
	assert.True(t, opener[9].Closed())
}

func TestMalformedRecordDoesNotStopSiblings(t *testing.T) {
	rec := newRecorder()
	opener := testutils.Opener{
		5: testutils.Script("flags:\t0100000\n"),
		9: testutils.Script(
			testutils.FDInfo(0),
			testutils.FDInfo(100),
			testutils.FDInfo(400),
			testutils.FDInfo(900),
			testutils.FDInfo(1000),
		),
	}

	res := newCoordinator(rec, opener.Open).Run(context.Background(), 1234, target, []int{5, 9})

	assert.False(t, res.OK())
	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, 5, failed[0].FD)
	assert.ErrorIs(t, failed[0].Err, proc.ErrMalformedStatus)
	assert.NotEmpty(t, failed[0].Reason)
	assert.ErrorIs(t, res.Err(), proc.ErrMalformedStatus)

	assert.Equal(t, model.StatusFinished, res.Descriptors[1].Status)
	assert.Equal(t, []uint64{0, 100, 400, 900, 1000}, rec.tracker(t, "/proc/1234/fd/9").updates)
	assert.ErrorIs(t, rec.tracker(t, "/proc/1234/fd/5").err, proc.ErrMalformedStatus)
	assert.False(t, rec.tracker(t, "/proc/1234/fd/5").finished)
}

func TestDescriptorGoneIsReported(t *testing.T) {
	rec := newRecorder()
	opener := testutils.Opener{
		5: testutils.Script(testutils.FDInfo(300)).ThenGone(),
		9: testutils.Script(testutils.FDInfo(1000)),
	}

	res := newCoordinator(rec, opener.Open).Run(context.Background(), 1234, target, []int{5, 9})

	require.Len(t, res.Failed(), 1)
	gone := res.Descriptors[0]
	assert.Equal(t, model.StatusFailed, gone.Status)
	assert.EqualValues(t, 300, gone.Offset)
	assert.ErrorIs(t, gone.Err, proc.ErrDescriptorGone)
	assert.True(t, rec.tracker(t, "/proc/1234/fd/9").finished)
}

func TestNothingToObserve(t *testing.T) {
	rec := newRecorder()

	res := newCoordinator(rec, testutils.Opener{}.Open).Run(context.Background(), 1234, target, nil)

	assert.True(t, res.OK())
	assert.Empty(t, res.Descriptors)
	assert.Empty(t, rec.trackers)
	assert.False(t, rec.waited)
}

func TestDuplicateDescriptorsObservedOnce(t *testing.T) {
	rec := newRecorder()
	opener := testutils.Opener{5: testutils.Script(testutils.FDInfo(1000))}

	res := newCoordinator(rec, opener.Open).Run(context.Background(), 1234, target, []int{5, 5})

	assert.Len(t, res.Descriptors, 1)
	assert.True(t, res.OK())
}

func TestCancellationEndsEverySampler(t *testing.T) {
	rec := newRecorder()
	opener := testutils.Opener{
		5: testutils.Script(testutils.FDInfo(10)),
		9: testutils.Script(testutils.FDInfo(20)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		assert.Eventually(t, func() bool {
			return opener[5].Reads() > 0 && opener[9].Reads() > 0
		}, time.Second, time.Millisecond)
		cancel()
	}()

	done := make(chan model.Result, 1)
	go func() {
		done <- newCoordinator(rec, opener.Open).Run(ctx, 1234, target, []int{5, 9})
	}()

	select {
	case res := <-done:
		require.Len(t, res.Failed(), 2)
		for _, d := range res.Descriptors {
			assert.ErrorIs(t, d.Err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after cancellation")
	}
}

func TestPanickingSamplerIsIsolated(t *testing.T) {
	rec := newRecorder()
	scripts := testutils.Opener{9: testutils.Script(testutils.FDInfo(1000))}
	open := func(d model.Descriptor) (proc.StatusFile, error) {
		if d.FD == 7 {
			panic("boom")
		}
		return scripts.Open(d)
	}

	res := newCoordinator(rec, open).Run(context.Background(), 1234, target, []int{7, 9})

	require.Len(t, res.Failed(), 1)
	assert.Equal(t, 7, res.Failed()[0].FD)
	assert.Contains(t, res.Failed()[0].Reason, "sampler panicked: boom")
	assert.Equal(t, model.StatusFinished, res.Descriptors[1].Status)
}

func TestSessionOverProcFS(t *testing.T) {
	data := testutils.DataFile(t, "file", 1000)
	fs := testutils.NewProcFS(t)
	fs.AddProcess(1234, "cp")
	fs.AddDescriptor(1234, 5, data, 1000)
	fs.AddDescriptor(1234, 9, data, 1000)

	r, err := proc.NewResolver(fs.Root(), logrus.New())
	require.NoError(t, err)

	fds, err := r.Resolve(1234, data)
	require.NoError(t, err)
	size, err := r.Size(1234, fds, data)
	require.NoError(t, err)

	rec := newRecorder()
	res := newCoordinator(rec, r.OpenStatus).Run(context.Background(), 1234, model.TargetFile{Path: data, Size: size}, fds)

	assert.True(t, res.OK())
	assert.Len(t, res.Descriptors, 2)
}
