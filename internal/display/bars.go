package display

import (
	"io"
	"math"
	"time"

	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// Bars draws one mpb progress bar per tracker
type Bars struct {
	progress *mpb.Progress
}

func NewBars(w io.Writer, width int) *Bars {
	return &Bars{
		progress: mpb.New(
			mpb.WithOutput(w),
			mpb.WithWidth(width),
			mpb.WithRefreshRate(100*time.Millisecond),
		),
	}
}

func (b *Bars) Track(label string, total uint64) Tracker {
	bar := b.progress.AddBar(clamp(total),
		mpb.PrependDecorators(
			decor.Elapsed(decor.ET_STYLE_HHMMSS, decor.WC{W: 9}),
			decor.Name(label, decor.WC{W: len(label) + 1, C: decor.DidentRight}),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 22}),
			decor.AverageSpeed(decor.UnitKiB, " % .1f", decor.WC{W: 14}),
			decor.OnComplete(decor.Percentage(decor.WC{W: 6}), " done"),
		),
	)
	return &barTracker{bar: bar, total: total}
}

func (b *Bars) Wait() {
	b.progress.Wait()
}

type barTracker struct {
	bar   *mpb.Bar
	total uint64
}

func (t *barTracker) Update(pos uint64) {
	t.bar.SetCurrent(clamp(pos))
}

func (t *barTracker) Finish() {
	t.bar.SetTotal(clamp(t.total), true)
}

// Fail leaves the bar where it stopped; the reason is reported in the
// session summary.
func (t *barTracker) Fail(error) {
	t.bar.Abort(false)
}

func clamp(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
