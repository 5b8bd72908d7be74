// Package display renders the live progress of observed descriptors.
//
// A Display hands out one Tracker per descriptor. Trackers are updated from
// independent goroutines; implementations serialize those updates themselves.
//
//	d := display.NewBars(os.Stdout, 64)
//	t := d.Track("/proc/1234/fd/5", 1000)
//	t.Update(500)
//	t.Finish()
//	d.Wait()
package display

type Display interface {
	// Track creates a tracker for a file of total bytes
	Track(label string, total uint64) Tracker

	// Wait blocks until every tracker has been finished or failed and the
	// display has been flushed. The display cannot be reused afterwards.
	Wait()
}

type Tracker interface {
	// Update sets the current offset. Offsets may go backwards.
	Update(pos uint64)
	Finish()
	Fail(err error)
}

// Mode selects a Display implementation
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeBars  Mode = "bars"
	ModeLines Mode = "lines"
	ModeTUI   Mode = "tui"
)

func Modes() []string {
	return []string{string(ModeAuto), string(ModeBars), string(ModeLines), string(ModeTUI)}
}
