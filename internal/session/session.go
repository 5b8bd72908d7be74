// Package session runs one sampler per observed descriptor and collects how
// each of them ended.
package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/alitto/pond/v2"
	"github.com/pranshuparmar/expost/internal/display"
	"github.com/pranshuparmar/expost/internal/sampler"
	"github.com/pranshuparmar/expost/pkg/model"
	"github.com/sirupsen/logrus"
)

// Coordinator owns the display for one observation session. Samplers only
// reach it through their own tracker.
type Coordinator struct {
	display display.Display
	sampler *sampler.Sampler
	log     logrus.FieldLogger
}

func New(d display.Display, s *sampler.Sampler, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{display: d, sampler: s, log: log}
}

type report struct {
	fd     int
	offset uint64
	err    error
}

// Run observes every descriptor in fds until each one reaches target.Size
// or fails. A failing descriptor never stops the others. Run returns once
// all samplers have ended and the display has been flushed.
func (c *Coordinator) Run(ctx context.Context, pid int, target model.TargetFile, fds []int) model.Result {
	res := model.Result{Target: target}
	if len(fds) == 0 {
		return res
	}
	fds = slices.Compact(slices.Sorted(slices.Values(fds)))

	trackers := make(map[int]display.Tracker, len(fds))
	for _, fd := range fds {
		trackers[fd] = c.display.Track(model.Descriptor{PID: pid, FD: fd}.String(), target.Size)
	}

	reports := make(chan report, len(fds))
	pool := pond.NewPool(len(fds))
	for _, fd := range fds {
		d := model.Descriptor{PID: pid, FD: fd}
		tracker := trackers[fd]
		pool.Submit(func() {
			reports <- c.observe(ctx, d, target.Size, tracker)
		})
	}

	results := make(map[int]model.DescriptorResult, len(fds))
	for range fds {
		r := <-reports
		log := c.log.WithFields(logrus.Fields{"pid": pid, "fd": r.fd, "offset": r.offset})

		dr := model.DescriptorResult{
			Descriptor: model.Descriptor{PID: pid, FD: r.fd},
			Offset:     r.offset,
			Status:     model.StatusFinished,
		}
		if r.err != nil {
			dr.Status = model.StatusFailed
			dr.Err = r.err
			dr.Reason = r.err.Error()
			trackers[r.fd].Fail(r.err)
			log.WithError(r.err).Info("descriptor failed")
		} else {
			trackers[r.fd].Finish()
			log.Debug("descriptor finished")
		}
		results[r.fd] = dr
	}
	pool.StopAndWait()
	c.display.Wait()

	for _, fd := range fds {
		res.Descriptors = append(res.Descriptors, results[fd])
	}
	return res
}

// observe runs the sampler of d to its end. A panicking sampler is turned
// into a failure of its own descriptor.
func (c *Coordinator) observe(ctx context.Context, d model.Descriptor, total uint64, tracker display.Tracker) (r report) {
	r.fd = d.FD
	defer func() {
		if p := recover(); p != nil {
			r.err = fmt.Errorf("%s: sampler panicked: %v", d, p)
		}
	}()

	r.err = c.sampler.Run(ctx, d, total, func(s model.Sample) {
		r.offset = s.Offset
		tracker.Update(s.Offset)
	})
	return r
}
