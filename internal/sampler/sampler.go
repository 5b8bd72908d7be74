// Package sampler polls the fdinfo record of one descriptor until its offset
// reaches the end of the observed file.
package sampler

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/pranshuparmar/expost/internal/proc"
	"github.com/pranshuparmar/expost/pkg/model"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the pause between two reads of a status record
const DefaultInterval = 100 * time.Millisecond

// Opener opens the status record of a descriptor
type Opener func(model.Descriptor) (proc.StatusFile, error)

type Sampler struct {
	open     Opener
	interval time.Duration
	log      logrus.FieldLogger
}

type Option func(*Sampler)

func WithInterval(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sampler) {
		if log != nil {
			s.log = log
		}
	}
}

func New(open Opener, opts ...Option) *Sampler {
	s := &Sampler{
		open:     open,
		interval: DefaultInterval,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Samples returns the offsets of d, one per interval, starting immediately.
//
// The sequence ends after yielding an offset equal to total. Any other end
// is reported as a final (zero Sample, error) pair wrapping
// proc.ErrDescriptorGone, proc.ErrMalformedStatus or the context's error.
// The status record is opened once and rewound before every read.
func (s *Sampler) Samples(ctx context.Context, d model.Descriptor, total uint64) iter.Seq2[model.Sample, error] {
	return func(yield func(model.Sample, error) bool) {
		log := s.log.WithFields(logrus.Fields{"pid": d.PID, "fd": d.FD})

		f, err := s.open(d)
		if err != nil {
			yield(model.Sample{}, fmt.Errorf("%s: %w: %w", d, proc.ErrDescriptorGone, err))
			return
		}
		defer f.Close()

		log.WithField("total", total).Debug("sampling started")

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Debug("sampling cancelled")
				yield(model.Sample{}, fmt.Errorf("%s: observation stopped: %w", d, ctx.Err()))
				return
			case <-timer.C:
			}

			pos, err := read(f)
			if err != nil {
				log.WithError(err).Debug("sampling failed")
				yield(model.Sample{}, fmt.Errorf("%s: %w", d, err))
				return
			}

			if !yield(model.Sample{FD: d.FD, Offset: pos, At: time.Now()}, nil) {
				return
			}
			if pos == total {
				log.Debug("reached end of file")
				return
			}
			timer.Reset(s.interval)
		}
	}
}

// Run feeds every sample of d to fn and returns the terminal error, nil when
// the offset reached total.
func (s *Sampler) Run(ctx context.Context, d model.Descriptor, total uint64, fn func(model.Sample)) error {
	for sample, err := range s.Samples(ctx, d, total) {
		if err != nil {
			return err
		}
		fn(sample)
	}
	return nil
}

func read(f proc.StatusFile) (uint64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", proc.ErrDescriptorGone, err)
	}
	record, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", proc.ErrDescriptorGone, err)
	}
	return proc.ParsePos(record)
}
