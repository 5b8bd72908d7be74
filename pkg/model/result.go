package model

import "errors"

type DescriptorStatus string

const (
	StatusFinished DescriptorStatus = "finished"
	StatusFailed   DescriptorStatus = "failed"
)

// DescriptorResult is the terminal state of one descriptor's sampler
type DescriptorResult struct {
	Descriptor
	Offset uint64           `json:"offset"`
	Status DescriptorStatus `json:"status"`
	Err    error            `json:"-"`
	Reason string           `json:"reason,omitempty"`
}

type Result struct {
	Target      TargetFile         `json:"target"`
	Process     Process            `json:"process"`
	Descriptors []DescriptorResult `json:"descriptors"`
}

// OK reports whether every observed descriptor reached the end of the file.
// A session with nothing to observe is OK.
func (r Result) OK() bool {
	for _, d := range r.Descriptors {
		if d.Status != StatusFinished {
			return false
		}
	}
	return true
}

func (r Result) Failed() []DescriptorResult {
	var failed []DescriptorResult
	for _, d := range r.Descriptors {
		if d.Status == StatusFailed {
			failed = append(failed, d)
		}
	}
	return failed
}

// Err joins the errors of every failed descriptor, or returns nil
func (r Result) Err() error {
	var errs []error
	for _, d := range r.Failed() {
		errs = append(errs, d.Err)
	}
	return errors.Join(errs...)
}
