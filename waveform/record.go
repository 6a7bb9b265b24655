// Package waveform holds the triaxial ground-motion record model shared by
// the processing packages.
//
// A Record stores three equal-length acceleration, velocity, or displacement
// series (NS, EW, UD) sampled at a uniform interval. Records are immutable
// after construction: processing stages derive new records rather than
// editing loaded data in place, and consumers read the component slices
// without copying.
package waveform

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by record construction and baseline correction.
var (
	ErrEmptyInput      = errors.New("waveform: empty component series")
	ErrLengthMismatch  = errors.New("waveform: component length mismatch")
	ErrInvalidInterval = errors.New("waveform: sampling interval must be > 0")
	ErrNonFinite       = errors.New("waveform: non-finite sample")
)

// Record is a triaxial series with a uniform sampling interval.
// All three components have the same length. The zero value is not usable;
// construct records with New.
type Record struct {
	data [NumComponents][]float64
	dt   float64
}

// New validates the three component series and wraps them in a Record.
// The slices are retained, not copied: the caller must not modify them
// afterwards.
func New(ns, ew, ud []float64, dt float64) (*Record, error) {
	if len(ns) == 0 || len(ew) == 0 || len(ud) == 0 {
		return nil, ErrEmptyInput
	}
	if len(ew) != len(ns) || len(ud) != len(ns) {
		return nil, fmt.Errorf("%w: NS=%d EW=%d UD=%d", ErrLengthMismatch, len(ns), len(ew), len(ud))
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, dt)
	}

	r := &Record{
		data: [NumComponents][]float64{NS: ns, EW: ew, UD: ud},
		dt:   dt,
	}
	for _, c := range Components() {
		if i, ok := firstNonFinite(r.data[c]); ok {
			return nil, fmt.Errorf("%w: %s[%d]=%v", ErrNonFinite, c, i, r.data[c][i])
		}
	}

	return r, nil
}

func firstNonFinite(x []float64) (int, bool) {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, true
		}
	}
	return 0, false
}

// Series returns the samples of one component.
// The returned slice is the record's backing storage; treat it as read-only.
func (r *Record) Series(c Component) []float64 {
	return r.data[c]
}

// Len returns the number of samples per component.
func (r *Record) Len() int {
	return len(r.data[NS])
}

// DT returns the sampling interval in seconds.
func (r *Record) DT() float64 {
	return r.dt
}

// SamplingHz returns the sampling rate in Hz.
func (r *Record) SamplingHz() float64 {
	return 1 / r.dt
}

// Duration returns the time spanned by the record in seconds.
func (r *Record) Duration() float64 {
	return float64(r.Len()-1) * r.dt
}

// TimeAxis returns a freshly allocated axis with t[i] = i*dt.
func (r *Record) TimeAxis() []float64 {
	t := make([]float64, r.Len())
	for i := range t {
		t[i] = float64(i) * r.dt
	}
	return t
}

// Map derives a new record by applying fn to each component series.
// fn receives the component and its samples and returns the derived series,
// which must keep the original length.
func (r *Record) Map(fn func(c Component, x []float64) ([]float64, error)) (*Record, error) {
	var out [NumComponents][]float64
	for _, c := range Components() {
		derived, err := fn(c, r.data[c])
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", c, err)
		}
		if len(derived) != r.Len() {
			return nil, fmt.Errorf("%w: component %s: %d -> %d", ErrLengthMismatch, c, r.Len(), len(derived))
		}
		out[c] = derived
	}
	return &Record{data: out, dt: r.dt}, nil
}
