package waveform

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// DefaultBaselineWindow is the leading span, in seconds, used to estimate
// the pre-event offset of an accelerograph channel.
const DefaultBaselineWindow = 1.0

// Correct removes the instrument baseline from one series by subtracting
// the mean of the leading window seconds. The window sample count is
// clamped to [1, len(data)], so short records fall back to a whole-record
// mean. Returns a new slice.
func Correct(data []float64, dt, window float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, dt)
	}
	if window <= 0 {
		return nil, fmt.Errorf("waveform: baseline window must be > 0: %v", window)
	}

	k := int(window / dt)
	if k < 1 {
		k = 1
	}
	if k > len(data) {
		k = len(data)
	}
	offset := stat.Mean(data[:k], nil)

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - offset
	}
	return out, nil
}

// Corrected applies Correct to every component and returns a new record.
func (r *Record) Corrected(window float64) (*Record, error) {
	return r.Map(func(_ Component, x []float64) ([]float64, error) {
		return Correct(x, r.dt, window)
	})
}
