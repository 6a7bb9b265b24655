// Package taper applies cosine end tapers to recorded motions before
// spectral processing, reducing the leakage that hard record edges cause.
package taper

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by Cosine.
var (
	ErrEmptyInput   = errors.New("taper: empty input")
	ErrInvalidRatio = errors.New("taper: ratio must be in [0,1]")
)

// Cosine tapers the signal in place with half-cosine ramps at both ends.
// ratio is the total fraction of the record tapered, split evenly between
// the two ends; 0 leaves the signal untouched and 1 degenerates to a full
// Hann envelope.
func Cosine(x []float64, ratio float64) error {
	if len(x) == 0 {
		return ErrEmptyInput
	}
	if ratio < 0 || ratio > 1 || math.IsNaN(ratio) {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}

	n := len(x)
	k := int(ratio * float64(n) / 2)
	if k == 0 {
		return nil
	}

	for i := 0; i < k; i++ {
		w := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(k)))
		x[i] *= w
		x[n-1-i] *= w
	}
	return nil
}
