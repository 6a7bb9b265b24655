// Package motion computes peak values and intensity measures of
// strong-motion acceleration records. Inputs are in gal (cm/s²) unless
// noted otherwise.
package motion

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/seisgo/strongmotion/waveform"
)

// StandardGravity is the reference gravitational acceleration in m/s².
const StandardGravity = 9.80665

// Errors returned by Calculate, Horizontal and Vector.
var (
	ErrEmptyInput      = errors.New("motion: empty input")
	ErrInvalidInterval = errors.New("motion: sampling interval must be > 0")
	ErrLengthMismatch  = errors.New("motion: length mismatch")
)

// Stats holds the intensity measures of one acceleration history.
type Stats struct {
	Length              int
	Peak                float64 // max |a|, gal
	SignedPeak          float64 // value at the absolute peak, sign kept, gal
	Mean                float64 // gal
	RMS                 float64 // gal
	AriasIntensity      float64 // m/s
	SignificantDuration float64 // 5-95% of cumulative Arias intensity, s
	CAV                 float64 // cumulative absolute velocity, cm/s
	ZeroCrossings       int     // strict sign changes between neighbours
}

// Calculate computes all intensity measures of an acceleration history in
// gal sampled at dt seconds.
func Calculate(acc []float64, dt float64) (*Stats, error) {
	if len(acc) == 0 {
		return nil, ErrEmptyInput
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, dt)
	}

	n := len(acc)
	sumSq := vecmath.DotProduct(acc, acc)

	// Kahan summation keeps the mean stable on long records.
	var (
		sum, comp float64
		sumAbs    float64
		peakIdx   int
		crossings int
	)
	for i, a := range acc {
		y := a - comp
		t := sum + y
		comp = (t - sum) - y
		sum = t

		sumAbs += math.Abs(a)

		if math.Abs(a) > math.Abs(acc[peakIdx]) {
			peakIdx = i
		}
		if i > 0 && acc[i-1]*a < 0 {
			crossings++
		}
	}

	s := &Stats{
		Length:        n,
		Peak:          math.Abs(acc[peakIdx]),
		SignedPeak:    acc[peakIdx],
		Mean:          sum / float64(n),
		RMS:           math.Sqrt(sumSq / float64(n)),
		CAV:           sumAbs * dt,
		ZeroCrossings: crossings,
	}

	// Arias intensity wants the history in m/s²; gal is cm/s².
	s.AriasIntensity = math.Pi / (2 * StandardGravity) * sumSq / 1e4 * dt

	if sumSq > 0 {
		s.SignificantDuration = significantDuration(acc, dt, sumSq)
	}

	return s, nil
}

// significantDuration returns the time between the 5% and 95% crossings
// of the cumulative squared acceleration. total must be > 0.
func significantDuration(acc []float64, dt, total float64) float64 {
	lo := 0.05 * total
	hi := 0.95 * total

	running := 0.0
	iLo, iHi := -1, -1

	for i, a := range acc {
		running += a * a
		if iLo < 0 && running >= lo {
			iLo = i
		}
		if running >= hi {
			iHi = i

			break
		}
	}
	if iLo < 0 || iHi < 0 {
		return 0
	}

	return float64(iHi-iLo) * dt
}

// SignedPeak returns the sample with the largest absolute value, sign
// kept. Returns 0 for an empty slice.
func SignedPeak(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	idx := 0
	for i, v := range x {
		if math.Abs(v) > math.Abs(x[idx]) {
			idx = i
		}
	}

	return x[idx]
}

// Horizontal returns the peak combined horizontal amplitude
// max over t of sqrt(ns²+ew²).
func Horizontal(ns, ew []float64) (float64, error) {
	if len(ns) == 0 {
		return 0, ErrEmptyInput
	}
	if len(ns) != len(ew) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(ns), len(ew))
	}

	var peak float64
	for i := range ns {
		if h := math.Hypot(ns[i], ew[i]); h > peak {
			peak = h
		}
	}

	return peak, nil
}

// Vector returns the peak triaxial vector amplitude
// max over t of sqrt(ns²+ew²+ud²).
func Vector(ns, ew, ud []float64) (float64, error) {
	if len(ns) == 0 {
		return 0, ErrEmptyInput
	}
	if len(ns) != len(ew) || len(ns) != len(ud) {
		return 0, fmt.Errorf("%w: %d, %d, %d", ErrLengthMismatch, len(ns), len(ew), len(ud))
	}

	var peak float64
	for i := range ns {
		v := math.Sqrt(ns[i]*ns[i] + ew[i]*ew[i] + ud[i]*ud[i])
		if v > peak {
			peak = v
		}
	}

	return peak, nil
}

// PeakSet bundles the absolute peaks of one record in gal.
type PeakSet struct {
	NS         float64 `json:"ns"`
	EW         float64 `json:"ew"`
	UD         float64 `json:"ud"`
	Horizontal float64 `json:"horizontal"`
	Vector     float64 `json:"vector"`
}

// Peaks computes the component and combined peaks of a record. A nil or
// empty record yields a zero PeakSet.
func Peaks(rec *waveform.Record) PeakSet {
	if rec == nil || rec.Len() == 0 {
		return PeakSet{}
	}

	ns := rec.Series(waveform.NS)
	ew := rec.Series(waveform.EW)
	ud := rec.Series(waveform.UD)

	ps := PeakSet{
		NS: vecmath.MaxAbs(ns),
		EW: vecmath.MaxAbs(ew),
		UD: vecmath.MaxAbs(ud),
	}
	for i := range ns {
		if h := math.Hypot(ns[i], ew[i]); h > ps.Horizontal {
			ps.Horizontal = h
		}
		if v := math.Sqrt(ns[i]*ns[i] + ew[i]*ew[i] + ud[i]*ud[i]); v > ps.Vector {
			ps.Vector = v
		}
	}

	return ps
}
