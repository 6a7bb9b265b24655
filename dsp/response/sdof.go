package response

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Errors returned by Peak, Compute and NewOscillator.
var (
	ErrEmptyInput      = errors.New("response: empty input")
	ErrInvalidInterval = errors.New("response: sampling interval must be > 0")
	ErrInvalidPeriod   = errors.New("response: invalid period")
	ErrInvalidDamping  = errors.New("response: damping must be > 0")
)

// Average-acceleration Newmark parameters. The scheme is unconditionally
// stable, so the period grid needs no relation to the sampling interval.
const (
	newmarkBeta  = 0.25
	newmarkGamma = 0.5
)

// Oscillator advances a damped single-degree-of-freedom system through a
// ground-acceleration history using the average-acceleration Newmark
// scheme. The integration constants depend only on (dt, period, damping),
// so one oscillator can replay several histories sampled at the same
// interval via Reset.
type Oscillator struct {
	dt      float64
	period  float64
	damping float64

	c1, c2, c3, c4, c5, c6 float64
	twoHW                  float64
	keff                   float64

	u, v, a float64
	primed  bool
}

// NewOscillator precomputes the integration constants for one
// (period, damping) pair. period and damping must be > 0; the rigid
// zero-period limit is handled by Peak directly.
func NewOscillator(dt, period, damping float64) (*Oscillator, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, dt)
	}
	if period <= 0 || math.IsNaN(period) || math.IsInf(period, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
	}
	if damping <= 0 || math.IsNaN(damping) || math.IsInf(damping, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDamping, damping)
	}

	omega := 2 * math.Pi / period

	o := &Oscillator{dt: dt, period: period, damping: damping}
	o.c1 = 1 / (newmarkBeta * dt * dt)
	o.c2 = newmarkGamma / (newmarkBeta * dt)
	o.c3 = 1 / (newmarkBeta * dt)
	o.c4 = 1/(2*newmarkBeta) - 1
	o.c5 = dt * (newmarkGamma/(2*newmarkBeta) - 1)
	o.c6 = newmarkGamma/newmarkBeta - 1
	o.twoHW = 2 * damping * omega
	o.keff = omega*omega + o.c1 + o.twoHW*o.c2

	return o, nil
}

// Reset rewinds the oscillator to rest so the next Step starts a new
// history.
func (o *Oscillator) Reset() {
	o.u = 0
	o.v = 0
	o.a = 0
	o.primed = false
}

// Step advances the oscillator by one sample of ground acceleration and
// returns the absolute response acceleration. The first call after
// construction or Reset establishes the initial state and returns the
// ground sample itself.
func (o *Oscillator) Step(ground float64) float64 {
	if !o.primed {
		o.primed = true
		o.a = -ground

		return ground
	}

	peff := -ground + o.c1*o.u + o.c3*o.v + o.c4*o.a +
		o.twoHW*(o.c2*o.u+o.c6*o.v+o.c5*o.a)
	uNew := peff / o.keff
	vNew := o.c2*(uNew-o.u) - o.c6*o.v - o.c5*o.a
	aNew := o.c1*(uNew-o.u) - o.c3*o.v - o.c4*o.a

	o.u, o.v, o.a = uNew, vNew, aNew

	return aNew + ground
}

// Period returns the natural period in seconds.
func (o *Oscillator) Period() float64 { return o.period }

// Damping returns the fraction of critical damping.
func (o *Oscillator) Damping() float64 { return o.damping }

// peakOf replays one history from rest and returns the peak absolute
// response acceleration. acc must be non-empty.
func (o *Oscillator) peakOf(acc []float64) float64 {
	o.Reset()

	peak := math.Abs(o.Step(acc[0]))
	for _, g := range acc[1:] {
		if a := math.Abs(o.Step(g)); a > peak {
			peak = a
		}
	}

	return peak
}

// Peak returns the peak absolute response acceleration of a single
// oscillator driven by the ground-acceleration history acc. A period of
// zero is the rigid limit and yields max |acc| exactly; damping is
// ignored in that case.
func Peak(acc []float64, dt, period, damping float64) (float64, error) {
	if len(acc) == 0 {
		return 0, ErrEmptyInput
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInterval, dt)
	}
	if period < 0 || math.IsNaN(period) || math.IsInf(period, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
	}
	if period == 0 {
		return vecmath.MaxAbs(acc), nil
	}

	osc, err := NewOscillator(dt, period, damping)
	if err != nil {
		return 0, err
	}

	return osc.peakOf(acc), nil
}
