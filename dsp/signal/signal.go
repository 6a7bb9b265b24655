// Package signal generates deterministic synthetic ground motions for
// tests, demos, and benchmark inputs.
package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// Sine generates amplitude*sin(2*pi*freqHz*t) sampled at interval dt.
func Sine(freqHz, dt, amplitude float64, n int) ([]float64, error) {
	if err := validate(freqHz, dt, n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	step := 2 * math.Pi * freqHz * dt
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Ricker generates a unit-peak Ricker wavelet with the given center
// frequency, centered at sample n/2. The wavelet is the standard
// zero-phase test pulse for band-limited transient motion.
func Ricker(centerHz, dt float64, n int) ([]float64, error) {
	if err := validate(centerHz, dt, n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	center := float64(n / 2)
	for i := range out {
		tau := (float64(i) - center) * dt
		arg := math.Pi * centerHz * tau
		arg *= arg
		out[i] = (1 - 2*arg) * math.Exp(-arg)
	}
	return out, nil
}

// Noise generates seeded white noise in [-amplitude, amplitude].
// The same seed always yields the same series.
func Noise(seed int64, amplitude float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("signal: sample count must be > 0: %d", n)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("signal: amplitude must be >= 0: %v", amplitude)
	}
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Impulse generates a unit impulse at sample pos.
func Impulse(n, pos int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("signal: sample count must be > 0: %d", n)
	}
	if pos < 0 || pos >= n {
		return nil, fmt.Errorf("signal: impulse position out of range [0,%d): %d", n, pos)
	}
	out := make([]float64, n)
	out[pos] = 1
	return out, nil
}

// Offset generates a constant series, the degenerate input used to probe
// drift suppression.
func Offset(value float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("signal: sample count must be > 0: %d", n)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out, nil
}

func validate(freqHz, dt float64, n int) error {
	if n <= 0 {
		return fmt.Errorf("signal: sample count must be > 0: %d", n)
	}
	if dt <= 0 {
		return fmt.Errorf("signal: sampling interval must be > 0: %v", dt)
	}
	if freqHz <= 0 {
		return fmt.Errorf("signal: frequency must be > 0: %v", freqHz)
	}
	return nil
}
