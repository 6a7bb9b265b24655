// Package fourier computes single-sided Fourier amplitude spectra of
// ground-motion records.
//
// Amplitude per bin is |X(f)|*2*dt/nfft, where the doubling folds the
// negative-frequency half back in; DC and Nyquist have no mirror image
// and stay single. For acceleration input in gal the amplitudes are in
// gal*s.
package fourier

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/seisgo/strongmotion/dsp/fft"
)

// DefaultPadFactor is the zero-padding multiple before the transform.
// Spectra use the plain next power of two; integration pads further.
const DefaultPadFactor = 1

// Errors returned by Compute.
var (
	ErrEmptyInput       = errors.New("fourier: empty input")
	ErrInvalidInterval  = errors.New("fourier: sampling interval must be > 0")
	ErrInvalidPadFactor = errors.New("fourier: pad factor must be >= 1")
)

// Spectrum is a single-sided amplitude spectrum on a uniform frequency
// axis from DC to Nyquist.
type Spectrum struct {
	Frequency []float64 // Hz
	Amplitude []float64 // input units * s, non-negative
}

// Len returns the number of spectral bins.
func (s *Spectrum) Len() int {
	return len(s.Frequency)
}

// Peak returns the frequency and amplitude of the largest spectral bin.
func (s *Spectrum) Peak() (freqHz, amplitude float64) {
	idx := 0
	for i, a := range s.Amplitude {
		if a > s.Amplitude[idx] {
			idx = i
		}
	}
	return s.Frequency[idx], s.Amplitude[idx]
}

type config struct {
	padFactor int
}

// Option configures a single spectrum computation.
type Option func(*config)

// WithPadFactor sets the zero-padding multiple: the transform length is
// the next power of two >= factor*len(signal).
func WithPadFactor(factor int) Option {
	return func(c *config) {
		c.padFactor = factor
	}
}

var bufPool = fft.NewPool()

// Compute returns the single-sided amplitude spectrum of the signal.
// The result has nfft/2+1 bins with Frequency[i] = i/(nfft*dt).
func Compute(signal []float64, dt float64, opts ...Option) (*Spectrum, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, dt)
	}

	cfg := config{padFactor: DefaultPadFactor}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.padFactor < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPadFactor, cfg.padFactor)
	}

	nfft := fft.NextPow2(cfg.padFactor * len(signal))

	buf := bufPool.Get(nfft)
	defer bufPool.Put(buf)
	buf.LoadSignal(signal)

	if err := fft.Forward(buf.Re, buf.Im); err != nil {
		return nil, err
	}

	m := nfft/2 + 1
	df := 1 / (float64(nfft) * dt)

	amp := make([]float64, m)
	vecmath.Magnitude(amp, buf.Re[:m], buf.Im[:m])

	// Interior bins carry both spectrum halves.
	vecmath.ScaleBlockInPlace(amp, 2*dt/float64(nfft))
	amp[0] *= 0.5
	if m > 1 {
		amp[m-1] *= 0.5
	}

	freq := make([]float64, m)
	for i := range freq {
		freq[i] = float64(i) * df
	}

	return &Spectrum{Frequency: freq, Amplitude: amp}, nil
}
