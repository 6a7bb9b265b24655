// Package integrate converts acceleration histories to velocity (and, by
// re-application, displacement) in the frequency domain.
//
// The signal is zero-padded to a power of two, transformed, multiplied by
// 1/(i*omega) per bin, high-passed with a cosine taper against long-period
// drift, and transformed back. Applying the operation to a velocity series
// yields displacement.
package integrate

import (
	"errors"
	"fmt"
	"math"

	"github.com/seisgo/strongmotion/dsp/fft"
)

// Defaults for the drift-suppression options. The pipeline and CLI reuse
// these, so they are exported.
const (
	// DefaultHighpassHz is the cutoff below which spectral content is
	// tapered away before inversion.
	DefaultHighpassHz = 0.1

	// DefaultPadFactor is the zero-padding multiple applied before the
	// transform. Twice the record length keeps the circular wrap-around
	// of the integration operator out of the usable range.
	DefaultPadFactor = 2
)

// Errors returned by Spectral.
var (
	ErrEmptyInput       = errors.New("integrate: empty input")
	ErrInvalidInterval  = errors.New("integrate: sampling interval must be > 0")
	ErrInvalidHighpass  = errors.New("integrate: highpass cutoff must be >= 0 and below Nyquist")
	ErrInvalidPadFactor = errors.New("integrate: pad factor must be >= 1")
)

type config struct {
	highpassHz float64
	padFactor  int
}

// Option configures a single integration call.
type Option func(*config)

// WithHighpass sets the high-pass cutoff in Hz. Zero disables the taper;
// the DC bin is removed regardless.
func WithHighpass(freqHz float64) Option {
	return func(c *config) {
		c.highpassHz = freqHz
	}
}

// WithPadFactor sets the zero-padding multiple: the transform length is
// the next power of two >= factor*len(signal).
func WithPadFactor(factor int) Option {
	return func(c *config) {
		c.padFactor = factor
	}
}

var bufPool = fft.NewPool()

// Spectral integrates the signal once in the frequency domain and returns
// a new slice of the same length. For acceleration input in gal the result
// is velocity in gal*s (cm/s); integrating that result again yields
// displacement in cm.
func Spectral(signal []float64, dt float64, opts ...Option) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, dt)
	}

	cfg := config{highpassHz: DefaultHighpassHz, padFactor: DefaultPadFactor}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.padFactor < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPadFactor, cfg.padFactor)
	}
	if nyquist := 1 / (2 * dt); cfg.highpassHz < 0 || cfg.highpassHz >= nyquist {
		return nil, fmt.Errorf("%w: %v Hz (Nyquist %v Hz)", ErrInvalidHighpass, cfg.highpassHz, nyquist)
	}

	n := len(signal)
	nfft := fft.NextPow2(cfg.padFactor * n)

	buf := bufPool.Get(nfft)
	defer bufPool.Put(buf)
	buf.LoadSignal(signal)

	if err := fft.Forward(buf.Re, buf.Im); err != nil {
		return nil, err
	}
	applyOmegaInverse(buf.Re, buf.Im, dt, cfg.highpassHz)
	if err := fft.Inverse(buf.Re, buf.Im); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	copy(out, buf.Re[:n])
	return out, nil
}

// applyOmegaInverse multiplies each bin by 1/(i*omega) using the signed
// frequency layout (positive frequencies in the lower half, negative in
// the upper), zeroes DC, and ramps bins below the cutoff with a half
// cosine. The folded index keeps the taper symmetric across the two
// halves.
func applyOmegaInverse(re, im []float64, dt, highpassHz float64) {
	nfft := len(re)
	half := nfft / 2
	df := 1 / (float64(nfft) * dt)

	cutoffBin := 0
	if highpassHz > 0 {
		cutoffBin = int(highpassHz / df)
	}

	for i := 1; i < nfft; i++ {
		f := float64(i) * df
		folded := i
		if i > half {
			f = float64(i-nfft) * df
			folded = nfft - i
		}
		omega := 2 * math.Pi * f

		newRe := im[i] / omega
		newIm := -re[i] / omega

		if cutoffBin > 0 && folded < cutoffBin {
			ramp := 0.5 * (1 - math.Cos(math.Pi*float64(folded)/float64(cutoffBin)))
			newRe *= ramp
			newIm *= ramp
		}

		re[i] = newRe
		im[i] = newIm
	}

	re[0] = 0
	im[0] = 0
}
