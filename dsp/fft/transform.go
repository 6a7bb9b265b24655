package fft

import (
	"errors"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Errors returned by the transform entry points.
var (
	ErrEmptyInput     = errors.New("fft: empty input")
	ErrLengthMismatch = errors.New("fft: real and imag length mismatch")
	ErrNotPowerOfTwo  = errors.New("fft: length must be a power of two")
)

// Forward computes the discrete Fourier transform of the complex sequence
// held in re and im, in place. The length must be a power of two.
// No normalization is applied.
func Forward(re, im []float64) error {
	if err := validatePair(re, im); err != nil {
		return err
	}
	transform(re, im, false)
	return nil
}

// Inverse computes the inverse discrete Fourier transform in place and
// divides every element by the length, so Inverse(Forward(x)) == x up to
// rounding.
func Inverse(re, im []float64) error {
	if err := validatePair(re, im); err != nil {
		return err
	}
	transform(re, im, true)
	return nil
}

func validatePair(re, im []float64) error {
	if len(re) == 0 {
		return ErrEmptyInput
	}
	if len(re) != len(im) {
		return ErrLengthMismatch
	}
	if !IsPow2(len(re)) {
		return ErrNotPowerOfTwo
	}
	return nil
}

// transform is the radix-2 decimation-in-time kernel. Bit-reversal
// reordering first, then log2(n) butterfly stages with the block length
// doubling each stage. The per-block twiddle factor advances by one
// complex multiplication per butterfly instead of a trig call.
func transform(re, im []float64, invert bool) {
	n := len(re)
	if n <= 1 {
		return
	}

	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for blockLen := 2; blockLen <= n; blockLen <<= 1 {
		ang := 2 * math.Pi / float64(blockLen)
		if !invert {
			ang = -ang
		}
		stepRe, stepIm := math.Cos(ang), math.Sin(ang)
		half := blockLen >> 1

		for start := 0; start < n; start += blockLen {
			wRe, wIm := 1.0, 0.0
			for k := start; k < start+half; k++ {
				m := k + half
				oddRe := re[m]*wRe - im[m]*wIm
				oddIm := re[m]*wIm + im[m]*wRe
				re[m] = re[k] - oddRe
				im[m] = im[k] - oddIm
				re[k] += oddRe
				im[k] += oddIm
				wRe, wIm = wRe*stepRe-wIm*stepIm, wRe*stepIm+wIm*stepRe
			}
		}
	}

	if invert {
		scale := 1 / float64(n)
		vecmath.ScaleBlockInPlace(re, scale)
		vecmath.ScaleBlockInPlace(im, scale)
	}
}

// NextPow2 returns the smallest power of two >= n. For n <= 1 it returns 1.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
