package fft

// Buffer is a pair of equal-length real and imaginary slices sized for the
// in-place transform. Integration and spectrum calls obtain one per
// invocation, load the padded signal, run the transform, and release it;
// buffers are never shared between concurrent calls.
type Buffer struct {
	Re []float64
	Im []float64
}

// NewBuffer returns a zero-filled Buffer of the given length.
func NewBuffer(length int) *Buffer {
	if length < 0 {
		length = 0
	}
	return &Buffer{
		Re: make([]float64, length),
		Im: make([]float64, length),
	}
}

// Len returns the current transform length.
func (b *Buffer) Len() int {
	return len(b.Re)
}

// Resize sets both slices to length n, reusing capacity when possible.
// Elements beyond the previous length are zeroed; elements below it keep
// their values.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	b.Re = resize(b.Re, n)
	b.Im = resize(b.Im, n)
}

func resize(s []float64, n int) []float64 {
	oldLen := len(s)
	if n <= cap(s) {
		s = s[:n]
	} else {
		grown := make([]float64, n)
		copy(grown, s)
		s = grown
	}
	// Stale data may survive in the backing array between uses.
	for i := oldLen; i < n; i++ {
		s[i] = 0
	}
	return s
}

// Zero clears both slices.
func (b *Buffer) Zero() {
	for i := range b.Re {
		b.Re[i] = 0
		b.Im[i] = 0
	}
}

// LoadSignal copies x into the real part, zero-pads the remainder, and
// clears the imaginary part. len(x) must not exceed the buffer length.
func (b *Buffer) LoadSignal(x []float64) {
	n := copy(b.Re, x)
	for i := n; i < len(b.Re); i++ {
		b.Re[i] = 0
	}
	for i := range b.Im {
		b.Im[i] = 0
	}
}
