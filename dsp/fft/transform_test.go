package fft

import (
	"errors"
	"math"
	"testing"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/seisgo/strongmotion/dsp/signal"
	"github.com/seisgo/strongmotion/internal/testutil"
)

func TestForwardImpulse(t *testing.T) {
	re, err := signal.Impulse(8, 0)
	if err != nil {
		t.Fatalf("Impulse failed: %v", err)
	}
	im := make([]float64, 8)

	if err := Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	// An impulse at t=0 has a flat, purely real spectrum.
	for i := range re {
		if math.Abs(re[i]-1) > 1e-12 {
			t.Fatalf("re[%d]: got=%v want=1", i, re[i])
		}
		if math.Abs(im[i]) > 1e-12 {
			t.Fatalf("im[%d]: got=%v want=0", i, im[i])
		}
	}
}

func TestForwardSineBin(t *testing.T) {
	const n = 64
	const bin = 5

	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * bin * float64(i) / n)
	}

	if err := Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	// sin at bin k maps to -i*n/2 at k and +i*n/2 at n-k.
	for i := 0; i < n; i++ {
		wantIm := 0.0
		switch i {
		case bin:
			wantIm = -n / 2
		case n - bin:
			wantIm = n / 2
		}
		if math.Abs(im[i]-wantIm) > 1e-9 {
			t.Fatalf("im[%d]: got=%v want=%v", i, im[i], wantIm)
		}
		if math.Abs(re[i]) > 1e-9 {
			t.Fatalf("re[%d]: got=%v want=0", i, re[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	const n = 1024

	src, err := signal.Noise(7, 100, n)
	if err != nil {
		t.Fatalf("Noise failed: %v", err)
	}

	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, src)

	if err := Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if err := Inverse(re, im); err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	diff, err := testutil.MaxAbsDiff(re, src)
	if err != nil {
		t.Fatalf("MaxAbsDiff failed: %v", err)
	}
	if rel := diff / testutil.MaxAbs(src); rel > 1e-9 {
		t.Fatalf("round trip relative error: got=%v want<=1e-9", rel)
	}
	if imPeak := testutil.MaxAbs(im); imPeak/testutil.MaxAbs(src) > 1e-9 {
		t.Fatalf("imaginary residue after round trip: %v", imPeak)
	}
}

func TestLengthOneIsNoOp(t *testing.T) {
	re := []float64{3.25}
	im := []float64{-1.5}

	if err := Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if re[0] != 3.25 || im[0] != -1.5 {
		t.Fatalf("length-1 transform modified data: re=%v im=%v", re[0], im[0])
	}

	if err := Inverse(re, im); err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	if re[0] != 3.25 || im[0] != -1.5 {
		t.Fatalf("length-1 inverse modified data: re=%v im=%v", re[0], im[0])
	}
}

func TestValidation(t *testing.T) {
	if err := Forward(nil, nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty: got=%v want=%v", err, ErrEmptyInput)
	}
	if err := Forward(make([]float64, 8), make([]float64, 4)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("mismatch: got=%v want=%v", err, ErrLengthMismatch)
	}
	if err := Forward(make([]float64, 6), make([]float64, 6)); !errors.Is(err, ErrNotPowerOfTwo) {
		t.Fatalf("non power of two: got=%v want=%v", err, ErrNotPowerOfTwo)
	}
	if err := Inverse(make([]float64, 3), make([]float64, 3)); !errors.Is(err, ErrNotPowerOfTwo) {
		t.Fatalf("inverse non power of two: got=%v want=%v", err, ErrNotPowerOfTwo)
	}
}

// TestMatchesReferencePlan cross-checks the kernel against the plan-based
// library on a complex-valued input, both directions.
func TestMatchesReferencePlan(t *testing.T) {
	const n = 256

	reSrc, err := signal.Noise(11, 1, n)
	if err != nil {
		t.Fatalf("Noise failed: %v", err)
	}
	imSrc, err := signal.Noise(12, 1, n)
	if err != nil {
		t.Fatalf("Noise failed: %v", err)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		t.Fatalf("NewPlan64 failed: %v", err)
	}

	src := make([]complex128, n)
	for i := range src {
		src[i] = complex(reSrc[i], imSrc[i])
	}
	want := make([]complex128, n)
	if err := plan.Forward(want, src); err != nil {
		t.Fatalf("plan.Forward failed: %v", err)
	}

	re := append([]float64(nil), reSrc...)
	im := append([]float64(nil), imSrc...)
	if err := Forward(re, im); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	for i := range want {
		if math.Abs(re[i]-real(want[i])) > 1e-9 || math.Abs(im[i]-imag(want[i])) > 1e-9 {
			t.Fatalf("forward bin %d: got=(%v,%v) want=(%v,%v)", i, re[i], im[i], real(want[i]), imag(want[i]))
		}
	}

	back := make([]complex128, n)
	if err := plan.Inverse(back, want); err != nil {
		t.Fatalf("plan.Inverse failed: %v", err)
	}
	if err := Inverse(re, im); err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	for i := range back {
		if math.Abs(re[i]-real(back[i])) > 1e-9 || math.Abs(im[i]-imag(back[i])) > 1e-9 {
			t.Fatalf("inverse bin %d: got=(%v,%v) want=(%v,%v)", i, re[i], im[i], real(back[i]), imag(back[i]))
		}
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{1000, 1024},
		{1024, 1024},
		{1025, 2048},
	}
	for _, tt := range tests {
		if got := NextPow2(tt.n); got != tt.want {
			t.Fatalf("NextPow2(%d): got=%d want=%d", tt.n, got, tt.want)
		}
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 4096} {
		if !IsPow2(n) {
			t.Fatalf("IsPow2(%d): got=false want=true", n)
		}
	}
	for _, n := range []int{-4, 0, 3, 6, 12, 1000} {
		if IsPow2(n) {
			t.Fatalf("IsPow2(%d): got=true want=false", n)
		}
	}
}

func BenchmarkForward4096(b *testing.B) {
	src, err := signal.Noise(1, 1, 4096)
	if err != nil {
		b.Fatalf("Noise failed: %v", err)
	}
	re := make([]float64, 4096)
	im := make([]float64, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(re, src)
		for j := range im {
			im[j] = 0
		}
		if err := Forward(re, im); err != nil {
			b.Fatal(err)
		}
	}
}
