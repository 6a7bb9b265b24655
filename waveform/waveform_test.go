package waveform

import (
	"errors"
	"math"
	"testing"
)

func TestNewValidRecord(t *testing.T) {
	ns := []float64{1, 2, 3}
	ew := []float64{4, 5, 6}
	ud := []float64{7, 8, 9}

	r, err := New(ns, ew, ud, 0.01)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if r.Len() != 3 {
		t.Fatalf("Len: got=%d want=3", r.Len())
	}
	if r.DT() != 0.01 {
		t.Fatalf("DT: got=%v want=0.01", r.DT())
	}
	if got := r.SamplingHz(); math.Abs(got-100) > 1e-12 {
		t.Fatalf("SamplingHz: got=%v want=100", got)
	}
	if got := r.Duration(); math.Abs(got-0.02) > 1e-12 {
		t.Fatalf("Duration: got=%v want=0.02", got)
	}
	if got := r.Series(EW)[1]; got != 5 {
		t.Fatalf("Series(EW)[1]: got=%v want=5", got)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	good := []float64{1, 2, 3}

	tests := []struct {
		name    string
		ns      []float64
		ew      []float64
		ud      []float64
		dt      float64
		wantErr error
	}{
		{"empty NS", nil, good, good, 0.01, ErrEmptyInput},
		{"empty UD", good, good, []float64{}, 0.01, ErrEmptyInput},
		{"length mismatch", good, []float64{1, 2}, good, 0.01, ErrLengthMismatch},
		{"zero dt", good, good, good, 0, ErrInvalidInterval},
		{"negative dt", good, good, good, -0.01, ErrInvalidInterval},
		{"NaN dt", good, good, good, math.NaN(), ErrInvalidInterval},
		{"NaN sample", good, []float64{1, math.NaN(), 3}, good, 0.01, ErrNonFinite},
		{"Inf sample", good, good, []float64{1, math.Inf(1), 3}, 0.01, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.ns, tt.ew, tt.ud, tt.dt)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got=%v want=%v", err, tt.wantErr)
			}
		})
	}
}

func TestComponentString(t *testing.T) {
	tests := []struct {
		c    Component
		want string
	}{
		{NS, "NS"},
		{EW, "EW"},
		{UD, "UD"},
		{Component(7), "Component(7)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Fatalf("String(%d): got=%q want=%q", int(tt.c), got, tt.want)
		}
	}
}

func TestParseComponent(t *testing.T) {
	for _, c := range Components() {
		got, err := ParseComponent(c.String())
		if err != nil {
			t.Fatalf("ParseComponent(%q) failed: %v", c.String(), err)
		}
		if got != c {
			t.Fatalf("ParseComponent(%q): got=%v want=%v", c.String(), got, c)
		}
	}

	if got, err := ParseComponent(" ew "); err != nil || got != EW {
		t.Fatalf("lower case with spaces: got=%v err=%v", got, err)
	}

	if _, err := ParseComponent("Z"); err == nil {
		t.Fatal("expected error for unknown component")
	}
}

func TestTimeAxis(t *testing.T) {
	r, err := New(make([]float64, 4), make([]float64, 4), make([]float64, 4), 0.5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	axis := r.TimeAxis()
	want := []float64{0, 0.5, 1.0, 1.5}
	for i := range want {
		if math.Abs(axis[i]-want[i]) > 1e-12 {
			t.Fatalf("axis[%d]: got=%v want=%v", i, axis[i], want[i])
		}
	}
}

func TestMapDerivesNewRecord(t *testing.T) {
	r, err := New([]float64{1, 2}, []float64{3, 4}, []float64{5, 6}, 0.01)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	doubled, err := r.Map(func(_ Component, x []float64) ([]float64, error) {
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = 2 * v
		}
		return out, nil
	})
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	if got := doubled.Series(UD)[1]; got != 12 {
		t.Fatalf("doubled UD[1]: got=%v want=12", got)
	}
	if got := r.Series(UD)[1]; got != 6 {
		t.Fatalf("source record mutated: got=%v want=6", got)
	}
}

func TestMapRejectsLengthChange(t *testing.T) {
	r, err := New([]float64{1, 2}, []float64{3, 4}, []float64{5, 6}, 0.01)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = r.Map(func(_ Component, x []float64) ([]float64, error) {
		return x[:1], nil
	})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("got=%v want=%v", err, ErrLengthMismatch)
	}
}
