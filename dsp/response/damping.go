package response

import "fmt"

// Damping selects one of the fixed critical damping ratios a response
// spectrum is evaluated at.
type Damping int

const (
	// Damping5 is 5% of critical damping, the engineering reference value.
	Damping5 Damping = iota

	// Damping10 is 10% of critical damping.
	Damping10

	// Damping20 is 20% of critical damping.
	Damping20
)

// NumDampings is the number of damping ratios carried by a Spectrum.
const NumDampings = 3

// Dampings returns the damping ratios in canonical order.
func Dampings() []Damping {
	return []Damping{Damping5, Damping10, Damping20}
}

// Ratio returns the fraction of critical damping.
func (d Damping) Ratio() float64 {
	switch d {
	case Damping5:
		return 0.05
	case Damping10:
		return 0.10
	case Damping20:
		return 0.20
	default:
		return 0
	}
}

// String returns the conventional label, e.g. "h=0.05".
func (d Damping) String() string {
	switch d {
	case Damping5:
		return "h=0.05"
	case Damping10:
		return "h=0.10"
	case Damping20:
		return "h=0.20"
	default:
		return fmt.Sprintf("Damping(%d)", int(d))
	}
}
