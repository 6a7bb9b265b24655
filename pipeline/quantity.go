package pipeline

import "fmt"

// Quantity identifies one stage of the integrated motion.
type Quantity int

const (
	// Acceleration is the processed input motion in gal.
	Acceleration Quantity = iota

	// Velocity is the once-integrated motion in cm/s.
	Velocity

	// Displacement is the twice-integrated motion in cm.
	Displacement
)

// NumQuantities is the number of motion quantities in a bundle.
const NumQuantities = 3

// Quantities returns the quantities in integration order.
func Quantities() []Quantity {
	return []Quantity{Acceleration, Velocity, Displacement}
}

// String returns the quantity name.
func (q Quantity) String() string {
	switch q {
	case Acceleration:
		return "acceleration"
	case Velocity:
		return "velocity"
	case Displacement:
		return "displacement"
	default:
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
}
