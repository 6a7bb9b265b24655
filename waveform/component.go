package waveform

import (
	"fmt"
	"strings"
)

// Component identifies one axis of a triaxial strong-motion record.
type Component int

const (
	// NS is the north-south horizontal component.
	NS Component = iota

	// EW is the east-west horizontal component.
	EW

	// UD is the vertical (up-down) component.
	UD
)

// NumComponents is the number of axes in a triaxial record.
const NumComponents = 3

// Components returns the components in canonical order.
func Components() []Component {
	return []Component{NS, EW, UD}
}

// String returns the conventional channel name.
func (c Component) String() string {
	switch c {
	case NS:
		return "NS"
	case EW:
		return "EW"
	case UD:
		return "UD"
	default:
		return fmt.Sprintf("Component(%d)", int(c))
	}
}

// ParseComponent converts a channel name into a Component.
// Matching is case-insensitive.
func ParseComponent(s string) (Component, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NS":
		return NS, nil
	case "EW":
		return EW, nil
	case "UD":
		return UD, nil
	default:
		return 0, fmt.Errorf("waveform: unknown component %q", s)
	}
}
