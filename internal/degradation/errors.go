package degradation

import "errors"

// ErrInsufficientData is returned when a panel is missing a required input:
// a recorded test, a module area, or any usable efficiency source. It carries
// no detail about which input was missing.
var ErrInsufficientData = errors.New("degradation: insufficient panel data to estimate degradation")
