package spectrum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a function selector names no known model.
var ErrUnknownKind = errors.New("unrecognized model kind")

// Kind selects one of the two background shapes.
type Kind int

const (
	BreitWignerMixture Kind = iota + 1
	DoubleExponential
)

func (k Kind) String() string {
	switch k {
	case BreitWignerMixture:
		return "breit-wigner-mixture"
	case DoubleExponential:
		return "double-exponential"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k names one of the known shapes.
func (k Kind) Valid() bool {
	return k == BreitWignerMixture || k == DoubleExponential
}

// ParseKind maps a selector to a Kind. The short forms "bw" and "exp" are
// the selectors the first version of the fitter used.
func ParseKind(
	s string,
) (
	Kind, error,
) {

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breit-wigner-mixture", "bw":
		return BreitWignerMixture, nil
	case "double-exponential", "exp":
		return DoubleExponential, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
