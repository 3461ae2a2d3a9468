package spectrum

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/hbook"
)

var (
	ErrEmptyHistogram = errors.New("histogram has no bins")
	ErrBounds         = errors.New("mass bounds do not enclose the histogram")
)

// MassVariable is the bounded dimuon invariant mass observable.
type MassVariable struct {
	Name  string
	Title string
	Unit  string
	Value float64
	Min   float64
	Max   float64
}

// NewMassVariable derives the observable range from h: the lower edge of the
// first bin plus the number of bins times the first bin's width.
func NewMassVariable(
	h *hbook.H1D,
) (
	MassVariable, error,
) {

	if h == nil || h.Len() == 0 {
		return MassVariable{}, ErrEmptyHistogram
	}

	bins := h.Binning.Bins
	width := bins[0].XWidth()
	if !(width > 0) {
		return MassVariable{}, fmt.Errorf("%w: first bin width %v", ErrBounds, width)
	}

	lo := bins[0].XMin()
	hi := lo + float64(len(bins))*width

	for i, bin := range bins {
		if c := bin.XMid(); c < lo || c > hi {
			return MassVariable{}, fmt.Errorf(
				"%w: bin %d centre %v outside [%v, %v]", ErrBounds, i, c, lo, hi,
			)
		}
	}

	return MassVariable{
		Name:  "x",
		Title: "m_{μμ}",
		Unit:  "GeV",
		Value: 120,
		Min:   lo,
		Max:   hi,
	}, nil
}

// Label is the axis label, e.g. "m_{μμ} (GeV)".
func (x MassVariable) Label() string {
	if x.Unit == "" {
		return x.Title
	}
	return x.Title + " (" + x.Unit + ")"
}
