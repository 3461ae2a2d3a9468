package spectrum

import (
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/floats"
)

// DatasetName is the name the Higgs combine tool expects for observed data.
const DatasetName = "data_obs"

// Dataset is the binned form of a histogram, bound to a MassVariable.
type Dataset struct {
	Name   string
	Var    MassVariable
	Lo     []float64
	Hi     []float64
	Center []float64
	Count  []float64
}

// NewDataset copies the bin geometry and contents of h.
func NewDataset(
	x MassVariable,
	h *hbook.H1D,
) (
	*Dataset, error,
) {

	if h == nil || h.Len() == 0 {
		return nil, ErrEmptyHistogram
	}

	n := h.Len()
	d := &Dataset{
		Name:   DatasetName,
		Var:    x,
		Lo:     make([]float64, n),
		Hi:     make([]float64, n),
		Center: make([]float64, n),
		Count:  make([]float64, n),
	}
	for i, bin := range h.Binning.Bins {
		d.Lo[i] = bin.XMin()
		d.Hi[i] = bin.XMax()
		d.Center[i] = bin.XMid()
		d.Count[i] = bin.SumW()
	}
	return d, nil
}

func (d *Dataset) Len() int { return len(d.Count) }

// Sum is the total number of entries.
func (d *Dataset) Sum() float64 {
	return floats.Sum(d.Count)
}

// BinWidth returns the width of the first bin.
func (d *Dataset) BinWidth() float64 {
	if len(d.Lo) == 0 {
		return 0
	}
	return d.Hi[0] - d.Lo[0]
}
