package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// Gauss-Legendre points used to normalize a density over the full range
	// and to integrate it over a single bin.
	normPoints = 128
	binPoints  = 8
)

// Parameter is one model parameter with its allowed range.
type Parameter struct {
	Name     string
	Value    float64
	Error    float64
	Min      float64
	Max      float64
	Constant bool
	Unit     string
}

// Model is a parametric probability density over a MassVariable.
type Model struct {
	Kind   Kind
	Name   string
	Var    MassVariable
	Params []Parameter

	// pdf returns the normalized density for a full parameter vector.
	pdf func(x MassVariable, p []float64) func(float64) float64
}

// NewModel builds the selected background shape with its initial values.
func NewModel(
	kind Kind,
	x MassVariable,
) (
	*Model, error,
) {

	switch kind {
	case BreitWignerMixture:
		return &Model{
			Kind: kind,
			Name: "bwmodel",
			Var:  x,
			Params: []Parameter{
				{Name: "bwWidth", Value: 2.5, Min: 0, Max: 30, Constant: true, Unit: "GeV"},
				{Name: "bwmZ", Value: 91.2, Min: 85, Max: 95, Constant: true, Unit: "GeV"},
				{Name: "expParam", Value: -1e-3, Min: -1e-1, Max: 1e-1, Unit: "GeV^-1"},
				{Name: "mixParam", Value: 0.5, Min: 0, Max: 1},
			},
			pdf: bwMixturePDF,
		}, nil

	case DoubleExponential:
		return &Model{
			Kind: kind,
			Name: "expmodel",
			Var:  x,
			Params: []Parameter{
				{Name: "a1", Value: 5.0, Min: -50, Max: 50},
				{Name: "a2", Value: -1.0, Min: -50, Max: 50},
			},
			pdf: doubleExpPDF,
		}, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}

// Floating returns the indices of the parameters that vary in a fit.
func (m *Model) Floating() []int {
	var idx []int
	for i, p := range m.Params {
		if !p.Constant {
			idx = append(idx, i)
		}
	}
	return idx
}

// Values returns a copy of the current parameter values.
func (m *Model) Values() []float64 {
	v := make([]float64, len(m.Params))
	for i, p := range m.Params {
		v[i] = p.Value
	}
	return v
}

// Param looks up a parameter by name.
func (m *Model) Param(name string) (*Parameter, bool) {
	for i := range m.Params {
		if m.Params[i].Name == name {
			return &m.Params[i], true
		}
	}
	return nil, false
}

// Apply stores fitted values and errors. Both slices are indexed like Params.
func (m *Model) Apply(values, errs []float64) {
	for i := range m.Params {
		m.Params[i].Value = values[i]
		if errs != nil {
			m.Params[i].Error = errs[i]
		}
	}
}

// PDF returns the density normalized over the mass range for parameters p.
// It does not modify m and may be called concurrently.
func (m *Model) PDF(p []float64) func(float64) float64 {
	return m.pdf(m.Var, p)
}

// BinFractions integrates the density over each bin of d.
func (m *Model) BinFractions(
	d *Dataset,
	p []float64,
) (
	[]float64,
) {

	f := m.PDF(p)
	out := make([]float64, d.Len())
	for i := range out {
		out[i] = quad.Fixed(f, d.Lo[i], d.Hi[i], binPoints, nil, 0)
	}
	return out
}

func integral(f func(float64) float64, x MassVariable) float64 {
	return quad.Fixed(f, x.Min, x.Max, normPoints, nil, 0)
}

// bwExp is a Breit-Wigner line shape times an exponential falloff.
func bwExp(x, mZ, width, slope float64) float64 {
	return math.Exp(x*slope) * width / (math.Pow(x-mZ, 2) + 0.25*math.Pow(width, 2))
}

// phoExp is the photon-exchange term, an exponential times x^-2.
func phoExp(x, slope float64) float64 {
	return math.Exp(x*slope) * math.Pow(x, -2)
}

func bwMixturePDF(
	x MassVariable,
	p []float64,
) (
	func(float64) float64,
) {

	width, mZ, slope, mix := p[0], p[1], p[2], p[3]

	bw := func(v float64) float64 { return bwExp(v, mZ, width, slope) }
	pho := func(v float64) float64 { return phoExp(v, slope) }

	// Each component is normalized on its own before mixing.
	bwNorm := integral(bw, x)
	phoNorm := integral(pho, x)

	return func(v float64) float64 {
		return mix*bw(v)/bwNorm + (1-mix)*pho(v)/phoNorm
	}
}

func doubleExpPDF(
	x MassVariable,
	p []float64,
) (
	func(float64) float64,
) {

	a1, a2 := p[0], p[1]

	f := func(v float64) float64 {
		u := v / 100
		return math.Exp(-(a1*u + a2*u*u))
	}
	norm := integral(f, x)

	return func(v float64) float64 {
		return f(v) / norm
	}
}
