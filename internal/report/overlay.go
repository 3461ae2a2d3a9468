package report

import (
	"fmt"
	"math"

	"github.com/HamletTheHamster/fewzfit/internal/fit"
	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

// curvePoints is the number of samples of the fitted curve.
const curvePoints = 400

// Overlay is what one data-plus-fit figure shows.
type Overlay struct {
	Category  string
	Kind      spectrum.Kind
	Model     string
	Title     string
	XLabel    string
	YLabel    string
	Data      *spectrum.Dataset
	Errors    [][2]float64
	CurveX    []float64
	CurveY    []float64
	Legend    []string
	ChiSquare float64
	Estimates []fit.Estimate
}

// NewOverlay samples the fitted model, scaled to events per bin, and
// collects the legend and annotation text.
func NewOverlay(
	category string,
	m *spectrum.Model,
	d *spectrum.Dataset,
	r *fit.Result,
) (
	*Overlay,
) {

	o := &Overlay{
		Category:  category,
		Kind:      m.Kind,
		Model:     m.Name,
		Title:     category + "_Fewz_Fit",
		XLabel:    d.Var.Label(),
		YLabel:    fmt.Sprintf("Events / ( %g %s )", d.BinWidth(), d.Var.Unit),
		Data:      d,
		Errors:    make([][2]float64, d.Len()),
		ChiSquare: r.ChiSquareNDF,
		Estimates: r.Params,
	}

	for i, n := range d.Count {
		lo, hi := fit.PoissonInterval(n)
		o.Errors[i] = [2]float64{lo, hi}
	}

	values := make([]float64, len(r.Params))
	for i, e := range r.Params {
		values[i] = e.Value
	}
	pdf := m.PDF(values)
	scale := d.Sum() * d.BinWidth()

	x := d.Var
	o.CurveX = make([]float64, curvePoints)
	o.CurveY = make([]float64, curvePoints)
	for i := range o.CurveX {
		v := x.Min + (x.Max-x.Min)*float64(i)/float64(curvePoints-1)
		o.CurveX[i] = v
		o.CurveY[i] = scale * pdf(v)
	}

	for _, e := range r.Params {
		o.Legend = append(o.Legend, legendEntry(e))
	}

	return o
}

// Annotation is the chi-square text drawn on the frame.
func (o *Overlay) Annotation() string {
	return fmt.Sprintf("χ²/ndof = %7.3f", o.ChiSquare)
}

// legendEntry formats "name = value ± error" with two significant digits
// on the error.
func legendEntry(e fit.Estimate) string {
	unit := ""
	if e.Unit != "" {
		unit = " " + e.Unit
	}
	if e.Constant {
		return fmt.Sprintf("%s = %g%s (const)", e.Name, e.Value, unit)
	}
	if !(e.Error > 0) || math.IsInf(e.Error, 0) {
		return fmt.Sprintf("%s = %.4g%s", e.Name, e.Value, unit)
	}
	prec := int(math.Max(0, 1-math.Floor(math.Log10(e.Error))))
	return fmt.Sprintf("%s = %.*f ± %.*f%s", e.Name, prec, e.Value, prec, e.Error, unit)
}
