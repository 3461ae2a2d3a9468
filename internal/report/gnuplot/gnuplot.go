//go:build gnuplot

package gnuplot

import (
	"fmt"
	"math"

	"github.com/Arafatk/glot"

	"github.com/HamletTheHamster/fewzfit/internal/report"
)

func init() {
	report.Register("gnuplot", func() report.Renderer { return &Renderer{} })
}

// Renderer draws the data points and the fitted curve with gnuplot.
type Renderer struct {
	Persist bool
	Debug   bool
}

func (g *Renderer) Render(
	o *report.Overlay,
	path string,
	logY bool,
) (
	err error,
) {

	plot, err := glot.NewPlot(2, g.Persist, g.Debug)
	if err != nil {
		return fmt.Errorf("gnuplot: %w", err)
	}
	defer func() {
		if cerr := plot.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("gnuplot: %w", cerr)
		}
	}()

	var x, y []float64
	for i, n := range o.Data.Count {
		if logY && n <= 0 {
			continue
		}
		x = append(x, o.Data.Center[i])
		y = append(y, n)
	}

	steps := []func() error{
		func() error { return plot.SetTitle(o.Title + "  " + o.Annotation()) },
		func() error { return plot.SetXLabel(o.XLabel) },
		func() error { return plot.SetYLabel(o.YLabel) },
		func() error {
			return plot.SetXrange(int(math.Floor(o.Data.Var.Min)), int(math.Ceil(o.Data.Var.Max)))
		},
		func() error { return plot.AddPointGroup(o.Data.Name, "points", [][]float64{x, y}) },
		func() error { return plot.AddPointGroup(o.Model, "lines", [][]float64{o.CurveX, o.CurveY}) },
	}
	if logY {
		steps = append(steps, func() error { return plot.SetLogscale("y", 10) })
	}
	steps = append(steps, func() error { return plot.SavePlot(path) })

	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("gnuplot: %w", err)
		}
	}
	return nil
}
