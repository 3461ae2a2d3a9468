package report

import (
	"fmt"
	"image/color"
	"math"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plotter renders overlays with gonum/plot.
type Plotter struct {
	Width  vg.Length
	Height vg.Length
}

func NewPlotter() *Plotter {
	return &Plotter{Width: 6 * vg.Inch, Height: 6 * vg.Inch}
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (r *Plotter) Render(
	o *Overlay,
	path string,
	logY bool,
) (
	error,
) {

	ymin, ymax := yrange(o, logY)

	p := prepPlot(o, logY)

	// Histogram outline
	outline := hplot.NewH1D(histogram(o))
	outline.LogY = logY
	outline.LineStyle.Color = palette(0, false)
	outline.LineStyle.Width = vg.Points(0.5)

	// Data points with Poisson error bars
	pts, errs := buildData(o, logY)
	data := errorPoints{
		XYs:     pts,
		YErrors: errs,
	}

	plotPts, err := plotter.NewScatter(data)
	if err != nil {
		return fmt.Errorf("data points: %w", err)
	}
	plotPts.GlyphStyle.Color = palette(0, true)
	plotPts.GlyphStyle.Radius = vg.Points(2)
	plotPts.Shape = draw.CircleGlyph{}

	e, err := plotter.NewYErrorBars(data)
	if err != nil {
		return fmt.Errorf("error bars: %w", err)
	}
	e.LineStyle.Color = palette(0, true)

	// Fit
	curve := make(plotter.XYs, len(o.CurveX))
	for i := range curve {
		curve[i].X = o.CurveX[i]
		curve[i].Y = o.CurveY[i]
	}
	plotFit, err := plotter.NewLine(curve)
	if err != nil {
		return fmt.Errorf("fit curve: %w", err)
	}
	plotFit.LineStyle.Color = palette(1, true)
	plotFit.LineStyle.Width = vg.Points(2)

	// Chi-square annotation at 60% across, 75% up the frame
	at := plotter.XY{
		X: o.Data.Var.Min + 0.6*(o.Data.Var.Max-o.Data.Var.Min),
		Y: ymin + 0.75*(ymax-ymin),
	}
	if logY {
		at.Y = math.Exp(math.Log(ymin) + 0.75*(math.Log(ymax)-math.Log(ymin)))
	}
	text, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{at},
		Labels: []string{o.Annotation()},
	})
	if err != nil {
		return fmt.Errorf("annotation: %w", err)
	}
	for i := range text.TextStyle {
		text.TextStyle[i].Font.Size = 12
	}

	p.Add(outline, e, plotPts, plotFit, text)

	// Parameter box
	for _, l := range o.Legend {
		p.Legend.Add(l)
	}

	p.X.Min, p.X.Max = o.Data.Var.Min, o.Data.Var.Max
	p.Y.Min, p.Y.Max = ymin, ymax

	return savePlot(p, r.Width, r.Height, path)
}

func prepPlot(
	o *Overlay,
	logY bool,
) (
	*plot.Plot,
) {

	p := plot.New()
	p.BackgroundColor = color.White
	p.Title.Text = o.Title
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = 14
	p.Title.Padding = font.Length(8)

	p.X.Label.Text = o.XLabel
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = 12
	p.X.LineStyle.Width = vg.Points(1)
	p.X.Tick.LineStyle.Width = vg.Points(1)
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = 10

	p.Y.Label.Text = o.YLabel
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = 12
	p.Y.LineStyle.Width = vg.Points(1)
	p.Y.Tick.LineStyle.Width = vg.Points(1)
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = 10

	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.TextStyle.Font.Size = 9
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)
	p.Legend.YOffs = vg.Points(-10)
	p.Legend.Padding = vg.Points(2)
	p.Legend.ThumbnailWidth = vg.Points(0)

	return p
}

// buildData returns the data points and their errors. On a log scale empty
// bins are dropped.
func buildData(
	o *Overlay,
	logY bool,
) (
	plotter.XYs, plotter.YErrors,
) {

	var pts plotter.XYs
	var errs plotter.YErrors

	for i, n := range o.Data.Count {
		if logY && n <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: o.Data.Center[i], Y: n})
		errs = append(errs, struct{ Low, High float64 }{
			Low:  o.Errors[i][0],
			High: o.Errors[i][1],
		})
	}
	return pts, errs
}

// histogram rebuilds the binned counts for hplot.
func histogram(o *Overlay) *hbook.H1D {
	d := o.Data
	edges := make([]float64, 0, d.Len()+1)
	edges = append(edges, d.Lo...)
	edges = append(edges, d.Hi[d.Len()-1])

	h := hbook.NewH1DFromEdges(edges)
	for i, n := range d.Count {
		h.Fill(d.Center[i], n)
	}
	return h
}

func yrange(
	o *Overlay,
	logY bool,
) (
	float64, float64,
) {

	lo, hi := math.Inf(1), 0.0
	for i, n := range o.Data.Count {
		hi = math.Max(hi, n+o.Errors[i][1])
		if n > 0 {
			lo = math.Min(lo, n-o.Errors[i][0])
		}
	}
	for _, y := range o.CurveY {
		hi = math.Max(hi, y)
		if y > 0 {
			lo = math.Min(lo, y)
		}
	}

	if hi <= 0 {
		hi = 1
	}
	if !logY {
		return 0, 1.1 * hi
	}
	if math.IsInf(lo, 1) || lo <= 0 {
		lo = 0.1
	}
	return 0.5 * lo, 2 * hi
}

func palette(
	brush int,
	dark bool,
) (
	color.RGBA,
) {

	if dark {
		darkColor := []color.RGBA{
			{R: 0, G: 0, B: 0, A: 255},
			{R: 99, G: 124, B: 198, A: 255},
			{R: 201, G: 104, B: 146, A: 255},
		}
		return darkColor[brush%len(darkColor)]
	}

	col := []color.RGBA{
		{R: 128, G: 128, B: 128, A: 255},
		{R: 122, G: 156, B: 255, A: 255},
		{R: 255, G: 122, B: 180, A: 255},
	}
	return col[brush%len(col)]
}

func savePlot(
	p *plot.Plot,
	w, h vg.Length,
	path string,
) (
	error,
) {

	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
