//go:build gnuplot

package gnuplot

import (
	"os"
	"path/filepath"
	"testing"

	"go-hep.org/x/hep/hbook"

	"github.com/HamletTheHamster/fewzfit/internal/fit"
	"github.com/HamletTheHamster/fewzfit/internal/report"
	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

func TestRegistered(t *testing.T) {
	r, err := report.NewRenderer("gnuplot")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*Renderer); !ok {
		t.Fatalf("renderer is %T", r)
	}
}

func TestRender(t *testing.T) {
	h := hbook.NewH1D(40, 110, 160)
	for i, bin := range h.Binning.Bins {
		h.Fill(bin.XMid(), float64(2000-45*i))
	}
	x, err := spectrum.NewMassVariable(h)
	if err != nil {
		t.Fatal(err)
	}
	d, err := spectrum.NewDataset(x, h)
	if err != nil {
		t.Fatal(err)
	}
	m, err := spectrum.NewModel(spectrum.DoubleExponential, x)
	if err != nil {
		t.Fatal(err)
	}
	res := &fit.Result{
		Params: []fit.Estimate{
			{Name: "a1", Value: 5, Error: 0.01},
			{Name: "a2", Value: -1, Error: 0.01},
		},
		ChiSquareNDF: 1,
		Converged:    true,
	}
	o := report.NewOverlay("Wide", m, d, res)

	dir := t.TempDir()
	for _, logY := range []bool{false, true} {
		path := filepath.Join(dir, "wide.png")
		if logY {
			path = filepath.Join(dir, "wide_log.png")
		}
		if err := (&Renderer{}).Render(o, path, logY); err != nil {
			t.Fatal(err)
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("%s: %v", path, err)
		}
	}
}
