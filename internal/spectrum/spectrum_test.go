package spectrum

import (
	"errors"
	"math"
	"testing"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/integrate/quad"
)

func TestMassVariableBounds(t *testing.T) {
	cases := []struct {
		n        int
		lo, hi   float64
		wantHigh float64
	}{
		{n: 1, lo: 0, hi: 1, wantHigh: 1},
		{n: 40, lo: 110, hi: 160, wantHigh: 160},
		{n: 50, lo: 110, hi: 160, wantHigh: 160},
		{n: 7, lo: -3.5, hi: 3.5, wantHigh: 3.5},
		{n: 120, lo: 60, hi: 180, wantHigh: 180},
	}

	for _, tc := range cases {
		h := hbook.NewH1D(tc.n, tc.lo, tc.hi)
		x, err := NewMassVariable(h)
		if err != nil {
			t.Fatalf("n=%d [%v,%v]: %v", tc.n, tc.lo, tc.hi, err)
		}
		w := (tc.hi - tc.lo) / float64(tc.n)
		if x.Min != tc.lo {
			t.Errorf("n=%d: Min = %v, want %v", tc.n, x.Min, tc.lo)
		}
		if want := tc.lo + float64(tc.n)*w; math.Abs(x.Max-want) > 1e-9 {
			t.Errorf("n=%d: Max = %v, want %v", tc.n, x.Max, want)
		}
		if math.Abs(x.Max-tc.wantHigh) > 1e-9 {
			t.Errorf("n=%d: Max = %v, want %v", tc.n, x.Max, tc.wantHigh)
		}
		if x.Value != 120 || x.Unit != "GeV" {
			t.Errorf("n=%d: got value %v unit %q", tc.n, x.Value, x.Unit)
		}
	}
}

func TestMassVariableRejectsVariableBinning(t *testing.T) {
	// A wide last bin pushes its centre past lo + n*w(first bin).
	h := hbook.NewH1DFromEdges([]float64{0, 1, 2, 10})
	if _, err := NewMassVariable(h); !errors.Is(err, ErrBounds) {
		t.Fatalf("err = %v, want ErrBounds", err)
	}
}

func TestMassVariableEmpty(t *testing.T) {
	if _, err := NewMassVariable(nil); !errors.Is(err, ErrEmptyHistogram) {
		t.Fatalf("err = %v, want ErrEmptyHistogram", err)
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"breit-wigner-mixture", BreitWignerMixture},
		{"double-exponential", DoubleExponential},
		{"bw", BreitWignerMixture},
		{"exp", DoubleExponential},
		{" Double-Exponential ", DoubleExponential},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"gaussian", "", "bwexp"} {
		if _, err := ParseKind(bad); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind(%q) err = %v, want ErrUnknownKind", bad, err)
		}
	}
}

func TestNewModelUnknownKind(t *testing.T) {
	if _, err := NewModel(Kind(42), MassVariable{Min: 110, Max: 160}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func floatingNames(m *Model) []string {
	var names []string
	for _, i := range m.Floating() {
		names = append(names, m.Params[i].Name)
	}
	return names
}

func TestFloatingParameters(t *testing.T) {
	x := MassVariable{Min: 110, Max: 160, Value: 120}

	cases := []struct {
		kind     Kind
		floating []string
		constant []string
	}{
		{DoubleExponential, []string{"a1", "a2"}, nil},
		{BreitWignerMixture, []string{"expParam", "mixParam"}, []string{"bwWidth", "bwmZ"}},
	}

	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			m, err := NewModel(tc.kind, x)
			if err != nil {
				t.Fatal(err)
			}
			got := floatingNames(m)
			if len(got) != len(tc.floating) {
				t.Fatalf("floating = %v, want %v", got, tc.floating)
			}
			for i := range got {
				if got[i] != tc.floating[i] {
					t.Fatalf("floating = %v, want %v", got, tc.floating)
				}
			}
			for _, name := range tc.constant {
				p, ok := m.Param(name)
				if !ok || !p.Constant {
					t.Errorf("%s should be constant", name)
				}
			}
		})
	}
}

func TestPDFIsNormalized(t *testing.T) {
	x := MassVariable{Min: 110, Max: 160, Value: 120}

	for _, kind := range []Kind{DoubleExponential, BreitWignerMixture} {
		m, err := NewModel(kind, x)
		if err != nil {
			t.Fatal(err)
		}
		f := m.PDF(m.Values())
		got := quad.Fixed(f, x.Min, x.Max, 256, nil, 0)
		if math.Abs(got-1) > 1e-9 {
			t.Errorf("%v: integral = %v, want 1", kind, got)
		}
		for v := x.Min; v <= x.Max; v += 5 {
			if f(v) <= 0 {
				t.Errorf("%v: pdf(%v) = %v, want > 0", kind, v, f(v))
			}
		}
	}
}

func TestMixtureEndpoints(t *testing.T) {
	x := MassVariable{Min: 110, Max: 160, Value: 120}
	m, err := NewModel(BreitWignerMixture, x)
	if err != nil {
		t.Fatal(err)
	}

	p := m.Values()
	p[3] = 1
	bwOnly := m.PDF(p)
	p[3] = 0
	phoOnly := m.PDF(p)

	// At mix=0 the density is the normalized x^-2 exp(slope x) term.
	slope := p[2]
	norm := quad.Fixed(func(v float64) float64 { return phoExp(v, slope) }, x.Min, x.Max, 256, nil, 0)
	if got, want := phoOnly(130), phoExp(130, slope)/norm; math.Abs(got-want) > 1e-12 {
		t.Errorf("pho only pdf(130) = %v, want %v", got, want)
	}

	// The Breit-Wigner tail falls faster than x^-2 above the Z peak.
	if bwOnly(110)/bwOnly(160) <= phoOnly(110)/phoOnly(160) {
		t.Errorf("bw tail not steeper than photon term")
	}
}

func TestBinFractionsSumToOne(t *testing.T) {
	h := hbook.NewH1D(40, 110, 160)
	x, err := NewMassVariable(h)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewDataset(x, h)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "data_obs" || d.Len() != 40 {
		t.Fatalf("dataset %q with %d bins", d.Name, d.Len())
	}
	if w := d.BinWidth(); math.Abs(w-1.25) > 1e-12 {
		t.Fatalf("bin width = %v, want 1.25", w)
	}

	m, err := NewModel(DoubleExponential, x)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, f := range m.BinFractions(d, m.Values()) {
		sum += f
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("sum of bin fractions = %v, want 1", sum)
	}
}

func TestDatasetCopiesCounts(t *testing.T) {
	h := hbook.NewH1D(4, 0, 4)
	h.Fill(0.5, 3)
	h.Fill(2.5, 1)
	h.Fill(2.5, 1)

	x, err := NewMassVariable(h)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewDataset(x, h)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{3, 0, 2, 0}
	for i, n := range d.Count {
		if n != want[i] {
			t.Errorf("count[%d] = %v, want %v", i, n, want[i])
		}
	}
	if d.Sum() != 5 {
		t.Errorf("sum = %v, want 5", d.Sum())
	}
	if d.Center[1] != 1.5 {
		t.Errorf("centre[1] = %v, want 1.5", d.Center[1])
	}
}

func TestKindValid(t *testing.T) {
	if !BreitWignerMixture.Valid() || !DoubleExponential.Valid() {
		t.Fatal("known kinds reported invalid")
	}
	if Kind(0).Valid() || Kind(3).Valid() {
		t.Fatal("unknown kind reported valid")
	}
	if got := Kind(9).String(); got != "Kind(9)" {
		t.Fatalf("String = %q", got)
	}
}
