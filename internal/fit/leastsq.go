package fit

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

// LeastSquares fits the expected bin contents to the data with the
// Levenberg-Marquardt method, weighting each bin by 1/sqrt(n). Empty bins
// are left out.
type LeastSquares struct {
	Settings *lm.Settings
	Tau      float64
	Eps1     float64
	Eps2     float64
}

func NewLeastSquares() *LeastSquares {
	return &LeastSquares{
		Settings: &lm.Settings{Iterations: 1000, ObjectiveTol: 1e-16},
		Tau:      1e-6,
		Eps1:     1e-8,
		Eps2:     1e-8,
	}
}

func (ls *LeastSquares) Fit(
	m *spectrum.Model,
	d *spectrum.Dataset,
) (
	res *Result, err error,
) {

	total := d.Sum()
	if !(total > 0) {
		return nil, ErrNoEntries
	}

	s := newSpace(m)
	if s.dim() == 0 {
		return nil, ErrNoFloating
	}

	var bins []int
	for i, n := range d.Count {
		if n > 0 {
			bins = append(bins, i)
		}
	}
	if len(bins) < s.dim() {
		return nil, fmt.Errorf("%d non-empty bins for %d parameters", len(bins), s.dim())
	}

	resid := func(dst, p []float64) {
		frac := m.BinFractions(d, p)
		for k, i := range bins {
			n := d.Count[i]
			dst[k] = (n - total*frac[i]) / math.Sqrt(n)
		}
	}

	// Residuals over internal coordinates
	f := func(dst, theta []float64) {
		resid(dst, s.external(theta))
	}

	jacobian := lm.NumJac{Func: f}

	problem := lm.LMProblem{
		Dim:        s.dim(),
		Size:       len(bins),
		Func:       f,
		Jac:        jacobian.Jac,
		InitParams: s.start(),
		Tau:        ls.Tau,
		Eps1:       ls.Eps1,
		Eps2:       ls.Eps2,
	}

	// lm panics on a singular normal matrix.
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("lm: %v", r)
		}
	}()

	out, err := lm.LM(problem, ls.Settings)
	if err != nil {
		return nil, fmt.Errorf("lm: %w", err)
	}

	values := s.external(out.X)

	// Covariance (JᵀJ)⁻¹ with J taken in external coordinates.
	q := s.floating(values)
	jac := mat.NewDense(len(bins), len(q), nil)
	fd.Jacobian(jac, func(dst, q []float64) {
		resid(dst, s.full(q))
	}, q, &fd.JacobianSettings{Formula: fd.Central})

	sigma := make([]float64, len(q))
	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())
	cov, ok := invert(&jtj)
	for i := range sigma {
		if !ok {
			sigma[i] = math.NaN()
			continue
		}
		sigma[i] = math.Sqrt(cov.At(i, i))
	}

	r0 := make([]float64, len(bins))
	resid(r0, values)

	res = newResult("chi2", m, d, values, s.spread(sigma))
	res.MinValue = 0.5 * floats.Dot(r0, r0)
	res.Status = out.Status.String()
	res.Converged = converged(out.Status)

	return res, nil
}
