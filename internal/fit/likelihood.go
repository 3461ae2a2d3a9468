package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

// Likelihood is a binned maximum likelihood fit. It minimizes the
// multinomial deviance sum n_i log(n_i / (N p_i)), which differs from the
// negative log likelihood by a constant. The minimizer works on the
// deviance divided by N so its tolerances do not depend on the yield.
type Likelihood struct {
	Settings *optimize.Settings
	Method   optimize.Method
	// EDMTolerance is the largest estimated distance to the minimum,
	// 0.5 gᵀ H⁻¹ g of the deviance, at which the fit counts as converged.
	EDMTolerance float64
}

func NewLikelihood() *Likelihood {
	return &Likelihood{
		Settings: &optimize.Settings{
			GradientThreshold: 1e-9,
			MajorIterations:   1000,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-12,
				Iterations: 25,
			},
		},
		Method:       &optimize.BFGS{},
		EDMTolerance: 1e-3,
	}
}

func (l *Likelihood) Fit(
	m *spectrum.Model,
	d *spectrum.Dataset,
) (
	*Result, error,
) {

	total := d.Sum()
	if !(total > 0) {
		return nil, ErrNoEntries
	}

	s := newSpace(m)
	if s.dim() == 0 {
		return nil, ErrNoFloating
	}

	nll := func(theta []float64) float64 {
		return deviance(m, d, total, s.external(theta))
	}
	scaled := func(theta []float64) float64 {
		return nll(theta) / total
	}

	problem := optimize.Problem{
		Func: scaled,
		Grad: func(grad, theta []float64) {
			fd.Gradient(grad, scaled, theta, &fd.Settings{Formula: fd.Central})
		},
	}

	res, err := optimize.Minimize(problem, s.start(), l.Settings, l.Method)
	if res == nil {
		return nil, fmt.Errorf("minimize: %w", err)
	}

	theta := res.X
	values := s.external(theta)

	// Curvature in the internal coordinates stays finite when a parameter
	// sits on its bound; the errors are mapped out through the transform.
	cov, edm := curvature(nll, theta)
	sigma := make([]float64, s.dim())
	for k := range sigma {
		if cov == nil {
			sigma[k] = math.NaN()
			continue
		}
		sigma[k] = s.externalError(k, theta[k], math.Sqrt(cov.At(k, k)))
	}

	r := newResult("likelihood", m, d, values, s.spread(sigma))
	r.MinValue = nll(theta)
	r.EDM = edm
	r.Status = res.Status.String()
	r.Converged = edm < l.EDMTolerance
	r.Evaluations = res.Stats.FuncEvaluations

	return r, nil
}

func deviance(
	m *spectrum.Model,
	d *spectrum.Dataset,
	total float64,
	p []float64,
) (
	float64,
) {

	frac := m.BinFractions(d, p)

	var norm float64
	for _, f := range frac {
		norm += f
	}

	var sum float64
	for i, n := range d.Count {
		if n <= 0 {
			continue
		}
		mu := total * frac[i] / norm
		if !(mu > 0) {
			return math.Inf(1)
		}
		sum += n * math.Log(n/mu)
	}
	return sum
}

// curvature returns the inverse Hessian of f at x and the estimated distance
// to the minimum, 0.5 gᵀ H⁻¹ g. The covariance is nil and the distance NaN
// when the Hessian is not positive definite.
func curvature(
	f func([]float64) float64,
	x []float64,
) (
	*mat.SymDense, float64,
) {

	settings := &fd.Settings{Formula: fd.Central}

	hess := mat.NewSymDense(len(x), nil)
	fd.Hessian(hess, f, x, settings)

	cov, ok := invert(hess)
	if !ok {
		return nil, math.NaN()
	}

	g := mat.NewVecDense(len(x), fd.Gradient(nil, f, x, settings))
	return cov, 0.5 * mat.Inner(g, cov, g)
}

func invert(a *mat.SymDense) (*mat.SymDense, bool) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, false
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, false
	}
	return &inv, true
}
