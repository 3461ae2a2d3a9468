// Package fit estimates the parameters of a spectrum.Model from a binned
// dataset.
//
// Two engines implement Fitter: a binned maximum likelihood fit minimized
// with gonum's BFGS, and a Levenberg-Marquardt least squares fit. Both run
// a single minimization from the model's initial values and accept whatever
// the minimizer returns. Result.Converged reports whether the minimum was
// reached: for the likelihood engine the estimated distance to the minimum
// is below tolerance, for least squares lm stopped on a convergence test.
package fit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/optimize"

	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

var (
	ErrNotConverged = errors.New("fit did not converge")
	ErrNoEntries    = errors.New("dataset has no entries")
	ErrNoFloating   = errors.New("model has no floating parameters")
	ErrUnknownFit   = errors.New("unknown fit method")
)

// Fitter fits a model to a dataset over the same mass variable.
type Fitter interface {
	Fit(m *spectrum.Model, d *spectrum.Dataset) (*Result, error)
}

// Estimate is the outcome for a single parameter.
type Estimate struct {
	Name     string
	Value    float64
	Error    float64
	Constant bool
	Unit     string
}

// Result is the outcome of one fit.
type Result struct {
	Engine       string
	Params       []Estimate
	ChiSquareNDF float64
	// MinValue is the objective at the minimum: the multinomial deviance
	// for the likelihood engine, half the chi-square for least squares.
	MinValue float64
	// EDM is the estimated distance to the minimum of the deviance. It is
	// only set by the likelihood engine.
	EDM         float64
	Status      string
	Converged   bool
	Evaluations int
}

// Floating returns the estimates of the parameters that varied.
func (r *Result) Floating() []Estimate {
	var out []Estimate
	for _, p := range r.Params {
		if !p.Constant {
			out = append(out, p)
		}
	}
	return out
}

// Value returns the fitted value of the named parameter.
func (r *Result) Value(name string) (float64, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}

// Error returns the uncertainty of the named parameter.
func (r *Result) Error(name string) (float64, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Error, true
		}
	}
	return 0, false
}

// New returns the engine registered under method: "likelihood" or "chi2".
func New(
	method string,
) (
	Fitter, error,
) {

	switch method {
	case "", "likelihood":
		return NewLikelihood(), nil
	case "chi2":
		return NewLeastSquares(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFit, method)
}

// Methods lists the accepted engine names.
func Methods() []string {
	return []string{"likelihood", "chi2"}
}

func newResult(
	engine string,
	m *spectrum.Model,
	d *spectrum.Dataset,
	values, errs []float64,
) (
	*Result,
) {

	r := &Result{
		Engine:       engine,
		Params:       make([]Estimate, len(m.Params)),
		ChiSquareNDF: ChiSquare(m, d, values),
	}
	for i, p := range m.Params {
		r.Params[i] = Estimate{
			Name:     p.Name,
			Value:    values[i],
			Error:    errs[i],
			Constant: p.Constant,
			Unit:     p.Unit,
		}
	}

	m.Apply(values, errs)

	return r
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}
