package fit

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

// FitParams is the number of degrees of freedom taken off the bin count in
// ChiSquare. It is fixed at 2 for both models, which matches the number of
// floating parameters each of them has.
const FitParams = 2

// oneSigma is the coverage of a ±1σ Gaussian interval.
const oneSigma = 0.6826894921370859

// ChiSquare compares the data with the model curve scaled to the data yield
// and returns chi-square per degree of freedom. Each residual is divided by
// the Poisson error on the side of the point facing the curve; bins with a
// zero error there are skipped.
func ChiSquare(
	m *spectrum.Model,
	d *spectrum.Dataset,
	p []float64,
) (
	float64,
) {

	total := d.Sum()
	frac := m.BinFractions(d, p)

	var chi2 float64
	var nbin int
	for i, n := range d.Count {
		mu := total * frac[i]
		lo, hi := PoissonInterval(n)

		e := hi
		if n > mu {
			e = lo
		}
		if e == 0 {
			continue
		}

		chi2 += math.Pow((n-mu)/e, 2)
		nbin++
	}

	ndf := nbin - FitParams
	if ndf <= 0 {
		return math.NaN()
	}
	return chi2 / float64(ndf)
}

// PoissonInterval returns the distances from n to the lower and upper edges
// of the central 68.27% Garwood confidence interval for a Poisson mean.
func PoissonInterval(
	n float64,
) (
	lo, hi float64,
) {

	if n < 0 {
		return 0, 0
	}

	alpha := 1 - oneSigma

	lower := 0.0
	if n > 0 {
		lower = 0.5 * distuv.ChiSquared{K: 2 * n}.Quantile(alpha/2)
	}
	upper := 0.5 * distuv.ChiSquared{K: 2 * (n + 1)}.Quantile(1-alpha/2)

	return n - lower, upper - n
}
