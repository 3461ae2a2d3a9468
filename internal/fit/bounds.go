package fit

import (
	"math"

	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

// space maps the floating parameters of a model between the bounded
// external values and an unbounded internal space, using the sine
// transform ext = min + (max-min)(sin θ + 1)/2.
type space struct {
	idx  []int
	min  []float64
	max  []float64
	base []float64
}

func newSpace(m *spectrum.Model) *space {
	s := &space{
		idx:  m.Floating(),
		base: m.Values(),
	}
	for _, i := range s.idx {
		s.min = append(s.min, m.Params[i].Min)
		s.max = append(s.max, m.Params[i].Max)
	}
	return s
}

func (s *space) dim() int { return len(s.idx) }

func (s *space) toInternal(k int, v float64) float64 {
	lo, hi := s.min[k], s.max[k]
	if !(hi > lo) {
		return v
	}
	u := 2*(v-lo)/(hi-lo) - 1
	return math.Asin(math.Max(-1, math.Min(1, u)))
}

func (s *space) toExternal(k int, theta float64) float64 {
	lo, hi := s.min[k], s.max[k]
	if !(hi > lo) {
		return theta
	}
	return lo + (hi-lo)*(math.Sin(theta)+1)/2
}

// start returns the internal coordinates of the model's initial values.
func (s *space) start() []float64 {
	theta := make([]float64, len(s.idx))
	for k, i := range s.idx {
		theta[k] = s.toInternal(k, s.base[i])
	}
	return theta
}

// external expands internal coordinates into a full parameter vector.
func (s *space) external(theta []float64) []float64 {
	p := make([]float64, len(s.base))
	copy(p, s.base)
	for k, i := range s.idx {
		p[i] = s.toExternal(k, theta[k])
	}
	return p
}

// full expands external floating values into a full parameter vector.
func (s *space) full(q []float64) []float64 {
	p := make([]float64, len(s.base))
	copy(p, s.base)
	for k, i := range s.idx {
		p[i] = q[k]
	}
	return p
}

// floating picks the floating values out of a full parameter vector.
func (s *space) floating(p []float64) []float64 {
	q := make([]float64, len(s.idx))
	for k, i := range s.idx {
		q[k] = p[i]
	}
	return q
}

// spread spreads per-floating uncertainties into a full-length slice; the
// constants get zero.
func (s *space) spread(sigma []float64) []float64 {
	e := make([]float64, len(s.base))
	for k, i := range s.idx {
		e[i] = sigma[k]
	}
	return e
}

// externalError maps an internal uncertainty sigma at theta to the external
// scale as the mean of the two one-sided shifts. Near a bound this stays
// finite where the derivative of the transform vanishes.
func (s *space) externalError(k int, theta, sigma float64) float64 {
	lo, hi := s.min[k], s.max[k]
	if !(hi > lo) {
		return sigma
	}
	v := s.toExternal(k, theta)
	up := s.toExternal(k, theta+sigma) - v
	down := s.toExternal(k, theta-sigma) - v
	if sigma > 1 {
		up = hi - lo
	}
	return 0.5 * (math.Abs(up) + math.Abs(down))
}
