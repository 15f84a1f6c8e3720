// Package stats accumulates per-species statistics of trajectory end
// states: raw power-sum moments up to order 4 and 1-D depth histograms.
// Both accumulators merge monoidally, so each worker can own a private
// instance that the orchestrator folds together at the end of a run.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/gotrim/internal/utils"
)

// ErrEmptyPopulation is returned when a summary is requested for a
// species with no scored samples.
var ErrEmptyPopulation = errors.New("no samples scored for species")

// Moments stores raw power sums Sum(x^i) for i = 0..2*order per variable.
// Sums up to twice the requested order are kept because the standard error
// of a central moment of order n needs the central moment of order 2n.
type Moments struct {
	nvar  int
	order int
	sums  [][]float64
}

func NewMoments(nvar, order int) (*Moments, error) {
	if nvar < 1 {
		return nil, fmt.Errorf("moments: nvar must be positive, got %d", nvar)
	}
	if order < 1 || order > 4 {
		return nil, fmt.Errorf("moments: order must be between 1 and 4, got %d", order)
	}
	m := &Moments{nvar: nvar, order: order, sums: make([][]float64, nvar)}
	for i := range m.sums {
		m.sums[i] = make([]float64, 2*order+1)
	}
	return m, nil
}

func (m *Moments) NVar() int  { return m.nvar }
func (m *Moments) Order() int { return m.order }

// Score adds one sample of variable ivar.
func (m *Moments) Score(ivar int, value float64) {
	pw := 1.
	for i := range m.sums[ivar] {
		m.sums[ivar][i] += pw
		pw *= value
	}
}

func (m *Moments) Count(ivar int) int {
	return int(m.sums[ivar][0])
}

// Merge adds the power sums of other into m. Both accumulators must have
// been created with the same shape.
func (m *Moments) Merge(other *Moments) error {
	if m.nvar != other.nvar || m.order != other.order {
		return fmt.Errorf("moments: merging %dx%d into %dx%d", other.nvar, other.order, m.nvar, m.order)
	}
	for i := range m.sums {
		floats.Add(m.sums[i], other.sums[i])
	}
	return nil
}

// Summary holds the standard moments of one variable, each with the
// standard error derived from the corresponding higher central moment.
// Skewness and kurtosis are NaN when the accumulator order is too low to
// derive them.
type Summary struct {
	Count                 int
	Mean, MeanErr         float64
	Std, StdErr           float64
	Skewness, SkewnessErr float64
	Kurtosis, KurtosisErr float64
}

// Summarize derives the central moments of variable ivar by binomial
// expansion of the raw power sums and returns the standard moments.
func (m *Moments) Summarize(ivar int) (Summary, error) {
	count := m.sums[ivar][0]
	if count == 0 {
		return Summary{}, fmt.Errorf("species %d: %w", ivar, ErrEmptyPopulation)
	}

	n := 2*m.order + 1
	mom := make([]float64, n)
	for i := range mom {
		mom[i] = m.sums[ivar][i] / count
	}
	cen := make([]float64, n)
	for i := range cen {
		cen[i] = mom[i]
		for j := 1; j <= i; j++ {
			cen[i] += utils.Comb(i, j) * mom[i-j] * math.Pow(-mom[1], float64(j))
		}
	}

	cenErr := func(i int) float64 {
		return math.Sqrt((cen[2*i] -
			2*float64(i)*cen[i-1]*cen[i+1] -
			cen[i]*cen[i] +
			float64(i*i)*cen[2]*cen[i-1]*cen[i-1]) / count)
	}

	s := Summary{
		Count:       int(count),
		Mean:        mom[1],
		Skewness:    math.NaN(),
		SkewnessErr: math.NaN(),
		Kurtosis:    math.NaN(),
		KurtosisErr: math.NaN(),
	}
	s.MeanErr = math.Sqrt(cen[2] / count)
	s.Std = math.Sqrt(cen[2])
	if m.order >= 2 && s.Std > 0 {
		s.StdErr = cenErr(2) / (2 * s.Std)
	}
	if m.order >= 3 && cen[2] > 0 {
		s.Skewness = cen[3] / math.Pow(cen[2], 1.5)
		s.SkewnessErr = cenErr(3) / math.Pow(cen[2], 1.5)
	}
	if m.order >= 4 && cen[2] > 0 {
		s.Kurtosis = cen[4] / (cen[2] * cen[2])
		s.KurtosisErr = cenErr(4) / (cen[2] * cen[2])
	}
	return s, nil
}
