package stats

import (
	"fmt"
	"math"
)

// Histogram counts samples of each variable into nbin uniform bins over
// [lo, hi) plus an underflow and an overflow bin, so no finite value is
// ever dropped. Counts(ivar)[0] is the underflow bin, Counts(ivar)[nbin+1]
// the overflow bin.
type Histogram struct {
	nvar, nbin int
	lo, hi     float64
	width      float64
	counts     [][]int64
}

func NewHistogram(nvar, nbin int, lo, hi float64) (*Histogram, error) {
	if nvar < 1 {
		return nil, fmt.Errorf("histogram: nvar must be positive, got %d", nvar)
	}
	if nbin < 1 {
		return nil, fmt.Errorf("histogram: nbin must be positive, got %d", nbin)
	}
	if !(lo < hi) {
		return nil, fmt.Errorf("histogram: lo (%g) must be below hi (%g)", lo, hi)
	}
	h := &Histogram{
		nvar:   nvar,
		nbin:   nbin,
		lo:     lo,
		hi:     hi,
		width:  (hi - lo) / float64(nbin),
		counts: make([][]int64, nvar),
	}
	for i := range h.counts {
		h.counts[i] = make([]int64, nbin+2)
	}
	return h, nil
}

func (h *Histogram) NVar() int         { return h.nvar }
func (h *Histogram) NBin() int         { return h.nbin }
func (h *Histogram) BinWidth() float64 { return h.width }

// LowerEdge returns the lower edge of interior bin i.
func (h *Histogram) LowerEdge(i int) float64 {
	return h.lo + float64(i)*h.width
}

// Score counts one sample of variable ivar. Values below lo land in the
// underflow bin, values at or above hi in the overflow bin. Non-finite
// values are rejected.
func (h *Histogram) Score(ivar int, value float64) {
	if math.IsNaN(value) {
		return
	}
	bin := h.nbin // overflow
	switch {
	case value < h.lo:
		bin = -1
	case value < h.hi:
		bin = int(math.Floor((value - h.lo) / h.width))
		if bin > h.nbin-1 { // round-off at the upper edge
			bin = h.nbin - 1
		}
	}
	h.counts[ivar][bin+1]++
}

// Counts returns the bin contents of variable ivar, underflow first,
// overflow last. The slice aliases the accumulator.
func (h *Histogram) Counts(ivar int) []int64 {
	return h.counts[ivar]
}

func (h *Histogram) Total(ivar int) (total int64) {
	for _, c := range h.counts[ivar] {
		total += c
	}
	return
}

func (h *Histogram) Merge(other *Histogram) error {
	if h.nvar != other.nvar || h.nbin != other.nbin || h.lo != other.lo || h.hi != other.hi {
		return fmt.Errorf("histogram: merging incompatible accumulators")
	}
	for i := range h.counts {
		for j := range h.counts[i] {
			h.counts[i][j] += other.counts[i][j]
		}
	}
	return nil
}
