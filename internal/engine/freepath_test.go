package engine

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/wildstyl3r/gotrim/internal/vec"
)

func TestSampleGeometry(t *testing.T) {
	s := boronInSilicon(t, false)
	rng := rand.New(rand.NewPCG(7, 0))

	dirs := []vec.Vec3{
		{0, 0, 1},
		{1, 0, 0},
		{0, -1, 0},
		vec.Vec3{1, 1, 1}.Normalized(),
		vec.Vec3{-0.3, 0.2, 0.9}.Normalized(),
	}
	pos := vec.Vec3{10, -20, 30}
	for _, dir := range dirs {
		for draw := 0; draw < 200; draw++ {
			freePath, p, dirp, recoilPos := s.Sample(rng, pos, dir)

			if freePath != s.MeanFreePath {
				t.Fatalf("freePath = %g, want the mean interatomic distance %g", freePath, s.MeanFreePath)
			}
			if p < 0 || p > s.PMax {
				t.Fatalf("impact parameter %g outside [0, %g]", p, s.PMax)
			}
			if d := math.Abs(dirp.Dot(dir)); d > 1e-12 {
				t.Fatalf("dirp not perpendicular to dir %v: dot = %g", dir, d)
			}
			if n := dirp.Norm(); math.Abs(n-1) > 1e-12 {
				t.Fatalf("dirp norm = %g", n)
			}

			want := pos.Add(dir.Scale(freePath)).Add(dirp.Scale(p))
			if recoilPos.Sub(want).Norm() > 1e-12 {
				t.Fatalf("recoilPos = %v, want collision site plus p*dirp = %v", recoilPos, want)
			}
		}
	}
}

// The impact parameter must be uniform in area: p^2/PMax^2 ~ U(0, 1).
func TestSampleImpactParameterDistribution(t *testing.T) {
	s := boronInSilicon(t, false)
	rng := rand.New(rand.NewPCG(11, 0))
	dir := vec.Vec3{0, 0, 1}

	const n = 5000
	samples := make([]float64, n)
	for i := range samples {
		_, p, _, _ := s.Sample(rng, vec.Vec3{}, dir)
		samples[i] = p * p / (s.PMax * s.PMax)
	}
	sort.Float64s(samples)

	const m = 20000
	grid := make([]float64, m)
	for i := range grid {
		grid[i] = (float64(i) + 0.5) / m
	}

	d := stat.KolmogorovSmirnov(samples, nil, grid, nil)
	// Critical value at alpha = 0.001 for n = 5000 against the dense
	// reference grid is about 0.034; the seed is fixed, so the observed
	// distance is reproducible.
	if d > 0.04 {
		t.Errorf("Kolmogorov-Smirnov distance to uniform = %g", d)
	}
}
