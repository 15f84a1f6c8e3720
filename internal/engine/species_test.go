package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/wildstyl3r/gotrim/internal/geometry"
)

// boronInSilicon is the reference setup used across the engine tests:
// 50 keV-scale boron in amorphous silicon.
func boronInSilicon(t *testing.T, followRecoils bool) *Setup {
	t.Helper()
	species := []Species{
		{Z1: 5, M1: 11.009, Z2: 14, M2: 28.086, CorrLindhard: 1.5},
		{Z1: 14, M1: 28.086, Z2: 14, M2: 28.086, CorrLindhard: 1},
	}
	s, err := NewSetup(geometry.Slab{ZMin: 0, ZMax: 4000}, 0.04994, species, 5, 15, followRecoils, 1)
	if err != nil {
		t.Fatalf("NewSetup: %v", err)
	}
	return s
}

func TestNewSetupDerivedConstants(t *testing.T) {
	s := boronInSilicon(t, false)

	wantMFP := math.Pow(0.04994, -1./3.)
	if math.Abs(s.MeanFreePath-wantMFP) > 1e-12 {
		t.Errorf("MeanFreePath = %g, want %g", s.MeanFreePath, wantMFP)
	}
	if math.Abs(s.PMax-wantMFP/math.Sqrt(math.Pi)) > 1e-12 {
		t.Errorf("PMax = %g, want MeanFreePath/sqrt(pi)", s.PMax)
	}

	wantRNorm := 0.4685 / (math.Pow(5, 0.23) + math.Pow(14, 0.23))
	if math.Abs(s.RNorm(0)-wantRNorm) > 1e-12 {
		t.Errorf("RNorm(0) = %g, want %g", s.RNorm(0), wantRNorm)
	}
	if s.ENorm(0) <= 0 {
		t.Errorf("ENorm(0) = %g, want positive", s.ENorm(0))
	}

	// Symmetric collision partners: full momentum transfer factors.
	sym := s.consts[1]
	if math.Abs(sym.dirFac-1) > 1e-12 || math.Abs(sym.denFac-1) > 1e-12 {
		t.Errorf("symmetric species: dirFac = %g, denFac = %g, want 1, 1", sym.dirFac, sym.denFac)
	}
}

func TestNewSetupRejects(t *testing.T) {
	slab := geometry.Slab{ZMin: 0, ZMax: 100}
	good := []Species{{Z1: 5, M1: 11, Z2: 14, M2: 28, CorrLindhard: 1}}
	tests := []struct {
		name    string
		slab    geometry.Slab
		density float64
		species []Species
		emin    float64
		edisp   float64
		recoil  int
	}{
		{"Zero density", slab, 0, good, 5, 15, 0},
		{"Negative density", slab, -1, good, 5, 15, 0},
		{"Inverted slab", geometry.Slab{ZMin: 10, ZMax: 10}, 0.05, good, 5, 15, 0},
		{"Zero emin", slab, 0.05, good, 0, 15, 0},
		{"Negative edisp", slab, 0.05, good, 5, -1, 0},
		{"Empty species table", slab, 0.05, nil, 5, 15, 0},
		{"Recoil index out of range", slab, 0.05, good, 5, 15, 1},
		{"Zero atomic number", slab, 0.05, []Species{{Z1: 0, M1: 11, Z2: 14, M2: 28, CorrLindhard: 1}}, 5, 15, 0},
		{"Zero mass", slab, 0.05, []Species{{Z1: 5, M1: 0, Z2: 14, M2: 28, CorrLindhard: 1}}, 5, 15, 0},
		{"Zero Lindhard correction", slab, 0.05, []Species{{Z1: 5, M1: 11, Z2: 14, M2: 28}}, 5, 15, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSetup(tt.slab, tt.density, tt.species, tt.emin, tt.edisp, false, tt.recoil)
			if !errors.Is(err, ErrInvalidSetup) {
				t.Errorf("err = %v, want ErrInvalidSetup", err)
			}
		})
	}
}
