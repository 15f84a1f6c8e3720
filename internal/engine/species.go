// Package engine implements the trajectory core: free-path and recoil
// sampling, Lindhard electronic stopping, ZBL screened-Coulomb scattering
// via Biersack's magic formula, and the batch driver that iterates them
// until every ion stops or leaves the target.
//
// All kernels are pure functions of their inputs and the immutable Setup
// built once per simulation, so any number of engines with different
// species can coexist in one process.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/wildstyl3r/gotrim/internal/constants"
	"github.com/wildstyl3r/gotrim/internal/geometry"
)

var ErrInvalidSetup = errors.New("invalid setup")

// Species describes one moving-atom species against the fixed target atom.
// Index 0 is the primary ion; recoils move with the target atom's Z and
// mass.
type Species struct {
	Z1, M1 float64 // atomic number and mass (amu) of the moving atom
	Z2, M2 float64 // atomic number and mass (amu) of the target atom

	// CorrLindhard scales the Lindhard electronic stopping power.
	CorrLindhard float64

	// SurfaceBinding (eV) is reserved: TRIM subtracts it from the energy
	// of atoms leaving the surface, but this engine does not until the
	// escape physics is settled.
	SurfaceBinding float64
}

// speciesConsts are the scattering and stopping constants derived from a
// Species entry at setup time.
type speciesConsts struct {
	rnorm     float64 // [A] screening length
	enorm     float64 // [eV] energy unit of the reduced collision
	dirFac    float64
	denFac    float64
	kLindhard float64 // [eV^(1/2) A^2]
}

// Setup carries everything the kernels need, fixed after NewSetup.
type Setup struct {
	Slab    geometry.Slab
	Density float64 // [atoms/A^3]

	MeanFreePath float64 // [A] = Density^(-1/3)
	PMax         float64 // [A] = MeanFreePath / sqrt(pi)

	EMin  float64 // [eV] trajectory cut-off
	EDisp float64 // [eV] displacement threshold for recoil survival

	FollowRecoils bool
	RecoilSpecies int

	Species []Species
	consts  []speciesConsts
}

func NewSetup(slab geometry.Slab, density float64, species []Species,
	emin, edisp float64, followRecoils bool, recoilSpecies int) (*Setup, error) {

	if !(density > 0) {
		return nil, fmt.Errorf("%w: density must be positive, got %g", ErrInvalidSetup, density)
	}
	if !(slab.ZMax > slab.ZMin) {
		return nil, fmt.Errorf("%w: zmax (%g) must be above zmin (%g)", ErrInvalidSetup, slab.ZMax, slab.ZMin)
	}
	if !(emin > 0) {
		return nil, fmt.Errorf("%w: emin must be positive, got %g", ErrInvalidSetup, emin)
	}
	if edisp < 0 {
		return nil, fmt.Errorf("%w: edisp must not be negative, got %g", ErrInvalidSetup, edisp)
	}
	if len(species) == 0 {
		return nil, fmt.Errorf("%w: species table is empty", ErrInvalidSetup)
	}
	if recoilSpecies < 0 || recoilSpecies >= len(species) {
		return nil, fmt.Errorf("%w: recoil species %d outside table of %d", ErrInvalidSetup, recoilSpecies, len(species))
	}

	s := &Setup{
		Slab:          slab,
		Density:       density,
		MeanFreePath:  math.Pow(density, -1./3.),
		EMin:          emin,
		EDisp:         edisp,
		FollowRecoils: followRecoils,
		RecoilSpecies: recoilSpecies,
		Species:       append([]Species(nil), species...),
		consts:        make([]speciesConsts, len(species)),
	}
	s.PMax = s.MeanFreePath / math.Sqrt(math.Pi)

	for i, sp := range s.Species {
		if sp.Z1 < 1 || sp.Z2 < 1 {
			return nil, fmt.Errorf("%w: species %d: atomic numbers must be at least 1", ErrInvalidSetup, i)
		}
		if !(sp.M1 > 0) || !(sp.M2 > 0) {
			return nil, fmt.Errorf("%w: species %d: masses must be positive", ErrInvalidSetup, i)
		}
		if !(sp.CorrLindhard > 0) {
			return nil, fmt.Errorf("%w: species %d: Lindhard correction must be positive", ErrInvalidSetup, i)
		}
		m12 := sp.M1 / sp.M2
		rnorm := 0.4685 / (math.Pow(sp.Z1, 0.23) + math.Pow(sp.Z2, 0.23))
		s.consts[i] = speciesConsts{
			rnorm:  rnorm,
			enorm:  constants.CoulombFactor * sp.Z1 * sp.Z2 * (1 + m12) / rnorm,
			dirFac: 2 / (1 + m12),
			denFac: 4 * m12 / ((1 + m12) * (1 + m12)),
			kLindhard: sp.CorrLindhard * constants.LindhardFactor *
				math.Pow(sp.Z1, 7./6.) * sp.Z2 /
				(math.Pow(math.Pow(sp.Z1, 2./3.)+math.Pow(sp.Z2, 2./3.), 1.5) * math.Sqrt(sp.M1)),
		}
	}
	return s, nil
}

// ENorm returns the reduced-energy unit of species ispec in eV.
func (s *Setup) ENorm(ispec int) float64 { return s.consts[ispec].enorm }

// RNorm returns the screening length of species ispec in A.
func (s *Setup) RNorm(ispec int) float64 { return s.consts[ispec].rnorm }
