package engine

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wildstyl3r/gotrim/internal/vec"
)

func TestScatterConservation(t *testing.T) {
	s := boronInSilicon(t, false)
	rng := rand.New(rand.NewPCG(3, 0))
	var diag Diagnostics

	for trial := 0; trial < 2000; trial++ {
		dir := vec.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalized()
		if dir.Norm() == 0 {
			continue
		}
		_, p, dirp, _ := s.Sample(rng, vec.Vec3{}, dir)
		e := math.Exp(rng.Float64()*math.Log(5e4/10)) * 10 // 10 eV .. 50 keV

		dirNew, eNew, recoilDir, recoilE := s.Scatter(0, e, dir, dirp, p, &diag)

		if eNew+recoilE != e {
			t.Fatalf("energy budget broken: %g + %g != %g", eNew, recoilE, e)
		}
		if eNew < 0 || recoilE < 0 {
			t.Fatalf("negative energy: eNew = %g, recoilE = %g", eNew, recoilE)
		}
		if n := dirNew.Norm(); math.Abs(n-1) > 1e-12 {
			t.Fatalf("projectile direction norm = %g", n)
		}
		if n := recoilDir.Norm(); math.Abs(n-1) > 1e-12 {
			t.Fatalf("recoil direction norm = %g", n)
		}

		// Lab-frame momentum balance of the binary collision.
		sp := s.Species[0]
		before := dir.Scale(math.Sqrt(2 * sp.M1 * e))
		after := dirNew.Scale(math.Sqrt(2 * sp.M1 * eNew)).
			Add(recoilDir.Scale(math.Sqrt(2 * sp.M2 * recoilE)))
		if before.Sub(after).Norm() > 1e-9*before.Norm() {
			t.Fatalf("momentum not conserved at e = %g eV, p = %g A: %v vs %v", e, p, before, after)
		}
	}
	if diag.NaNKills != 0 {
		t.Errorf("diagnostics picked up %d NaN kills", diag.NaNKills)
	}
}

func TestScatterHeadOn(t *testing.T) {
	s := boronInSilicon(t, false)
	var diag Diagnostics
	dir := vec.Vec3{0, 0, 1}
	dirp := vec.Vec3{1, 0, 0}

	// At zero impact parameter the collision is head-on: the transfer
	// approaches the kinematic maximum 4*m1*m2/(m1+m2)^2 of the energy.
	e := 5e4
	denFac := s.consts[0].denFac
	_, eNew, recoilDir, recoilE := s.Scatter(0, e, dir, dirp, 0, &diag)
	if recoilE < 0.95*denFac*e {
		t.Errorf("head-on transfer = %g eV, want close to the kinematic maximum %g eV", recoilE, denFac*e)
	}
	if eNew+recoilE != e {
		t.Errorf("energy budget broken: %g + %g != %g", eNew, recoilE, e)
	}
	if d := recoilDir.Dot(dir); math.Abs(d-1) > 1e-3 {
		t.Errorf("head-on recoil direction %v deviates from the beam axis", recoilDir)
	}

	// Symmetric masses transfer everything.
	_, eNew, _, recoilE = s.Scatter(1, e, dir, dirp, 0, &diag)
	if eNew > 0.05*e {
		t.Errorf("symmetric head-on collision left %g eV with the projectile", eNew)
	}
	if recoilE < 0.95*e {
		t.Errorf("symmetric head-on transfer = %g eV of %g eV", recoilE, e)
	}
}

func TestScatterGrazing(t *testing.T) {
	s := boronInSilicon(t, false)
	var diag Diagnostics
	dir := vec.Vec3{0, 0, 1}
	dirp := vec.Vec3{0, 1, 0}

	// At the largest impact parameter and high energy the deflection and
	// the transfer are both marginal.
	e := 5e4
	dirNew, eNew, _, recoilE := s.Scatter(0, e, dir, dirp, s.PMax, &diag)
	if recoilE > 0.01*e {
		t.Errorf("grazing collision transferred %g eV of %g eV", recoilE, e)
	}
	if d := dirNew.Dot(dir); d < 0.99 {
		t.Errorf("grazing collision deflected the projectile: dir.dirNew = %g", d)
	}
	if eNew+recoilE != e {
		t.Errorf("energy budget broken: %g + %g != %g", eNew, recoilE, e)
	}
}
