package engine

import (
	"math"

	"github.com/wildstyl3r/gotrim/internal/vec"
)

// ZBL universal screening function coefficients (Ziegler, Biersack,
// Littmark 1985).
var (
	zblA = [4]float64{0.18175, 0.50986, 0.28022, 0.02817}
	zblB = [4]float64{3.1998, 0.94229, 0.4029, 0.20162}
)

// zblScreen evaluates the ZBL screening function and its derivative at
// distance r (in rnorm units).
func zblScreen(r float64) (screen, dscreen float64) {
	for k := range zblA {
		e := math.Exp(-zblB[k] * r)
		screen += zblA[k] * e
		dscreen -= zblA[k] * zblB[k] * e
	}
	return
}

// Constants of the three-regime apsis estimate for the ZBL potential.
const (
	apsisK2 = 0.38           // factor of the 1/R part
	apsisK3 = 7.2            // factor of the 1/R^3 part
	apsisK1 = 1 / (4 * apsisK2)
	r12sq   = (2 * apsisK2) * (2 * apsisK2)
	r23sq   = apsisK3 / apsisK2
)

// estimateApsis returns the distance of closest approach for reduced
// energy e (enorm units) and impact parameter p (rnorm units): a
// regime-dependent first guess refined by one Newton-Raphson step on
// f(r) = r*(r - screen(r)/e) - p^2.
func estimateApsis(e, p float64) float64 {
	psq := p * p
	var r0 float64
	r0sq := 0.5 * (psq + math.Sqrt(psq*psq+4*apsisK3/e))
	if r0sq < r23sq {
		r0sq = psq + apsisK2/e
		if r0sq < r12sq {
			r0 = (1 + math.Sqrt(1+4*e*(e+apsisK1)*psq)) / (2 * (e + apsisK1))
		} else {
			r0 = math.Sqrt(r0sq)
		}
	} else {
		r0 = math.Sqrt(r0sq)
	}

	screen, dscreen := zblScreen(r0)
	if res := 1 - screen/(e*r0) - psq/(r0*r0); res > -1e-4 && res < 1e-4 {
		return r0
	}
	numerator := r0*(r0-screen/e) - psq
	denominator := 2*r0 - (screen+r0*dscreen)/e
	r0 -= numerator / denominator

	// The single correction step leaves the residuum below 1e-4 across
	// the regimes of the estimate; no further iterations are taken.
	return r0
}

// Biersack's magic-formula coefficients.
const (
	magicC1 = 0.99229
	magicC2 = 0.011615
	magicC3 = 0.007122
	magicC4 = 14.813
	magicC5 = 9.3066
)

// magic returns cos(theta/2) of the centre-of-mass scattering angle for
// reduced energy e and impact parameter p (unclamped).
func magic(e, p float64) float64 {
	r0 := estimateApsis(e, p)
	screen, dscreen := zblScreen(r0)

	rho := 2 * (e*r0 - screen) / (screen/r0 - dscreen)
	sqrte := math.Sqrt(e)
	alpha := 1 + magicC1/sqrte
	beta := (magicC2 + sqrte) / (magicC3 + sqrte)
	gamma := (magicC4 + e) / (magicC5 + e)
	a := 2 * alpha * e * math.Pow(p, beta)
	g := gamma / (math.Sqrt(1+a*a) - a)
	delta := a * (r0 - p) / (1 + g)

	return (p + rho + delta) / (r0 + rho)
}

// clampEps separates round-off excursions of cos(theta/2) beyond 1 from
// genuine departures outside the magic formula's validity range.
const clampEps = 1e-9

// Scatter resolves one binary collision in the lab frame: e in eV, dir
// the projectile direction, dirp the unit impact vector, p the impact
// parameter in A. It returns the post-collision projectile direction and
// energy and the recoil direction and energy. Both direction outputs are
// unit vectors.
func (s *Setup) Scatter(ispec int, e float64, dir, dirp vec.Vec3, p float64, diag *Diagnostics) (dirNew vec.Vec3, eNew float64, recoilDir vec.Vec3, recoilE float64) {
	sc := &s.consts[ispec]
	cosHalf := magic(e/sc.enorm, p/sc.rnorm)
	if cosHalf > 1 {
		if cosHalf > 1+clampEps {
			diag.ScatterClamped++
			diag.warnClamp(e, p, cosHalf)
		}
		cosHalf = 1
	} else if cosHalf < -1 {
		diag.ScatterClamped++
		cosHalf = -1
	}

	// psi is the lab emission angle of the recoil: sin(psi) = cos(theta/2).
	sinPsi := cosHalf
	cosPsi := math.Sqrt(1 - sinPsi*sinPsi)
	raw := dir.Scale(cosPsi).Add(dirp.Scale(sinPsi)).Scale(sc.dirFac * cosPsi)

	dirNew = dir.Sub(raw)
	if dirNew.Norm() == 0 {
		dirNew = dir
	} else {
		dirNew = dirNew.Normalized()
	}
	if raw.Norm() == 0 {
		recoilDir = dir
	} else {
		recoilDir = raw.Normalized()
	}

	recoilE = sc.denFac * e * (1 - cosHalf*cosHalf)
	eNew = e - recoilE
	return
}
