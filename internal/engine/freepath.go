package engine

import (
	"math"
	"math/rand/v2"

	"github.com/wildstyl3r/gotrim/internal/utils"
	"github.com/wildstyl3r/gotrim/internal/vec"
)

// Sample draws the next collision site for a projectile at pos moving
// along the unit vector dir. In the amorphous model the free path is the
// constant mean interatomic distance; the impact parameter is uniform in
// area over the disc of radius PMax, and the impact vector dirp is a unit
// vector perpendicular to dir with uniform azimuth.
//
// The outputs are deterministic functions of (pos, dir) and two uniform
// draws from rng.
func (s *Setup) Sample(rng *rand.Rand, pos, dir vec.Vec3) (freePath, p float64, dirp, recoilPos vec.Vec3) {
	freePath = s.MeanFreePath
	collision := pos.Add(dir.Scale(freePath))

	p = s.PMax * math.Sqrt(rng.Float64())
	fi := 2 * math.Pi * rng.Float64()
	cosFi, sinFi := math.Cos(fi), math.Sin(fi)

	// Build the perpendicular basis around the axis where dir is
	// smallest, so sin(alpha) >= sqrt(2/3) and the division below is
	// well conditioned.
	abs := [3]float64{math.Abs(dir[0]), math.Abs(dir[1]), math.Abs(dir[2])}
	k := utils.Argmin(abs[:])
	i := (k + 1) % 3
	j := (i + 1) % 3
	cosAlpha := dir[k]
	sinAlpha := math.Sqrt(dir[i]*dir[i] + dir[j]*dir[j])
	cosPhi := dir[i] / sinAlpha
	sinPhi := dir[j] / sinAlpha

	dirp[i] = cosFi*cosAlpha*cosPhi - sinFi*sinPhi
	dirp[j] = cosFi*cosAlpha*sinPhi + sinFi*cosPhi
	dirp[k] = -cosFi * sinAlpha
	dirp = dirp.Normalized()

	recoilPos = collision.Add(dirp.Scale(p))
	return
}
