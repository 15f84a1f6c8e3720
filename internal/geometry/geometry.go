// Package geometry holds the target geometry test. Only a planar,
// semi-infinite slab is supported: the interior is zmin <= z <= zmax.
package geometry

import "github.com/wildstyl3r/gotrim/internal/vec"

type Slab struct {
	ZMin, ZMax float64 // [A]
}

func (s Slab) Inside(pos vec.Vec3) bool {
	return s.ZMin <= pos[2] && pos[2] <= s.ZMax
}

// InsideEach evaluates the predicate for a batch of positions into dst.
// dst and pos must have equal length.
func (s Slab) InsideEach(dst []bool, pos []vec.Vec3) {
	for i := range pos {
		dst[i] = s.Inside(pos[i])
	}
}
