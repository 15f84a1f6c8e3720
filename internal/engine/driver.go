package engine

import (
	"math"
	"math/rand/v2"

	"github.com/wildstyl3r/gotrim/internal/vec"
)

// State is the lifecycle position of an ion. Terminal states never
// transition further.
type State uint8

const (
	InFlight State = iota
	StoppedInside
	Escaped
)

func (s State) String() string {
	switch s {
	case InFlight:
		return "in_flight"
	case StoppedInside:
		return "stopped_inside"
	case Escaped:
		return "escaped"
	}
	return "unknown"
}

// Projectile is the array-of-structs form used to seed batches and to
// report recoil end states.
type Projectile struct {
	Pos     vec.Vec3 // [A]
	Dir     vec.Vec3 // unit vector
	E       float64  // [eV]
	Species int
	State   State
}

// Batch is the structure-of-arrays state the driver advances in
// lock-step. All slices have equal length.
type Batch struct {
	Pos     []vec.Vec3
	Dir     []vec.Vec3
	E       []float64
	Species []int
	Alive   []bool
	State   []State
}

func NewBatch(n int) *Batch {
	b := &Batch{
		Pos:     make([]vec.Vec3, n),
		Dir:     make([]vec.Vec3, n),
		E:       make([]float64, n),
		Species: make([]int, n),
		Alive:   make([]bool, n),
		State:   make([]State, n),
	}
	for i := range b.Alive {
		b.Alive[i] = true
	}
	return b
}

// BatchOf gathers projectiles into a fresh batch.
func BatchOf(projs []Projectile) *Batch {
	b := NewBatch(len(projs))
	for i, p := range projs {
		b.Pos[i] = p.Pos
		b.Dir[i] = p.Dir
		b.E[i] = p.E
		b.Species[i] = p.Species
	}
	return b
}

func (b *Batch) Len() int { return len(b.E) }

// Projectiles returns the array-of-structs view of the batch.
func (b *Batch) Projectiles() []Projectile {
	out := make([]Projectile, b.Len())
	for i := range out {
		out[i] = Projectile{Pos: b.Pos[i], Dir: b.Dir[i], E: b.E[i], Species: b.Species[i], State: b.State[i]}
	}
	return out
}

// Driver advances one batch of ions through the collision loop. Each
// driver owns its RNG stream, its diagnostics and its recoil queue, so
// drivers on disjoint batches never synchronise.
type Driver struct {
	setup *Setup
	rng   *rand.Rand

	Diag Diagnostics

	// Recoils collects the end states of followed recoils across all
	// cascade generations.
	Recoils []Projectile

	pending []Projectile
}

func NewDriver(setup *Setup, rng *rand.Rand) *Driver {
	return &Driver{setup: setup, rng: rng}
}

// Run advances the batch until every ion stops or leaves the slab, then
// drains the recoil queue one generation per batch. Cascade depth is
// bounded by energy decay: every generation costs at least EDisp.
func (d *Driver) Run(b *Batch) {
	d.advance(b)
	for len(d.pending) > 0 {
		spawned := d.pending
		d.pending = nil
		d.Diag.RecoilsPerGeneration = append(d.Diag.RecoilsPerGeneration, int64(len(spawned)))
		gb := BatchOf(spawned)
		d.advance(gb)
		d.Recoils = append(d.Recoils, gb.Projectiles()...)
	}
}

// advance runs the collision loop over one batch. Per outer iteration:
// gather the active set, then for each active ion sample the collision
// site, apply electronic stopping, advance, geometry-test, and resolve
// the nuclear collision. The collision of an ion that just left the slab
// is still evaluated but its result is discarded, so the exit energy and
// direction are preserved and no recoil is created by a discarded
// collision.
func (d *Driver) advance(b *Batch) {
	s := d.setup
	active := make([]int, 0, b.Len())
	for {
		active = active[:0]
		for i := range b.E {
			if b.Alive[i] && b.E[i] > s.EMin {
				active = append(active, i)
			}
		}
		if len(active) == 0 {
			break
		}

		for _, i := range active {
			freePath, p, dirp, recoilPos := s.Sample(d.rng, b.Pos[i], b.Dir[i])

			dee := s.Eloss(b.Species[i], b.E[i], freePath)
			b.E[i] -= dee
			d.Diag.ElectronicLoss += dee

			b.Pos[i] = b.Pos[i].Add(b.Dir[i].Scale(freePath))
			inside := s.Slab.Inside(b.Pos[i])

			dirNew, eNew, recoilDir, recoilE := s.Scatter(b.Species[i], b.E[i], b.Dir[i], dirp, p, &d.Diag)

			if !inside {
				b.Alive[i] = false
				b.State[i] = Escaped
				continue
			}
			if math.IsNaN(eNew) || math.IsInf(eNew, 0) || !dirNew.IsFinite() || !b.Pos[i].IsFinite() {
				b.Alive[i] = false
				b.State[i] = Escaped
				d.Diag.NaNKills++
				continue
			}

			b.Dir[i] = dirNew
			b.E[i] = eNew
			if s.FollowRecoils {
				if recoilE > s.EDisp {
					d.pending = append(d.pending, Projectile{
						Pos:     recoilPos,
						Dir:     recoilDir,
						E:       recoilE,
						Species: s.RecoilSpecies,
					})
				} else {
					d.Diag.SubThresholdLoss += recoilE
				}
			}
		}
	}

	// Whatever is still alive ran out of energy inside the slab.
	for i := range b.Alive {
		if b.Alive[i] {
			b.Alive[i] = false
			b.State[i] = StoppedInside
		}
	}
}
