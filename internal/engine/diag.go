package engine

import "log"

// Diagnostics tallies the per-ion recoverable faults and the energy
// bookkeeping of a run. Workers own private instances; the orchestrator
// merges them after the run.
type Diagnostics struct {
	// ScatterClamped counts collisions whose cos(theta/2) exceeded 1 by
	// more than round-off and was clamped.
	ScatterClamped int64

	// NaNKills counts ions terminated because their state went
	// non-finite.
	NaNKills int64

	// RecoilsPerGeneration[g] is the number of recoils spawned into
	// cascade generation g+1 (primaries are generation 0).
	RecoilsPerGeneration []int64

	// ElectronicLoss is the summed continuous energy loss in eV.
	ElectronicLoss float64

	// SubThresholdLoss is the summed energy in eV of recoils below the
	// displacement threshold; in cascade mode it closes the energy
	// budget.
	SubThresholdLoss float64

	clampWarned bool
}

func (d *Diagnostics) warnClamp(e, p, cosHalf float64) {
	if d.clampWarned {
		return
	}
	d.clampWarned = true
	log.Printf("scattering outside magic-formula validity: cos(theta/2) = %g at e = %g eV, p = %g A (clamped; counting silently from now on)", cosHalf, e, p)
}

func (d *Diagnostics) TotalRecoils() (total int64) {
	for _, n := range d.RecoilsPerGeneration {
		total += n
	}
	return
}

func (d *Diagnostics) Merge(other *Diagnostics) {
	d.ScatterClamped += other.ScatterClamped
	d.NaNKills += other.NaNKills
	d.ElectronicLoss += other.ElectronicLoss
	d.SubThresholdLoss += other.SubThresholdLoss
	for len(d.RecoilsPerGeneration) < len(other.RecoilsPerGeneration) {
		d.RecoilsPerGeneration = append(d.RecoilsPerGeneration, 0)
	}
	for g, n := range other.RecoilsPerGeneration {
		d.RecoilsPerGeneration[g] += n
	}
}
