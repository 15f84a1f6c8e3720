package engine

import "math"

// Eloss returns the continuous electronic energy loss of a projectile of
// species ispec with energy e (eV) over one free flight (Lindhard
// velocity-proportional stopping). The loss never exceeds the current
// energy.
func (s *Setup) Eloss(ispec int, e, freePath float64) float64 {
	dee := s.consts[ispec].kLindhard * s.Density * math.Sqrt(e) * freePath
	if dee > e {
		dee = e
	}
	return dee
}
