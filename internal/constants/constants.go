package constants

// CoulombFactor is e^2 / (4 pi eps0) expressed in eV*A.
const CoulombFactor float64 = 14.39979

// LindhardFactor is the numeric prefactor of the Lindhard electronic
// stopping coefficient when lengths are in A, energies in eV and masses
// in amu.
const LindhardFactor float64 = 1.212

const DefaultEMin float64 = 5.0   // [eV] trajectory cut-off energy
const DefaultEDisp float64 = 15.0 // [eV] displacement threshold for recoils
