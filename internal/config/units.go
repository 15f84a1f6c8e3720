package config

// The engine works in A and eV. Config values may be declared in other
// units of the same class; they are normalised at load.

var unitToEngine = map[string]float64{
	"A":   1,    // [A]
	"nm":  10,   // [A]
	"um":  1e4,  // [A]
	"eV":  1,    // [eV]
	"keV": 1e3,  // [eV]
	"MeV": 1e6,  // [eV]
}

type UnitClass int

const (
	Length UnitClass = iota
	Energy
)

var unitsInClass = map[UnitClass][]string{
	Length: {"A", "nm", "um"},
	Energy: {"eV", "keV", "MeV"},
}

var classesOfUnits = map[string]UnitClass{
	"A":   Length,
	"nm":  Length,
	"um":  Length,
	"eV":  Energy,
	"keV": Energy,
	"MeV": Energy,
}

type UnitElement struct {
	Class UnitClass
	Power int
}

var defaultUnits = []string{"A", "eV"}

// checkUnits validates a unit declaration (at most one unit per class)
// and extends it with the defaults for classes left out.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		if _, known := classesOfUnits[unit]; !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[classesOfUnits[unit]]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[classesOfUnits[unit]] = struct{}{}
		}
	}
	extended = units
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

func unitOfClass(class UnitClass, units []string) string {
	for _, u := range unitsInClass[class] {
		for _, v := range units {
			if u == v {
				return u
			}
		}
	}
	return defaultUnits[class]
}

// toEngine converts v carrying the given unit classes from the declared
// units into engine units.
func toEngine(v float64, classes []UnitElement, units []string) float64 {
	for _, uc := range classes {
		factor := unitToEngine[unitOfClass(uc.Class, units)]
		power := uc.Power
		for ; power > 0; power-- {
			v *= factor
		}
		for ; power < 0; power++ {
			v /= factor
		}
	}
	return v
}
