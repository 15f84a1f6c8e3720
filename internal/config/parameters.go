// Package config loads simulation models from a TOML file and converts
// them into the engine's structured input record. A file holds any number
// of named models; fields left out fall back to global values from the
// top level of the file and then to defaults.
package config

import (
	"fmt"
	"reflect"

	"github.com/BurntSushi/toml"

	"github.com/wildstyl3r/gotrim/internal/constants"
	"github.com/wildstyl3r/gotrim/internal/engine"
	"github.com/wildstyl3r/gotrim/internal/sim"
	"github.com/wildstyl3r/gotrim/internal/vec"
)

type ModelParameters struct {
	NIons int

	Z1 int     // atomic number of the projectile
	M1 float64 // [amu]
	Z2 int     // atomic number of the target atom
	M2 float64 // [amu]

	Density float64 // [atoms/A^3]
	ZMin    float64 // [A]
	ZMax    float64 // [A]

	Energy    float64    // [eV] initial energy, same for every ion
	Position  [3]float64 // [A]
	Direction [3]float64 // need not be normalised

	CorrLindhard       float64 // stopping correction of the primary
	CorrLindhardRecoil float64 // stopping correction of recoils
	SurfaceBinding     float64 // [eV] reserved

	EMin          float64 // [eV]
	EDisp         float64 // [eV]
	FollowRecoils bool
	Seed          int64

	NBins   int
	HistMin float64 // [A]
	HistMax float64 // [A]

	MakeDir bool
}

type Config struct {
	OutputDir  string
	InputUnits []string
	Threads    int
	Models     map[string]ModelParameters
	ModelParameters
}

// required model fields; everything else has a default or inherits.
var requiredFields = []string{"NIons", "Z1", "M1", "Z2", "M2", "Density", "ZMax", "Energy"}

// unit classes of the convertible float fields.
var valueUnits = map[string][]UnitElement{
	"Density":        {{Class: Length, Power: -3}},
	"ZMin":           {{Class: Length, Power: 1}},
	"ZMax":           {{Class: Length, Power: 1}},
	"HistMin":        {{Class: Length, Power: 1}},
	"HistMax":        {{Class: Length, Power: 1}},
	"Energy":         {{Class: Energy, Power: 1}},
	"EMin":           {{Class: Energy, Power: 1}},
	"EDisp":          {{Class: Energy, Power: 1}},
	"SurfaceBinding": {{Class: Energy, Power: 1}},
}

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.DecodeFile(configFileName+".toml", &config)
	if err != nil {
		return config, meta, fmt.Errorf("unable to load config: %w", err)
	}
	var conflicts []string
	config.InputUnits, conflicts = checkUnits(config.InputUnits)
	if len(conflicts) > 0 {
		return config, meta, fmt.Errorf("unable to load config: unit conflict %v", conflicts)
	}
	if len(config.Models) == 0 {
		return config, meta, fmt.Errorf("no models provided")
	}
	return config, meta, nil
}

func defined(meta *toml.MetaData, modelName, field string) bool {
	return meta.IsDefined("Models", modelName, field)
}

// CheckAndUnify fills model fields in priority order (model, global,
// default), converts declared units to engine units, and reports every
// missing required field at once.
func (p *ModelParameters) CheckAndUnify(modelName string, config *Config, meta *toml.MetaData) error {
	local := reflect.ValueOf(p).Elem()
	global := reflect.ValueOf(&config.ModelParameters).Elem()
	t := local.Type()

	var missing []string
	var fromModel []string
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		if defined(meta, modelName, name) {
			fromModel = append(fromModel, name)
			continue
		}
		if meta.IsDefined(name) {
			local.Field(i).Set(global.Field(i))
			fromModel = append(fromModel, name)
			continue
		}
		for _, req := range requiredFields {
			if req == name {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("model %s lacks key parameters %v", modelName, missing)
	}

	// Unit conversion applies only to declared values; defaults below
	// are already in engine units.
	for _, name := range fromModel {
		if classes, some := valueUnits[name]; some {
			f := local.FieldByName(name)
			f.SetFloat(toEngine(f.Float(), classes, config.InputUnits))
		}
	}
	lengthFactor := unitToEngine[unitOfClass(Length, config.InputUnits)]
	if isSet(meta, modelName, "Position") {
		for i := range p.Position {
			p.Position[i] *= lengthFactor
		}
	}

	if !isSet(meta, modelName, "Direction") {
		p.Direction = [3]float64{0, 0, 1}
	}
	if !isSet(meta, modelName, "CorrLindhard") {
		p.CorrLindhard = 1
	}
	if !isSet(meta, modelName, "CorrLindhardRecoil") {
		p.CorrLindhardRecoil = p.CorrLindhard
	}
	if !isSet(meta, modelName, "EMin") {
		p.EMin = constants.DefaultEMin
	}
	if !isSet(meta, modelName, "EDisp") {
		p.EDisp = constants.DefaultEDisp
	}
	if !isSet(meta, modelName, "NBins") {
		p.NBins = 100
	}
	if !isSet(meta, modelName, "HistMin") && !isSet(meta, modelName, "HistMax") {
		p.HistMin, p.HistMax = p.ZMin, p.ZMax
	}
	return nil
}

func isSet(meta *toml.MetaData, modelName, field string) bool {
	return defined(meta, modelName, field) || meta.IsDefined(field)
}

// ToInput builds the engine input record: the species table (primary ion
// plus the target atom as recoil species) and identical initial
// conditions for every ion.
func (p *ModelParameters) ToInput(threads int) sim.Input {
	species := []engine.Species{
		{
			Z1: float64(p.Z1), M1: p.M1,
			Z2: float64(p.Z2), M2: p.M2,
			CorrLindhard:   p.CorrLindhard,
			SurfaceBinding: p.SurfaceBinding,
		},
		{
			Z1: float64(p.Z2), M1: p.M2,
			Z2: float64(p.Z2), M2: p.M2,
			CorrLindhard: p.CorrLindhardRecoil,
		},
	}

	energy := make([]float64, p.NIons)
	position := make([]vec.Vec3, p.NIons)
	direction := make([]vec.Vec3, p.NIons)
	dir := vec.Vec3(p.Direction).Normalized()
	for i := range energy {
		energy[i] = p.Energy
		position[i] = vec.Vec3(p.Position)
		direction[i] = dir
	}

	return sim.Input{
		NIons:     p.NIons,
		Target:    sim.Target{ZMin: p.ZMin, ZMax: p.ZMax, Density: p.Density},
		Species:   species,
		Energy:    energy,
		Position:  position,
		Direction: direction,
		Engine: sim.EngineParams{
			EMin:          p.EMin,
			EDisp:         p.EDisp,
			FollowRecoils: p.FollowRecoils,
			NThreads:      threads,
			Seed:          uint64(p.Seed),
		},
		Stats: sim.StatsParams{
			NBins: p.NBins,
			Lo:    p.HistMin,
			Hi:    p.HistMax,
		},
	}
}
