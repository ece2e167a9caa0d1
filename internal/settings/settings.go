// Package settings holds the immutable configuration snapshot the
// simulation core is handed: world dimensions, surface fraction, initial
// population, timing, and the probability table. The core never sources
// configuration itself; the runner loads a YAML file over the defaults and
// validates it fatally at startup.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Probabilities is the per-tick chance table for stochastic behavior.
// All values are probabilities in [0, 1].
type Probabilities struct {
	RandomDig  float64 `yaml:"random_dig"`  // dig down while wandering
	RandomDrop float64 `yaml:"random_drop"` // drop while wandering
	RandomTurn float64 `yaml:"random_turn"` // turn while wandering
	RandomFall float64 `yaml:"random_fall"` // fall while clinging at a diagonal
	RandomSlip float64 `yaml:"random_slip"` // fall while clinging vertically

	BelowSurfaceDirtDig  float64 `yaml:"below_surface_dirt_dig"`  // dig dirt when underground
	AboveSurfaceSandDrop float64 `yaml:"above_surface_sand_drop"` // drop carried sand when aboveground
	BelowSurfaceFoodDrop float64 `yaml:"below_surface_food_drop"` // drop carried food when underground

	AboveSurfaceQueenNestDig float64 `yaml:"above_surface_queen_nest_dig"`
	BelowSurfaceQueenNestDig float64 `yaml:"below_surface_queen_nest_dig"`

	NestExpansion float64 `yaml:"nest_expansion"` // crowded worker marks a new chamber
}

// Settings is the per-region configuration snapshot. The core treats it
// as immutable for the lifetime of a simulation.
type Settings struct {
	Seed int64 `yaml:"seed"`

	WorldWidth          int     `yaml:"world_width"`
	WorldHeight         int     `yaml:"world_height"`
	InitialDirtFraction float64 `yaml:"initial_dirt_fraction"` // share of the height that is ground
	InitialWorkerCount  int     `yaml:"initial_worker_count"`

	// Sand stacked deeper than this compacts into dirt.
	CompactSandDepth int `yaml:"compact_sand_depth"`

	// Pheromone countdown magnitudes picked up by ants crossing a marked cell.
	ChamberPheromoneStrength int `yaml:"chamber_pheromone_strength"`
	TunnelPheromoneStrength  int `yaml:"tunnel_pheromone_strength"`

	// Queen behavior: nest depth below the surface and brood size before sleep.
	QueenNestDepth  int `yaml:"queen_nest_depth"`
	QueenBroodCount int `yaml:"queen_brood_count"`

	HungerTicks   int `yaml:"hunger_ticks"`   // ticks from fed to starved
	BirthingTicks int `yaml:"birthing_ticks"` // ticks for one birthing cycle

	SecondsPerTick    float64 `yaml:"seconds_per_tick"`
	SaveIntervalTicks int     `yaml:"save_interval_ticks"`

	Probabilities Probabilities `yaml:"probabilities"`
}

// Default returns the standard settings, matching a small crater region.
func Default() Settings {
	return Settings{
		Seed:                     42,
		WorldWidth:               144,
		WorldHeight:              81,
		InitialDirtFraction:      3.0 / 4.0,
		InitialWorkerCount:       6,
		CompactSandDepth:         15,
		ChamberPheromoneStrength: 3,
		TunnelPheromoneStrength:  8,
		QueenNestDepth:           12,
		QueenBroodCount:          6,
		HungerTicks:              36_000,
		BirthingTicks:            1_800,
		SecondsPerTick:           10.0 / 60.0,
		SaveIntervalTicks:        600,
		Probabilities: Probabilities{
			RandomDig:  0.003,
			RandomDrop: 0.003,
			RandomTurn: 0.005,
			// Clinging ants occasionally lose their grip. Vertical ants mostly
			// catch themselves; ants hanging at a diagonal rarely do. Nonzero
			// values keep ants from stranding themselves on dug-out islands.
			RandomFall:               0.005,
			RandomSlip:               0.001,
			BelowSurfaceDirtDig:      0.05,
			AboveSurfaceSandDrop:     0.05,
			BelowSurfaceFoodDrop:     0.20,
			AboveSurfaceQueenNestDig: 0.10,
			BelowSurfaceQueenNestDig: 0.50,
			NestExpansion:            0.01,
		},
	}
}

// Load reads YAML overrides over the defaults. An empty path returns the
// defaults unchanged. The result is validated.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return s, fmt.Errorf("parse settings: %w", err)
		}
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// SurfaceLevel derives the y coordinate of the ground surface: cells with
// y greater than this are underground.
func (s Settings) SurfaceLevel() int {
	return int(float64(s.WorldHeight) - float64(s.WorldHeight)*s.InitialDirtFraction)
}

// Validate rejects degenerate configurations. Range errors are fatal at
// startup and never allowed mid-simulation.
func (s Settings) Validate() error {
	if s.WorldWidth < 2 || s.WorldHeight < 2 {
		return fmt.Errorf("degenerate world size %dx%d", s.WorldWidth, s.WorldHeight)
	}
	if s.InitialDirtFraction <= 0 || s.InitialDirtFraction >= 1 {
		return fmt.Errorf("initial_dirt_fraction %.3f outside (0, 1)", s.InitialDirtFraction)
	}
	if s.InitialWorkerCount < 0 {
		return fmt.Errorf("negative initial_worker_count %d", s.InitialWorkerCount)
	}
	if s.ChamberPheromoneStrength <= 0 || s.TunnelPheromoneStrength <= 0 {
		return fmt.Errorf("pheromone strengths must be positive")
	}
	if s.HungerTicks <= 0 || s.BirthingTicks <= 0 {
		return fmt.Errorf("hunger_ticks and birthing_ticks must be positive")
	}
	if s.SecondsPerTick <= 0 {
		return fmt.Errorf("seconds_per_tick %.4f must be positive", s.SecondsPerTick)
	}
	for name, p := range map[string]float64{
		"random_dig":                   s.Probabilities.RandomDig,
		"random_drop":                  s.Probabilities.RandomDrop,
		"random_turn":                  s.Probabilities.RandomTurn,
		"random_fall":                  s.Probabilities.RandomFall,
		"random_slip":                  s.Probabilities.RandomSlip,
		"below_surface_dirt_dig":       s.Probabilities.BelowSurfaceDirtDig,
		"above_surface_sand_drop":      s.Probabilities.AboveSurfaceSandDrop,
		"below_surface_food_drop":      s.Probabilities.BelowSurfaceFoodDrop,
		"above_surface_queen_nest_dig": s.Probabilities.AboveSurfaceQueenNestDig,
		"below_surface_queen_nest_dig": s.Probabilities.BelowSurfaceQueenNestDig,
		"nest_expansion":               s.Probabilities.NestExpansion,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("probability %s = %.4f outside [0, 1]", name, p)
		}
	}
	return nil
}
