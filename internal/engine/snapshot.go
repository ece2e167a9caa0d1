// Snapshotting — a serializable image of one region: grid contents, ant
// states, pheromone field, and the tick counter. The on-disk format is
// the persistence package's concern; this is just the shape.
package engine

import (
	"fmt"
	"sort"

	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/rng"
	"github.com/mdwalters/symbiants/internal/settings"
	"github.com/mdwalters/symbiants/internal/world"
)

// SnapshotVersion guards against loading snapshots from incompatible
// builds.
const SnapshotVersion = 1

// PheromoneCell is one active cell signal in a snapshot.
type PheromoneCell struct {
	Position world.Position      `json:"position"`
	Kind     world.PheromoneKind `json:"kind"`
	Strength int                 `json:"strength"`
}

// Snapshot is a complete serializable region state. Slices are sorted so
// equal states produce equal snapshots.
type Snapshot struct {
	Version        int               `json:"version"`
	Region         string            `json:"region"`
	Tick           uint64            `json:"tick"`
	Settings       settings.Settings `json:"settings"`
	BroodDelivered int               `json:"brood_delivered"`
	NextAntID      ants.AntID        `json:"next_ant_id"`
	Elements       []world.Element   `json:"elements"`
	Ants           []ants.Ant        `json:"ants"`
	Pheromones     []PheromoneCell   `json:"pheromones"`
}

// Snapshot captures the current region state.
func (s *Simulation) Snapshot() *Snapshot {
	snap := &Snapshot{
		Version:        SnapshotVersion,
		Region:         s.Region,
		Tick:           s.LastTick,
		Settings:       s.Settings,
		BroodDelivered: s.BroodDelivered,
		NextAntID:      s.Spawner.NextID(),
	}

	for _, el := range s.Grid.Elements() {
		snap.Elements = append(snap.Elements, *el)
	}
	sort.Slice(snap.Elements, func(i, j int) bool { return snap.Elements[i].ID < snap.Elements[j].ID })

	for _, a := range s.Ants {
		copied := *a
		copied.MovedThisTick = false
		snap.Ants = append(snap.Ants, copied)
	}
	sort.Slice(snap.Ants, func(i, j int) bool { return snap.Ants[i].ID < snap.Ants[j].ID })

	for p, ph := range s.Pheromones.Cells() {
		snap.Pheromones = append(snap.Pheromones, PheromoneCell{Position: p, Kind: ph.Kind, Strength: ph.Strength})
	}
	sort.Slice(snap.Pheromones, func(i, j int) bool {
		a, b := snap.Pheromones[i].Position, snap.Pheromones[j].Position
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	return snap
}

// FromSnapshot reconstructs a simulation from a captured state.
func FromSnapshot(snap *Snapshot) (*Simulation, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	cfg := snap.Settings
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot settings: %w", err)
	}

	grid := world.NewGrid(cfg.WorldWidth, cfg.WorldHeight, cfg.SurfaceLevel())
	for _, el := range snap.Elements {
		if err := grid.RestoreElement(el); err != nil {
			return nil, err
		}
	}
	if err := grid.CheckConsistency(); err != nil {
		return nil, fmt.Errorf("restored grid: %w", err)
	}

	field := world.NewPheromoneField()
	for _, ph := range snap.Pheromones {
		field.Deposit(ph.Position, ph.Kind, ph.Strength)
	}

	spawner := ants.NewSpawner()
	spawner.SetNextID(snap.NextAntID)

	s := &Simulation{
		Region:         snap.Region,
		Settings:       cfg,
		Grid:           grid,
		Pheromones:     field,
		Spawner:        spawner,
		Rng:            rng.NewStream(cfg.Seed + int64(snap.Tick)),
		LastTick:       snap.Tick,
		BroodDelivered: snap.BroodDelivered,
		AntIndex:       make(map[ants.AntID]*ants.Ant, len(snap.Ants)),
	}
	for i := range snap.Ants {
		copied := snap.Ants[i]
		s.Ants = append(s.Ants, &copied)
		s.AntIndex[copied.ID] = &copied
	}
	return s, nil
}
