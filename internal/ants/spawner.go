// Ant spawning — allocates stable IDs and creates the founding colony.
package ants

import (
	"github.com/mdwalters/symbiants/internal/rng"
	"github.com/mdwalters/symbiants/internal/world"
)

// Spawner creates ants and owns the ID sequence.
type Spawner struct {
	nextID AntID
}

// NewSpawner creates a spawner issuing IDs from 1.
func NewSpawner() *Spawner {
	return &Spawner{nextID: 1}
}

// SetNextID moves the sequence past restored IDs.
func (s *Spawner) SetNextID(id AntID) {
	s.nextID = id
}

// NextID returns the next ID to be issued, for snapshotting.
func (s *Spawner) NextID() AntID {
	return s.nextID
}

// Spawn creates one ant at the given position.
func (s *Spawner) Spawn(role Role, p world.Position, o world.Orientation, tick uint64, r *rng.Stream) *Ant {
	id := s.nextID
	s.nextID++
	return &Ant{
		ID:          id,
		Role:        role,
		Position:    p,
		Orientation: o,
		Initiative:  NewInitiative(r),
		BornTick:    tick,
	}
}

// SpawnColony creates the founding population: one queen and the
// configured workers, scattered along the surface facing random
// horizontal directions.
func (s *Spawner) SpawnColony(workerCount int, surfaceLevel, width int, r *rng.Stream) []*Ant {
	colony := make([]*Ant, 0, workerCount+1)

	queen := s.Spawn(RoleQueen, world.Position{X: width / 2, Y: surfaceLevel}, randomHorizontal(r), 0, r)
	colony = append(colony, queen)

	for i := 0; i < workerCount; i++ {
		p := world.Position{X: r.IntN(width), Y: surfaceLevel}
		colony = append(colony, s.Spawn(RoleWorker, p, randomHorizontal(r), 0, r))
	}
	return colony
}

func randomHorizontal(r *rng.Stream) world.Orientation {
	if r.Chance(0.5) {
		return world.East
	}
	return world.West
}
