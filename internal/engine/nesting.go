// Nesting — the queen digs down to found the nest, marks the site with a
// Chamber pheromone, and starts birthing. Crowded workers later extend
// the nest by marking new tunnels.
package engine

import (
	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/world"
)

// Cell pheromone marks persist this many ticks unless overwritten.
const (
	chamberMarkDuration = 600
	tunnelMarkDuration  = 600
)

// antsNesting drives the queen's nest founding.
func (s *Simulation) antsNesting() {
	for _, a := range s.Ants {
		if a.Dead || a.Asleep || a.Role != ants.RoleQueen || a.NestTarget != nil {
			continue
		}

		// Deep enough: found the nest here and begin the brood.
		depth := a.Position.Y - s.Grid.SurfaceLevel()
		if depth >= s.Settings.QueenNestDepth {
			target := a.Position
			a.NestTarget = &target
			a.IsBirthing = true
			s.Pheromones.Deposit(target, world.Chamber, chamberMarkDuration)
			s.emit(Event{Kind: EventNestFounded, Ant: a.ID, Position: target})
			continue
		}

		// Not there yet: dig downward with the configured eagerness.
		if !a.Initiative.CanAct() || a.HasInventory() {
			continue
		}
		digChance := s.Settings.Probabilities.AboveSurfaceQueenNestDig
		if s.Grid.IsUnderground(a.Position) {
			digChance = s.Settings.Probabilities.BelowSurfaceQueenNestDig
		}
		if !s.Rng.Chance(digChance) {
			continue
		}
		below := a.Position.Below()
		if id, ok := s.Grid.ElementIDAt(below); ok && !s.Grid.IsKindAt(below, world.Air) {
			s.commands.dig(a.ID, below, id)
			a.Initiative.ConsumeAction()
		}
	}
}

// antsNestExpansion lets a crowded underground worker mark a fresh tunnel
// for the colony to dig.
func (s *Simulation) antsNestExpansion() {
	p := s.Settings.Probabilities.NestExpansion
	if p <= 0 {
		return
	}
	for _, a := range s.Ants {
		if a.Dead || a.Asleep || a.Role != ants.RoleWorker || a.HasInventory() {
			continue
		}
		if !s.Grid.IsUnderground(a.Position) {
			continue
		}
		if !s.Rng.Chance(p) {
			continue
		}
		if s.crowdedAt(a) {
			s.Pheromones.Deposit(a.Position, world.Tunnel, tunnelMarkDuration)
		}
	}
}

// crowdedAt reports whether at least two other living ants stand within
// three cells.
func (s *Simulation) crowdedAt(a *ants.Ant) bool {
	neighbors := 0
	for _, other := range s.Ants {
		if other.ID == a.ID || other.Dead {
			continue
		}
		if world.ManhattanDistance(a.Position, other.Position) <= 3 {
			neighbors++
			if neighbors >= 2 {
				return true
			}
		}
	}
	return false
}
