// Dropping — carrying ants put their load down at the cell they occupy,
// which necessarily holds air. Dropping onto anything else is rejected at
// apply time and the inventory is retained.
package engine

import (
	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/world"
)

func (s *Simulation) antsDrop() {
	for _, a := range s.Ants {
		if a.Dead || a.Asleep || !a.Initiative.CanAct() || !a.HasInventory() {
			continue
		}
		el, ok := s.Grid.Element(a.Inventory)
		if !ok {
			continue
		}
		if !s.shouldDrop(a, el.Kind) {
			continue
		}
		s.commands.drop(a.ID, a.Position, a.Inventory)
		a.Initiative.ConsumeAction()
	}
}

// shouldDrop encodes the probability table: sand comes back out of the
// nest, food gets cached underground, the queen sheds spoil quickly while
// excavating, and anything may be abandoned on a rare whim.
func (s *Simulation) shouldDrop(a *ants.Ant, carried world.Kind) bool {
	p := s.Settings.Probabilities
	if s.Grid.IsAboveground(a.Position) && carried == world.Sand && s.Rng.Chance(p.AboveSurfaceSandDrop) {
		return true
	}
	if s.Grid.IsUnderground(a.Position) && carried == world.Food && s.Rng.Chance(p.BelowSurfaceFoodDrop) {
		return true
	}
	if a.Role == ants.RoleQueen && a.NestTarget == nil && s.Rng.Chance(p.BelowSurfaceQueenNestDig) {
		return true
	}
	return s.Rng.Chance(p.RandomDrop)
}
