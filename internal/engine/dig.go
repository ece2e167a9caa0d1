// Opportunistic digging — the default action branch for uncarrying ants
// that still hold their action after the priority branches above.
package engine

import (
	"github.com/mdwalters/symbiants/internal/world"
)

type digCandidate struct {
	pos world.Position
	id  world.ElementID
}

// antsDig considers the cells ahead, below, and above. Food is always
// worth taking; otherwise dirt and the odd random dig keep the colony
// churning soil.
func (s *Simulation) antsDig() {
	for _, a := range s.Ants {
		if a.Dead || a.Asleep || a.IsBirthing || !a.Initiative.CanAct() || a.HasInventory() {
			continue
		}

		candidates := make([]digCandidate, 0, 3)
		for _, p := range []world.Position{
			a.Orientation.AheadPosition(a.Position),
			a.Orientation.BelowPosition(a.Position),
			a.Orientation.AbovePosition(a.Position),
		} {
			if id, ok := s.Grid.ElementIDAt(p); ok {
				candidates = append(candidates, digCandidate{pos: p, id: id})
			}
		}

		// Food first: uniform choice among every food-bearing candidate.
		// The turn-around applies optimistically even though the dig is
		// deferred and could fail; see DESIGN.md.
		var food []digCandidate
		for _, c := range candidates {
			if s.Grid.IsKindAt(c.pos, world.Food) {
				food = append(food, c)
			}
		}
		if len(food) > 0 {
			pick := food[s.Rng.IntN(len(food))]
			s.commands.dig(a.ID, pick.pos, pick.id)
			a.Orientation = a.Orientation.TurnAround()
			a.Initiative.ConsumeAction()
			continue
		}

		// Underground dirt digging sustains the nest's growth.
		if s.Grid.IsUnderground(a.Position) && s.Rng.Chance(s.Settings.Probabilities.BelowSurfaceDirtDig) {
			var dirt []digCandidate
			for _, c := range candidates {
				if s.Grid.IsKindAt(c.pos, world.Dirt) {
					dirt = append(dirt, c)
				}
			}
			if len(dirt) > 0 {
				pick := dirt[s.Rng.IntN(len(dirt))]
				s.commands.dig(a.ID, pick.pos, pick.id)
				a.Initiative.ConsumeAction()
				continue
			}
		}

		// Rare wandering dig straight down.
		if s.Rng.Chance(s.Settings.Probabilities.RandomDig) {
			below := a.Orientation.BelowPosition(a.Position)
			if id, ok := s.Grid.ElementIDAt(below); ok && !s.Grid.IsKindAt(below, world.Air) {
				s.commands.dig(a.ID, below, id)
				a.Initiative.ConsumeAction()
			}
		}
	}
}
