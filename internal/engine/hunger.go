// Hunger — passive appetite growth, eating, and starvation. Eating runs
// first in the action priority order so an ant never starves because it
// kept choosing to dig.
package engine

import (
	"github.com/mdwalters/symbiants/internal/world"
)

// antsHungerTick grows every living ant's hunger and starves out ants
// that hit the top of the scale.
func (s *Simulation) antsHungerTick() {
	rate := 100.0 / float64(s.Settings.HungerTicks)
	for _, a := range s.Ants {
		if a.Dead {
			continue
		}
		a.Hunger += rate
		if a.Hunger >= 100 {
			a.Hunger = 100
			a.Dead = true
			s.emit(Event{Kind: EventAntDied, Ant: a.ID, Position: a.Position, Detail: "starved"})
		}
	}
}

// antsHungerAct lets hungry ants eat: carried food first, then — once
// starving — any food within reach of the mandibles (ahead, below,
// above).
func (s *Simulation) antsHungerAct() {
	for _, a := range s.Ants {
		if a.Dead || !a.Initiative.CanAct() || !a.IsHungry() {
			continue
		}

		if a.HasInventory() {
			if el, ok := s.Grid.Element(a.Inventory); ok && el.Kind == world.Food {
				s.commands.eatCarried(a.ID, a.Inventory)
				a.Initiative.ConsumeAction()
				continue
			}
		}

		if !a.IsStarving() {
			continue
		}
		for _, p := range []world.Position{
			a.Orientation.AheadPosition(a.Position),
			a.Orientation.BelowPosition(a.Position),
			a.Orientation.AbovePosition(a.Position),
		} {
			if !s.Grid.IsKindAt(p, world.Food) {
				continue
			}
			id, _ := s.Grid.ElementIDAt(p)
			s.commands.eatAt(a.ID, p, id)
			a.Initiative.ConsumeAction()
			break
		}
	}
}
