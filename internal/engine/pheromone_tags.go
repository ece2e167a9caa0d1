// Pheromone tags — ants crossing a marked cell pick up a countdown tag
// that directs their digging for the next few steps. Fade runs before
// add so the tag an ant carries always reflects the cell it reached this
// tick, with no off-by-one between tile strength and ant state.
package engine

import (
	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/world"
)

// antsFadePheromoneTags spends one step from every tagged ant that moved.
func (s *Simulation) antsFadePheromoneTags() {
	for _, a := range s.Ants {
		if a.Dead || !a.MovedThisTick {
			continue
		}
		if a.IsTunneling {
			a.TunnelingSteps--
		}
		if a.IsChambering {
			a.ChamberingSteps--
		}
	}
}

// antsAddPheromoneTags tags uncarrying ants that stepped onto a marked
// cell. A later pickup overwrites an earlier tag of the other kind.
func (s *Simulation) antsAddPheromoneTags() {
	for _, a := range s.Ants {
		if a.Dead || !a.MovedThisTick || a.HasInventory() {
			continue
		}
		ph, ok := s.Pheromones.At(a.Position)
		if !ok {
			continue
		}
		switch ph.Kind {
		case world.Tunnel:
			a.IsTunneling = true
			a.TunnelingSteps = s.Settings.TunnelPheromoneStrength
			a.IsChambering = false
			a.ChamberingSteps = 0
		case world.Chamber:
			a.IsChambering = true
			a.ChamberingSteps = s.Settings.ChamberPheromoneStrength
			a.IsTunneling = false
			a.TunnelingSteps = 0
		}
	}
}

// antsRemovePheromoneTags drops a tag once its purpose is spent: the ant
// picked something up, surfaced aboveground, or exhausted its steps.
func (s *Simulation) antsRemovePheromoneTags() {
	for _, a := range s.Ants {
		if a.Dead {
			continue
		}
		if a.IsTunneling && (a.HasInventory() || s.Grid.IsAboveground(a.Position) || a.TunnelingSteps <= 0) {
			a.IsTunneling = false
			a.TunnelingSteps = 0
		}
		if a.IsChambering && (a.HasInventory() || s.Grid.IsAboveground(a.Position) || a.ChamberingSteps <= 0) {
			a.IsChambering = false
			a.ChamberingSteps = 0
		}
	}
}

// antsTunnelAct digs corridors: a tunneling ant digs the cell ahead,
// never upward, so tunnels extend without breaching the surface.
func (s *Simulation) antsTunnelAct() {
	for _, a := range s.Ants {
		if a.Dead || !a.IsTunneling || !a.Initiative.CanAct() || a.HasInventory() {
			continue
		}
		if a.Orientation.IsFacingUpward() {
			continue
		}
		if s.tryDig(a, a.Orientation.AheadPosition(a.Position)) {
			a.Initiative.ConsumeAction()
		}
	}
}

// antsChamberAct hollows rooms: dig ahead unless that points upward,
// else dig overhead unless the ant stands rightside-up (which would open
// the ceiling toward the surface).
func (s *Simulation) antsChamberAct() {
	for _, a := range s.Ants {
		if a.Dead || !a.IsChambering || !a.Initiative.CanAct() || a.HasInventory() {
			continue
		}
		if !a.Orientation.IsFacingUpward() && s.tryDig(a, a.Orientation.AheadPosition(a.Position)) {
			a.Initiative.ConsumeAction()
			continue
		}
		if !a.Orientation.IsRightsideUp() && s.tryDig(a, a.Orientation.AbovePosition(a.Position)) {
			a.Initiative.ConsumeAction()
		}
	}
}

// tryDig queues a dig when the target is in bounds and solid. Digging
// air is a no-op failure signaled without consuming initiative.
func (s *Simulation) tryDig(a *ants.Ant, p world.Position) bool {
	id, ok := s.Grid.ElementIDAt(p)
	if !ok {
		return false
	}
	if s.Grid.IsKindAt(p, world.Air) {
		return false
	}
	s.commands.dig(a.ID, p, id)
	return true
}
