// Death handling — a dead ant's carried element is dropped where it fell
// if that cell is air, otherwise despawned with the body.
package engine

import (
	"github.com/mdwalters/symbiants/internal/world"
)

func (s *Simulation) antsDeath() {
	for _, a := range s.Ants {
		if !a.Dead || !a.HasInventory() {
			continue
		}
		if s.Grid.IsKindAt(a.Position, world.Air) {
			s.commands.drop(a.ID, a.Position, a.Inventory)
		} else {
			s.commands.despawnCarried(a.ID, a.Inventory)
		}
	}
}
