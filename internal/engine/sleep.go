// Sleep — the queen settles in once the colony is founded; hunger wakes
// her. Workers never sleep.
package engine

import (
	"github.com/mdwalters/symbiants/internal/ants"
)

func (s *Simulation) antsSleep() {
	for _, a := range s.Ants {
		if a.Dead || a.Role != ants.RoleQueen {
			continue
		}
		if a.Asleep {
			if a.IsHungry() {
				a.Asleep = false
			}
			continue
		}
		if a.NestTarget != nil && s.BroodDelivered >= s.Settings.QueenBroodCount {
			a.Asleep = true
			a.IsBirthing = false
			s.emit(Event{Kind: EventAntSlept, Ant: a.ID, Position: a.Position})
		}
	}
}
