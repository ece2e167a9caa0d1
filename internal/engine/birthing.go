// Birthing — the queen's reproduction cycle. Progress accrues passively;
// delivery spawns a worker through the command buffer.
package engine

import (
	"github.com/mdwalters/symbiants/internal/ants"
)

// antsBirthing advances every birthing ant and delivers at 100%.
func (s *Simulation) antsBirthing() {
	rate := 100.0 / float64(s.Settings.BirthingTicks)
	for _, a := range s.Ants {
		if a.Dead || a.Asleep || !a.IsBirthing {
			continue
		}
		a.Birthing += rate
		if a.Birthing < ants.BirthingDone {
			continue
		}
		if !a.Initiative.CanAct() {
			// Hold at term until the queen can spend an action.
			a.Birthing = ants.BirthingDone
			continue
		}
		a.Birthing = 0
		s.BroodDelivered++
		s.commands.spawnAnt(ants.RoleWorker, a.Position)
		a.Initiative.ConsumeAction()
	}
}
