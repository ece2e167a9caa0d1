// Walking — updates each ant's position and facing. Movement never
// touches the external environment; everything here applies instantly.
package engine

import (
	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/world"
)

// antsWalk moves every eligible ant one step, or turns it in place. Each
// branch consumes exactly one unit of movement initiative.
func (s *Simulation) antsWalk() {
	for _, a := range s.Ants {
		if a.Dead || a.Asleep || a.IsBirthing || !a.Initiative.CanMove() {
			continue
		}

		// An ant can lose stable footing without falling: standing
		// perpendicular to the ground when the block it walks on is dug
		// out. Such an ant turns in search of footing.
		underFeet := a.Orientation.UnderFeetPosition(a.Position)
		hasAirUnderFeet := s.Grid.IsKindAt(underFeet, world.Air)

		ahead := a.Orientation.AheadPosition(a.Position)
		hasAirAhead := s.Grid.IsKindAt(ahead, world.Air)

		// Random turns keep ants out of loops and add variety.
		turnsRandomly := s.Rng.Chance(s.Settings.Probabilities.RandomTurn)

		if hasAirUnderFeet || !hasAirAhead || turnsRandomly || s.queenTurnsTowardNest(a, ahead) {
			turned := s.turnedOrientation(a)
			if turned != a.Orientation {
				a.Orientation = turned
				s.emit(Event{Kind: EventOrientationChanged, Ant: a.ID, Position: a.Position, Detail: turned.String()})
			}
			a.Initiative.ConsumeMovement()
			continue
		}

		// Walking forward; but if that leaves the ant standing over air,
		// turn into the air and stay on the current block instead
		// (climbing behavior).
		footOrientation := a.Orientation.RotateForward()
		footPosition := ahead.Add(footOrientation.ForwardDelta())
		if !s.Grid.IsWithinBounds(footPosition) {
			continue
		}

		if s.Grid.IsKindAt(footPosition, world.Air) {
			a.Position = footPosition
			a.Orientation = footOrientation
			s.emit(Event{Kind: EventOrientationChanged, Ant: a.ID, Position: a.Position, Detail: footOrientation.String()})
		} else {
			a.Position = ahead
		}
		a.MovedThisTick = true
		a.Initiative.ConsumeMovement()
		s.emit(Event{Kind: EventPositionChanged, Ant: a.ID, Position: a.Position})
	}
}

// queenTurnsTowardNest biases the queen back toward a known nest site
// when she is aboveground, uncarrying, and walking level: she turns
// whenever stepping forward would increase her Manhattan distance to it.
func (s *Simulation) queenTurnsTowardNest(a *ants.Ant, ahead world.Position) bool {
	if a.Role != ants.RoleQueen || a.NestTarget == nil {
		return false
	}
	if !s.Grid.IsAboveground(a.Position) || a.HasInventory() || !a.Orientation.IsHorizontal() {
		return false
	}
	return world.ManhattanDistance(ahead, *a.NestTarget) > world.ManhattanDistance(a.Position, *a.NestTarget)
}

// turnedOrientation picks a new facing: perpendicular toward the back
// first, then fully around, then a random facing verified valid, then an
// unverified random facing as a last resort.
func (s *Simulation) turnedOrientation(a *ants.Ant) world.Orientation {
	back := a.Orientation.RotateBackward()
	if s.isValidLocation(back, a.Position) {
		return back
	}

	opposite := a.Orientation.TurnAround()
	if s.isValidLocation(opposite, a.Position) {
		return opposite
	}

	valid := make([]world.Orientation, 0, world.NumOrientations)
	for _, o := range world.AllOrientations {
		if o == a.Orientation {
			continue
		}
		if s.isValidLocation(o, a.Position) {
			valid = append(valid, o)
		}
	}
	if len(valid) > 0 {
		return valid[s.Rng.IntN(len(valid))]
	}

	return world.AllOrientations[s.Rng.IntN(world.NumOrientations)]
}

// isValidLocation requires air at body height and something solid under
// the feet for the candidate facing.
func (s *Simulation) isValidLocation(o world.Orientation, p world.Position) bool {
	if !s.Grid.IsKindAt(p, world.Air) {
		return false
	}
	feet := o.UnderFeetPosition(p)
	if !s.Grid.IsWithinBounds(feet) {
		return false
	}
	return !s.Grid.IsKindAt(feet, world.Air)
}
