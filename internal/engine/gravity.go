// Gravity and stability — loose elements and unsupported ants fall one
// cell per tick. Runs before movement and actions so the rest of the
// pipeline observes settled ground.
package engine

import (
	"fmt"

	"github.com/mdwalters/symbiants/internal/world"
)

// gravityElements lets loose elements (sand, food) fall into the air
// beneath them. Falling is a cell swap, so the one-element-per-cell
// invariant holds by construction, and a faller can never pass through an
// occupied cell (crush rule): it simply finds no air beneath it.
//
// Rows scan bottom-up so each element moves at most one cell per tick; a
// whole column of sand shifts down by exactly one.
func (s *Simulation) gravityElements() error {
	for y := s.Grid.Height() - 2; y >= 0; y-- {
		for x := 0; x < s.Grid.Width(); x++ {
			p := world.Position{X: x, Y: y}
			el, err := s.Grid.ElementAt(p)
			if err != nil {
				return err
			}
			if !el.Kind.IsLoose() {
				el.Stable = true
				continue
			}
			below := p.Below()
			if !s.Grid.IsKindAt(below, world.Air) {
				el.Stable = true
				continue
			}
			el.Stable = false
			if err := s.Grid.Swap(p, below); err != nil {
				return err
			}
			s.emit(Event{Kind: EventPositionChanged, Position: below, Detail: el.Kind.String()})
		}
	}
	return nil
}

// gravityAnts drops ants whose support just became air. An ant clinging
// to a wall or ceiling gets a stability exception with a configured
// failure chance; a falling ant is knocked upright and loses its movement
// for the tick.
func (s *Simulation) gravityAnts() {
	for _, a := range s.Ants {
		if a.Dead {
			continue
		}
		below := a.Position.Below()
		if !s.Grid.IsWithinBounds(below) || !s.Grid.IsKindAt(below, world.Air) {
			continue
		}

		feet := a.Orientation.UnderFeetPosition(a.Position)
		feetSolid := s.Grid.IsWithinBounds(feet) && !s.Grid.IsKindAt(feet, world.Air)

		falls := false
		switch {
		case !feetSolid:
			falls = true
		case a.Orientation.IsVertical():
			falls = s.Rng.Chance(s.Settings.Probabilities.RandomSlip)
		default:
			// Clinging at a diagonal, feet against a wall or ceiling.
			falls = s.Rng.Chance(s.Settings.Probabilities.RandomFall)
		}
		if !falls {
			continue
		}

		a.Position = below
		a.MovedThisTick = true
		a.Orientation = uprightFacing(a.Orientation)
		a.Initiative.ConsumeMovement()
		s.emit(Event{Kind: EventPositionChanged, Ant: a.ID, Position: a.Position})
		s.emit(Event{Kind: EventOrientationChanged, Ant: a.ID, Position: a.Position, Detail: a.Orientation.String()})
	}
}

// uprightFacing keeps the horizontal component of a facing and levels the
// rest; a faller lands on its feet.
func uprightFacing(o world.Orientation) world.Orientation {
	if o.ForwardDelta().DX < 0 {
		return world.West
	}
	return world.East
}

// compactSand turns sand into dirt once it is buried under a deep enough
// sand column.
func (s *Simulation) compactSand() error {
	depth := s.Settings.CompactSandDepth
	if depth <= 0 {
		return nil
	}
	for x := 0; x < s.Grid.Width(); x++ {
		run := 0
		for y := 0; y < s.Grid.Height(); y++ {
			p := world.Position{X: x, Y: y}
			if !s.Grid.IsKindAt(p, world.Sand) {
				run = 0
				continue
			}
			run++
			if run > depth {
				if err := s.Grid.Mutate(p, world.Dirt); err != nil {
					return fmt.Errorf("compact sand at %s: %w", p, err)
				}
			}
		}
	}
	return nil
}
