// Deferred command buffer — structural mutations (dig, drop, eat, spawn,
// despawn) are queued by the behavior systems and applied at explicit
// barrier points between system groups, so no system observes a
// half-applied change from a system ordered before it in the same group.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/world"
)

type commandKind uint8

const (
	cmdDig commandKind = iota
	cmdDrop
	cmdEatAt
	cmdEatCarried
	cmdSpawnAnt
	cmdDespawnCarried
)

type command struct {
	kind    commandKind
	ant     ants.AntID
	pos     world.Position
	element world.ElementID
	role    ants.Role
}

// commandBuffer queues structural mutations until the next barrier.
type commandBuffer struct {
	queue []command
}

func (b *commandBuffer) dig(ant ants.AntID, pos world.Position, element world.ElementID) {
	b.queue = append(b.queue, command{kind: cmdDig, ant: ant, pos: pos, element: element})
}

func (b *commandBuffer) drop(ant ants.AntID, pos world.Position, element world.ElementID) {
	b.queue = append(b.queue, command{kind: cmdDrop, ant: ant, pos: pos, element: element})
}

func (b *commandBuffer) eatAt(ant ants.AntID, pos world.Position, element world.ElementID) {
	b.queue = append(b.queue, command{kind: cmdEatAt, ant: ant, pos: pos, element: element})
}

func (b *commandBuffer) eatCarried(ant ants.AntID, element world.ElementID) {
	b.queue = append(b.queue, command{kind: cmdEatCarried, ant: ant, element: element})
}

func (b *commandBuffer) spawnAnt(role ants.Role, pos world.Position) {
	b.queue = append(b.queue, command{kind: cmdSpawnAnt, role: role, pos: pos})
}

func (b *commandBuffer) despawnCarried(ant ants.AntID, element world.ElementID) {
	b.queue = append(b.queue, command{kind: cmdDespawnCarried, ant: ant, element: element})
}

// applyCommands drains the buffer. Policy rejections (the world changed
// between issue and apply) are logged and skipped without failing the
// tick; bookkeeping corruption aborts with an error.
func (s *Simulation) applyCommands() error {
	for _, c := range s.commands.queue {
		var err error
		switch c.kind {
		case cmdDig:
			err = s.applyDig(c)
		case cmdDrop:
			err = s.applyDrop(c)
		case cmdEatAt:
			err = s.applyEatAt(c)
		case cmdEatCarried:
			err = s.applyEatCarried(c)
		case cmdSpawnAnt:
			s.applySpawnAnt(c)
		case cmdDespawnCarried:
			err = s.applyDespawnCarried(c)
		}
		if err != nil {
			return fmt.Errorf("apply command: %w", err)
		}
	}
	s.commands.queue = s.commands.queue[:0]
	return nil
}

func (s *Simulation) applyDig(c command) error {
	a, ok := s.AntIndex[c.ant]
	if !ok || a.Dead {
		return nil
	}
	if a.HasInventory() {
		slog.Debug("dig rejected: inventory full", "region", s.Region, "ant", c.ant)
		return nil
	}
	id, ok := s.Grid.ElementIDAt(c.pos)
	if !ok || id != c.element {
		slog.Debug("dig rejected: cell changed", "region", s.Region, "ant", c.ant, "pos", c.pos.String())
		return nil
	}
	el, ok := s.Grid.Element(id)
	if !ok {
		return fmt.Errorf("dig references unknown element %d", id)
	}
	if el.Kind == world.Air {
		slog.Debug("dig rejected: target is air", "region", s.Region, "ant", c.ant, "pos", c.pos.String())
		return nil
	}
	detached, err := s.Grid.DigOut(c.pos)
	if err != nil {
		return err
	}
	a.Inventory = detached
	s.emit(Event{Kind: EventInventoryChanged, Ant: a.ID, Position: c.pos, Detail: el.Kind.String()})
	return nil
}

func (s *Simulation) applyDrop(c command) error {
	a, ok := s.AntIndex[c.ant]
	if !ok || a.Inventory != c.element {
		return nil
	}
	if !s.Grid.IsKindAt(c.pos, world.Air) {
		slog.Debug("drop rejected: target not air", "region", s.Region, "ant", c.ant, "pos", c.pos.String())
		return nil
	}
	if err := s.Grid.PlaceDetached(c.element, c.pos); err != nil {
		return err
	}
	a.Inventory = 0
	el, _ := s.Grid.Element(c.element)
	s.emit(Event{Kind: EventElementSpawned, Ant: a.ID, Position: c.pos, Detail: el.Kind.String()})
	s.emit(Event{Kind: EventInventoryChanged, Ant: a.ID, Position: c.pos})
	return nil
}

func (s *Simulation) applyEatAt(c command) error {
	a, ok := s.AntIndex[c.ant]
	if !ok || a.Dead {
		return nil
	}
	id, ok := s.Grid.ElementIDAt(c.pos)
	if !ok || id != c.element || !s.Grid.IsKindAt(c.pos, world.Food) {
		slog.Debug("eat rejected: no food at cell", "region", s.Region, "ant", c.ant, "pos", c.pos.String())
		return nil
	}
	detached, err := s.Grid.DigOut(c.pos)
	if err != nil {
		return err
	}
	if err := s.Grid.Despawn(detached); err != nil {
		return err
	}
	a.Hunger = 0
	s.emit(Event{Kind: EventElementDespawned, Ant: a.ID, Position: c.pos, Detail: world.Food.String()})
	return nil
}

func (s *Simulation) applyEatCarried(c command) error {
	a, ok := s.AntIndex[c.ant]
	if !ok || a.Dead || a.Inventory != c.element {
		return nil
	}
	if err := s.Grid.Despawn(c.element); err != nil {
		return err
	}
	a.Inventory = 0
	a.Hunger = 0
	s.emit(Event{Kind: EventInventoryChanged, Ant: a.ID, Position: a.Position})
	return nil
}

func (s *Simulation) applySpawnAnt(c command) {
	born := s.Spawner.Spawn(c.role, c.pos, world.East, s.LastTick, s.Rng)
	s.Ants = append(s.Ants, born)
	s.AntIndex[born.ID] = born
	s.emit(Event{Kind: EventAntBorn, Ant: born.ID, Position: c.pos, Detail: c.role.String()})
}

func (s *Simulation) applyDespawnCarried(c command) error {
	a, ok := s.AntIndex[c.ant]
	if !ok || a.Inventory != c.element {
		return nil
	}
	if err := s.Grid.Despawn(c.element); err != nil {
		return err
	}
	a.Inventory = 0
	s.emit(Event{Kind: EventElementDespawned, Ant: a.ID, Position: a.Position})
	return nil
}
