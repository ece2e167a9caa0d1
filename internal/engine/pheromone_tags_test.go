package engine

import (
	"testing"

	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/world"
)

// tunnelWorld is an underground pocket at y=7 for tag tests.
func tunnelWorld(t *testing.T) *Simulation {
	return newTestSim(t, testSettings(), []string{
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"dddddddddd",
		"dd...ddddd",
		"dddddddddd",
		"dddddddddd",
	})
}

func TestChamberTagLastsExactlyItsSteps(t *testing.T) {
	s := tunnelWorld(t)
	pos := world.Position{X: 3, Y: 7}
	s.Pheromones.Deposit(pos, world.Chamber, 100)

	a := addAnt(s, ants.RoleWorker, pos, world.East)
	a.MovedThisTick = true

	s.antsAddPheromoneTags()
	if !a.IsChambering || a.ChamberingSteps != s.Settings.ChamberPheromoneStrength {
		t.Fatalf("pickup gave steps=%d chambering=%v", a.ChamberingSteps, a.IsChambering)
	}

	// The tag survives exactly ChamberPheromoneStrength further steps.
	for i := 1; i <= s.Settings.ChamberPheromoneStrength; i++ {
		a.MovedThisTick = true
		s.antsFadePheromoneTags()
		s.antsRemovePheromoneTags()
		if i < s.Settings.ChamberPheromoneStrength && !a.IsChambering {
			t.Fatalf("tag removed after %d steps, want %d", i, s.Settings.ChamberPheromoneStrength)
		}
	}
	if a.IsChambering {
		t.Fatal("tag should be spent after its steps run out")
	}
	if a.ChamberingSteps != 0 {
		t.Fatalf("removal left steps=%d", a.ChamberingSteps)
	}
}

func TestTunnelTagOverwritesChamberTag(t *testing.T) {
	s := tunnelWorld(t)
	pos := world.Position{X: 3, Y: 7}
	s.Pheromones.Deposit(pos, world.Tunnel, 100)

	a := addAnt(s, ants.RoleWorker, pos, world.East)
	a.IsChambering = true
	a.ChamberingSteps = 2
	a.MovedThisTick = true

	s.antsAddPheromoneTags()

	if !a.IsTunneling || a.TunnelingSteps != s.Settings.TunnelPheromoneStrength {
		t.Fatal("tunnel tag not picked up")
	}
	if a.IsChambering || a.ChamberingSteps != 0 {
		t.Fatal("chamber tag should be displaced by the tunnel tag")
	}
}

func TestCarryingAntSkipsTagPickup(t *testing.T) {
	s := tunnelWorld(t)
	pos := world.Position{X: 3, Y: 7}
	s.Pheromones.Deposit(pos, world.Tunnel, 100)

	a := addAnt(s, ants.RoleWorker, pos, world.East)
	a.MovedThisTick = true
	carried, err := s.Grid.DigOut(world.Position{X: 9, Y: 9})
	if err != nil {
		t.Fatal(err)
	}
	a.Inventory = carried

	s.antsAddPheromoneTags()
	if a.IsTunneling {
		t.Fatal("carrying ant picked up a tag")
	}
}

func TestTagDroppedOnSurfacing(t *testing.T) {
	s := tunnelWorld(t)
	a := addAnt(s, ants.RoleWorker, world.Position{X: 3, Y: 4}, world.East)
	a.IsTunneling = true
	a.TunnelingSteps = 5

	s.antsRemovePheromoneTags()

	if a.IsTunneling {
		t.Fatal("tag should not survive surfacing")
	}
}

func TestTunnelingAntDigsAheadButNeverUp(t *testing.T) {
	s := tunnelWorld(t)
	a := addAnt(s, ants.RoleWorker, world.Position{X: 4, Y: 7}, world.East)
	a.IsTunneling = true
	a.TunnelingSteps = 5

	s.antsTunnelAct()
	if len(s.commands.queue) != 1 {
		t.Fatalf("queued %d commands, want 1 dig ahead", len(s.commands.queue))
	}
	if a.Initiative.CanAct() {
		t.Fatal("tunnel dig should consume the action budget")
	}
	if err := s.applyCommands(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if kindAt(t, s, world.Position{X: 5, Y: 7}) != world.Air {
		t.Fatal("cell ahead should be dug out")
	}

	// Facing upward: tunnels must not breach toward the surface.
	up := addAnt(s, ants.RoleWorker, world.Position{X: 3, Y: 7}, world.Northeast)
	up.IsTunneling = true
	up.TunnelingSteps = 5

	s.antsTunnelAct()
	if len(s.commands.queue) != 0 {
		t.Fatal("upward-facing tunneler queued a dig")
	}
	if !up.Initiative.CanAct() {
		t.Fatal("refusing the dig must not consume initiative")
	}
}

func TestChamberingAntDigsOverheadWhenNotRightsideUp(t *testing.T) {
	s := tunnelWorld(t)
	// Facing north along a wall: ahead points upward, so the chamber
	// branch falls through to the overhead dig, allowed because the ant
	// is not rightside-up.
	a := addAnt(s, ants.RoleWorker, world.Position{X: 3, Y: 7}, world.North)
	a.IsChambering = true
	a.ChamberingSteps = 5

	s.antsChamberAct()
	if err := s.applyCommands(); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if kindAt(t, s, world.Position{X: 3, Y: 6}) != world.Air {
		t.Fatal("overhead cell should be dug out")
	}
	if a.Initiative.CanAct() {
		t.Fatal("chamber dig should consume the action budget")
	}
}

func TestFieldDecayExpiresMarks(t *testing.T) {
	s := tunnelWorld(t)
	pos := world.Position{X: 3, Y: 7}
	s.Pheromones.Deposit(pos, world.Chamber, 2)

	s.Pheromones.DecayTick()
	if _, ok := s.Pheromones.At(pos); !ok {
		t.Fatal("mark expired a tick early")
	}
	s.Pheromones.DecayTick()
	if _, ok := s.Pheromones.At(pos); ok {
		t.Fatal("mark should expire at zero strength")
	}
}
