package engine

import (
	"testing"

	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/world"
)

func TestSandFallsOneCellPerTick(t *testing.T) {
	s := newTestSim(t, testSettings(), []string{
		"..........",
		"...s......",
		"..........",
		"..........",
		"..........",
		"..........",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
	})

	for step := 1; step <= 4; step++ {
		if err := s.gravityElements(); err != nil {
			t.Fatalf("gravity: %v", err)
		}
		want := world.Position{X: 3, Y: 1 + step}
		if kindAt(t, s, want) != world.Sand {
			t.Fatalf("after %d steps sand not at %s", step, want)
		}
	}

	// Resting on dirt now; nothing more to do.
	if err := s.gravityElements(); err != nil {
		t.Fatalf("gravity: %v", err)
	}
	if kindAt(t, s, world.Position{X: 3, Y: 5}) != world.Sand {
		t.Fatal("sand fell through solid dirt")
	}
	el, err := s.Grid.ElementAt(world.Position{X: 3, Y: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !el.Stable {
		t.Fatal("settled sand should be marked stable")
	}
	if err := s.Grid.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestSandColumnShiftsTogether(t *testing.T) {
	s := newTestSim(t, testSettings(), []string{
		"...s......",
		"...s......",
		"...s......",
		"..........",
		"..........",
		"..........",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
	})

	if err := s.gravityElements(); err != nil {
		t.Fatalf("gravity: %v", err)
	}

	// The bottom-up scan moves the whole column down by exactly one; no
	// element skips a cell.
	for _, y := range []int{1, 2, 3} {
		if kindAt(t, s, world.Position{X: 3, Y: y}) != world.Sand {
			t.Fatalf("column member missing at y=%d", y)
		}
	}
	if kindAt(t, s, world.Position{X: 3, Y: 0}) != world.Air {
		t.Fatal("vacated top cell should be air")
	}
	if err := s.Grid.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestFoodFallsLikeSand(t *testing.T) {
	s := newTestSim(t, testSettings(), []string{
		"..........",
		"...f......",
		"..........",
		"..........",
		"..........",
		"..........",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
	})
	if err := s.gravityElements(); err != nil {
		t.Fatalf("gravity: %v", err)
	}
	if kindAt(t, s, world.Position{X: 3, Y: 2}) != world.Food {
		t.Fatal("food did not fall")
	}
}

func TestGravityIdempotentOnSettledGrid(t *testing.T) {
	s := newTestSim(t, testSettings(), []string{
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"ss..f.....",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
	})
	before := s.Grid.Elements()
	positions := make(map[world.ElementID]world.Position, len(before))
	for id, el := range before {
		positions[id] = el.Position
	}

	if err := s.gravityElements(); err != nil {
		t.Fatalf("gravity: %v", err)
	}
	for id, el := range s.Grid.Elements() {
		if el.Position != positions[id] {
			t.Fatalf("element %d moved on a settled grid", id)
		}
	}
}

func TestUnsupportedAntFallsAndLandsUpright(t *testing.T) {
	s := newTestSim(t, testSettings(), []string{
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
	})
	a := addAnt(s, ants.RoleWorker, world.Position{X: 3, Y: 2}, world.Northwest)

	s.gravityAnts()

	if a.Position != (world.Position{X: 3, Y: 3}) {
		t.Fatalf("ant at %s, want one cell down", a.Position)
	}
	if a.Orientation != world.West {
		t.Fatalf("faller should land upright keeping its horizontal component, got %s", a.Orientation)
	}
	if a.Initiative.CanMove() {
		t.Fatal("falling should consume the movement budget")
	}
	if !a.MovedThisTick {
		t.Fatal("fall should count as movement for the pheromone pipeline")
	}
}

func TestVerticalClingHoldsWithoutSlip(t *testing.T) {
	s := newTestSim(t, testSettings(), []string{
		"..........",
		"..d.......",
		"..d.......",
		"..d.......",
		"..d.......",
		"..d.......",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
		"dddddddddd",
	})
	// Facing south on the east face of the wall: feet rest against the
	// dirt to the west.
	a := addAnt(s, ants.RoleWorker, world.Position{X: 3, Y: 2}, world.South)

	s.gravityAnts()

	if a.Position != (world.Position{X: 3, Y: 2}) {
		t.Fatalf("clinging ant fell to %s with slip probability zero", a.Position)
	}

	// With slip certain, the same ant drops.
	s.Settings.Probabilities.RandomSlip = 1.0
	s.gravityAnts()
	if a.Position != (world.Position{X: 3, Y: 3}) {
		t.Fatalf("ant at %s, want one cell down after slip", a.Position)
	}
}

func TestDeepSandCompactsToDirt(t *testing.T) {
	cfg := testSettings()
	cfg.CompactSandDepth = 3
	s := newTestSim(t, testSettings(), []string{
		"..........",
		"..........",
		"..........",
		"..........",
		"..........",
		".s........",
		".s........",
		".s........",
		".s........",
		".s........",
	})
	s.Settings = cfg

	if err := s.compactSand(); err != nil {
		t.Fatalf("compact: %v", err)
	}

	// Run of five: the cells deeper than the threshold compact.
	for _, y := range []int{5, 6, 7} {
		if kindAt(t, s, world.Position{X: 1, Y: y}) != world.Sand {
			t.Fatalf("sand above threshold compacted at y=%d", y)
		}
	}
	for _, y := range []int{8, 9} {
		if kindAt(t, s, world.Position{X: 1, Y: y}) != world.Dirt {
			t.Fatalf("deep sand did not compact at y=%d", y)
		}
	}
}
