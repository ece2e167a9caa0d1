package engine

import (
	"reflect"
	"testing"

	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/rng"
	"github.com/mdwalters/symbiants/internal/settings"
	"github.com/mdwalters/symbiants/internal/world"
)

// testSettings returns a small world with every probability zeroed so
// tests opt in to exactly the stochastic behavior they exercise.
func testSettings() settings.Settings {
	cfg := settings.Default()
	cfg.WorldWidth = 10
	cfg.WorldHeight = 10
	cfg.InitialDirtFraction = 0.5 // surface level 5
	cfg.InitialWorkerCount = 0
	cfg.Probabilities = settings.Probabilities{}
	return cfg
}

// newTestSim builds a simulation over a hand-drawn grid. Rows are listed
// top to bottom using '.' air, 'd' dirt, 's' sand, 'f' food.
func newTestSim(t *testing.T, cfg settings.Settings, rows []string) *Simulation {
	t.Helper()
	if len(rows) != cfg.WorldHeight {
		t.Fatalf("test grid has %d rows, settings say %d", len(rows), cfg.WorldHeight)
	}

	grid := world.NewGrid(cfg.WorldWidth, cfg.WorldHeight, cfg.SurfaceLevel())
	for y, row := range rows {
		if len(row) != cfg.WorldWidth {
			t.Fatalf("test grid row %d has %d cells, settings say %d", y, len(row), cfg.WorldWidth)
		}
		for x, c := range row {
			var k world.Kind
			switch c {
			case '.':
				k = world.Air
			case 'd':
				k = world.Dirt
			case 's':
				k = world.Sand
			case 'f':
				k = world.Food
			default:
				t.Fatalf("unknown test grid glyph %q", c)
			}
			if _, err := grid.Place(k, world.Position{X: x, Y: y}); err != nil {
				t.Fatalf("place: %v", err)
			}
		}
	}
	grid.RefreshExposure()
	if err := grid.CheckConsistency(); err != nil {
		t.Fatalf("test grid inconsistent: %v", err)
	}

	return &Simulation{
		Region:     "test",
		Settings:   cfg,
		Grid:       grid,
		Pheromones: world.NewPheromoneField(),
		AntIndex:   make(map[ants.AntID]*ants.Ant),
		Spawner:    ants.NewSpawner(),
		Rng:        rng.NewStream(1),
	}
}

// addAnt places a test ant with fresh initiative.
func addAnt(s *Simulation, role ants.Role, p world.Position, o world.Orientation) *ants.Ant {
	a := s.Spawner.Spawn(role, p, o, 0, s.Rng)
	s.Ants = append(s.Ants, a)
	s.AntIndex[a.ID] = a
	return a
}

// kindAt is a test shorthand that fails on grid corruption.
func kindAt(t *testing.T, s *Simulation, p world.Position) world.Kind {
	t.Helper()
	el, err := s.Grid.ElementAt(p)
	if err != nil {
		t.Fatalf("element at %s: %v", p, err)
	}
	return el.Kind
}

func TestSameSeedSameHistory(t *testing.T) {
	cfg := settings.Default()
	cfg.WorldWidth = 48
	cfg.WorldHeight = 32
	cfg.InitialWorkerCount = 4
	cfg.HungerTicks = 300
	cfg.BirthingTicks = 50

	a, err := NewSimulation("nest", cfg)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	b, err := NewSimulation("nest", cfg)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}

	for i := 0; i < 200; i++ {
		if err := a.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if err := b.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if !reflect.DeepEqual(sa, sb) {
		t.Fatal("two runs with the same seed diverged")
	}
}

func TestGridStaysConsistentAcrossTicks(t *testing.T) {
	cfg := settings.Default()
	cfg.WorldWidth = 48
	cfg.WorldHeight = 32
	cfg.InitialWorkerCount = 4
	cfg.HungerTicks = 300
	cfg.BirthingTicks = 50

	s, err := NewSimulation("nest", cfg)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	for i := 1; i <= 200; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if i%50 == 0 {
			if err := s.Grid.CheckConsistency(); err != nil {
				t.Fatalf("tick %d: %v", i, err)
			}
		}
	}
	if got := s.CurrentTick(); got != 200 {
		t.Fatalf("tick counter = %d, want 200", got)
	}
}

func TestNewSimulationRejectsBadSettings(t *testing.T) {
	cfg := settings.Default()
	cfg.WorldWidth = 1
	if _, err := NewSimulation("nest", cfg); err == nil {
		t.Fatal("expected error for degenerate world size")
	}
}

func TestEventLogIsBounded(t *testing.T) {
	cfg := testSettings()
	s := newTestSim(t, cfg, []string{
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
	for i := 0; i < maxRetainedEvents+100; i++ {
		s.emit(Event{Kind: EventPositionChanged})
	}
	if len(s.Events) != maxRetainedEvents {
		t.Fatalf("retained %d events, want %d", len(s.Events), maxRetainedEvents)
	}
}
