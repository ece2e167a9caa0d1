// Simulation ties together one region's world state and runs the
// fixed-order system pipeline each tick. Later systems observe the
// already-applied results of earlier ones within the same tick: digging
// sees this tick's gravity-settled grid, not last tick's.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/rng"
	"github.com/mdwalters/symbiants/internal/settings"
	"github.com/mdwalters/symbiants/internal/world"
)

// Event kinds emitted across the presentation boundary.
const (
	EventPositionChanged    = "position_changed"
	EventOrientationChanged = "orientation_changed"
	EventInventoryChanged   = "inventory_changed"
	EventElementSpawned     = "element_spawned"
	EventElementDespawned   = "element_despawned"
	EventAntBorn            = "ant_born"
	EventAntDied            = "ant_died"
	EventAntSlept           = "ant_slept"
	EventNestFounded        = "nest_founded"
)

// Event is a change notification for external consumers. The core never
// reads anything back from them.
type Event struct {
	Tick     uint64         `json:"tick"`
	Kind     string         `json:"kind"`
	Ant      ants.AntID     `json:"ant,omitempty"`
	Position world.Position `json:"position"`
	Detail   string         `json:"detail,omitempty"`
}

// maxRetainedEvents bounds the in-memory event log.
const maxRetainedEvents = 1000

// Simulation holds the complete state of one region (nest or crater) and
// wires the systems together. It is owned by a single goroutine; nothing
// here is safe for concurrent use.
type Simulation struct {
	Region     string
	Settings   settings.Settings
	Grid       *world.Grid
	Pheromones *world.PheromoneField
	Ants       []*ants.Ant
	AntIndex   map[ants.AntID]*ants.Ant
	Spawner    *ants.Spawner
	Rng        *rng.Stream

	// LastTick is the most recent tick processed.
	LastTick uint64

	// BroodDelivered counts workers the queen has birthed; the queen
	// sleeps once the initial brood is complete.
	BroodDelivered int

	// Events is a bounded log of recent change notifications.
	Events []Event

	commands commandBuffer
	sinks    []func(Event)
}

// NewSimulation generates a fresh region from settings: noise-derived
// strata and the founding colony on the surface.
func NewSimulation(region string, cfg settings.Settings) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	grid, err := world.Generate(world.DefaultGenConfig(cfg.WorldWidth, cfg.WorldHeight, cfg.SurfaceLevel(), cfg.Seed))
	if err != nil {
		return nil, err
	}

	stream := rng.NewStream(cfg.Seed)
	spawner := ants.NewSpawner()
	colony := spawner.SpawnColony(cfg.InitialWorkerCount, cfg.SurfaceLevel(), cfg.WorldWidth, stream)

	s := &Simulation{
		Region:     region,
		Settings:   cfg,
		Grid:       grid,
		Pheromones: world.NewPheromoneField(),
		Ants:       colony,
		AntIndex:   make(map[ants.AntID]*ants.Ant, len(colony)),
		Spawner:    spawner,
		Rng:        stream,
	}
	for _, a := range colony {
		s.AntIndex[a.ID] = a
	}

	slog.Info("region created",
		"region", region,
		"size", fmt.Sprintf("%dx%d", cfg.WorldWidth, cfg.WorldHeight),
		"surface_level", cfg.SurfaceLevel(),
		"ants", len(colony),
		"seed", cfg.Seed,
	)
	return s, nil
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// AddSink registers a change-notification consumer. Sinks run on the
// simulation goroutine and must not block.
func (s *Simulation) AddSink(fn func(Event)) {
	s.sinks = append(s.sinks, fn)
}

func (s *Simulation) emit(e Event) {
	e.Tick = s.LastTick
	s.Events = append(s.Events, e)
	if len(s.Events) > maxRetainedEvents {
		s.Events = s.Events[len(s.Events)-maxRetainedEvents:]
	}
	for _, fn := range s.sinks {
		fn(e)
	}
}

// Tick advances the region by one tick. Systems run in a fixed total
// order; structural mutations queue in the command buffer and apply at
// the barriers between groups. An error means bookkeeping corruption and
// aborts the tick.
func (s *Simulation) Tick() error {
	s.LastTick++

	for _, a := range s.Ants {
		a.MovedThisTick = false
	}

	// Physics settles first so every later system sees this tick's ground
	// truth. Gravity mutates positions directly; it has no deferred part.
	if err := s.gravityElements(); err != nil {
		return fmt.Errorf("tick %d gravity: %w", s.LastTick, err)
	}
	s.gravityAnts()
	if err := s.compactSand(); err != nil {
		return fmt.Errorf("tick %d compact sand: %w", s.LastTick, err)
	}
	s.Grid.RefreshExposure()

	// Movement applies before actions: positions update instantly while
	// actions are deferred, so commands never need to anticipate a move.
	s.antsWalk()

	// Actions in priority order — an ant takes at most one per tick and
	// must not starve because it kept choosing to dig.
	s.antsHungerTick()
	s.antsHungerAct()
	if err := s.applyCommands(); err != nil {
		return fmt.Errorf("tick %d hunger: %w", s.LastTick, err)
	}

	s.antsBirthing()
	if err := s.applyCommands(); err != nil {
		return fmt.Errorf("tick %d birthing: %w", s.LastTick, err)
	}

	s.antsSleep()
	s.antsNesting()
	s.antsNestExpansion()
	if err := s.applyCommands(); err != nil {
		return fmt.Errorf("tick %d nesting: %w", s.LastTick, err)
	}

	// Pheromone pipelines: fade before add so the tag an ant carries
	// reflects the cell it stands on after this tick's movement.
	s.Pheromones.DecayTick()
	s.antsFadePheromoneTags()
	s.antsAddPheromoneTags()
	s.antsRemovePheromoneTags()
	s.antsTunnelAct()
	s.antsChamberAct()
	if err := s.applyCommands(); err != nil {
		return fmt.Errorf("tick %d pheromone act: %w", s.LastTick, err)
	}

	// Default digging and dropping for ants that still hold their action.
	s.antsDig()
	if err := s.applyCommands(); err != nil {
		return fmt.Errorf("tick %d dig: %w", s.LastTick, err)
	}
	s.antsDrop()
	if err := s.applyCommands(); err != nil {
		return fmt.Errorf("tick %d drop: %w", s.LastTick, err)
	}

	s.antsDeath()
	if err := s.applyCommands(); err != nil {
		return fmt.Errorf("tick %d death: %w", s.LastTick, err)
	}

	// Initiative refreshes only after the whole pipeline so nothing an
	// ant did earlier this tick can grant it a second action.
	s.antsInitiative()

	return nil
}

// antsInitiative advances every living ant's initiative timer.
func (s *Simulation) antsInitiative() {
	for _, a := range s.Ants {
		if a.Dead {
			continue
		}
		a.Initiative.TickReset(s.Rng)
	}
}

// AliveCount returns the number of living ants.
func (s *Simulation) AliveCount() int {
	n := 0
	for _, a := range s.Ants {
		if !a.Dead {
			n++
		}
	}
	return n
}

// QueenAsleep reports whether the colony's queen has settled in, the
// story-over condition for a region.
func (s *Simulation) QueenAsleep() bool {
	for _, a := range s.Ants {
		if a.Role == ants.RoleQueen {
			return a.Asleep
		}
	}
	return false
}
