// Package ants provides the ant data model: position, facing, inventory,
// initiative, role, and the behavioral tags the engine's systems drive.
package ants

import (
	"github.com/mdwalters/symbiants/internal/world"
)

// AntID is a unique identifier for an ant. IDs survive save/restore.
type AntID uint64

// Role distinguishes the colony's reproductive lead from workers.
type Role uint8

const (
	RoleWorker Role = iota
	RoleQueen
)

var roleNames = [2]string{"worker", "queen"}

// String returns the lowercase role name.
func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Hunger thresholds on the 0–100 scale.
const (
	HungerMax      = 100.0
	HungryAt       = 50.0
	StarvingAt     = 87.5
	BirthingDone   = 100.0
)

// Ant is the core entity. Behavioral tags are flat optional fields rather
// than a separate registry; systems filter over them directly.
type Ant struct {
	ID          AntID             `json:"id"`
	Role        Role              `json:"role"`
	Position    world.Position    `json:"position"`
	Orientation world.Orientation `json:"orientation"`

	// Inventory holds at most one detached element; zero means empty.
	Inventory world.ElementID `json:"inventory,omitempty"`

	Initiative Initiative `json:"initiative"`

	// Hunger grows from 0 to 100; the ant starves at the top of the scale.
	Hunger float64 `json:"hunger"`

	Asleep bool `json:"asleep,omitempty"`
	Dead   bool `json:"dead,omitempty"`

	// Birthing progress in percent; meaningful only while IsBirthing.
	IsBirthing bool    `json:"is_birthing,omitempty"`
	Birthing   float64 `json:"birthing,omitempty"`

	// NestTarget is the founded nest position, when known. Queen only.
	NestTarget *world.Position `json:"nest_target,omitempty"`

	// Pheromone-guided digging countdowns. The tag is present while the
	// flag is set; the step counter may reach zero before removal runs.
	IsTunneling    bool `json:"is_tunneling,omitempty"`
	TunnelingSteps int  `json:"tunneling_steps,omitempty"`

	IsChambering    bool `json:"is_chambering,omitempty"`
	ChamberingSteps int  `json:"chambering_steps,omitempty"`

	BornTick uint64 `json:"born_tick"`

	// MovedThisTick is transient bookkeeping for the pheromone pipelines;
	// it is reset at the start of every tick and never serialized.
	MovedThisTick bool `json:"-"`
}

// IsHungry reports whether the ant should prioritize finding food.
func (a *Ant) IsHungry() bool {
	return a.Hunger >= HungryAt
}

// IsStarving reports whether the ant eats anything edible in reach.
func (a *Ant) IsStarving() bool {
	return a.Hunger >= StarvingAt
}

// HasInventory reports whether the ant carries an element.
func (a *Ant) HasInventory() bool {
	return a.Inventory != 0
}
