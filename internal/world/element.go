package world

// ElementID is a stable identity for an element entity. IDs survive
// save/restore; zero is never issued.
type ElementID uint64

// Kind is the physical substance occupying a cell.
type Kind uint8

const (
	Air  Kind = iota // passable, weightless
	Dirt             // cohesive, holds tunnels open
	Sand             // loose, falls through air
	Food             // loose, edible
)

var kindNames = [4]string{"air", "dirt", "sand", "food"}

// IsLoose reports whether the kind is subject to gravity.
func (k Kind) IsLoose() bool {
	return k == Sand || k == Food
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Element is one substance entity. Exactly one attached element occupies
// every in-bounds cell; a detached element is held in an ant's inventory
// and its Position is stale until it is placed again.
type Element struct {
	ID       ElementID `json:"id"`
	Kind     Kind      `json:"kind"`
	Position Position  `json:"position"`
	Attached bool      `json:"attached"`

	// Stable is cleared by the gravity pass while the element is falling.
	Stable bool `json:"stable"`
	// Exposed is set while at least one cardinal neighbor is Air.
	Exposed bool `json:"exposed"`
}
