package world

import "fmt"

// Grid owns every element entity in one region and keeps a derived
// position→element cache alongside the authoritative element table. All
// mutations go through Place/Swap/DigOut/PlaceDetached/Despawn so the two
// structures can never diverge; CheckConsistency verifies that in tests.
type Grid struct {
	width        int
	height       int
	surfaceLevel int

	// cells is the derived spatial cache, indexed [y][x].
	cells [][]ElementID
	// elements is the authoritative entity table, including detached
	// elements currently carried by ants.
	elements map[ElementID]*Element
	nextID   ElementID
}

// NewGrid creates an empty grid. Every cell must be filled (world
// generation or snapshot restore) before the simulation runs.
func NewGrid(width, height, surfaceLevel int) *Grid {
	cells := make([][]ElementID, height)
	for y := range cells {
		cells[y] = make([]ElementID, width)
	}
	return &Grid{
		width:        width,
		height:       height,
		surfaceLevel: surfaceLevel,
		cells:        cells,
		elements:     make(map[ElementID]*Element),
		nextID:       1,
	}
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// SurfaceLevel returns the y coordinate of the ground surface.
func (g *Grid) SurfaceLevel() int { return g.surfaceLevel }

// IsWithinBounds reports whether the position addresses a cell.
func (g *Grid) IsWithinBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// IsAboveground reports whether the position is at or above the surface.
func (g *Grid) IsAboveground(p Position) bool {
	return !g.IsUnderground(p)
}

// IsUnderground reports whether the position is below the surface.
func (g *Grid) IsUnderground(p Position) bool {
	return p.Y > g.surfaceLevel
}

// ElementIDAt returns the occupying element's ID, or false when the
// position is out of bounds or the cell has not been filled yet.
func (g *Grid) ElementIDAt(p Position) (ElementID, bool) {
	if !g.IsWithinBounds(p) {
		return 0, false
	}
	id := g.cells[p.Y][p.X]
	if id == 0 {
		return 0, false
	}
	return id, true
}

// ElementAt returns the element occupying the cell. A filled grid must
// have exactly one element per in-bounds cell, so a missing element is an
// invariant violation, not an empty result.
func (g *Grid) ElementAt(p Position) (*Element, error) {
	if !g.IsWithinBounds(p) {
		return nil, fmt.Errorf("element lookup out of bounds at %s", p)
	}
	id := g.cells[p.Y][p.X]
	el, ok := g.elements[id]
	if id == 0 || !ok {
		return nil, fmt.Errorf("grid corrupt: no element at %s", p)
	}
	return el, nil
}

// Element returns the element with the given ID, attached or detached.
func (g *Grid) Element(id ElementID) (*Element, bool) {
	el, ok := g.elements[id]
	return el, ok
}

// IsKindAt reports whether the cell holds an element of the given kind.
// Out-of-bounds and unfilled cells report false for every kind.
func (g *Grid) IsKindAt(p Position, k Kind) bool {
	if !g.IsWithinBounds(p) {
		return false
	}
	el, ok := g.elements[g.cells[p.Y][p.X]]
	return ok && el.Kind == k
}

// Place creates a new element of the given kind at an empty cell and
// returns its ID. Used during world generation only; replacing an
// occupied cell is an invariant violation.
func (g *Grid) Place(k Kind, p Position) (ElementID, error) {
	if !g.IsWithinBounds(p) {
		return 0, fmt.Errorf("place out of bounds at %s", p)
	}
	if g.cells[p.Y][p.X] != 0 {
		return 0, fmt.Errorf("place would overwrite occupied cell %s", p)
	}
	id := g.nextID
	g.nextID++
	g.elements[id] = &Element{ID: id, Kind: k, Position: p, Attached: true, Stable: true}
	g.cells[p.Y][p.X] = id
	return id, nil
}

// Swap exchanges the occupants of two cells. Falling is a swap between a
// loose element and the air beneath it, which preserves the
// one-element-per-cell invariant by construction.
func (g *Grid) Swap(a, b Position) error {
	ea, err := g.ElementAt(a)
	if err != nil {
		return err
	}
	eb, err := g.ElementAt(b)
	if err != nil {
		return err
	}
	g.cells[a.Y][a.X], g.cells[b.Y][b.X] = eb.ID, ea.ID
	ea.Position, eb.Position = b, a
	return nil
}

// DigOut detaches the element at the cell and fills the cell with fresh
// air. The detached element is returned to the caller, never silently
// dropped; the caller moves it into an ant's inventory or despawns it.
func (g *Grid) DigOut(p Position) (ElementID, error) {
	el, err := g.ElementAt(p)
	if err != nil {
		return 0, err
	}
	el.Attached = false

	air := g.nextID
	g.nextID++
	g.elements[air] = &Element{ID: air, Kind: Air, Position: p, Attached: true, Stable: true}
	g.cells[p.Y][p.X] = air
	return el.ID, nil
}

// PlaceDetached attaches a detached element at a cell that currently
// holds air, despawning the displaced air element. Placing over non-air
// is a contract violation.
func (g *Grid) PlaceDetached(id ElementID, p Position) error {
	el, ok := g.elements[id]
	if !ok {
		return fmt.Errorf("place of unknown element %d", id)
	}
	if el.Attached {
		return fmt.Errorf("place of element %d which is still attached at %s", id, el.Position)
	}
	occupant, err := g.ElementAt(p)
	if err != nil {
		return err
	}
	if occupant.Kind != Air {
		return fmt.Errorf("place target %s holds %s, not air", p, occupant.Kind)
	}
	delete(g.elements, occupant.ID)
	el.Position = p
	el.Attached = true
	el.Stable = true
	g.cells[p.Y][p.X] = id
	return nil
}

// Despawn removes a detached element from the world, e.g. when it is
// eaten or disposed alongside a dead ant. Despawning an attached element
// would leave an empty cell and is rejected.
func (g *Grid) Despawn(id ElementID) error {
	el, ok := g.elements[id]
	if !ok {
		return fmt.Errorf("despawn of unknown element %d", id)
	}
	if el.Attached {
		return fmt.Errorf("despawn of attached element %d at %s", id, el.Position)
	}
	delete(g.elements, id)
	return nil
}

// Mutate transmutes an attached element in place, e.g. compacting deep
// sand into dirt.
func (g *Grid) Mutate(p Position, k Kind) error {
	el, err := g.ElementAt(p)
	if err != nil {
		return err
	}
	el.Kind = k
	return nil
}

// RefreshExposure recomputes the exposure flag of every attached element:
// exposed means at least one cardinal neighbor is air (or out of bounds,
// for edge cells open to the sky).
func (g *Grid) RefreshExposure() {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			el, ok := g.elements[g.cells[y][x]]
			if !ok {
				continue
			}
			el.Exposed = g.isExposed(Position{X: x, Y: y})
		}
	}
}

func (g *Grid) isExposed(p Position) bool {
	for _, n := range [4]Position{p.Above(), p.Below(), {X: p.X - 1, Y: p.Y}, {X: p.X + 1, Y: p.Y}} {
		if !g.IsWithinBounds(n) {
			continue
		}
		if g.IsKindAt(n, Air) {
			return true
		}
	}
	return false
}

// RestoreElement reinserts an element with its original ID during
// snapshot restore, keeping the ID sequence ahead of every restored ID.
func (g *Grid) RestoreElement(el Element) error {
	if _, exists := g.elements[el.ID]; exists {
		return fmt.Errorf("restore of duplicate element %d", el.ID)
	}
	copied := el
	g.elements[el.ID] = &copied
	if el.Attached {
		if !g.IsWithinBounds(el.Position) {
			return fmt.Errorf("restore of element %d out of bounds at %s", el.ID, el.Position)
		}
		if g.cells[el.Position.Y][el.Position.X] != 0 {
			return fmt.Errorf("restore would overwrite occupied cell %s", el.Position)
		}
		g.cells[el.Position.Y][el.Position.X] = el.ID
	}
	if el.ID >= g.nextID {
		g.nextID = el.ID + 1
	}
	return nil
}

// Elements returns the authoritative element table. Callers must not
// mutate entries; iteration order is undefined, so deterministic code
// sorts by ID first.
func (g *Grid) Elements() map[ElementID]*Element {
	return g.elements
}

// CheckConsistency verifies that the spatial cache and the element table
// agree: every in-bounds cell holds exactly one attached element whose
// recorded position matches, and every attached element is indexed at its
// position. Tests call this after every mutating operation.
func (g *Grid) CheckConsistency() error {
	attached := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Position{X: x, Y: y}
			id := g.cells[y][x]
			if id == 0 {
				return fmt.Errorf("cell %s is empty", p)
			}
			el, ok := g.elements[id]
			if !ok {
				return fmt.Errorf("cell %s references unknown element %d", p, id)
			}
			if !el.Attached {
				return fmt.Errorf("cell %s references detached element %d", p, id)
			}
			if el.Position != p {
				return fmt.Errorf("element %d indexed at %s but recorded at %s", id, p, el.Position)
			}
			attached++
		}
	}
	for id, el := range g.elements {
		if el.Attached {
			if got := g.cells[el.Position.Y][el.Position.X]; got != id {
				return fmt.Errorf("attached element %d not indexed at %s", id, el.Position)
			}
		}
	}
	return nil
}
