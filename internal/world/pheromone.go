package world

// PheromoneKind is the directive a pheromone carries.
type PheromoneKind uint8

const (
	// Tunnel recruits ants to dig forward, extending corridors.
	Tunnel PheromoneKind = iota
	// Chamber recruits ants to hollow out open rooms.
	Chamber
)

var pheromoneNames = [2]string{"tunnel", "chamber"}

// String returns the lowercase kind name.
func (k PheromoneKind) String() string {
	if int(k) < len(pheromoneNames) {
		return pheromoneNames[k]
	}
	return "unknown"
}

// Pheromone is an active signal on one cell. Strength drops by one each
// tick; the signal disappears at zero.
type Pheromone struct {
	Kind     PheromoneKind `json:"kind"`
	Strength int           `json:"strength"`
}

// PheromoneField is the sparse cell→signal map for one region. At most
// one pheromone is active per cell; a later deposit overwrites.
type PheromoneField struct {
	cells map[Position]Pheromone
}

// NewPheromoneField creates an empty field.
func NewPheromoneField() *PheromoneField {
	return &PheromoneField{cells: make(map[Position]Pheromone)}
}

// Deposit places a signal on a cell, overwriting any existing one.
func (f *PheromoneField) Deposit(p Position, k PheromoneKind, strength int) {
	f.cells[p] = Pheromone{Kind: k, Strength: strength}
}

// At returns the active signal on a cell, if any.
func (f *PheromoneField) At(p Position) (Pheromone, bool) {
	ph, ok := f.cells[p]
	return ph, ok
}

// Remove clears the signal on a cell.
func (f *PheromoneField) Remove(p Position) {
	delete(f.cells, p)
}

// DecayTick drops every signal's strength by one and removes expired
// signals. Runs once per simulation tick.
func (f *PheromoneField) DecayTick() {
	for p, ph := range f.cells {
		ph.Strength--
		if ph.Strength <= 0 {
			delete(f.cells, p)
			continue
		}
		f.cells[p] = ph
	}
}

// Len returns the number of active signals.
func (f *PheromoneField) Len() int {
	return len(f.cells)
}

// Cells returns the underlying map for snapshotting. Callers must not
// mutate it.
func (f *PheromoneField) Cells() map[Position]Pheromone {
	return f.cells
}
