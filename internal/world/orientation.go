package world

// Orientation is one of eight discrete facings: the four cardinals plus the
// four diagonals, ordered clockwise starting at North. An ant's body lies
// along its facing; its feet rest against the cell perpendicular to the
// facing on the downhill side, which is what lets ants cling to tunnel
// walls and ceilings.
type Orientation uint8

const (
	North Orientation = iota
	Northeast
	East
	Southeast
	South
	Southwest
	West
	Northwest

	// NumOrientations is the count of discrete facings.
	NumOrientations = 8
)

var orientationDeltas = [NumOrientations]Delta{
	North:     {DX: 0, DY: -1},
	Northeast: {DX: 1, DY: -1},
	East:      {DX: 1, DY: 0},
	Southeast: {DX: 1, DY: 1},
	South:     {DX: 0, DY: 1},
	Southwest: {DX: -1, DY: 1},
	West:      {DX: -1, DY: 0},
	Northwest: {DX: -1, DY: -1},
}

var orientationNames = [NumOrientations]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// AllOrientations lists every facing, used for random re-orientation.
var AllOrientations = [NumOrientations]Orientation{
	North, Northeast, East, Southeast, South, Southwest, West, Northwest,
}

// ForwardDelta returns the unit offset of the facing direction.
func (o Orientation) ForwardDelta() Delta {
	return orientationDeltas[o]
}

// clockwise90 and counterclockwise90 are the two perpendiculars.
func (o Orientation) clockwise90() Orientation {
	return Orientation((uint8(o) + 2) % NumOrientations)
}

func (o Orientation) counterclockwise90() Orientation {
	return Orientation((uint8(o) + 6) % NumOrientations)
}

// RotateForward returns the orientation 90° from the facing on the ant's
// feet side: of the two perpendiculars, the one pointing more downward
// wins, with the clockwise perpendicular breaking ties.
func (o Orientation) RotateForward() Orientation {
	cw := o.clockwise90()
	ccw := o.counterclockwise90()
	if orientationDeltas[ccw].DY > orientationDeltas[cw].DY {
		return ccw
	}
	return cw
}

// RotateBackward returns the perpendicular on the ant's back side, the
// opposite of RotateForward.
func (o Orientation) RotateBackward() Orientation {
	if o.RotateForward() == o.clockwise90() {
		return o.counterclockwise90()
	}
	return o.clockwise90()
}

// TurnAround returns the opposite facing.
func (o Orientation) TurnAround() Orientation {
	return Orientation((uint8(o) + 4) % NumOrientations)
}

// AheadPosition returns the cell straight ahead of the facing.
func (o Orientation) AheadPosition(p Position) Position {
	return p.Add(o.ForwardDelta())
}

// AbovePosition returns the cell straight up, regardless of facing.
func (o Orientation) AbovePosition(p Position) Position {
	return p.Above()
}

// BelowPosition returns the cell straight down, regardless of facing.
func (o Orientation) BelowPosition(p Position) Position {
	return p.Below()
}

// UnderFeetPosition returns the cell the ant's feet rest against.
func (o Orientation) UnderFeetPosition(p Position) Position {
	return p.Add(o.RotateForward().ForwardDelta())
}

// IsHorizontal reports whether the facing is due east or west.
func (o Orientation) IsHorizontal() bool {
	return o == East || o == West
}

// IsVertical reports whether the facing is due north or south, i.e. the
// ant's body lies along a wall.
func (o Orientation) IsVertical() bool {
	return o == North || o == South
}

// IsFacingUpward reports whether the facing has any upward component.
func (o Orientation) IsFacingUpward() bool {
	return orientationDeltas[o].DY < 0
}

// IsRightsideUp reports whether the ant's feet point downward.
func (o Orientation) IsRightsideUp() bool {
	return orientationDeltas[o.RotateForward()].DY > 0
}

// String returns the compass name of the facing.
func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return "unknown"
}
