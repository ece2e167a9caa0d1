// Package world provides the bounded 2D grid, element store, and pheromone
// field. Positions use integer (x, y) coordinates with y growing downward,
// so y=0 is the top of the sky and larger y is deeper underground.
package world

import "fmt"

// Position is a cell address on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position offset by the given delta.
func (p Position) Add(d Delta) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Below returns the cell directly beneath, regardless of orientation.
func (p Position) Below() Position {
	return Position{X: p.X, Y: p.Y + 1}
}

// Above returns the cell directly overhead, regardless of orientation.
func (p Position) Above() Position {
	return Position{X: p.X, Y: p.Y - 1}
}

// ManhattanDistance returns |dx| + |dy| between two positions.
func ManhattanDistance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// String returns "(x, y)".
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Delta is an integer offset between two positions.
type Delta struct {
	DX int
	DY int
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
