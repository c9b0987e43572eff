package maplib

import "fmt"

// Cell is an integer grid coordinate
type Cell struct{ X, Y int }

// Add returns c offset by d
func (c Cell) Add(d Cell) Cell { return Cell{c.X + d.X, c.Y + d.Y} }

// Sub returns the offset from o to c
func (c Cell) Sub(o Cell) Cell { return Cell{c.X - o.X, c.Y - o.Y} }

// IsDiagonal reports whether c, read as a unit step, moves on both axes
func (c Cell) IsDiagonal() bool { return c.X != 0 && c.Y != 0 }

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Directions is the fixed neighbour order used by every grid search.
// Changing it changes tie-breaking and therefore path shapes on all peers.
var Directions = [8]Cell{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// ChebyshevDistance is the number of king moves between two cells
func ChebyshevDistance(a, b Cell) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
