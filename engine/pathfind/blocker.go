package pathfind

import (
	"slices"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

// Blocker rejects cells a search may not enter
type Blocker interface {
	Blocks(maplib.Cell) bool
}

// BlockerFunc adapts a plain function
type BlockerFunc func(maplib.Cell) bool

func (f BlockerFunc) Blocks(c maplib.Cell) bool { return f(c) }

// CellSet blocks a fixed list of cells
type CellSet struct {
	cells []maplib.Cell // sorted by (Y, X)
}

// NewCellSet builds a set from cells in any order
func NewCellSet(cells ...maplib.Cell) CellSet {
	s := slices.Clone(cells)
	slices.SortFunc(s, compareCells)
	return CellSet{cells: slices.Compact(s)}
}

func (s CellSet) Blocks(c maplib.Cell) bool {
	_, ok := slices.BinarySearchFunc(s.cells, c, compareCells)
	return ok
}

// Len returns the number of distinct cells
func (s CellSet) Len() int { return len(s.cells) }

func compareCells(a, b maplib.Cell) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

type anyOf []Blocker

func (a anyOf) Blocks(c maplib.Cell) bool {
	for _, b := range a {
		if b.Blocks(c) {
			return true
		}
	}
	return false
}

// AnyOf blocks a cell when any of bs does. Nil entries are dropped; with
// nothing left it returns nil.
func AnyOf(bs ...Blocker) Blocker {
	var out anyOf
	for _, b := range bs {
		switch v := b.(type) {
		case nil:
		case anyOf:
			out = append(out, v...)
		default:
			out = append(out, b)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

// CrushPredicate reports whether a mover of type mt may enter a cell held
// by occupant by crushing it
type CrushPredicate func(occupant core.ActorID, mt core.MovementType) bool
