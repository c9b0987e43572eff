package pathfind

import (
	"math"

	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

// CellInfo is the per-search state of one cell
type CellInfo struct {
	MinCost float64     // cheapest known cost from any seed
	Path    maplib.Cell // back pointer; a seed points at itself
	Seen    bool        // expanded, never revisited
}

// PathDistance is one open-list entry: the cost so far plus the heuristic
type PathDistance struct {
	EstimatedTotal float64
	Location       maplib.Cell
}

// CellInfoGrid is a map-sized scratch buffer reused across searches.
// A cell whose generation is stale reads as unvisited, so Reset is O(1).
type CellInfoGrid struct {
	width, height int
	cells         []CellInfo
	gen           []uint32
	current       uint32
}

// NewCellInfoGrid allocates a grid for a width x height map
func NewCellInfoGrid(width, height int) *CellInfoGrid {
	return &CellInfoGrid{
		width:   width,
		height:  height,
		cells:   make([]CellInfo, width*height),
		gen:     make([]uint32, width*height),
		current: 1,
	}
}

// Reset forgets every cell
func (g *CellInfoGrid) Reset() {
	g.current++
	if g.current == 0 {
		clear(g.gen)
		g.current = 1
	}
}

// Get returns the info for c. Callers must pass an in-map cell.
func (g *CellInfoGrid) Get(c maplib.Cell) CellInfo {
	idx := c.Y*g.width + c.X
	if g.gen[idx] != g.current {
		return CellInfo{MinCost: math.Inf(1), Path: c}
	}
	return g.cells[idx]
}

// Set stores the info for c
func (g *CellInfoGrid) Set(c maplib.Cell, info CellInfo) {
	idx := c.Y*g.width + c.X
	g.cells[idx] = info
	g.gen[idx] = g.current
}

// Snapshot copies the visible grid in row-major order
func (g *CellInfoGrid) Snapshot() []CellInfo {
	out := make([]CellInfo, len(g.cells))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			out[y*g.width+x] = g.Get(maplib.Cell{X: x, Y: y})
		}
	}
	return out
}
