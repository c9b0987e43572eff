package pathfind

import (
	"math"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/influence"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/pqueue"
	"github.com/1siamBot/rts-pathfinder/engine/rules"
)

// PathFinder runs searches against one world's map and occupancy. Buildings
// and Units may be nil for terrain-only queries.
type PathFinder struct {
	Map       *maplib.TileMap
	Costs     *rules.TerrainCostTable
	Buildings *influence.BuildingInfluence
	Units     *influence.UnitInfluence

	pool []scratch
}

// scratch is the reusable memory of one search
type scratch struct {
	grid  *CellInfoGrid
	queue *pqueue.Queue[PathDistance]
}

// NewPathFinder creates a finder over the given world state
func NewPathFinder(m *maplib.TileMap, costs *rules.TerrainCostTable, b *influence.BuildingInfluence, u *influence.UnitInfluence) *PathFinder {
	return &PathFinder{Map: m, Costs: costs, Buildings: b, Units: u}
}

func (pf *PathFinder) acquire() scratch {
	if n := len(pf.pool); n > 0 {
		sc := pf.pool[n-1]
		pf.pool = pf.pool[:n-1]
		sc.grid.Reset()
		sc.queue.Reset()
		return sc
	}
	return scratch{
		grid:  NewCellInfoGrid(pf.Map.Width, pf.Map.Height),
		queue: pqueue.New[PathDistance](),
	}
}

// Release returns the search's grid and open list to the pool. The search
// turns terminal; its CellInfo reads as unvisited afterwards.
func (pf *PathFinder) Release(s *PathSearch) {
	if s.grid == nil {
		return
	}
	pf.pool = append(pf.pool, scratch{grid: s.grid, queue: s.queue})
	s.grid, s.queue = nil, nil
	s.state = StateTerminal
}

// NewSearch starts an unseeded search
func (pf *PathFinder) NewSearch(opts SearchOptions) *PathSearch {
	sc := pf.acquire()
	return &PathSearch{
		pf:    pf,
		opts:  opts,
		grid:  sc.grid,
		queue: sc.queue,
	}
}

// FindPath drains the search and returns the path goal first, ending at the
// seed it grew from. No path yields an empty slice. The search is released.
func (pf *PathFinder) FindPath(s *PathSearch) []maplib.Cell {
	for s.state != StateTerminal {
		s.Expand()
	}
	path := s.path()
	pf.Release(s)
	return path
}

// FromPoint finds a path from one cell to another
func (pf *PathFinder) FromPoint(from, to maplib.Cell, opts SearchOptions) []maplib.Cell {
	return pf.FromPoints([]maplib.Cell{from}, to, opts)
}

// FromPoints finds the cheapest path to `to` from whichever source reaches it first
func (pf *PathFinder) FromPoints(froms []maplib.Cell, to maplib.Cell, opts SearchOptions) []maplib.Cell {
	if !pf.Map.InBounds(to) {
		return []maplib.Cell{}
	}
	if !opts.IgnoreTerrain && !pf.Costs.Passable(opts.Movement, pf.Map.EffectiveTerrain(to)) {
		return []maplib.Cell{}
	}
	opts.Heuristic = Octile(to)
	return pf.run(froms, opts)
}

// FromPointToAny finds a path to the nearest reachable target
func (pf *PathFinder) FromPointToAny(from maplib.Cell, targets []maplib.Cell, opts SearchOptions) []maplib.Cell {
	var goals []maplib.Cell
	for _, t := range targets {
		if pf.Map.InBounds(t) {
			goals = append(goals, t)
		}
	}
	if len(goals) == 0 {
		return []maplib.Cell{}
	}
	opts.Heuristic = NearestOctile(goals...)
	return pf.run([]maplib.Cell{from}, opts)
}

// FromPointToRange finds a path ending within r king moves of to
func (pf *PathFinder) FromPointToRange(from, to maplib.Cell, r int, opts SearchOptions) []maplib.Cell {
	opts.Heuristic = WithinRange(to, r)
	return pf.run([]maplib.Cell{from}, opts)
}

func (pf *PathFinder) run(froms []maplib.Cell, opts SearchOptions) []maplib.Cell {
	s := pf.NewSearch(opts)
	for _, c := range froms {
		s.AddInitialCell(c)
	}
	return pf.FindPath(s)
}

// PathCost sums terrain costs along a path, without lane bias. A step onto
// impassable terrain or between non-adjacent cells makes the cost +Inf.
func (pf *PathFinder) PathCost(path []maplib.Cell, mt core.MovementType) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		d := path[i].Sub(path[i-1])
		if maplib.ChebyshevDistance(path[i], path[i-1]) != 1 {
			return math.Inf(1)
		}
		step := 1.0
		if d.IsDiagonal() {
			step = math.Sqrt2
		}
		total += float64(step * pf.Costs.Cost(mt, pf.Map.EffectiveTerrain(path[i])))
	}
	return total
}
