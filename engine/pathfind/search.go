// Package pathfind runs deterministic A* over the tile grid. Every peer in a
// lockstep game must produce the same paths bit for bit, so the search visits
// neighbours in maplib.Directions order, breaks queue ties by insertion order,
// and never iterates an unordered collection.
package pathfind

import (
	"math"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/pqueue"
)

// LaneBias is added or subtracted per moving axis so that crowds settle into
// alternating lanes instead of zig-zagging
const LaneBias = 0.1

// State is the lifecycle of a PathSearch
type State int

const (
	StateUninitialized State = iota
	StateSeeded
	StateExpanding
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSeeded:
		return "seeded"
	case StateExpanding:
		return "expanding"
	case StateTerminal:
		return "terminal"
	}
	return "unknown"
}

// SearchOptions configure one search
type SearchOptions struct {
	Movement  core.MovementType
	Heuristic Heuristic // nil makes every seed a goal
	Blocker   Blocker   // optional extra rejection

	// IgnoreBuilding lets the search enter this building's blocking cells,
	// for a unit leaving or entering it
	IgnoreBuilding core.ActorID

	// CheckForBlocked rejects cells held by units that Crushable does not allow
	CheckForBlocked bool
	Crushable       CrushPredicate

	IgnoreTerrain   bool // every in-map cell costs 1
	IgnoreOccupancy bool // skip building and unit checks entirely
	InReverse       bool // search runs goal to start; flips the lane parity
}

// PathSearch is a resumable A* search. Create one with PathFinder.NewSearch.
type PathSearch struct {
	pf    *PathFinder
	opts  SearchOptions
	grid  *CellInfoGrid
	queue *pqueue.Queue[PathDistance]
	state State
	goal  maplib.Cell
	found bool
}

// State returns the current lifecycle state
func (s *PathSearch) State() State { return s.state }

// Options returns the options the search was built with
func (s *PathSearch) Options() SearchOptions { return s.opts }

// Goal returns the goal cell once one has been popped
func (s *PathSearch) Goal() (maplib.Cell, bool) { return s.goal, s.found }

// CellInfo returns the search state of c. Off-map cells and every cell of
// a released search read as unvisited.
func (s *PathSearch) CellInfo(c maplib.Cell) CellInfo {
	if s.grid == nil || !s.pf.Map.InBounds(c) {
		return CellInfo{MinCost: math.Inf(1), Path: c}
	}
	return s.grid.Get(c)
}

// Snapshot copies the whole CellInfo grid; nil once released
func (s *PathSearch) Snapshot() []CellInfo {
	if s.grid == nil {
		return nil
	}
	return s.grid.Snapshot()
}

func (s *PathSearch) heuristic(c maplib.Cell) float64 {
	if s.opts.Heuristic == nil {
		return 0
	}
	return s.opts.Heuristic(c)
}

// AddInitialCell seeds c at cost 0. Out-of-map cells are ignored.
func (s *PathSearch) AddInitialCell(c maplib.Cell) {
	if s.state == StateTerminal || !s.pf.Map.InBounds(c) {
		return
	}
	if info := s.grid.Get(c); info.MinCost == 0 {
		return
	}
	s.grid.Set(c, CellInfo{MinCost: 0, Path: c})
	s.queue.Push(openEntry(0, s.heuristic(c), c))
	if s.state == StateUninitialized {
		s.state = StateSeeded
	}
}

// Expand pops the cheapest open cell and relaxes its neighbours. It returns
// false once the queue is exhausted. Popping a goal cell ends the search
// without expanding it.
func (s *PathSearch) Expand() (maplib.Cell, bool) {
	if s.state == StateTerminal {
		return maplib.Cell{}, false
	}
	for !s.queue.Empty() {
		pd, _ := s.queue.Pop()
		c := pd.Location
		info := s.grid.Get(c)
		if info.Seen {
			continue
		}
		info.Seen = true
		s.grid.Set(c, info)
		s.state = StateExpanding

		if s.heuristic(c) == 0 {
			s.goal, s.found = c, true
			s.state = StateTerminal
			return c, true
		}
		for _, d := range maplib.Directions {
			s.relax(c, info.MinCost, d)
		}
		return c, true
	}
	s.state = StateTerminal
	return maplib.Cell{}, false
}

func (s *PathSearch) relax(from maplib.Cell, base float64, d maplib.Cell) {
	n := from.Add(d)
	m := s.pf.Map
	if !m.InBounds(n) {
		return
	}
	info := s.grid.Get(n)
	if info.Seen {
		return
	}

	cost := 1.0
	if !s.opts.IgnoreTerrain {
		cost = s.pf.Costs.Cost(s.opts.Movement, m.EffectiveTerrain(n))
	}
	if math.IsInf(cost, 1) {
		return
	}
	if !s.opts.IgnoreOccupancy && s.occupied(n) {
		return
	}
	if s.opts.Blocker != nil && s.opts.Blocker.Blocks(n) {
		return
	}
	h := s.heuristic(n)
	if math.IsInf(h, 1) {
		return
	}

	step := 1.0
	if d.IsDiagonal() {
		step = math.Sqrt2
	}
	edge := float64(step * cost)
	edge += s.laneBias(n, d)

	total := base + edge
	if total < info.MinCost {
		s.grid.Set(n, CellInfo{MinCost: total, Path: from})
		s.queue.Push(openEntry(total, h, n))
	}
}

// openEntry is the queue priority and element for c reached at cost g
func openEntry(g, h float64, c maplib.Cell) (float64, PathDistance) {
	pd := PathDistance{EstimatedTotal: float64(g + h), Location: c}
	return pd.EstimatedTotal, pd
}

func (s *PathSearch) occupied(c maplib.Cell) bool {
	if b := s.pf.Buildings; b != nil && !b.CanMoveHere(c) && b.GetBuildingAt(c) != s.opts.IgnoreBuilding {
		return true
	}
	if !s.opts.CheckForBlocked || s.pf.Units == nil {
		return false
	}
	for _, id := range s.pf.Units.GetUnitsAt(c) {
		if s.opts.Crushable == nil || !s.opts.Crushable(id, s.opts.Movement) {
			return true
		}
	}
	return false
}

// laneBias favours one travel direction per row and column parity
func (s *PathSearch) laneBias(c, d maplib.Cell) float64 {
	rev := 0
	if s.opts.InReverse {
		rev = 1
	}
	ux := (c.X + rev) & 1
	uy := (c.Y + rev) & 1

	var bias float64
	if d.Y != 0 {
		if (ux == 0 && d.Y < 0) || (ux == 1 && d.Y > 0) {
			bias += LaneBias
		} else {
			bias -= LaneBias
		}
	}
	if d.X != 0 {
		if (uy == 0 && d.X < 0) || (uy == 1 && d.X > 0) {
			bias += LaneBias
		} else {
			bias -= LaneBias
		}
	}
	return bias
}

// path follows back pointers from the goal. The result is goal first.
func (s *PathSearch) path() []maplib.Cell {
	if !s.found {
		return []maplib.Cell{}
	}
	out := []maplib.Cell{s.goal}
	cur := s.goal
	for {
		prev := s.grid.Get(cur).Path
		if prev == cur {
			return out
		}
		out = append(out, prev)
		cur = prev
	}
}
