package pathfind

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/influence"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/rules"
)

func cell(x, y int) maplib.Cell { return maplib.Cell{X: x, Y: y} }

// landCosts: everything costs 1 except water, which wheels cannot cross
func landCosts() *rules.TerrainCostTable {
	return rules.NewUniformTable(1).With(core.MoveWheel, maplib.TerrainWater, math.Inf(1))
}

func newFinder(w, h int) *PathFinder {
	return NewPathFinder(maplib.NewTileMap("test", w, h), landCosts(), nil, nil)
}

func wheel() SearchOptions { return SearchOptions{Movement: core.MoveWheel} }

func drain(s *PathSearch) {
	for s.State() != StateTerminal {
		s.Expand()
	}
}

func TestFromPoint_OpenGridIsDiagonal(t *testing.T) {
	pf := newFinder(10, 10)
	path := pf.FromPoint(cell(0, 0), cell(9, 9), wheel())

	require.Len(t, path, 10)
	assert.Equal(t, cell(9, 9), path[0], "goal first")
	assert.Equal(t, cell(0, 0), path[9])
	for i := 1; i < len(path); i++ {
		assert.True(t, path[i].Sub(path[i-1]).IsDiagonal(), "step %d", i)
	}
	assert.InDelta(t, 9*math.Sqrt2, pf.PathCost(path, core.MoveWheel), 1e-9)

	s := pf.NewSearch(SearchOptions{Movement: core.MoveWheel, Heuristic: Octile(cell(9, 9))})
	s.AddInitialCell(cell(0, 0))
	drain(s)
	assert.InDelta(t, 9*math.Sqrt2, s.CellInfo(cell(9, 9)).MinCost, 9*2*LaneBias)
}

func TestFromPoint_ForcedThroughGap(t *testing.T) {
	pf := newFinder(10, 10)
	pf.Map.SetTerrain(0, 5, 9, 5, maplib.TerrainWater)
	pf.Map.SetTerrain(5, 5, 5, 5, maplib.TerrainGrass)

	for _, goal := range []maplib.Cell{cell(9, 9), cell(0, 9)} {
		path := pf.FromPoint(cell(0, 0), goal, wheel())
		require.NotEmpty(t, path, goal.String())
		assert.Contains(t, path, cell(5, 5))
		for _, c := range path {
			if c.Y == 5 {
				assert.Equal(t, cell(5, 5), c)
			}
		}
	}
}

func TestFromPoint_UnreachableGoalIsEmpty(t *testing.T) {
	pf := newFinder(10, 10)
	pf.Map.SetTerrain(4, 4, 6, 6, maplib.TerrainWater)
	pf.Map.SetTerrain(5, 5, 5, 5, maplib.TerrainGrass)

	path := pf.FromPoint(cell(0, 0), cell(5, 5), wheel())
	assert.NotNil(t, path)
	assert.Empty(t, path)

	assert.Empty(t, pf.FromPoint(cell(0, 0), cell(4, 4), wheel()), "impassable goal")
	assert.Empty(t, pf.FromPoint(cell(0, 0), cell(20, 4), wheel()), "off-map goal")
	assert.Empty(t, pf.FromPoint(cell(-3, 0), cell(2, 2), wheel()), "off-map start")
}

func TestFromPoint_StartIsGoal(t *testing.T) {
	pf := newFinder(4, 4)
	assert.Equal(t, []maplib.Cell{cell(2, 2)}, pf.FromPoint(cell(2, 2), cell(2, 2), wheel()))
}

func TestSearch_CostStaysWithinLaneBiasOfOctile(t *testing.T) {
	pf := newFinder(12, 12)
	for sx := 0; sx < 12; sx += 2 {
		for sy := 0; sy < 12; sy += 3 {
			for _, goal := range []maplib.Cell{cell(0, 0), cell(11, 4), cell(6, 11), cell(3, 8)} {
				s := pf.NewSearch(SearchOptions{Movement: core.MoveWheel, Heuristic: Octile(goal)})
				s.AddInitialCell(cell(sx, sy))
				drain(s)
				got := s.CellInfo(goal).MinCost
				path := s.path()
				pf.Release(s)

				steps := float64(len(path) - 1)
				want := octile(sx-goal.X, sy-goal.Y)
				assert.InDelta(t, want, got, 2*LaneBias*steps+1e-9, "(%d,%d)->%s", sx, sy, goal)
			}
		}
	}
}

func TestSearch_IsDeterministic(t *testing.T) {
	build := func() *PathFinder {
		pf := newFinder(16, 16)
		pf.Map.SetTerrain(3, 0, 3, 12, maplib.TerrainWater)
		pf.Map.SetTerrain(9, 4, 9, 15, maplib.TerrainWater)
		pf.Map.SetTerrain(5, 6, 7, 7, maplib.TerrainWater)
		return pf
	}
	run := func(pf *PathFinder) ([]CellInfo, []maplib.Cell) {
		s := pf.NewSearch(SearchOptions{Movement: core.MoveWheel, Heuristic: Octile(cell(15, 2))})
		s.AddInitialCell(cell(0, 0))
		drain(s)
		grid := s.Snapshot()
		path := s.path()
		pf.Release(s)
		return grid, path
	}

	a, b := build(), build()
	gridA, pathA := run(a)
	gridB, pathB := run(b)
	require.NotEmpty(t, pathA)
	assert.Equal(t, gridA, gridB)
	assert.Equal(t, pathA, pathB)

	// a pooled grid from an unrelated search must not leak into the next one
	a.FromPoint(cell(15, 15), cell(0, 15), wheel())
	gridC, pathC := run(a)
	assert.Equal(t, gridA, gridC)
	assert.Equal(t, pathA, pathC)

	// nor may the open list of a search abandoned half way
	half := a.NewSearch(SearchOptions{Movement: core.MoveWheel, Heuristic: Octile(cell(0, 15))})
	half.AddInitialCell(cell(15, 15))
	for i := 0; i < 5; i++ {
		half.Expand()
	}
	a.Release(half)
	gridD, pathD := run(a)
	assert.Equal(t, gridA, gridD)
	assert.Equal(t, pathA, pathD)
}

func TestSearch_ReleasedSearchReadsUnvisited(t *testing.T) {
	pf := newFinder(8, 8)
	s := pf.NewSearch(SearchOptions{Movement: core.MoveWheel, Heuristic: Octile(cell(5, 5))})
	s.AddInitialCell(cell(0, 0))
	path := pf.FindPath(s)
	require.NotEmpty(t, path)

	assert.Equal(t, StateTerminal, s.State())
	info := s.CellInfo(cell(0, 0))
	assert.True(t, math.IsInf(info.MinCost, 1))
	assert.False(t, info.Seen)
	assert.Nil(t, s.Snapshot())
	goal, ok := s.Goal()
	assert.True(t, ok)
	assert.Equal(t, cell(5, 5), goal)

	_, ok = s.Expand()
	assert.False(t, ok)
	pf.Release(s)
}

func TestSearch_MinCostNeverIncreases(t *testing.T) {
	pf := newFinder(8, 8)
	pf.Map.SetTerrain(2, 1, 2, 6, maplib.TerrainWater)
	pf.Map.SetTerrain(5, 2, 5, 7, maplib.TerrainWater)

	s := pf.NewSearch(SearchOptions{Movement: core.MoveWheel, Heuristic: Octile(cell(7, 7))})
	s.AddInitialCell(cell(0, 7))
	prev := s.Snapshot()
	for s.State() != StateTerminal {
		s.Expand()
		next := s.Snapshot()
		for i := range next {
			require.LessOrEqual(t, next[i].MinCost, prev[i].MinCost, "cell %d", i)
			if prev[i].Seen {
				require.Equal(t, prev[i], next[i], "seen cell %d changed", i)
			}
		}
		prev = next
	}
	_, found := s.Goal()
	assert.True(t, found)
}

func TestSearch_StateMachine(t *testing.T) {
	pf := newFinder(5, 5)
	s := pf.NewSearch(SearchOptions{Movement: core.MoveWheel, Heuristic: Octile(cell(4, 0))})
	assert.Equal(t, StateUninitialized, s.State())

	s.AddInitialCell(cell(9, 9))
	assert.Equal(t, StateUninitialized, s.State(), "off-map seed ignored")

	s.AddInitialCell(cell(0, 0))
	assert.Equal(t, StateSeeded, s.State())

	c, ok := s.Expand()
	require.True(t, ok)
	assert.Equal(t, cell(0, 0), c)
	assert.Equal(t, StateExpanding, s.State())
	assert.True(t, s.CellInfo(cell(0, 0)).Seen)

	drain(s)
	goal, found := s.Goal()
	assert.True(t, found)
	assert.Equal(t, cell(4, 0), goal)
	_, ok = s.Expand()
	assert.False(t, ok)
	assert.Equal(t, "terminal", s.State().String())
}

func TestSearch_EmptyQueueTerminates(t *testing.T) {
	pf := newFinder(3, 3)
	s := pf.NewSearch(wheel())
	_, ok := s.Expand()
	assert.False(t, ok)
	assert.Equal(t, StateTerminal, s.State())
	assert.Empty(t, pf.FindPath(s))
}

func TestSearch_TerrainOverrideOpensBridge(t *testing.T) {
	pf := newFinder(7, 7)
	pf.Map.SetTerrain(0, 3, 6, 3, maplib.TerrainWater)
	require.Empty(t, pf.FromPoint(cell(3, 0), cell(3, 6), wheel()))

	pf.Map.SetOverride(cell(1, 3), maplib.TerrainBridge)
	path := pf.FromPoint(cell(3, 0), cell(3, 6), wheel())
	assert.Contains(t, path, cell(1, 3))

	pf.Map.ClearOverride(cell(1, 3))
	assert.Empty(t, pf.FromPoint(cell(3, 0), cell(3, 6), wheel()))
}

func TestSearch_IgnoreTerrain(t *testing.T) {
	pf := newFinder(5, 5)
	pf.Map.SetTerrain(0, 2, 4, 2, maplib.TerrainWater)
	opts := wheel()
	opts.IgnoreTerrain = true
	path := pf.FromPoint(cell(0, 0), cell(0, 4), opts)
	assert.Len(t, path, 5)
}

type wall struct {
	id    core.ActorID
	cells []maplib.FootprintCell
}

func (w wall) ActorID() core.ActorID             { return w.id }
func (w wall) Footprint() []maplib.FootprintCell { return w.cells }

type stander struct {
	id core.ActorID
	at maplib.Cell
}

func (s stander) ActorID() core.ActorID        { return s.id }
func (s stander) OccupiedCells() []maplib.Cell { return []maplib.Cell{s.at} }

func TestSearch_BuildingsBlockUnlessIgnored(t *testing.T) {
	bi := influence.NewBuildingInfluence(6, 6, 4)
	w := wall{id: 7}
	for x := 0; x < 6; x++ {
		w.cells = append(w.cells, maplib.FootprintCell{Cell: cell(x, 2), Blocking: x != 5})
	}
	bi.AddInfluence(w)
	pf := NewPathFinder(maplib.NewTileMap("test", 6, 6), landCosts(), bi, nil)

	path := pf.FromPoint(cell(0, 0), cell(0, 5), wheel())
	require.NotEmpty(t, path)
	assert.Contains(t, path, cell(5, 2), "only the pathable footprint cell is open")

	opts := wheel()
	opts.IgnoreBuilding = 7
	path = pf.FromPoint(cell(0, 0), cell(0, 5), opts)
	assert.Len(t, path, 6)

	opts = wheel()
	opts.IgnoreOccupancy = true
	assert.Len(t, pf.FromPoint(cell(0, 0), cell(0, 5), opts), 6)
}

func TestSearch_UnitsBlockUnlessCrushable(t *testing.T) {
	m := maplib.NewTileMap("test", 5, 5)
	m.SetTerrain(0, 2, 4, 2, maplib.TerrainWater)
	m.SetTerrain(2, 2, 2, 2, maplib.TerrainGrass)
	ui := influence.NewUnitInfluence(5, 5)
	ui.Add(stander{id: 3, at: cell(2, 2)})
	pf := NewPathFinder(m, landCosts(), nil, ui)

	assert.NotEmpty(t, pf.FromPoint(cell(0, 0), cell(4, 4), wheel()), "units ignored without CheckForBlocked")

	opts := wheel()
	opts.CheckForBlocked = true
	assert.Empty(t, pf.FromPoint(cell(0, 0), cell(4, 4), opts))

	var asked []core.ActorID
	opts.Crushable = func(id core.ActorID, mt core.MovementType) bool {
		asked = append(asked, id)
		return mt == core.MoveWheel
	}
	assert.NotEmpty(t, pf.FromPoint(cell(0, 0), cell(4, 4), opts))
	assert.Contains(t, asked, core.ActorID(3))

	opts.Crushable = func(core.ActorID, core.MovementType) bool { return false }
	assert.Empty(t, pf.FromPoint(cell(0, 0), cell(4, 4), opts))
}

func TestSearch_CustomBlocker(t *testing.T) {
	pf := newFinder(5, 5)
	pf.Map.SetTerrain(0, 2, 4, 2, maplib.TerrainWater)
	pf.Map.SetTerrain(2, 2, 2, 2, maplib.TerrainGrass)

	opts := wheel()
	opts.Blocker = NewCellSet(cell(2, 2))
	assert.Empty(t, pf.FromPoint(cell(0, 0), cell(4, 4), opts))

	opts.Blocker = AnyOf(nil, BlockerFunc(func(c maplib.Cell) bool { return c == cell(9, 9) }))
	assert.NotEmpty(t, pf.FromPoint(cell(0, 0), cell(4, 4), opts))
}

func TestFromPoints_NearestSourceWins(t *testing.T) {
	pf := newFinder(10, 10)
	path := pf.FromPoints([]maplib.Cell{cell(0, 0), cell(9, 9)}, cell(8, 8), wheel())
	require.Len(t, path, 2)
	assert.Equal(t, cell(8, 8), path[0])
	assert.Equal(t, cell(9, 9), path[1])
}

func TestFromPointToAny_PicksNearestTarget(t *testing.T) {
	pf := newFinder(10, 10)
	path := pf.FromPointToAny(cell(0, 0), []maplib.Cell{cell(9, 0), cell(0, 3), cell(40, 40)}, wheel())
	require.NotEmpty(t, path)
	assert.Equal(t, cell(0, 3), path[0])

	assert.Empty(t, pf.FromPointToAny(cell(0, 0), nil, wheel()))
}

func TestFromPointToRange_StopsAtRangeEdge(t *testing.T) {
	pf := newFinder(10, 10)
	path := pf.FromPointToRange(cell(0, 0), cell(9, 9), 2, wheel())
	require.NotEmpty(t, path)
	assert.Equal(t, cell(7, 7), path[0])
}

func TestPathCost(t *testing.T) {
	pf := newFinder(5, 5)
	pf.Map.SetTerrain(2, 0, 2, 0, maplib.TerrainWater)
	assert.Equal(t, 0.0, pf.PathCost(nil, core.MoveWheel))
	assert.InDelta(t, 1+math.Sqrt2, pf.PathCost([]maplib.Cell{cell(0, 0), cell(1, 0), cell(2, 1)}, core.MoveWheel), 1e-12)
	assert.True(t, math.IsInf(pf.PathCost([]maplib.Cell{cell(1, 0), cell(2, 0)}, core.MoveWheel), 1))
	assert.True(t, math.IsInf(pf.PathCost([]maplib.Cell{cell(0, 0), cell(3, 3)}, core.MoveWheel), 1))
}

func TestLaneBias_FlipsInReverse(t *testing.T) {
	pf := newFinder(4, 4)
	fwd := pf.NewSearch(wheel())
	rev := pf.NewSearch(SearchOptions{Movement: core.MoveWheel, InReverse: true})
	for _, d := range maplib.Directions {
		c := cell(1, 2)
		assert.Equal(t, -fwd.laneBias(c, d), rev.laneBias(c, d), d.String())
	}
	assert.Equal(t, 0.2, fwd.laneBias(cell(1, 1), cell(1, 1)))
}

func TestHeuristics(t *testing.T) {
	assert.Equal(t, 0.0, Octile(cell(3, 3))(cell(3, 3)))
	assert.InDelta(t, 2*math.Sqrt2+1, Octile(cell(0, 0))(cell(3, -2)), 1e-12)

	near := NearestOctile(cell(0, 0), cell(10, 0))
	assert.Equal(t, 2.0, near(cell(8, 0)))
	assert.True(t, math.IsInf(NearestOctile()(cell(1, 1)), 1))

	in := WithinRange(cell(5, 5), 2)
	assert.Equal(t, 0.0, in(cell(7, 3)))
	assert.Equal(t, 1.0, in(cell(8, 5)))
}

func TestCellInfoGrid_ResetAndWrap(t *testing.T) {
	g := NewCellInfoGrid(3, 3)
	g.Set(cell(1, 1), CellInfo{MinCost: 4, Path: cell(0, 0), Seen: true})
	assert.Equal(t, 4.0, g.Get(cell(1, 1)).MinCost)

	g.Reset()
	info := g.Get(cell(1, 1))
	assert.True(t, math.IsInf(info.MinCost, 1))
	assert.False(t, info.Seen)
	assert.Equal(t, cell(1, 1), info.Path)

	g.Set(cell(2, 2), CellInfo{MinCost: 1})
	g.current = math.MaxUint32
	g.Set(cell(0, 0), CellInfo{MinCost: 2})
	g.Reset()
	assert.Equal(t, uint32(1), g.current)
	assert.True(t, math.IsInf(g.Get(cell(0, 0)).MinCost, 1))
	assert.True(t, math.IsInf(g.Get(cell(2, 2)).MinCost, 1))
}

func TestCellSet(t *testing.T) {
	s := NewCellSet(cell(2, 1), cell(0, 0), cell(2, 1), cell(1, 3))
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Blocks(cell(2, 1)))
	assert.False(t, s.Blocks(cell(1, 2)))

	assert.Nil(t, AnyOf())
	assert.Equal(t, Blocker(s), AnyOf(nil, s))
}
