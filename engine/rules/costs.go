package rules

import (
	"math"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

// TerrainCostTable maps (movement type, terrain type) to a traversal cost.
// It is never written after Parse returns, so any number of searches may
// read it at once.
type TerrainCostTable struct {
	costs [core.MovementCount][maplib.TerrainCount]float64
}

func newImpassableTable() *TerrainCostTable {
	t := &TerrainCostTable{}
	for mt := range t.costs {
		for tt := range t.costs[mt] {
			t.costs[mt][tt] = math.Inf(1)
		}
	}
	return t
}

// NewUniformTable returns a table where every movement type crosses every terrain at cost
func NewUniformTable(cost float64) *TerrainCostTable {
	t := &TerrainCostTable{}
	for mt := range t.costs {
		for tt := range t.costs[mt] {
			t.costs[mt][tt] = cost
		}
	}
	return t
}

// Cost returns the cost for mt to enter terrain tt; +Inf means impassable
func (t *TerrainCostTable) Cost(mt core.MovementType, tt maplib.TerrainType) float64 {
	if mt >= core.MovementCount || tt >= maplib.TerrainCount {
		return math.Inf(1)
	}
	return t.costs[mt][tt]
}

// With returns a copy of the table with one entry replaced
func (t *TerrainCostTable) With(mt core.MovementType, tt maplib.TerrainType, cost float64) *TerrainCostTable {
	c := *t
	c.costs[mt][tt] = cost
	return &c
}

// Passable reports whether mt can enter tt at all
func (t *TerrainCostTable) Passable(mt core.MovementType, tt maplib.TerrainType) bool {
	return !math.IsInf(t.Cost(mt, tt), 1)
}
