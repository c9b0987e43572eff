package main

import (
	"math"

	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

// MapSize is the demo map edge length in cells
const MapSize = 64

var startPositions = [2]maplib.Cell{
	{X: 1, Y: 1},
	{X: MapSize - 10, Y: MapSize - 10},
}

// generateDemoMap builds the demo battlefield: a river across the middle
// with a single bridge, forests, ore, cliffs and a road grid
func generateDemoMap() *maplib.TileMap {
	tm := maplib.NewTileMap("Demo Battlefield", MapSize, MapSize)

	// River through the middle
	for x := 0; x < MapSize; x++ {
		y := MapSize/2 + int(3*math.Sin(float64(x)*0.15))
		tm.SetTerrain(x, y-1, x, y+1, maplib.TerrainWater)
	}

	// Bridge deck over whatever the river left at the crossing
	for x := MapSize/2 - 1; x <= MapSize/2+1; x++ {
		for y := MapSize/2 - 4; y <= MapSize/2+4; y++ {
			c := maplib.Cell{X: x, Y: y}
			if tm.TerrainAt(c) == maplib.TerrainWater {
				tm.SetOverride(c, maplib.TerrainBridge)
			}
		}
	}

	forests := [][4]int{
		{5, 5, 12, 10}, {45, 8, 55, 15}, {20, 45, 30, 52},
	}
	for _, f := range forests {
		tm.SetTerrain(f[0], f[1], f[2], f[3], maplib.TerrainForest)
	}

	orePositions := [][2]int{
		{15, 15}, {16, 15}, {15, 16}, {16, 16}, {17, 15},
		{45, 45}, {46, 45}, {45, 46}, {46, 46}, {47, 45},
	}
	for _, pos := range orePositions {
		tm.PlaceOre(pos[0], pos[1], 1000)
	}

	tm.SetTerrain(30, 10, 35, 12, maplib.TerrainCliff)
	tm.SetTerrain(25, 50, 28, 55, maplib.TerrainRock)

	// Roads stop at the river bank; only the bridge crosses
	for x := 0; x < MapSize; x++ {
		tm.SetTerrain(x, MapSize/4, x, MapSize/4, maplib.TerrainRoad)
	}
	for y := 0; y < MapSize; y++ {
		c := maplib.Cell{X: MapSize / 4, Y: y}
		if tm.TerrainAt(c) != maplib.TerrainWater {
			tm.SetTerrain(c.X, c.Y, c.X, c.Y, maplib.TerrainRoad)
		}
	}

	tm.SetTerrain(50, 50, 60, 60, maplib.TerrainSand)
	return tm
}
