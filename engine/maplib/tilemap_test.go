package maplib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileMap_DefaultsToGrass(t *testing.T) {
	tm := NewTileMap("test", 4, 3)
	require.Len(t, tm.Tiles, 12)
	assert.Equal(t, TerrainGrass, tm.TerrainAt(Cell{3, 2}))
	assert.Nil(t, tm.At(4, 0))
	assert.Nil(t, tm.At(0, -1))
}

func TestTileMap_InBounds(t *testing.T) {
	tm := NewTileMap("test", 4, 3)
	assert.True(t, tm.InBounds(Cell{0, 0}))
	assert.True(t, tm.InBounds(Cell{3, 2}))
	assert.False(t, tm.InBounds(Cell{4, 2}))
	assert.False(t, tm.InBounds(Cell{-1, 0}))
	assert.False(t, tm.InBounds(Cell{0, 3}))
}

func TestTileMap_OverrideTakesPrecedence(t *testing.T) {
	tm := NewTileMap("test", 5, 5)
	tm.SetTerrain(0, 2, 4, 2, TerrainWater)
	c := Cell{2, 2}
	require.Equal(t, TerrainWater, tm.EffectiveTerrain(c))

	tm.SetOverride(c, TerrainBridge)
	assert.Equal(t, TerrainBridge, tm.EffectiveTerrain(c))
	assert.Equal(t, TerrainWater, tm.TerrainAt(c), "base terrain must be untouched")
	ov, ok := tm.Override(c)
	assert.True(t, ok)
	assert.Equal(t, TerrainBridge, ov)

	tm.ClearOverride(c)
	assert.Equal(t, TerrainWater, tm.EffectiveTerrain(c))

	// out of map is a no-op
	tm.SetOverride(Cell{9, 9}, TerrainRoad)
	_, ok = tm.Override(Cell{9, 9})
	assert.False(t, ok)
}

func TestTileMap_PlaceOre(t *testing.T) {
	tm := NewTileMap("test", 3, 3)
	tm.PlaceOre(1, 1, 500)
	assert.Equal(t, TerrainOre, tm.TerrainAt(Cell{1, 1}))
	assert.True(t, tm.ContainsResource(Cell{1, 1}))
	assert.False(t, tm.ContainsResource(Cell{0, 0}))
	assert.False(t, tm.ContainsResource(Cell{7, 7}))
}

func TestParseTerrainType_RoundTripsNames(t *testing.T) {
	for tt := TerrainType(0); tt < TerrainCount; tt++ {
		got, ok := ParseTerrainType(tt.String())
		require.True(t, ok, tt.String())
		assert.Equal(t, tt, got)
	}
	_, ok := ParseTerrainType("lava")
	assert.False(t, ok)
}

func TestCell_Helpers(t *testing.T) {
	assert.Equal(t, Cell{3, 1}, Cell{2, 2}.Add(Cell{1, -1}))
	assert.Equal(t, Cell{1, -1}, Cell{3, 1}.Sub(Cell{2, 2}))
	assert.True(t, Cell{1, -1}.IsDiagonal())
	assert.False(t, Cell{0, -1}.IsDiagonal())
	assert.Equal(t, 4, ChebyshevDistance(Cell{0, 0}, Cell{4, -2}))
	assert.Equal(t, "(2,3)", Cell{2, 3}.String())
}
