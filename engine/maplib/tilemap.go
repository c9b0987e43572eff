package maplib

import "fmt"

// TerrainType defines the terrain of a tile
type TerrainType uint8

const (
	TerrainGrass TerrainType = iota
	TerrainDirt
	TerrainSand
	TerrainWater
	TerrainDeepWater
	TerrainRock
	TerrainCliff
	TerrainRoad
	TerrainBridge
	TerrainOre
	TerrainGem
	TerrainSnow
	TerrainUrban
	TerrainForest

	// TerrainCount is the number of terrain types; sizes per-terrain tables
	TerrainCount
)

var terrainNames = [TerrainCount]string{
	"grass", "dirt", "sand", "water", "deep_water", "rock", "cliff",
	"road", "bridge", "ore", "gem", "snow", "urban", "forest",
}

func (t TerrainType) String() string {
	if t < TerrainCount {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain(%d)", uint8(t))
}

// ParseTerrainType maps a rules key like "deep_water" to its terrain type
func ParseTerrainType(name string) (TerrainType, bool) {
	for i, n := range terrainNames {
		if n == name {
			return TerrainType(i), true
		}
	}
	return 0, false
}

// Tile represents a single map tile
type Tile struct {
	Terrain   TerrainType
	OreAmount int // resource amount (0 = none)
}

// TileMap represents the game map
type TileMap struct {
	Name   string
	Width  int
	Height int
	Tiles  []Tile

	// Runtime terrain overrides (bridges). overridden[i] marks an active entry.
	override   []TerrainType
	overridden []bool
}

// NewTileMap creates a new map filled with grass
func NewTileMap(name string, width, height int) *TileMap {
	tm := &TileMap{
		Name:       name,
		Width:      width,
		Height:     height,
		Tiles:      make([]Tile, width*height),
		override:   make([]TerrainType, width*height),
		overridden: make([]bool, width*height),
	}
	for i := range tm.Tiles {
		tm.Tiles[i] = Tile{Terrain: TerrainGrass}
	}
	return tm
}

// At returns a pointer to the tile at (x, y)
func (tm *TileMap) At(x, y int) *Tile {
	if x < 0 || y < 0 || x >= tm.Width || y >= tm.Height {
		return nil
	}
	return &tm.Tiles[y*tm.Width+x]
}

// InBounds checks if a cell is within map bounds
func (tm *TileMap) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < tm.Width && c.Y < tm.Height
}

// Index returns the row-major index of an in-bounds cell
func (tm *TileMap) Index(c Cell) int {
	return c.Y*tm.Width + c.X
}

// TerrainAt returns the base terrain of a cell, ignoring overrides
func (tm *TileMap) TerrainAt(c Cell) TerrainType {
	return tm.Tiles[tm.Index(c)].Terrain
}

// EffectiveTerrain returns the override terrain if one is active, else the base terrain
func (tm *TileMap) EffectiveTerrain(c Cell) TerrainType {
	i := tm.Index(c)
	if tm.overridden[i] {
		return tm.override[i]
	}
	return tm.Tiles[i].Terrain
}

// SetOverride installs a terrain override on a cell (e.g. a bridge deck over water)
func (tm *TileMap) SetOverride(c Cell, t TerrainType) {
	if !tm.InBounds(c) {
		return
	}
	i := tm.Index(c)
	tm.override[i] = t
	tm.overridden[i] = true
}

// ClearOverride removes a terrain override, e.g. when a bridge is destroyed
func (tm *TileMap) ClearOverride(c Cell) {
	if !tm.InBounds(c) {
		return
	}
	tm.overridden[tm.Index(c)] = false
}

// Override returns the active override of a cell
func (tm *TileMap) Override(c Cell) (TerrainType, bool) {
	if !tm.InBounds(c) {
		return 0, false
	}
	i := tm.Index(c)
	return tm.override[i], tm.overridden[i]
}

// SetTerrain sets terrain for a rectangular region
func (tm *TileMap) SetTerrain(x1, y1, x2, y2 int, terrain TerrainType) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if t := tm.At(x, y); t != nil {
				t.Terrain = terrain
			}
		}
	}
}

// PlaceOre places ore resources at a position
func (tm *TileMap) PlaceOre(x, y, amount int) {
	if t := tm.At(x, y); t != nil {
		t.Terrain = TerrainOre
		t.OreAmount = amount
	}
}

// ContainsResource reports whether a cell holds harvestable ore or gems
func (tm *TileMap) ContainsResource(c Cell) bool {
	if !tm.InBounds(c) {
		return false
	}
	return tm.Tiles[tm.Index(c)].OreAmount > 0
}
