package sim

import (
	"fmt"
	"math"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/pathfind"
)

// IsCellBuildable reports whether a footprint cell may go on c. Water-bound
// buildings need water terrain, everything else needs buildable land. Units
// other than ignoreUnit block the cell, including ones spawned or stepping
// onto it this frame.
func (w *World) IsCellBuildable(c maplib.Cell, waterBound bool, ignoreUnit core.ActorID) bool {
	if !w.Map.InBounds(c) {
		return false
	}
	ti := w.Rules.Terrain[w.Map.EffectiveTerrain(c)]
	if waterBound && !ti.Water || !waterBound && !ti.Buildable {
		return false
	}
	if w.Buildings.GetBuildingAt(c) != core.NoActor {
		return false
	}
	if _, ok := w.reserved[c]; ok {
		return false
	}
	if id, ok := w.claimed[c]; ok && id != ignoreUnit {
		return false
	}
	for _, id := range w.Units.GetUnitsAt(c) {
		if id != ignoreUnit {
			return false
		}
	}
	return true
}

// CanPlaceBuilding checks every footprint cell of name placed at origin
func (w *World) CanPlaceBuilding(name string, origin maplib.Cell) error {
	info, ok := w.Rules.Buildings[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownBuilding)
	}
	for _, fc := range info.Tiles(origin) {
		if !w.IsCellBuildable(fc.Cell, info.WaterBound, core.NoActor) {
			return fmt.Errorf("%s at %s: cell %s: %w", name, origin, fc.Cell, ErrPlacementBlocked)
		}
	}
	return nil
}

// IsCloseEnoughToBase reports whether name at origin would sit within its
// adjacency range of one of player's base buildings. The search is seeded
// from the new footprint, ignores terrain and occupancy, and gives up beyond
// Adjacent+1 cells.
func (w *World) IsCloseEnoughToBase(player int, name string, origin maplib.Cell) bool {
	info, ok := w.Rules.Buildings[name]
	if !ok {
		return false
	}
	var base []maplib.Cell
	for _, id := range w.Buildings.Buildings() {
		b := w.buildings[id]
		if b == nil || b.Owner != player || !b.Info.BaseNormal {
			continue
		}
		for _, fc := range b.tiles {
			base = append(base, fc.Cell)
		}
	}
	if len(base) == 0 {
		return false
	}

	footprint := info.Tiles(origin)
	if len(footprint) == 0 {
		return false
	}
	lo, hi := footprint[0].Cell, footprint[0].Cell
	for _, fc := range footprint {
		lo.X, lo.Y = min(lo.X, fc.X), min(lo.Y, fc.Y)
		hi.X, hi.Y = max(hi.X, fc.X), max(hi.Y, fc.Y)
	}
	reach := info.Adjacent + 1
	goals := pathfind.NewCellSet(base...)
	toBase := pathfind.NearestOctile(base...)

	s := w.Finder.NewSearch(pathfind.SearchOptions{
		IgnoreTerrain:   true,
		IgnoreOccupancy: true,
		Heuristic: func(c maplib.Cell) float64 {
			if goals.Blocks(c) {
				return 0
			}
			if c.X < lo.X-reach || c.Y < lo.Y-reach || c.X > hi.X+reach || c.Y > hi.Y+reach {
				return math.Inf(1)
			}
			return toBase(c)
		},
	})
	for _, fc := range footprint {
		s.AddInitialCell(fc.Cell)
	}
	return len(w.Finder.FindPath(s)) > 0
}

// NearestBuildingDistance returns the ring distance from c to the closest
// building, or +Inf beyond the influence radius
func (w *World) NearestBuildingDistance(c maplib.Cell) float64 {
	return w.Buildings.GetDistanceToBuilding(c)
}

// PlaceBuilding validates a player's build order and queues the building.
// It occupies the map from the end of the current frame.
func (w *World) PlaceBuilding(player int, name string, origin maplib.Cell) (core.ActorID, error) {
	if err := w.CanPlaceBuilding(name, origin); err != nil {
		return core.NoActor, err
	}
	if !w.IsCloseEnoughToBase(player, name, origin) {
		return core.NoActor, fmt.Errorf("%s at %s: %w", name, origin, ErrNotCloseToBase)
	}
	return w.addBuilding(player, name, origin), nil
}

// SpawnBuilding places a building without the base proximity check, for
// map setup and initial deploys
func (w *World) SpawnBuilding(player int, name string, origin maplib.Cell) (core.ActorID, error) {
	if err := w.CanPlaceBuilding(name, origin); err != nil {
		return core.NoActor, err
	}
	return w.addBuilding(player, name, origin), nil
}

func (w *World) addBuilding(player int, name string, origin maplib.Cell) core.ActorID {
	info := w.Rules.Buildings[name]
	b := &Building{
		ID:     w.ids.Next(),
		Owner:  player,
		Info:   info,
		Origin: origin,
		tiles:  info.Tiles(origin),
	}
	w.buildings[b.ID] = b
	for _, fc := range b.tiles {
		w.reserved[fc.Cell] = reservation{building: b.ID, blocking: fc.Blocking}
	}
	w.emit(core.EvtBuildingPlaced, b.ID, nil)
	return b.ID
}

// RemoveBuilding queues a building's removal
func (w *World) RemoveBuilding(id core.ActorID) error {
	if w.buildings[id] == nil {
		return fmt.Errorf("building #%d: %w", id, ErrUnknownActor)
	}
	w.emit(core.EvtBuildingRemoved, id, nil)
	return nil
}
