package sim

import (
	"fmt"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/pathfind"
)

// SpawnUnit queues a unit of type name on cell c
func (w *World) SpawnUnit(player int, name string, c maplib.Cell) (core.ActorID, error) {
	info, ok := w.Rules.Units[name]
	if !ok {
		return core.NoActor, fmt.Errorf("%q: %w", name, ErrUnknownUnit)
	}
	if !w.Map.InBounds(c) ||
		!w.Rules.Costs.Passable(info.Movement, w.Map.EffectiveTerrain(c)) ||
		!w.Buildings.CanMoveHere(c) ||
		w.pendingBlock(c) {
		return core.NoActor, fmt.Errorf("%s at %s: %w", name, c, ErrPlacementBlocked)
	}
	u := &Unit{ID: w.ids.Next(), Owner: player, Info: info, From: c, To: c, Dest: c}
	w.units[u.ID] = u
	w.claimed[c] = u.ID
	w.emit(core.EvtUnitSpawned, u.ID, nil)
	return u.ID, nil
}

// RemoveUnit queues a unit's removal
func (w *World) RemoveUnit(id core.ActorID) error {
	if w.units[id] == nil {
		return fmt.Errorf("unit #%d: %w", id, ErrUnknownActor)
	}
	w.emit(core.EvtUnitRemoved, id, nil)
	return nil
}

// CrushPredicate decides which occupants mover may drive over. Allies are
// never crushed; enemies only when their CrushableBy mask allows the
// mover's movement type. The mover never blocks itself.
func (w *World) CrushPredicate(mover *Unit) pathfind.CrushPredicate {
	return func(occupant core.ActorID, mt core.MovementType) bool {
		if occupant == mover.ID {
			return true
		}
		o := w.units[occupant]
		if o == nil {
			return true
		}
		if w.Players.AreAllies(o.Owner, mover.Owner) {
			return false
		}
		return o.Info.CrushableBy.Has(mt)
	}
}

func (w *World) moveOptions(u *Unit) pathfind.SearchOptions {
	return pathfind.SearchOptions{
		Movement:        u.Info.Movement,
		CheckForBlocked: true,
		Crushable:       w.CrushPredicate(u),
	}
}

// OrderMove paths unit id toward dest. It reports false when no path exists,
// in which case the unit keeps its current orders.
func (w *World) OrderMove(id core.ActorID, dest maplib.Cell) (bool, error) {
	u := w.units[id]
	if u == nil {
		return false, fmt.Errorf("unit #%d: %w", id, ErrUnknownActor)
	}
	path := w.Finder.FromPoint(u.To, dest, w.moveOptions(u))
	if len(path) == 0 {
		return false, nil
	}
	u.Dest = dest
	u.Path = path[:len(path)-1] // drop the start cell
	u.waited = 0
	return true, nil
}

// canEnter checks the next step against last frame's occupancy and the
// buildings queued this frame
func (w *World) canEnter(u *Unit, c maplib.Cell) bool {
	if !w.Rules.Costs.Passable(u.Info.Movement, w.Map.EffectiveTerrain(c)) ||
		!w.Buildings.CanMoveHere(c) || w.pendingBlock(c) {
		return false
	}
	crush := w.CrushPredicate(u)
	for _, id := range w.Units.GetUnitsAt(c) {
		if !crush(id, u.Info.Movement) {
			return false
		}
	}
	return true
}

// advance moves u by one tick. A unit whose next cell is blocked waits one
// tick, then searches again from where it stands.
func (w *World) advance(u *Unit) {
	if u.InTransit() {
		u.Progress += u.Info.Speed
		if u.Progress >= u.stepLength() {
			u.From = u.To
			u.Progress = 0
			w.emit(core.EvtUnitMoved, u.ID, nil)
		}
		return
	}
	if len(u.Path) == 0 {
		return
	}

	next := u.Path[len(u.Path)-1]
	if !w.canEnter(u, next) {
		u.waited++
		if u.waited < 2 {
			return
		}
		u.waited = 0
		path := w.Finder.FromPoint(u.From, u.Dest, w.moveOptions(u))
		if len(path) == 0 {
			w.logger.Printf("tick %d: %s #%d has no path to %s", w.tick, u.Info.Name, u.ID, u.Dest)
			u.Path = nil
			return
		}
		u.Path = path[:len(path)-1]
		return
	}

	u.waited = 0
	u.Path = u.Path[:len(u.Path)-1]
	u.To = next
	u.Progress = 0
	w.claimed[next] = u.ID
	for _, id := range w.Units.GetUnitsAt(next) {
		if id != u.ID {
			w.emit(core.EvtUnitCrushed, id, u.ID)
		}
	}
	w.emit(core.EvtUnitMoved, u.ID, nil)
}
