// Package sim owns one simulation's map, rules and occupancy, and applies
// every occupancy change at a single point at the end of each frame. Several
// Worlds can run side by side, e.g. a server and a replay validator.
package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"slices"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/influence"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/pathfind"
	"github.com/1siamBot/rts-pathfinder/engine/rules"
)

var (
	ErrUnknownBuilding  = errors.New("unknown building type")
	ErrUnknownUnit      = errors.New("unknown unit type")
	ErrUnknownActor     = errors.New("unknown actor")
	ErrPlacementBlocked = errors.New("placement blocked")
	ErrNotCloseToBase   = errors.New("not close enough to base")
)

// World is one simulation instance
type World struct {
	Map       *maplib.TileMap
	Rules     *rules.Ruleset
	Buildings *influence.BuildingInfluence
	Units     *influence.UnitInfluence
	Finder    *pathfind.PathFinder
	Players   *core.PlayerManager
	Events    *core.EventBus

	ids    core.IDAllocator
	tick   uint64
	logger *log.Logger

	// lookup only; iterate the sorted id slices instead
	buildings map[core.ActorID]*Building
	units     map[core.ActorID]*Unit
	unitIDs   []core.ActorID

	// changes queued this frame that the committed maps do not show yet
	reserved map[maplib.Cell]reservation  // building footprints
	claimed  map[maplib.Cell]core.ActorID // unit spawns and steps
}

type reservation struct {
	building core.ActorID
	blocking bool
}

// NewWorld creates a world over m. A nil logger discards output.
func NewWorld(m *maplib.TileMap, rs *rules.Ruleset, logger *log.Logger) *World {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w := &World{
		Map:       m,
		Rules:     rs,
		Buildings: influence.NewBuildingInfluence(m.Width, m.Height, rs.InfluenceRadius),
		Units:     influence.NewUnitInfluence(m.Width, m.Height),
		Players:   core.NewPlayerManager(),
		Events:    core.NewEventBus(),
		logger:    logger,
		buildings: make(map[core.ActorID]*Building),
		units:     make(map[core.ActorID]*Unit),
		reserved:  make(map[maplib.Cell]reservation),
		claimed:   make(map[maplib.Cell]core.ActorID),
	}
	w.Finder = pathfind.NewPathFinder(m, rs.Costs, w.Buildings, w.Units)

	w.Events.On(core.EvtBuildingPlaced, w.onBuildingPlaced)
	w.Events.On(core.EvtBuildingRemoved, w.onBuildingRemoved)
	w.Events.On(core.EvtUnitSpawned, w.onUnitSpawned)
	w.Events.On(core.EvtUnitMoved, w.onUnitMoved)
	w.Events.On(core.EvtUnitCrushed, w.onUnitCrushed)
	w.Events.On(core.EvtUnitRemoved, w.onUnitRemoved)
	return w
}

// CurrentTick returns the number of completed ticks
func (w *World) CurrentTick() uint64 { return w.tick }

// Building returns a placed building, or nil
func (w *World) Building(id core.ActorID) *Building { return w.buildings[id] }

// Unit returns a spawned unit, or nil
func (w *World) Unit(id core.ActorID) *Unit { return w.units[id] }

// UnitIDs returns live unit IDs in ascending order
func (w *World) UnitIDs() []core.ActorID { return slices.Clone(w.unitIDs) }

func (w *World) emit(t core.EventType, id core.ActorID, payload any) {
	w.Events.Emit(core.Event{Type: t, Tick: w.tick, Actor: id, Payload: payload})
}

// Tick advances every unit in ID order, then applies the frame's events
func (w *World) Tick() {
	for _, id := range slices.Clone(w.unitIDs) {
		if u := w.units[id]; u != nil {
			w.advance(u)
		}
	}
	w.EndFrame()
	w.tick++
}

// EndFrame applies queued occupancy changes in emission order and returns
// how many events ran
func (w *World) EndFrame() int {
	n := w.Events.Dispatch()
	clear(w.claimed)
	return n
}

// pendingBlock reports whether a building queued this frame blocks units on c
func (w *World) pendingBlock(c maplib.Cell) bool {
	r, ok := w.reserved[c]
	return ok && r.blocking
}

func (w *World) onBuildingPlaced(e core.Event) {
	b := w.buildings[e.Actor]
	if b == nil {
		return
	}
	for _, fc := range b.tiles {
		if w.reserved[fc.Cell].building == b.ID {
			delete(w.reserved, fc.Cell)
		}
	}
	w.Buildings.AddInfluence(b)
	w.logger.Printf("tick %d: placed %s #%d for player %d at %s", e.Tick, b.Info.Name, b.ID, b.Owner, b.Origin)
}

func (w *World) onBuildingRemoved(e core.Event) {
	b := w.buildings[e.Actor]
	if b == nil {
		return
	}
	w.Buildings.RemoveInfluence(b)
	delete(w.buildings, b.ID)
	w.logger.Printf("tick %d: removed %s #%d", e.Tick, b.Info.Name, b.ID)
}

func (w *World) onUnitSpawned(e core.Event) {
	u := w.units[e.Actor]
	if u == nil {
		return
	}
	w.Units.Add(u)
	if i, ok := slices.BinarySearch(w.unitIDs, u.ID); !ok {
		w.unitIDs = slices.Insert(w.unitIDs, i, u.ID)
	}
	w.logger.Printf("tick %d: spawned %s #%d for player %d at %s", e.Tick, u.Info.Name, u.ID, u.Owner, u.From)
}

func (w *World) onUnitMoved(e core.Event) {
	if u := w.units[e.Actor]; u != nil {
		w.Units.Update(u)
	}
}

func (w *World) onUnitCrushed(e core.Event) {
	u := w.units[e.Actor]
	if u == nil {
		return
	}
	w.logger.Printf("tick %d: %s #%d crushed by #%v", e.Tick, u.Info.Name, u.ID, e.Payload)
	w.emit(core.EvtUnitRemoved, u.ID, nil)
}

func (w *World) onUnitRemoved(e core.Event) {
	u := w.units[e.Actor]
	if u == nil {
		return
	}
	w.Units.Remove(u)
	delete(w.units, u.ID)
	if i, ok := slices.BinarySearch(w.unitIDs, u.ID); ok {
		w.unitIDs = slices.Delete(w.unitIDs, i, i+1)
	}
	w.logger.Printf("tick %d: removed %s #%d", e.Tick, u.Info.Name, u.ID)
}

// Digest hashes everything peers must agree on
func (w *World) Digest() string {
	h := sha256.New()
	var tmp [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		h.Write(tmp[:])
	}
	put(w.tick)
	h.Write([]byte(w.Buildings.Digest()))
	h.Write([]byte(w.Units.Digest()))
	for _, id := range w.unitIDs {
		u := w.units[id]
		put(uint64(u.ID))
		put(uint64(int64(u.From.X)))
		put(uint64(int64(u.From.Y)))
		put(uint64(int64(u.To.X)))
		put(uint64(int64(u.To.Y)))
		put(uint64(int64(u.Progress)))
		put(uint64(len(u.Path)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
