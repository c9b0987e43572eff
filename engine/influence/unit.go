package influence

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

// Occupant is a unit that stands on one cell, or two while crossing between them
type Occupant interface {
	ActorID() core.ActorID
	OccupiedCells() []maplib.Cell
}

// UnitInfluence maps each cell to the units standing on it
type UnitInfluence struct {
	width, height int
	cells         [][]core.ActorID               // sorted ascending per cell
	occupied      map[core.ActorID][]maplib.Cell // cells recorded at Add
}

// NewUnitInfluence creates an empty unit map
func NewUnitInfluence(width, height int) *UnitInfluence {
	return &UnitInfluence{
		width:    width,
		height:   height,
		cells:    make([][]core.ActorID, width*height),
		occupied: make(map[core.ActorID][]maplib.Cell),
	}
}

func (ui *UnitInfluence) inBounds(c maplib.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < ui.width && c.Y < ui.height
}

// Add records the unit on its current cells. Adding a unit twice replaces
// the earlier record.
func (ui *UnitInfluence) Add(u Occupant) {
	id := u.ActorID()
	if _, ok := ui.occupied[id]; ok {
		ui.remove(id)
	}
	var cells []maplib.Cell
	for _, c := range u.OccupiedCells() {
		if !ui.inBounds(c) || slices.Contains(cells, c) {
			continue
		}
		cells = append(cells, c)
		idx := c.Y*ui.width + c.X
		i, _ := slices.BinarySearch(ui.cells[idx], id)
		ui.cells[idx] = slices.Insert(ui.cells[idx], i, id)
	}
	ui.occupied[id] = cells
}

// Remove drops the unit from the cells recorded when it was last added
func (ui *UnitInfluence) Remove(u Occupant) {
	ui.remove(u.ActorID())
}

// Update moves the unit from its recorded cells to its current ones
func (ui *UnitInfluence) Update(u Occupant) {
	ui.Add(u)
}

func (ui *UnitInfluence) remove(id core.ActorID) {
	for _, c := range ui.occupied[id] {
		idx := c.Y*ui.width + c.X
		if i, ok := slices.BinarySearch(ui.cells[idx], id); ok {
			ui.cells[idx] = slices.Delete(ui.cells[idx], i, i+1)
		}
		if len(ui.cells[idx]) == 0 {
			ui.cells[idx] = nil
		}
	}
	delete(ui.occupied, id)
}

// GetUnitsAt returns the units on c in ascending ID order. The slice is
// shared and must not be modified.
func (ui *UnitInfluence) GetUnitsAt(c maplib.Cell) []core.ActorID {
	if !ui.inBounds(c) {
		return nil
	}
	return ui.cells[c.Y*ui.width+c.X]
}

// AnyUnitsAt reports whether any unit stands on c
func (ui *UnitInfluence) AnyUnitsAt(c maplib.Cell) bool {
	return len(ui.GetUnitsAt(c)) > 0
}

// Len returns the number of tracked units
func (ui *UnitInfluence) Len() int { return len(ui.occupied) }

// Digest hashes the per-cell occupant lists
func (ui *UnitInfluence) Digest() string {
	h := sha256.New()
	var tmp [8]byte
	writeU64(h, &tmp, uint64(ui.width))
	writeU64(h, &tmp, uint64(ui.height))
	for i, ids := range ui.cells {
		if len(ids) == 0 {
			continue
		}
		writeU64(h, &tmp, uint64(i))
		writeU64(h, &tmp, uint64(len(ids)))
		for _, id := range ids {
			writeU64(h, &tmp, uint64(id))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
