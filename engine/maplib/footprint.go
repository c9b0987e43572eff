package maplib

// FootprintCell is one cell claimed by a building. Non-blocking cells are
// owned by the building but stay pathable (refinery docks, repair pads).
type FootprintCell struct {
	Cell
	Blocking bool
}
