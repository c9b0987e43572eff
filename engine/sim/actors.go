package sim

import (
	"golang.org/x/image/math/fixed"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/rules"
)

// Building is a placed structure
type Building struct {
	ID     core.ActorID
	Owner  int
	Info   *rules.BuildingInfo
	Origin maplib.Cell
	tiles  []maplib.FootprintCell
}

func (b *Building) ActorID() core.ActorID { return b.ID }

// Footprint returns the cells the building claims
func (b *Building) Footprint() []maplib.FootprintCell { return b.tiles }

var (
	straightStep = fixed.I(1)
	diagonalStep = fixed.Int26_6(91) // √2 cells, rounded to 1/64
)

// Unit is a mobile actor. While From != To it is crossing between the two
// cells and occupies both.
type Unit struct {
	ID       core.ActorID
	Owner    int
	Info     *rules.UnitInfo
	From, To maplib.Cell
	Progress fixed.Int26_6 // distance covered from From toward To
	Path     []maplib.Cell // remaining cells, next step last
	Dest     maplib.Cell

	waited int
}

func (u *Unit) ActorID() core.ActorID { return u.ID }

// OccupiedCells returns From, plus To while in transit
func (u *Unit) OccupiedCells() []maplib.Cell {
	if u.From == u.To {
		return []maplib.Cell{u.From}
	}
	return []maplib.Cell{u.From, u.To}
}

// InTransit reports whether the unit is between cells
func (u *Unit) InTransit() bool { return u.From != u.To }

// Idle reports whether the unit has nowhere left to go
func (u *Unit) Idle() bool { return !u.InTransit() && len(u.Path) == 0 }

func (u *Unit) stepLength() fixed.Int26_6 {
	if u.To.Sub(u.From).IsDiagonal() {
		return diagonalStep
	}
	return straightStep
}

// Position returns the unit's centre in cell units
func (u *Unit) Position() fixed.Point26_6 {
	half := fixed.I(1) / 2
	p := fixed.Point26_6{X: fixed.I(u.From.X) + half, Y: fixed.I(u.From.Y) + half}
	if !u.InTransit() {
		return p
	}
	d := u.To.Sub(u.From)
	step := u.stepLength()
	p.X += fixed.I(d.X) * u.Progress / step
	p.Y += fixed.I(d.Y) * u.Progress / step
	return p
}
