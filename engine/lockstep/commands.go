// Package lockstep schedules player commands onto simulation ticks and
// applies them to a sim.World in the same order on every peer.
package lockstep

import (
	"fmt"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

// CmdType identifies a command
type CmdType uint8

const (
	CmdMove CmdType = iota
	CmdPlaceBuilding
	CmdRemoveBuilding
	CmdSpawnUnit
	CmdRemoveUnit
)

var cmdNames = [...]string{"move", "place", "remove-building", "spawn", "remove-unit"}

func (t CmdType) String() string {
	if int(t) < len(cmdNames) {
		return cmdNames[t]
	}
	return fmt.Sprintf("CmdType(%d)", uint8(t))
}

// Command is a deterministic change to the world issued by a player
type Command struct {
	Tick   uint64
	Player int
	Type   CmdType
	Actor  core.ActorID
	X, Y   int32
	Param  string // building or unit type name
}

// Target is the command's map cell
func (c Command) Target() maplib.Cell { return maplib.Cell{X: int(c.X), Y: int(c.Y)} }

func (c Command) String() string {
	return fmt.Sprintf("tick %d player %d %s #%d %s %s", c.Tick, c.Player, c.Type, c.Actor, c.Target(), c.Param)
}

// Move orders a unit to dest
func Move(tick uint64, player int, id core.ActorID, dest maplib.Cell) Command {
	return Command{Tick: tick, Player: player, Type: CmdMove, Actor: id, X: int32(dest.X), Y: int32(dest.Y)}
}

// Place orders a building of type name at origin
func Place(tick uint64, player int, name string, origin maplib.Cell) Command {
	return Command{Tick: tick, Player: player, Type: CmdPlaceBuilding, X: int32(origin.X), Y: int32(origin.Y), Param: name}
}

// Spawn creates a unit of type name at c
func Spawn(tick uint64, player int, name string, c maplib.Cell) Command {
	return Command{Tick: tick, Player: player, Type: CmdSpawnUnit, X: int32(c.X), Y: int32(c.Y), Param: name}
}
