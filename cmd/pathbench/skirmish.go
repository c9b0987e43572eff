package main

import (
	"fmt"
	"log"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/lockstep"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/rules"
	"github.com/1siamBot/rts-pathfinder/engine/sim"
	"github.com/1siamBot/rts-pathfinder/engine/syncreport"
)

const inputDelay = 2

// newSkirmish sets up two bases and a squad each on the demo map
func newSkirmish(rs *rules.Ruleset, logger *log.Logger) (*sim.World, []core.ActorID, error) {
	w := sim.NewWorld(generateDemoMap(), rs, logger)
	w.Players.AddPlayer(&core.Player{ID: 0, Name: "Player 1", TeamID: 0, Faction: "Allied"})
	w.Players.AddPlayer(&core.Player{ID: 1, Name: "AI Enemy", TeamID: 1, Faction: "Soviet", IsAI: true})

	for player, origin := range startPositions {
		if _, err := w.SpawnBuilding(player, "fact", origin); err != nil {
			return nil, nil, err
		}
	}

	squads := [2][]string{
		{"jeep", "tank", "e1", "e1", "harv", "dog"},
		{"tank", "tank", "e1", "jeep", "e1", "mcv"},
	}
	spawnAt := [2]maplib.Cell{{X: 2, Y: 18}, {X: 48, Y: 48}}
	var units []core.ActorID
	for player, squad := range squads {
		for i, name := range squad {
			c := spawnAt[player].Add(maplib.Cell{X: i % 3, Y: i / 3})
			id, err := w.SpawnUnit(player, name, c)
			if err != nil {
				return nil, nil, err
			}
			units = append(units, id)
		}
	}
	w.EndFrame()
	return w, units, nil
}

// skirmishOrders is the fixed script both peers replay, stamped with the
// tick each command is issued on
func skirmishOrders(w *sim.World, units []core.ActorID) []lockstep.Command {
	var cmds []lockstep.Command
	for i, id := range units {
		u := w.Unit(id)
		dest := maplib.Cell{X: 48 + i%4, Y: 44 + i/4}
		if u.Owner == 1 {
			dest = maplib.Cell{X: 6 + i%4, Y: 14 + i/4}
		}
		cmds = append(cmds, lockstep.Move(0, u.Owner, id, dest))
	}
	cmds = append(cmds,
		lockstep.Place(40, 0, "powr", maplib.Cell{X: 6, Y: 1}),
		lockstep.Place(80, 1, "proc", maplib.Cell{X: 50, Y: 54}),
	)
	for _, id := range units {
		if u := w.Unit(id); u.Owner == 0 {
			cmds = append(cmds, lockstep.Move(200, 0, id, maplib.Cell{X: 16, Y: 16}))
		}
	}
	return cmds
}

// recordSkirmish replays orders for ticks and writes one sync record per
// tick to path. A non-negative inject tick spawns an extra unit there.
func recordSkirmish(path string, rs *rules.Ruleset, orders []lockstep.Command, ticks, inject int, logger *log.Logger) error {
	w, _, err := newSkirmish(rs, logger)
	if err != nil {
		return fmt.Errorf("skirmish setup: %w", err)
	}
	rec, err := syncreport.Create(path)
	if err != nil {
		return err
	}
	if err := rec.Record(syncreport.Capture(w)); err != nil {
		rec.Close()
		return err
	}

	sched := lockstep.NewScheduler(inputDelay)
	next := 0
	for t := 0; t < ticks; t++ {
		now := w.CurrentTick()
		for next < len(orders) && orders[next].Tick <= now {
			if _, err := sched.Queue(now, orders[next]); err != nil {
				rec.Close()
				return err
			}
			next++
		}
		if t == inject {
			if err := sched.Deliver(lockstep.Spawn(now, 0, "e1", maplib.Cell{X: 20, Y: 20})); err != nil {
				rec.Close()
				return err
			}
		}
		if err := lockstep.Step(w, sched); err != nil {
			rec.Close()
			return fmt.Errorf("tick %d: %w", now, err)
		}
		if err := rec.Record(syncreport.Capture(w)); err != nil {
			rec.Close()
			return err
		}
	}
	return rec.Close()
}
