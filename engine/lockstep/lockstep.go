package lockstep

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/1siamBot/rts-pathfinder/engine/sim"
)

var (
	ErrNotOwner    = errors.New("actor not owned by player")
	ErrLateCommand = errors.New("command for a tick already run")
)

// Scheduler buffers commands until the tick they run on. Local commands
// are delayed by the input delay so remote peers receive them in time.
type Scheduler struct {
	mu         sync.Mutex
	pending    map[uint64][]Command // tick -> commands
	inputDelay uint64
	next       uint64 // first tick not yet taken by Commands
}

func NewScheduler(inputDelay int) *Scheduler {
	return &Scheduler{
		pending:    make(map[uint64][]Command),
		inputDelay: uint64(max(inputDelay, 0)),
	}
}

// Queue schedules a local command issued during currentTick and returns
// the tick it will run on
func (s *Scheduler) Queue(currentTick uint64, cmd Command) (uint64, error) {
	cmd.Tick = currentTick + s.inputDelay
	return cmd.Tick, s.Deliver(cmd)
}

// Deliver adds a command that already carries its scheduled tick. A command
// for a tick whose commands were already taken is refused with
// ErrLateCommand; a peer receiving one has desynced.
func (s *Scheduler) Deliver(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd.Tick < s.next {
		return fmt.Errorf("%s (next tick %d): %w", cmd, s.next, ErrLateCommand)
	}
	s.pending[cmd.Tick] = append(s.pending[cmd.Tick], cmd)
	return nil
}

// Commands removes and returns the commands for tick, ordered by player
// and then arrival
func (s *Scheduler) Commands(tick uint64) []Command {
	s.mu.Lock()
	cmds := s.pending[tick]
	delete(s.pending, tick)
	s.next = max(s.next, tick+1)
	s.mu.Unlock()
	slices.SortStableFunc(cmds, func(a, b Command) int { return a.Player - b.Player })
	return cmds
}

// Pending counts commands not yet taken
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, cmds := range s.pending {
		n += len(cmds)
	}
	return n
}

// Apply runs one command against w
func Apply(w *sim.World, cmd Command) error {
	switch cmd.Type {
	case CmdMove:
		u := w.Unit(cmd.Actor)
		if u == nil {
			return fmt.Errorf("%s: %w", cmd, sim.ErrUnknownActor)
		}
		if u.Owner != cmd.Player {
			return fmt.Errorf("%s: %w", cmd, ErrNotOwner)
		}
		_, err := w.OrderMove(cmd.Actor, cmd.Target())
		return err
	case CmdPlaceBuilding:
		_, err := w.PlaceBuilding(cmd.Player, cmd.Param, cmd.Target())
		return err
	case CmdRemoveBuilding:
		if b := w.Building(cmd.Actor); b != nil && b.Owner != cmd.Player {
			return fmt.Errorf("%s: %w", cmd, ErrNotOwner)
		}
		return w.RemoveBuilding(cmd.Actor)
	case CmdSpawnUnit:
		_, err := w.SpawnUnit(cmd.Player, cmd.Param, cmd.Target())
		return err
	case CmdRemoveUnit:
		if u := w.Unit(cmd.Actor); u != nil && u.Owner != cmd.Player {
			return fmt.Errorf("%s: %w", cmd, ErrNotOwner)
		}
		return w.RemoveUnit(cmd.Actor)
	}
	return fmt.Errorf("unknown command type %d", cmd.Type)
}

// Step applies every command scheduled for the world's current tick and
// then advances it. Rejected commands are skipped on every peer alike; their
// errors are returned joined.
func Step(w *sim.World, s *Scheduler) error {
	var errs []error
	for _, cmd := range s.Commands(w.CurrentTick()) {
		if err := Apply(w, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	w.Tick()
	return errors.Join(errs...)
}
