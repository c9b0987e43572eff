// Command pathbench runs path queries, benchmarks and lockstep sync checks
// against the demo map.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/pathfind"
	"github.com/1siamBot/rts-pathfinder/engine/rules"
	"github.com/1siamBot/rts-pathfinder/engine/sim"
	"github.com/1siamBot/rts-pathfinder/engine/syncreport"
)

func main() {
	logger := log.New(os.Stderr, "[pathbench] ", log.LstdFlags)
	if err := newApp(logger, os.Stdout).Run(context.Background(), os.Args); err != nil {
		logger.Fatal(err)
	}
}

var rulesFlag = &cli.StringFlag{Name: "rules", Usage: "rules YAML file (default: embedded rules)"}

func newApp(logger *log.Logger, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "pathbench",
		Usage:     "query and benchmark the grid pathfinder",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			rulesFlag,
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log simulation events"},
		},
		Commands: []*cli.Command{
			{
				Name:  "path",
				Usage: "find a path on the demo map",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Value: "2,20", Usage: "start cell x,y"},
					&cli.StringFlag{Name: "to", Value: "60,60", Usage: "goal cell x,y"},
					&cli.StringFlag{Name: "movement", Value: "wheel", Usage: "foot, track, wheel, float or fly"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runPath(c, logger, out)
				},
			},
			{
				Name:  "bench",
				Usage: "run random path queries and report throughput",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "searches", Value: 500},
					&cli.IntFlag{Name: "seed", Value: 1},
					&cli.StringFlag{Name: "movement", Value: "track"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runBench(c, logger, out)
				},
			},
			{
				Name:  "synccheck",
				Usage: "run the scripted skirmish in two worlds and compare sync reports",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "ticks", Value: 600},
					&cli.StringFlag{Name: "out", Usage: "directory to keep the sync reports in"},
					&cli.IntFlag{Name: "desync-at", Value: -1, Usage: "inject a divergence into the second world at this tick"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runSyncCheck(c, logger, out)
				},
			},
		},
	}
}

func loadRules(c *cli.Command) (*rules.Ruleset, error) {
	if p := c.String("rules"); p != "" {
		return rules.Load(p)
	}
	return rules.Default()
}

func worldLogger(c *cli.Command, logger *log.Logger) *log.Logger {
	if c.Bool("verbose") {
		return logger
	}
	return nil
}

func parseCell(s string) (maplib.Cell, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return maplib.Cell{}, fmt.Errorf("cell %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return maplib.Cell{}, fmt.Errorf("cell %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return maplib.Cell{}, fmt.Errorf("cell %q: %w", s, err)
	}
	return maplib.Cell{X: x, Y: y}, nil
}

func parseMovement(s string) (core.MovementType, error) {
	mt, ok := core.ParseMovementType(s)
	if !ok {
		return 0, fmt.Errorf("%q: %w", s, rules.ErrUnknownMovement)
	}
	return mt, nil
}

func runPath(c *cli.Command, logger *log.Logger, out io.Writer) error {
	rs, err := loadRules(c)
	if err != nil {
		return err
	}
	from, err := parseCell(c.String("from"))
	if err != nil {
		return err
	}
	to, err := parseCell(c.String("to"))
	if err != nil {
		return err
	}
	mt, err := parseMovement(c.String("movement"))
	if err != nil {
		return err
	}

	w := sim.NewWorld(generateDemoMap(), rs, worldLogger(c, logger))
	path := w.Finder.FromPoint(from, to, pathfind.SearchOptions{Movement: mt})
	if len(path) == 0 {
		fmt.Fprintf(out, "no path from %s to %s for %s\n", from, to, mt)
		return nil
	}

	// goal first from the finder; print in walking order
	cells := make([]string, len(path))
	for i, p := range path {
		cells[len(path)-1-i] = p.String()
	}
	fmt.Fprintf(out, "%s\n", strings.Join(cells, " "))
	fmt.Fprintf(out, "steps=%d cost=%.3f\n", len(path)-1, w.Finder.PathCost(reversed(path), mt))
	return nil
}

func reversed(path []maplib.Cell) []maplib.Cell {
	out := make([]maplib.Cell, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}

func runBench(c *cli.Command, logger *log.Logger, out io.Writer) error {
	rs, err := loadRules(c)
	if err != nil {
		return err
	}
	mt, err := parseMovement(c.String("movement"))
	if err != nil {
		return err
	}
	n := int(c.Int("searches"))
	seed := uint64(c.Int("seed"))

	tm := generateDemoMap()
	w := sim.NewWorld(tm, rs, worldLogger(c, logger))
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	randomCell := func() maplib.Cell {
		for {
			cell := maplib.Cell{X: rng.IntN(tm.Width), Y: rng.IntN(tm.Height)}
			if rs.Costs.Passable(mt, tm.EffectiveTerrain(cell)) {
				return cell
			}
		}
	}

	var found, steps int
	var cost float64
	start := time.Now()
	for i := 0; i < n; i++ {
		path := w.Finder.FromPoint(randomCell(), randomCell(), pathfind.SearchOptions{Movement: mt})
		if len(path) == 0 {
			continue
		}
		found++
		steps += len(path) - 1
		if pc := w.Finder.PathCost(reversed(path), mt); !math.IsInf(pc, 1) {
			cost += pc
		}
	}
	elapsed := time.Since(start)

	logger.Printf("bench: %d searches (%s, seed %d) in %s", n, mt, seed, elapsed)
	fmt.Fprintf(out, "searches=%d found=%d steps=%d cost=%.2f\n", n, found, steps, cost)
	if n > 0 {
		fmt.Fprintf(out, "per_search=%s\n", elapsed/time.Duration(n))
	}
	return nil
}

func runSyncCheck(c *cli.Command, logger *log.Logger, out io.Writer) error {
	rs, err := loadRules(c)
	if err != nil {
		return err
	}
	ticks := int(c.Int("ticks"))
	desyncAt := int(c.Int("desync-at"))

	dir := c.String("out")
	if dir == "" {
		dir, err = os.MkdirTemp("", "pathbench-sync-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	setup, units, err := newSkirmish(rs, nil)
	if err != nil {
		return fmt.Errorf("skirmish setup: %w", err)
	}
	orders := skirmishOrders(setup, units)

	var reports [2][]syncreport.Record
	for i := range reports {
		path := filepath.Join(dir, fmt.Sprintf("peer%d.sync.zst", i))
		inject := -1
		if i == 1 {
			inject = desyncAt
		}
		if err := recordSkirmish(path, rs, orders, ticks, inject, worldLogger(c, logger)); err != nil {
			return err
		}
		reports[i], err = syncreport.LoadFile(path)
		if err != nil {
			return err
		}
	}

	tick, diverged := syncreport.FirstDivergence(reports[0], reports[1])
	if !diverged {
		fmt.Fprintf(out, "in sync for %d ticks\n", len(reports[0]))
		return nil
	}
	var parts []string
	if int(tick) < len(reports[0]) && int(tick) < len(reports[1]) {
		parts = syncreport.Diff(reports[0][tick], reports[1][tick])
	}
	return fmt.Errorf("desync at tick %d (%s)", tick, strings.Join(parts, ", "))
}
