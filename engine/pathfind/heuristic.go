package pathfind

import (
	"math"

	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

// Heuristic estimates the remaining cost from a cell. A cell scoring 0 is a
// goal; +Inf excludes the cell from the search.
type Heuristic func(maplib.Cell) float64

// octile is the 8-directional distance for a (dx, dy) offset
func octile(dx, dy int) float64 {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	lo, hi := min(dx, dy), max(dx, dy)
	return float64(float64(lo)*math.Sqrt2) + float64(hi-lo)
}

// Octile targets a single goal cell
func Octile(goal maplib.Cell) Heuristic {
	return func(c maplib.Cell) float64 {
		return octile(c.X-goal.X, c.Y-goal.Y)
	}
}

// NearestOctile targets whichever goal is closest. With no goals every cell
// is excluded.
func NearestOctile(goals ...maplib.Cell) Heuristic {
	goals = append([]maplib.Cell(nil), goals...)
	return func(c maplib.Cell) float64 {
		best := math.Inf(1)
		for _, g := range goals {
			best = min(best, octile(c.X-g.X, c.Y-g.Y))
		}
		return best
	}
}

// WithinRange treats every cell within r king moves of goal as a goal
func WithinRange(goal maplib.Cell, r int) Heuristic {
	return func(c maplib.Cell) float64 {
		dx := max(0, abs(c.X-goal.X)-r)
		dy := max(0, abs(c.Y-goal.Y)-r)
		return octile(dx, dy)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
