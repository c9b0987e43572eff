// Package influence tracks which building claims each cell and which units
// stand on it. Both maps are owned by one simulation and mutated only at frame
// end, so a search always reads a consistent snapshot.
package influence

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
	"github.com/1siamBot/rts-pathfinder/engine/pqueue"
)

// Structure is anything with a footprint that claims cells
type Structure interface {
	ActorID() core.ActorID
	Footprint() []maplib.FootprintCell
}

type claim struct {
	owner core.ActorID
	dist  float64
}

var noClaim = claim{owner: core.NoActor, dist: math.Inf(1)}

type registered struct {
	id        core.ActorID
	footprint []maplib.FootprintCell
	min, max  maplib.Cell // footprint bounds, clipped to the map
}

// BuildingInfluence assigns every cell within maxDistance of a building to
// the nearest one (ring distance over the 8 neighbours). Footprint cells sit
// at distance 0 and are the only cells GetBuildingAt reports.
type BuildingInfluence struct {
	width, height int
	maxDistance   int
	cells         []claim
	blocked       []bool
	buildings     []registered // sorted by id
}

// NewBuildingInfluence creates an empty influence map
func NewBuildingInfluence(width, height, maxDistance int) *BuildingInfluence {
	bi := &BuildingInfluence{
		width:       width,
		height:      height,
		maxDistance: maxDistance,
		cells:       make([]claim, width*height),
		blocked:     make([]bool, width*height),
	}
	for i := range bi.cells {
		bi.cells[i] = noClaim
	}
	return bi
}

func (bi *BuildingInfluence) inBounds(c maplib.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < bi.width && c.Y < bi.height
}

func (bi *BuildingInfluence) index(c maplib.Cell) int { return c.Y*bi.width + c.X }

// AddInfluence registers a building and spreads its claim outward. The
// resulting grid does not depend on the order buildings are added: a claim
// is replaced only by a strictly closer building, and equal distances go to
// the lower ActorID.
func (bi *BuildingInfluence) AddInfluence(s Structure) {
	r, ok := bi.register(s)
	if !ok {
		return
	}
	for _, fc := range r.footprint {
		if fc.Blocking {
			bi.blocked[bi.index(fc.Cell)] = true
		}
	}
	bi.spread(r)
}

// RemoveInfluence unregisters a building and recomputes every cell it
// claimed from the buildings that remain, so no stale claims survive.
func (bi *BuildingInfluence) RemoveInfluence(s Structure) {
	id := s.ActorID()
	i := sort.Search(len(bi.buildings), func(i int) bool { return bi.buildings[i].id >= id })
	if i == len(bi.buildings) || bi.buildings[i].id != id {
		return
	}
	gone := bi.buildings[i]
	bi.buildings = append(bi.buildings[:i], bi.buildings[i+1:]...)

	for _, fc := range gone.footprint {
		bi.blocked[bi.index(fc.Cell)] = false
	}
	lo, hi := bi.reach(gone)
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			idx := y*bi.width + x
			if bi.cells[idx].owner == id {
				bi.cells[idx] = noClaim
			}
		}
	}

	// Only buildings whose reach overlaps the vacated area can claim it.
	for _, r := range bi.buildings {
		rlo, rhi := bi.reach(r)
		if rhi.X < lo.X || rlo.X > hi.X || rhi.Y < lo.Y || rlo.Y > hi.Y {
			continue
		}
		for _, fc := range r.footprint {
			if fc.Blocking {
				bi.blocked[bi.index(fc.Cell)] = true
			}
		}
		bi.spread(r)
	}
}

func (bi *BuildingInfluence) register(s Structure) (registered, bool) {
	id := s.ActorID()
	r := registered{id: id}
	for _, fc := range s.Footprint() {
		if !bi.inBounds(fc.Cell) {
			continue
		}
		if len(r.footprint) == 0 {
			r.min, r.max = fc.Cell, fc.Cell
		}
		r.min.X, r.min.Y = min(r.min.X, fc.X), min(r.min.Y, fc.Y)
		r.max.X, r.max.Y = max(r.max.X, fc.X), max(r.max.Y, fc.Y)
		r.footprint = append(r.footprint, fc)
	}
	if len(r.footprint) == 0 {
		return r, false
	}
	i := sort.Search(len(bi.buildings), func(i int) bool { return bi.buildings[i].id >= id })
	if i < len(bi.buildings) && bi.buildings[i].id == id {
		return r, false
	}
	bi.buildings = append(bi.buildings, registered{})
	copy(bi.buildings[i+1:], bi.buildings[i:])
	bi.buildings[i] = r
	return r, true
}

// reach is the clipped rectangle a building's influence can touch
func (bi *BuildingInfluence) reach(r registered) (maplib.Cell, maplib.Cell) {
	d := bi.maxDistance
	lo := maplib.Cell{X: max(0, r.min.X-d), Y: max(0, r.min.Y-d)}
	hi := maplib.Cell{X: min(bi.width-1, r.max.X+d), Y: min(bi.height-1, r.max.Y+d)}
	return lo, hi
}

// spread runs a multi-source Dijkstra from the footprint over the building's
// own distance field, claiming every cell where it beats the current owner.
func (bi *BuildingInfluence) spread(r registered) {
	lo, hi := bi.reach(r)
	w := hi.X - lo.X + 1
	local := make([]float64, w*(hi.Y-lo.Y+1))
	for i := range local {
		local[i] = math.Inf(1)
	}
	at := func(c maplib.Cell) int { return (c.Y-lo.Y)*w + (c.X - lo.X) }

	q := pqueue.New[maplib.Cell]()
	for _, fc := range r.footprint {
		if local[at(fc.Cell)] != 0 {
			local[at(fc.Cell)] = 0
			q.Push(0, fc.Cell)
		}
	}
	for !q.Empty() {
		c, d := q.Pop()
		if d > local[at(c)] {
			continue
		}
		bi.claim(c, r.id, d)
		nd := d + 1
		if nd > float64(bi.maxDistance) {
			continue
		}
		for _, dir := range maplib.Directions {
			n := c.Add(dir)
			if n.X < lo.X || n.Y < lo.Y || n.X > hi.X || n.Y > hi.Y {
				continue
			}
			if nd < local[at(n)] {
				local[at(n)] = nd
				q.Push(nd, n)
			}
		}
	}
}

func (bi *BuildingInfluence) claim(c maplib.Cell, id core.ActorID, d float64) {
	cur := &bi.cells[bi.index(c)]
	if d < cur.dist || (d == cur.dist && id < cur.owner) {
		cur.owner = id
		cur.dist = d
	}
}

// GetBuildingAt returns the building whose footprint covers c, or NoActor
func (bi *BuildingInfluence) GetBuildingAt(c maplib.Cell) core.ActorID {
	if !bi.inBounds(c) {
		return core.NoActor
	}
	cl := bi.cells[bi.index(c)]
	if cl.dist != 0 {
		return core.NoActor
	}
	return cl.owner
}

// GetNearestBuilding returns the building claiming c, or NoActor when c is
// farther than the clip radius from every building
func (bi *BuildingInfluence) GetNearestBuilding(c maplib.Cell) core.ActorID {
	if !bi.inBounds(c) {
		return core.NoActor
	}
	return bi.cells[bi.index(c)].owner
}

// GetDistanceToBuilding returns the ring distance from c to its nearest
// building, or +Inf when unclaimed
func (bi *BuildingInfluence) GetDistanceToBuilding(c maplib.Cell) float64 {
	if !bi.inBounds(c) {
		return math.Inf(1)
	}
	return bi.cells[bi.index(c)].dist
}

// CanMoveHere reports whether c is on the map and not a blocking footprint cell
func (bi *BuildingInfluence) CanMoveHere(c maplib.Cell) bool {
	return bi.inBounds(c) && !bi.blocked[bi.index(c)]
}

// Buildings returns the registered building IDs in ascending order
func (bi *BuildingInfluence) Buildings() []core.ActorID {
	out := make([]core.ActorID, len(bi.buildings))
	for i, r := range bi.buildings {
		out[i] = r.id
	}
	return out
}

// Digest hashes the full claim grid for lockstep comparison
func (bi *BuildingInfluence) Digest() string {
	h := sha256.New()
	var tmp [8]byte
	writeU64(h, &tmp, uint64(bi.width))
	writeU64(h, &tmp, uint64(bi.height))
	for i, cl := range bi.cells {
		writeU64(h, &tmp, uint64(cl.owner))
		writeU64(h, &tmp, math.Float64bits(cl.dist))
		if bi.blocked[i] {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func writeU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}
