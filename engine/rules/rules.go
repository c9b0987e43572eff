package rules

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/image/math/fixed"
	"gopkg.in/yaml.v3"

	"github.com/1siamBot/rts-pathfinder/engine/core"
	"github.com/1siamBot/rts-pathfinder/engine/maplib"
)

//go:embed default_rules.yaml
var defaultRules []byte

// DefaultInfluenceRadius is the building influence clip radius when the rules omit it
const DefaultInfluenceRadius = 8

// maxPercent bounds terrain speeds so every search edge stays positive
// after the lane bias is subtracted.
const maxPercent = 500

var (
	ErrBadPercent      = errors.New("malformed terrain speed percentage")
	ErrUnknownTerrain  = errors.New("unknown terrain type")
	ErrUnknownMovement = errors.New("unknown movement type")
	ErrInvalidRules    = errors.New("invalid rules")
)

// TerrainInfo holds placement flags for a terrain type
type TerrainInfo struct {
	Buildable bool
	Water     bool
}

// BuildingInfo defines a building type
type BuildingInfo struct {
	Name       string
	Footprint  []string // rows; 'x' blocks movement, '_' is owned but pathable
	Adjacent   int      // how far from the base a new building may be placed
	BaseNormal bool     // counts as base for placement proximity
	WaterBound bool     // must be placed on water
}

// Tiles returns the footprint cells for a building whose top-left corner is origin
func (b *BuildingInfo) Tiles(origin maplib.Cell) []maplib.FootprintCell {
	var out []maplib.FootprintCell
	for dy, row := range b.Footprint {
		for dx, ch := range row {
			switch ch {
			case 'x':
				out = append(out, maplib.FootprintCell{Cell: maplib.Cell{X: origin.X + dx, Y: origin.Y + dy}, Blocking: true})
			case '_':
				out = append(out, maplib.FootprintCell{Cell: maplib.Cell{X: origin.X + dx, Y: origin.Y + dy}})
			}
		}
	}
	return out
}

// UnitInfo defines a unit type
type UnitInfo struct {
	Name        string
	Movement    core.MovementType
	CrushableBy core.MovementMask
	Speed       fixed.Int26_6 // cells per tick
}

// Ruleset is the immutable result of loading a rules file
type Ruleset struct {
	Costs           *TerrainCostTable
	Terrain         [maplib.TerrainCount]TerrainInfo
	Buildings       map[string]*BuildingInfo
	Units           map[string]*UnitInfo
	InfluenceRadius int
}

type document struct {
	InfluenceRadius int                    `yaml:"influence_radius"`
	Terrain         map[string]terrainDoc  `yaml:"terrain"`
	Buildings       map[string]buildingDoc `yaml:"buildings"`
	Units           map[string]unitDoc     `yaml:"units"`
}

type terrainDoc struct {
	Buildable bool              `yaml:"buildable"`
	Water     bool              `yaml:"water"`
	Speed     map[string]string `yaml:"speed"`
}

type buildingDoc struct {
	Footprint  []string `yaml:"footprint"`
	Adjacent   int      `yaml:"adjacent"`
	BaseNormal bool     `yaml:"base_normal"`
	WaterBound bool     `yaml:"water_bound"`
}

type unitDoc struct {
	Movement    string   `yaml:"movement"`
	CrushableBy []string `yaml:"crushable_by"`
	Speed       float64  `yaml:"speed"`
}

var schema = jsonschema.MustCompileString("rules.schema.json", rulesSchema)

// Default returns the embedded rules
func Default() (*Ruleset, error) {
	return Parse(defaultRules)
}

// Load reads and parses a rules file
func Load(path string) (*Ruleset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse validates and decodes a YAML rules document. Any malformed entry
// fails the whole load: peers running with a partially-applied table would
// disagree on path costs.
func Parse(raw []byte) (*Ruleset, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rules.yaml: %w", err)
	}

	rs := &Ruleset{
		Costs:           newImpassableTable(),
		Buildings:       make(map[string]*BuildingInfo),
		Units:           make(map[string]*UnitInfo),
		InfluenceRadius: doc.InfluenceRadius,
	}
	if rs.InfluenceRadius == 0 {
		rs.InfluenceRadius = DefaultInfluenceRadius
	}

	for _, name := range slices.Sorted(maps.Keys(doc.Terrain)) {
		tt, ok := maplib.ParseTerrainType(name)
		if !ok {
			return nil, fmt.Errorf("terrain %q: %w", name, ErrUnknownTerrain)
		}
		td := doc.Terrain[name]
		rs.Terrain[tt] = TerrainInfo{Buildable: td.Buildable, Water: td.Water}
		for _, mname := range slices.Sorted(maps.Keys(td.Speed)) {
			mt, ok := core.ParseMovementType(mname)
			if !ok {
				return nil, fmt.Errorf("terrain %q: %q: %w", name, mname, ErrUnknownMovement)
			}
			cost, err := ParsePercent(td.Speed[mname])
			if err != nil {
				return nil, fmt.Errorf("terrain %q speed %s: %w", name, mname, err)
			}
			rs.Costs.costs[mt][tt] = cost
		}
	}

	for _, name := range slices.Sorted(maps.Keys(doc.Buildings)) {
		bd := doc.Buildings[name]
		rs.Buildings[name] = &BuildingInfo{
			Name:       name,
			Footprint:  bd.Footprint,
			Adjacent:   bd.Adjacent,
			BaseNormal: bd.BaseNormal,
			WaterBound: bd.WaterBound,
		}
	}

	for _, name := range slices.Sorted(maps.Keys(doc.Units)) {
		ud := doc.Units[name]
		mt, ok := core.ParseMovementType(ud.Movement)
		if !ok {
			return nil, fmt.Errorf("unit %q: %q: %w", name, ud.Movement, ErrUnknownMovement)
		}
		var crush core.MovementMask
		for _, c := range ud.CrushableBy {
			cm, ok := core.ParseMovementType(c)
			if !ok {
				return nil, fmt.Errorf("unit %q crushable_by %q: %w", name, c, ErrUnknownMovement)
			}
			crush |= core.MaskOf(cm)
		}
		speed := fixed.Int26_6(math.Round(ud.Speed * 64))
		if speed <= 0 {
			speed = 1
		}
		rs.Units[name] = &UnitInfo{Name: name, Movement: mt, CrushableBy: crush, Speed: speed}
	}
	return rs, nil
}

func validate(raw []byte) error {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("rules.yaml: %w", err)
	}
	// Round-trip through JSON so the validator sees plain JSON types.
	js, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("rules.yaml: %w", err)
	}
	var doc any
	if err := json.Unmarshal(js, &doc); err != nil {
		return fmt.Errorf("rules.yaml: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return nil
}

// ParsePercent converts a speed percentage like "50%" into a traversal cost
// (100 / percent). "0%" is impassable and yields +Inf.
func ParsePercent(s string) (float64, error) {
	v := strings.TrimSpace(s)
	if !strings.HasSuffix(v, "%") {
		return 0, fmt.Errorf("%q: %w", s, ErrBadPercent)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
	if err != nil || math.IsNaN(p) || p < 0 || p >= maxPercent {
		return 0, fmt.Errorf("%q: %w", s, ErrBadPercent)
	}
	if p == 0 {
		return math.Inf(1), nil
	}
	return 100 / p, nil
}
