package prospecting

import (
	"iter"
	"strings"
)

// Pos is an integer cell position in the block grid.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p Pos) Add(dx, dy, dz int) Pos { return Pos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz} }

// Center is the visual anchor of the cell.
func (p Pos) Center() Vec3 {
	return Vec3{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5, Z: float64(p.Z) + 0.5}
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z} }

// Material is the coarse material classification of a cell.
type Material string

const (
	MaterialNone   Material = ""
	MaterialAir    Material = "air"
	MaterialSoil   Material = "soil"
	MaterialGravel Material = "gravel"
	MaterialStone  Material = "stone"
	MaterialOre    Material = "ore"
)

// CellDescriptor is the read-only per-cell data supplied by the world.
// The zero value describes an empty, non-matching cell.
type CellDescriptor struct {
	Code     string
	Material Material
	Variant  map[string]string
}

// BreakableGround reports whether breaking this cell may trigger a prospect.
func (d CellDescriptor) BreakableGround() bool {
	return strings.HasPrefix(d.Code, "rock") || strings.HasPrefix(d.Code, "ore")
}

// CellReader returns the descriptor for any position. It must not fail for
// positions outside the loaded world; those return the zero descriptor.
type CellReader interface {
	CellDescriptor(pos Pos) CellDescriptor
}

// Match is one ore cell found by a scan.
type Match struct {
	Pos  Pos
	From Vec3
	To   Vec3
}

// CubeVolume is the number of cells visited by a scan of radius r.
func CubeVolume(r int) int {
	if r < 0 {
		return 0
	}
	side := 2*r + 1
	return side * side * side
}

// NormalizeFilter lower-cases a resource filter for matching.
func NormalizeFilter(filter string) string {
	return strings.ToLower(strings.TrimSpace(filter))
}

// MatchesFilter reports whether d is an ore cell whose type contains filter.
// filter must already be normalized.
func MatchesFilter(d CellDescriptor, filter string) bool {
	if d.Material != MaterialOre {
		return false
	}
	typ, ok := d.Variant["type"]
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(typ), filter)
}

// Matches walks the closed cube around origin (x outermost, z innermost) and
// yields every matching cell in discovery order. The sequence is single-use.
func Matches(cells CellReader, origin Pos, radius int, filter string) iter.Seq[Match] {
	filter = NormalizeFilter(filter)
	from := origin.Center()
	return func(yield func(Match) bool) {
		if cells == nil || radius < 0 {
			return
		}
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				for dz := -radius; dz <= radius; dz++ {
					p := origin.Add(dx, dy, dz)
					if !MatchesFilter(cells.CellDescriptor(p), filter) {
						continue
					}
					if !yield(Match{Pos: p, From: from, To: p.Center()}) {
						return
					}
				}
			}
		}
	}
}

// Scan counts the matches around origin, calling onMatch for each one as it
// is discovered.
func Scan(cells CellReader, origin Pos, radius int, filter string, onMatch func(Match)) int {
	n := 0
	for m := range Matches(cells, origin, radius, filter) {
		n++
		if onMatch != nil {
			onMatch(m)
		}
	}
	return n
}
