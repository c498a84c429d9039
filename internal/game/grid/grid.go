// Package grid provides the square battle grid and its occupancy index.
//
// All distances are Manhattan (grid-step) distances. Queries outside the grid
// never fail; they report the cell as invalid.
package grid

import (
	"fmt"
	"sort"
)

// Cell is one grid coordinate.
type Cell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// String returns "(x,y)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Distance returns the Manhattan distance |dx| + |dy| between a and b.
//
// Postcondition: Returns >= 0; Distance(a, b) == Distance(b, a).
func Distance(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Tile is a per-cell override of the default open floor.
type Tile struct {
	Passable bool   `yaml:"passable"`
	Terrain  string `yaml:"terrain"`
}

// Grid is an N×N battlefield. Cells without an override are passable open floor.
//
// Invariant: Size >= 1; every override key is in bounds.
type Grid struct {
	size      int
	overrides map[Cell]Tile
}

// New builds a Grid of size×size cells with the given overrides.
//
// Precondition: size >= 1.
// Postcondition: Returns an error if size < 1 or any override lies outside the grid.
func New(size int, overrides map[Cell]Tile) (*Grid, error) {
	if size < 1 {
		return nil, fmt.Errorf("grid size must be >= 1, got %d", size)
	}
	g := &Grid{size: size, overrides: make(map[Cell]Tile, len(overrides))}
	for c, t := range overrides {
		if !g.InBounds(c) {
			return nil, fmt.Errorf("tile override %s outside %dx%d grid", c, size, size)
		}
		g.overrides[c] = t
	}
	return g, nil
}

// Size returns N for the N×N grid.
func (g *Grid) Size() int { return g.size }

// InBounds reports whether c lies in [0, Size) on both axes.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.size && c.Y < g.size
}

// Passable reports whether c can be stood on. Out-of-bounds cells are never passable.
func (g *Grid) Passable(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	if t, ok := g.overrides[c]; ok {
		return t.Passable
	}
	return true
}

// Tile returns the override at c, or open floor when none exists.
//
// Postcondition: ok is false iff c is out of bounds.
func (g *Grid) Tile(c Cell) (Tile, bool) {
	if !g.InBounds(c) {
		return Tile{}, false
	}
	if t, ok := g.overrides[c]; ok {
		return t, true
	}
	return Tile{Passable: true}, true
}

// Overrides returns a copy of the per-cell override map.
func (g *Grid) Overrides() map[Cell]Tile {
	out := make(map[Cell]Tile, len(g.overrides))
	for c, t := range g.overrides {
		out[c] = t
	}
	return out
}

// Within returns every in-bounds cell whose distance from origin is in [1, radius],
// ordered by ascending distance, then y, then x.
//
// Postcondition: origin itself is never returned; ordering is stable across calls.
// Work is bounded by the grid area, never by radius.
func (g *Grid) Within(origin Cell, radius int) []Cell {
	radius = min(radius, 2*(g.size-1)+abs(origin.X)+abs(origin.Y))
	var out []Cell
	for y := max(0, origin.Y-radius); y <= min(g.size-1, origin.Y+radius); y++ {
		rem := radius - abs(y-origin.Y)
		for x := max(0, origin.X-rem); x <= min(g.size-1, origin.X+rem); x++ {
			c := Cell{X: x, Y: y}
			if c != origin {
				out = append(out, c)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := Distance(origin, out[i]), Distance(origin, out[j])
		if di != dj {
			return di < dj
		}
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
