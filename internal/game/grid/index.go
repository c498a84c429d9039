package grid

// Index is a read-only occupancy snapshot of one grid.
// It is rebuilt by the owning match whenever a participant moves or falls.
type Index struct {
	grid     *Grid
	occupant map[Cell]string
}

// NewIndex builds an Index over g from a cell -> occupant ID map.
//
// Precondition: g must be non-nil.
func NewIndex(g *Grid, occupants map[Cell]string) *Index {
	occ := make(map[Cell]string, len(occupants))
	for c, id := range occupants {
		occ[c] = id
	}
	return &Index{grid: g, occupant: occ}
}

// Grid returns the indexed grid.
func (ix *Index) Grid() *Grid { return ix.grid }

// Occupant returns the ID of the participant standing on c.
func (ix *Index) Occupant(c Cell) (string, bool) {
	id, ok := ix.occupant[c]
	return id, ok
}

// Occupied reports whether any participant stands on c.
func (ix *Index) Occupied(c Cell) bool {
	_, ok := ix.occupant[c]
	return ok
}

// Open reports whether c is in bounds, passable and unoccupied.
func (ix *Index) Open(c Cell) bool {
	return ix.grid.Passable(c) && !ix.Occupied(c)
}
