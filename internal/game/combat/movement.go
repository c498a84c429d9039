package combat

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// MoveResult reports a resolved move.
type MoveResult struct {
	ParticipantID string
	From          grid.Cell
	To            grid.Cell
}

// checkDestination applies the spatial move rules in their reporting order:
// OutOfBounds, TileOccupied, TileImpassable, OutOfRange.
// The Calculator and the Processor both use it, so they cannot disagree.
func checkDestination(m *Match, ix *grid.Index, p *Participant, dest grid.Cell) *ActionError {
	if !m.Grid.InBounds(dest) {
		return fail(CodeOutOfBounds, "%s is outside the %dx%d grid", dest, m.Grid.Size(), m.Grid.Size())
	}
	if occ, ok := ix.Occupant(dest); ok {
		return fail(CodeTileOccupied, "%s is occupied by %s", dest, occ)
	}
	if !m.Grid.Passable(dest) {
		return fail(CodeTileImpassable, "%s is impassable", dest)
	}
	if d := grid.Distance(p.Pos, dest); d > p.MovementRange {
		return fail(CodeOutOfRange, "%s is %d steps away; movement range is %d", dest, d, p.MovementRange)
	}
	return nil
}

// ValidPositions lists every destination p may move to: in bounds, passable,
// unoccupied and within p.MovementRange of its current cell. The current cell is
// excluded. Results are ordered by ascending distance, then y, then x.
//
// Precondition: p must be non-nil.
// Postcondition: Returns nil for a defeated participant.
func ValidPositions(m *Match, p *Participant) []grid.Cell {
	if !p.Alive() {
		return nil
	}
	ix := m.Index()
	var out []grid.Cell
	for _, c := range m.Grid.Within(p.Pos, p.MovementRange) {
		if checkDestination(m, ix, p, c) == nil {
			out = append(out, c)
		}
	}
	return out
}

// ValidTargets lists every other living participant that p can attack from its
// current position, nearest first, ties broken by ID. It is an affordance for
// callers; ExecuteAttack re-validates independently.
//
// Precondition: p must be non-nil.
func ValidTargets(m *Match, p *Participant) []*Participant {
	if !p.Alive() {
		return nil
	}
	var out []*Participant
	for _, o := range m.participants {
		if o.ID == p.ID || !o.Alive() {
			continue
		}
		if p.CanEngage(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := grid.Distance(p.Pos, out[i].Pos), grid.Distance(p.Pos, out[j].Pos)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ExecuteMove validates and applies a move of participantID to (x, y).
//
// Precondition: the caller holds exclusive access to m.
// Postcondition: on success the participant stands on (x, y), one action is spent and
// a movement entry is logged; on error nothing changes.
func ExecuteMove(m *Match, participantID string, x, y int) (MoveResult, error) {
	if err := m.guard(); err != nil {
		return MoveResult{}, err
	}
	p, ok := m.living(participantID)
	if !ok {
		return MoveResult{}, fail(CodeParticipantNotFound, "no living participant %q", participantID)
	}
	dest := grid.Cell{X: x, Y: y}
	if err := checkDestination(m, m.Index(), p, dest); err != nil {
		return MoveResult{}, err
	}

	from := p.Pos
	p.Pos = dest
	m.spendAction()
	m.log.Append(m.TurnNumber, KindMovement,
		fmt.Sprintf("%s moves from %s to %s.", p.DisplayName(), from, dest),
		Payload{
			ActorID: p.ID,
			Deltas:  map[string]int{"from_x": from.X, "from_y": from.Y, "to_x": dest.X, "to_y": dest.Y, "distance": grid.Distance(from, dest)},
		},
	)
	return MoveResult{ParticipantID: p.ID, From: from, To: dest}, nil
}
