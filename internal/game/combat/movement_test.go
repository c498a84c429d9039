package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// TestMove_ScenarioA: a cell two steps away within range is listed and reachable.
func TestMove_ScenarioA(t *testing.T) {
	a := fighter("a", "red", 0, 0)
	a.MovementRange = 2
	m := newActiveMatch(t, 5, 3, a, fighter("b", "blue", 4, 4))

	assert.Contains(t, combat.ValidPositions(m, a), grid.Cell{X: 2, Y: 0})

	res, err := combat.ExecuteMove(m, "a", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, res.From)
	assert.Equal(t, grid.Cell{X: 2, Y: 0}, res.To)
	assert.Equal(t, grid.Cell{X: 2, Y: 0}, a.Pos)
	assert.Equal(t, 2, m.ActionsRemaining)

	entries := m.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, combat.KindMovement, entries[0].Kind)
	assert.Equal(t, 2, entries[0].Payload.Deltas["distance"])
}

func TestMove_ValidPositions_HugeRangeStaysBounded(t *testing.T) {
	a := fighter("a", "red", 0, 0)
	a.MovementRange = 1 << 40
	m := newActiveMatch(t, 5, 3, a, fighter("b", "blue", 4, 4))

	start := time.Now()
	cells := combat.ValidPositions(m, a)
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, cells, 23)

	_, err := combat.ExecuteMove(m, "a", 4, 3)
	require.NoError(t, err)
}

func TestMove_ValidPositions_ExcludesOwnCellAndObstacles(t *testing.T) {
	g, err := grid.New(5, map[grid.Cell]grid.Tile{{X: 0, Y: 1}: {Passable: false}})
	require.NoError(t, err)
	m, err := combat.NewMatch("m", g, 3)
	require.NoError(t, err)
	a := fighter("a", "red", 0, 0)
	a.MovementRange = 1
	require.NoError(t, m.Seat(a))
	require.NoError(t, m.Seat(fighter("b", "blue", 1, 0)))
	require.NoError(t, m.Start())

	assert.Empty(t, combat.ValidPositions(m, a))
}

func TestMove_RejectionCodes(t *testing.T) {
	g, err := grid.New(5, map[grid.Cell]grid.Tile{{X: 0, Y: 1}: {Passable: false}})
	require.NoError(t, err)
	m, err := combat.NewMatch("m", g, 5)
	require.NoError(t, err)
	a := fighter("a", "red", 0, 0)
	a.MovementRange = 2
	require.NoError(t, m.Seat(a))
	require.NoError(t, m.Seat(fighter("b", "blue", 1, 0)))
	require.NoError(t, m.Start())

	tests := []struct {
		name string
		id   string
		x, y int
		want error
	}{
		{"out of bounds", "a", -1, 0, combat.ErrOutOfBounds},
		{"occupied", "a", 1, 0, combat.ErrTileOccupied},
		{"own cell", "a", 0, 0, combat.ErrTileOccupied},
		{"impassable", "a", 0, 1, combat.ErrTileImpassable},
		{"too far", "a", 2, 2, combat.ErrOutOfRange},
		{"unknown mover", "ghost", 1, 1, combat.ErrParticipantNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := combat.ExecuteMove(m, tc.id, tc.x, tc.y)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, a.Pos)
	assert.Equal(t, 5, m.ActionsRemaining)
	assert.Zero(t, m.Log().Len())
}

func TestMove_DefeatedParticipantCannotMove(t *testing.T) {
	a := fighter("a", "red", 0, 0)
	m := newActiveMatch(t, 5, 3, a, fighter("b", "blue", 4, 4), fighter("c", "red", 2, 2))
	a.CurrentHP = 0
	_, err := combat.ExecuteMove(m, "a", 1, 0)
	assert.ErrorIs(t, err, combat.ErrParticipantNotFound)
	assert.Nil(t, combat.ValidPositions(m, a))
}

// TestProperty_Move_CalculatorAgreesWithProcessor: a destination succeeds iff
// it is listed by ValidPositions.
func TestProperty_Move_CalculatorAgreesWithProcessor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(3, 8).Draw(rt, "size")
		walls := make(map[grid.Cell]grid.Tile)
		for _, c := range rapid.SliceOfN(rapid.IntRange(0, size*size-1), 0, size).Draw(rt, "walls") {
			walls[grid.Cell{X: c % size, Y: c / size}] = grid.Tile{Passable: false}
		}
		delete(walls, grid.Cell{X: 0, Y: 0})
		delete(walls, grid.Cell{X: size - 1, Y: size - 1})
		g, err := grid.New(size, walls)
		if err != nil {
			rt.Fatal(err)
		}
		m, err := combat.NewMatch("m", g, 1)
		if err != nil {
			rt.Fatal(err)
		}
		a := fighter("a", "red", 0, 0)
		a.MovementRange = rapid.IntRange(0, 4).Draw(rt, "range")
		if err := m.Seat(a); err != nil {
			rt.Fatal(err)
		}
		if err := m.Seat(fighter("b", "blue", size-1, size-1)); err != nil {
			rt.Fatal(err)
		}
		if err := m.Start(); err != nil {
			rt.Fatal(err)
		}

		valid := make(map[grid.Cell]bool)
		for _, c := range combat.ValidPositions(m, a) {
			valid[c] = true
		}
		dest := grid.Cell{
			X: rapid.IntRange(-1, size).Draw(rt, "x"),
			Y: rapid.IntRange(-1, size).Draw(rt, "y"),
		}
		_, err = combat.ExecuteMove(m, "a", dest.X, dest.Y)
		if valid[dest] != (err == nil) {
			rt.Fatalf("dest %s: listed=%v but move err=%v", dest, valid[dest], err)
		}
	})
}
