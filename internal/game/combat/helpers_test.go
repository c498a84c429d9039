package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// fixedSrc is a deterministic Source for testing.
// It returns f.val for every Intn call with no bounds clamping.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

// seqSrc returns vals in order, then repeats the last one.
type seqSrc struct {
	vals []int
	i    int
}

func (s *seqSrc) Intn(_ int) int {
	v := s.vals[s.i]
	if s.i < len(s.vals)-1 {
		s.i++
	}
	return v
}

// noCrit never rolls a critical hit.
var noCrit = fixedSrc{val: 99}

func fighter(id, team string, x, y int) *combat.Participant {
	return &combat.Participant{
		ID:            id,
		Name:          id,
		Team:          team,
		Pos:           grid.Cell{X: x, Y: y},
		CurrentHP:     50,
		MaxHP:         50,
		CurrentMP:     30,
		MaxMP:         30,
		MovementRange: 3,
		AttackRange:   1,
		Stats:         combat.Stats{Attack: 10, Defense: 5, Agility: 5, Intelligence: 8, Spirit: 6},
	}
}

// newActiveMatch seats ps on an open size×size grid and starts the match.
func newActiveMatch(t *testing.T, size, actions int, ps ...*combat.Participant) *combat.Match {
	t.Helper()
	g, err := grid.New(size, nil)
	require.NoError(t, err)
	m, err := combat.NewMatch("m1", g, actions)
	require.NoError(t, err)
	for _, p := range ps {
		require.NoError(t, m.Seat(p))
	}
	require.NoError(t, m.Start())
	return m
}
