package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/tactics/internal/game/combat"
)

func TestRollInitiative_OrdersByTotalThenID(t *testing.T) {
	a := fighter("a", "red", 0, 0)
	b := fighter("b", "blue", 1, 0)
	c := fighter("c", "blue", 2, 0)
	d := fighter("d", "red", 3, 0)
	d.CurrentHP = 0
	a.Stats.Agility = 2
	b.Stats.Agility = 2
	c.Stats.Agility = 9

	order := combat.RollInitiative([]*combat.Participant{b, a, c, d}, fixedSrc{val: 10})
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestRollInitiative_UsesRolls(t *testing.T) {
	a := fighter("a", "red", 0, 0)
	b := fighter("b", "blue", 1, 0)
	order := combat.RollInitiative([]*combat.Participant{a, b}, &seqSrc{vals: []int{0, 19}})
	assert.Equal(t, []string{"b", "a"}, order)
}
