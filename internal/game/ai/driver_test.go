package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/skill"
)

func unit(id, team string, ctl combat.Controller, x, y int) *combat.Participant {
	return &combat.Participant{
		ID: id, Name: id, Team: team, Controller: ctl, Archetype: "aggressive",
		Pos: grid.Cell{X: x, Y: y}, CurrentHP: 40, MaxHP: 40,
		MovementRange: 3, AttackRange: 1,
		Stats: combat.Stats{Attack: 8},
	}
}

func newMatch(t *testing.T, actions int, ps ...*combat.Participant) (*combat.Engine, string) {
	t.Helper()
	return newMatchWith(t, nil, actions, ps...)
}

func newMatchWith(t *testing.T, skills *skill.Registry, actions int, ps ...*combat.Participant) (*combat.Engine, string) {
	t.Helper()
	eng := combat.NewEngine(skills, zaptest.NewLogger(t))
	g, err := grid.New(8, nil)
	require.NoError(t, err)
	id, err := eng.CreateMatch(g, actions)
	require.NoError(t, err)
	for _, p := range ps {
		require.NoError(t, eng.Seat(id, p))
	}
	require.NoError(t, eng.Start(id))
	return eng, id
}

func TestDriver_Act_ApproachesThenAttacks(t *testing.T) {
	eng, id := newMatch(t, 5,
		unit("hero", "players", combat.ControllerPlayer, 0, 0),
		unit("bot", "arena", combat.ControllerNPC, 3, 0),
	)
	d := ai.NewDriver(eng, zaptest.NewLogger(t))

	turn, err := d.Act(id, "bot", &stubSrc{f: 0.99, n: 99})
	require.NoError(t, err)
	assert.Equal(t, "hero", turn.Decision.TargetID)
	require.Len(t, turn.Outcomes, 2)
	require.True(t, turn.Outcomes[0].Success, turn.Outcomes[0].Message)
	assert.Equal(t, grid.Cell{X: 1, Y: 0}, turn.Outcomes[0].Move.To)
	require.True(t, turn.Outcomes[1].Success, turn.Outcomes[1].Message)
	assert.Equal(t, 8, turn.Outcomes[1].Attack.Damage)

	snap, err := eng.Snapshot(id)
	require.NoError(t, err)
	hero, _ := snap.Participant("hero")
	assert.Equal(t, 32, hero.CurrentHP)
}

func TestDriver_Act_TooFarOnlyMoves(t *testing.T) {
	eng, id := newMatch(t, 5,
		unit("hero", "players", combat.ControllerPlayer, 0, 0),
		unit("bot", "arena", combat.ControllerNPC, 7, 7),
	)
	d := ai.NewDriver(eng, nil)

	turn, err := d.Act(id, "bot", &stubSrc{f: 0.99})
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 1)
	assert.Equal(t, combat.ActionMove, turn.Outcomes[0].Action)
	assert.Equal(t, 11, grid.Distance(turn.Outcomes[0].Move.To, grid.Cell{}))
}

func TestDriver_Act_DefendSubmitsNothing(t *testing.T) {
	bot := unit("bot", "arena", combat.ControllerNPC, 1, 0)
	bot.Archetype = "passive"
	bot.CurrentHP = 30
	eng, id := newMatch(t, 5, unit("hero", "players", combat.ControllerPlayer, 0, 0), bot)
	d := ai.NewDriver(eng, nil)

	turn, err := d.Act(id, "bot", &stubSrc{f: 0.1})
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, turn.Decision.Action)
	assert.Empty(t, turn.Outcomes)

	log, err := eng.Log(id)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestDriver_Act_Errors(t *testing.T) {
	eng, id := newMatch(t, 5,
		unit("hero", "players", combat.ControllerPlayer, 0, 0),
		unit("bot", "arena", combat.ControllerNPC, 1, 0),
	)
	d := ai.NewDriver(eng, nil)

	_, err := d.Act("nope", "bot", &stubSrc{})
	assert.ErrorIs(t, err, combat.ErrMatchNotFound)
	_, err = d.Act(id, "ghost", &stubSrc{})
	assert.ErrorIs(t, err, combat.ErrParticipantNotFound)
}

func TestDriver_Tick_StopsWhenMatchEnds(t *testing.T) {
	hero := unit("hero", "players", combat.ControllerPlayer, 0, 0)
	hero.CurrentHP = 5
	eng, id := newMatch(t, 5, hero,
		unit("bot1", "arena", combat.ControllerNPC, 1, 0),
		unit("bot2", "arena", combat.ControllerNPC, 0, 1),
	)
	d := ai.NewDriver(eng, nil)

	turns, err := d.Tick(id, &stubSrc{f: 0.99, n: 50})
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.True(t, turns[0].Outcomes[0].MatchEnded)

	turns, err = d.Tick(id, &stubSrc{f: 0.99, n: 50})
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func casterSkills(t *testing.T) *skill.Registry {
	t.Helper()
	reg := skill.NewRegistry()
	require.NoError(t, reg.Register(&skill.Definition{
		ID: "firebolt", Name: "Firebolt", Type: skill.TypeDamage, MPCost: 8,
		Metadata: map[string]any{"base_damage": 20, "range": 4},
	}))
	require.NoError(t, reg.Register(&skill.Definition{
		ID: "mend", Name: "Mend", Type: skill.TypeHeal, MPCost: 10,
		Metadata: map[string]any{"heal_amount": 25},
	}))
	return reg
}

func caster(x, y, mp int) *combat.Participant {
	p := unit("bot", "arena", combat.ControllerNPC, x, y)
	p.CurrentMP, p.MaxMP = mp, 30
	p.Skills = []string{"mend", "firebolt"}
	return p
}

func TestDriver_Act_CastsRangedSkillOutOfReach(t *testing.T) {
	eng, id := newMatchWith(t, casterSkills(t), 5,
		unit("hero", "players", combat.ControllerPlayer, 0, 0),
		caster(4, 0, 30),
	)
	d := ai.NewDriver(eng, nil)

	turn, err := d.Act(id, "bot", &stubSrc{f: 0.99})
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 1)
	out := turn.Outcomes[0]
	require.True(t, out.Success, out.Message)
	assert.Equal(t, combat.ActionSkill, out.Action)
	assert.Equal(t, "firebolt", out.Skill.SkillID)

	snap, err := eng.Snapshot(id)
	require.NoError(t, err)
	hero, _ := snap.Participant("hero")
	bot, _ := snap.Participant("bot")
	assert.Equal(t, 20, hero.CurrentHP)
	assert.Equal(t, 22, bot.CurrentMP)
	assert.Equal(t, grid.Cell{X: 4, Y: 0}, bot.Pos)
}

func TestDriver_Act_MovesIntoSkillRangeThenCasts(t *testing.T) {
	eng, id := newMatchWith(t, casterSkills(t), 5,
		unit("hero", "players", combat.ControllerPlayer, 0, 0),
		caster(7, 0, 30),
	)
	d := ai.NewDriver(eng, nil)

	turn, err := d.Act(id, "bot", &stubSrc{f: 0.99})
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 2)
	require.True(t, turn.Outcomes[0].Success, turn.Outcomes[0].Message)
	assert.Equal(t, grid.Cell{X: 4, Y: 0}, turn.Outcomes[0].Move.To)
	require.True(t, turn.Outcomes[1].Success, turn.Outcomes[1].Message)
	assert.Equal(t, combat.ActionSkill, turn.Outcomes[1].Action)
}

func TestDriver_Act_WithoutMPFallsBackToMelee(t *testing.T) {
	eng, id := newMatchWith(t, casterSkills(t), 5,
		unit("hero", "players", combat.ControllerPlayer, 0, 0),
		caster(3, 0, 5),
	)
	d := ai.NewDriver(eng, nil)

	turn, err := d.Act(id, "bot", &stubSrc{f: 0.99})
	require.NoError(t, err)
	require.Len(t, turn.Outcomes, 2)
	assert.Equal(t, combat.ActionMove, turn.Outcomes[0].Action)
	assert.Equal(t, combat.ActionAttack, turn.Outcomes[1].Action)
	assert.True(t, turn.Outcomes[1].Success, turn.Outcomes[1].Message)
}

func TestDriver_Act_DefendHealsWhenWounded(t *testing.T) {
	bot := caster(1, 0, 30)
	bot.Archetype = "passive"
	bot.CurrentHP = 30
	eng, id := newMatchWith(t, casterSkills(t), 5, unit("hero", "players", combat.ControllerPlayer, 0, 0), bot)
	d := ai.NewDriver(eng, nil)

	turn, err := d.Act(id, "bot", &stubSrc{f: 0.1})
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDefend, turn.Decision.Action)
	require.Len(t, turn.Outcomes, 1)
	out := turn.Outcomes[0]
	require.True(t, out.Success, out.Message)
	assert.Equal(t, "mend", out.Skill.SkillID)
	require.Len(t, out.Skill.Hits, 1)
	assert.Equal(t, "bot", out.Skill.Hits[0].TargetID)
	assert.Equal(t, 10, out.Skill.Hits[0].Amount)

	snap, err := eng.Snapshot(id)
	require.NoError(t, err)
	p, _ := snap.Participant("bot")
	assert.Equal(t, 40, p.CurrentHP)
	assert.Equal(t, 20, p.CurrentMP)
}
