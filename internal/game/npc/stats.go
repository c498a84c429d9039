package npc

import (
	"math"

	"github.com/cory-johannsen/tactics/internal/game/combat"
)

// Role scales an NPC's resolved stats.
type Role string

const (
	RoleHostile  Role = "hostile"
	RoleArenaBot Role = "arena_bot"
	RoleElite    Role = "elite"
)

// multiplier scales attack, defense and hp; other stats are unscaled.
var roleMultipliers = map[Role]float64{
	RoleHostile:  1.0,
	RoleArenaBot: 0.9,
	RoleElite:    1.25,
}

// Resolved is the outcome of stat resolution.
type Resolved struct {
	Stats combat.Stats
	MaxHP int
	// Source names the resolver that produced the stats: "override", "derived" or "formula".
	Source string
}

// resolver produces stats for t, or reports false to defer to the next resolver.
type resolver struct {
	name string
	fn   func(t *Template) (combat.Stats, int, bool)
}

var resolvers = []resolver{
	{"override", overrideStats},
	{"derived", derivedStats},
	{"formula", formulaStats},
}

// ResolveStats computes an NPC's combat stats: explicit overrides if present,
// else stats derived from base fields, else the level formula; the role
// multiplier is then applied to attack, defense and hp.
//
// Precondition: t must be a validated template.
// Postcondition: deterministic in t; MaxHP >= 1.
func ResolveStats(t *Template) Resolved {
	var r Resolved
	for _, res := range resolvers {
		stats, hp, ok := res.fn(t)
		if !ok {
			continue
		}
		r = Resolved{Stats: stats, MaxHP: hp, Source: res.name}
		break
	}

	mult := roleMultipliers[t.role()]
	r.Stats.Attack = scale(r.Stats.Attack, mult)
	r.Stats.Defense = scale(r.Stats.Defense, mult)
	r.MaxHP = scale(r.MaxHP, mult)
	if r.MaxHP < 1 {
		r.MaxHP = 1
	}
	return r
}

// scale multiplies v by m, truncating toward zero. The epsilon absorbs
// binary representation error so 70 * 0.9 yields 63, not 62.
func scale(v int, m float64) int {
	x := float64(v) * m
	if x < 0 {
		return -int(math.Floor(-x + 1e-9))
	}
	return int(math.Floor(x + 1e-9))
}

func overrideStats(t *Template) (combat.Stats, int, bool) {
	o := t.Overrides
	if o == nil {
		return combat.Stats{}, 0, false
	}
	return combat.Stats{
		Attack:       o.Attack,
		Defense:      o.Defense,
		Agility:      o.Agility,
		Intelligence: o.Intelligence,
		Spirit:       o.Spirit,
		CritChance:   o.CritChance,
		DodgeChance:  o.DodgeChance,
	}, o.HP, true
}

func derivedStats(t *Template) (combat.Stats, int, bool) {
	b := t.Base
	if b == nil {
		return combat.Stats{}, 0, false
	}
	return combat.Stats{
		Attack:       b.Strength*2 + t.Level,
		Defense:      b.Toughness + t.Level,
		Agility:      b.Quickness,
		Intelligence: b.Wits,
		Spirit:       b.Resolve,
		CritChance:   5 + b.Quickness/2,
		DodgeChance:  min(b.Quickness/2, 25),
	}, b.Toughness*4 + t.Level*8, true
}

func formulaStats(t *Template) (combat.Stats, int, bool) {
	l := t.Level
	return combat.Stats{
		Attack:       l*3 + 5,
		Defense:      l*2 + 3,
		Agility:      l + 5,
		Intelligence: l * 2,
		Spirit:       l * 2,
		CritChance:   10,
		DodgeChance:  min(l/2, 25),
	}, l*10 + 20, true
}
