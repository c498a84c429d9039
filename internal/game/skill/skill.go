// Package skill defines ability definitions and compiles their free-form
// metadata into a typed Effect once, at load time.
package skill

import (
	"errors"
	"fmt"
	"math"
)

// Type is the declared kind of a skill definition.
type Type string

const (
	TypeDamage Type = "damage"
	TypeHeal   Type = "heal"
	TypeBuff   Type = "buff"
	TypeAoe    Type = "aoe"
)

// Defaults applied when a metadata key is absent.
const (
	DefaultDamageBase   = 20
	DefaultDamageRange  = 3
	DefaultHealAmount   = 30
	DefaultBuffKey      = "attack_bonus"
	DefaultBuffValue    = 10
	DefaultBuffDuration = 3
	DefaultAoeBase      = 15
	DefaultAoeRadius    = 1
)

// ErrUnknownSkillType is returned when a definition's type is not one of the four known kinds.
var ErrUnknownSkillType = errors.New("unknown skill type")

// Definition is the on-disk form of a skill.
type Definition struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Type     Type           `yaml:"type"`
	MPCost   int            `yaml:"mp_cost"`
	Metadata map[string]any `yaml:"metadata"`
}

// Effect is the compiled, type-specific part of a skill.
// Exactly one of DamageEffect, HealEffect, BuffEffect or AoeEffect.
type Effect interface {
	Type() Type
}

// DamageEffect hits one participant within Range.
type DamageEffect struct {
	Base  int
	Range int
}

// HealEffect restores HP on one participant (the caster when no target is given).
type HealEffect struct {
	Amount int
}

// BuffEffect attaches a timed modifier to the caster.
type BuffEffect struct {
	Key      string
	Value    int
	Duration int
}

// AoeEffect hits every other living participant within Radius of a target cell.
type AoeEffect struct {
	Base   int
	Radius int
}

func (DamageEffect) Type() Type { return TypeDamage }
func (HealEffect) Type() Type   { return TypeHeal }
func (BuffEffect) Type() Type   { return TypeBuff }
func (AoeEffect) Type() Type    { return TypeAoe }

// Skill is a compiled skill ready for resolution.
type Skill struct {
	ID     string
	Name   string
	MPCost int
	Effect Effect
}

// Compile validates d and builds its typed Effect, filling metadata defaults.
//
// Precondition: d must not be nil.
// Postcondition: Returns a Skill whose Effect is non-nil, or an error. An unknown
// type yields an error wrapping ErrUnknownSkillType.
func (d *Definition) Compile() (*Skill, error) {
	if d.ID == "" {
		return nil, errors.New("skill: id must not be empty")
	}
	if d.MPCost < 0 {
		return nil, fmt.Errorf("skill %q: mp_cost must be >= 0, got %d", d.ID, d.MPCost)
	}
	md := metadata(d.Metadata)

	var eff Effect
	var err error
	switch d.Type {
	case TypeDamage:
		var e DamageEffect
		if e.Base, err = md.intValue("base_damage", DefaultDamageBase); err != nil {
			break
		}
		e.Range, err = md.intValue("range", DefaultDamageRange)
		eff = e
	case TypeHeal:
		var e HealEffect
		e.Amount, err = md.intValue("heal_amount", DefaultHealAmount)
		eff = e
	case TypeBuff:
		var e BuffEffect
		if e.Key, err = md.stringValue("buff_key", DefaultBuffKey); err != nil {
			break
		}
		if e.Value, err = md.intValue("buff_value", DefaultBuffValue); err != nil {
			break
		}
		e.Duration, err = md.intValue("duration", DefaultBuffDuration)
		eff = e
	case TypeAoe:
		var e AoeEffect
		if e.Base, err = md.intValue("base_damage", DefaultAoeBase); err != nil {
			break
		}
		e.Radius, err = md.intValue("radius", DefaultAoeRadius)
		eff = e
	default:
		return nil, fmt.Errorf("skill %q: %w %q", d.ID, ErrUnknownSkillType, d.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("skill %q: %w", d.ID, err)
	}

	name := d.Name
	if name == "" {
		name = d.ID
	}
	return &Skill{ID: d.ID, Name: name, MPCost: d.MPCost, Effect: eff}, nil
}

type metadata map[string]any

func (m metadata) intValue(key string, def int) (int, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("metadata %q must be an integer, got %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("metadata %q must be an integer, got %T", key, raw)
	}
}

func (m metadata) stringValue(key, def string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("metadata %q must be a string, got %T", key, raw)
	}
	return s, nil
}
