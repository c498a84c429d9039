package combat

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// Participant is one combatant seated in a match. It is owned exclusively by its
// Match and is not safe for concurrent use; the Engine serialises access.
//
// Invariant: 0 <= CurrentHP <= MaxHP; 0 <= CurrentMP <= MaxMP.
type Participant struct {
	ID string
	// CharacterRef is the external character identity or NPC template ID.
	CharacterRef string
	Name         string
	Team         string
	Controller   Controller
	// Archetype is the NPC behavior profile name; empty for players.
	Archetype     string
	Pos           grid.Cell
	CurrentHP     int
	MaxHP         int
	CurrentMP     int
	MaxMP         int
	MovementRange int
	AttackRange   int
	Stats         Stats
	Buffs         []Buff
	// Skills lists the skill IDs this participant knows, in preference order.
	Skills []string
}

// Alive reports whether CurrentHP > 0.
func (p *Participant) Alive() bool { return p.CurrentHP > 0 }

// IsNPC reports whether this participant is NPC-controlled.
func (p *Participant) IsNPC() bool { return p.Controller == ControllerNPC }

// DisplayName returns Name, falling back to ID.
func (p *Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// CanEngage reports whether target is within this participant's attack range.
//
// Precondition: target must be non-nil.
func (p *Participant) CanEngage(target *Participant) bool {
	return grid.Distance(p.Pos, target.Pos) <= p.AttackRange
}

// BuffTotal sums the magnitudes of all active buffs with key.
func (p *Participant) BuffTotal(key string) int {
	total := 0
	for _, b := range p.Buffs {
		if b.Key == key {
			total += b.Magnitude
		}
	}
	return total
}

// EffectiveAttack returns the attack stat plus active attack_bonus buffs, floored at zero.
//
// Postcondition: Returns >= 0.
func (p *Participant) EffectiveAttack() int {
	atk := p.Stats.Attack + p.BuffTotal(BuffAttackBonus)
	if atk < 0 {
		return 0
	}
	return atk
}

// HPRatio returns CurrentHP / MaxHP, or 0 when MaxHP is not positive.
func (p *Participant) HPRatio() float64 {
	if p.MaxHP <= 0 {
		return 0
	}
	return float64(p.CurrentHP) / float64(p.MaxHP)
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
//
// Postcondition: CurrentHP >= 0; returns the HP actually removed, which is
// min(max(amount, 0), HP before the hit).
func (p *Participant) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > p.CurrentHP {
		amount = p.CurrentHP
	}
	p.CurrentHP -= amount
	return amount
}

// ApplyHeal raises CurrentHP by amount, capped at MaxHP.
//
// Postcondition: CurrentHP <= MaxHP; returns the HP actually restored.
func (p *Participant) ApplyHeal(amount int) int {
	if amount <= 0 {
		return 0
	}
	if room := p.MaxHP - p.CurrentHP; amount > room {
		amount = room
	}
	p.CurrentHP += amount
	return amount
}

// AddBuff appends b to the buff list. Buffs with the same key stack.
func (p *Participant) AddBuff(b Buff) {
	p.Buffs = append(p.Buffs, b)
}

// tickBuffs decrements every buff's remaining rounds and drops expired ones,
// preserving the order of the survivors.
//
// Postcondition: every remaining buff has RoundsRemaining > 0; returns expired keys in list order.
func (p *Participant) tickBuffs() []string {
	var expired []string
	kept := p.Buffs[:0]
	for _, b := range p.Buffs {
		b.RoundsRemaining--
		if b.RoundsRemaining <= 0 {
			expired = append(expired, b.Key)
			continue
		}
		kept = append(kept, b)
	}
	p.Buffs = kept
	return expired
}

// validate checks the resource invariants of a participant being seated.
func (p *Participant) validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("participant id must not be empty")
	case p.Team == "":
		return fmt.Errorf("participant %q: team must not be empty", p.ID)
	case p.MaxHP < 1:
		return fmt.Errorf("participant %q: max_hp must be >= 1, got %d", p.ID, p.MaxHP)
	case p.CurrentHP < 0 || p.CurrentHP > p.MaxHP:
		return fmt.Errorf("participant %q: current_hp %d outside [0, %d]", p.ID, p.CurrentHP, p.MaxHP)
	case p.MaxMP < 0:
		return fmt.Errorf("participant %q: max_mp must be >= 0, got %d", p.ID, p.MaxMP)
	case p.CurrentMP < 0 || p.CurrentMP > p.MaxMP:
		return fmt.Errorf("participant %q: current_mp %d outside [0, %d]", p.ID, p.CurrentMP, p.MaxMP)
	case p.MovementRange < 0 || p.AttackRange < 0:
		return fmt.Errorf("participant %q: ranges must be >= 0", p.ID)
	}
	return nil
}

// clone returns a deep copy of p.
func (p *Participant) clone() *Participant {
	cp := *p
	cp.Buffs = append([]Buff(nil), p.Buffs...)
	cp.Skills = append([]string(nil), p.Skills...)
	return &cp
}
