package combat

import (
	"fmt"
	"strconv"
)

// CriticalThreshold is the percentile below which an attack is critical (15%).
const CriticalThreshold = 15

// AttackResult holds the outcome of a single melee attack.
type AttackResult struct {
	AttackerID string
	TargetID   string
	// Roll is the percentile critical roll in [0, 100).
	Roll int
	// Critical is true when Roll < CriticalThreshold.
	Critical bool
	// Damage is the HP actually removed from the target.
	Damage int
	// TargetHP is the target's HP after the hit.
	TargetHP       int
	TargetDefeated bool
	MatchEnded     bool
}

// Source is the subset of dice.Source used by the resolver.
// Using a local interface keeps the engine free of the dice package's concrete sources.
type Source interface {
	Intn(n int) int
}

// RollDamage computes the raw damage of an attack from attack power and a source.
// A percentile roll below CriticalThreshold multiplies damage by 1.5, truncated.
//
// Precondition: attack >= 0; src must be non-nil.
// Postcondition: Returns (damage, roll, critical) with damage >= attack.
func RollDamage(attack int, src Source) (damage, roll int, critical bool) {
	roll = src.Intn(100)
	if roll < CriticalThreshold {
		return attack * 3 / 2, roll, true
	}
	return attack, roll, false
}

// ExecuteAttack validates and resolves a melee attack by attackerID on targetID.
//
// Precondition: the caller holds exclusive access to m; src must be non-nil.
// Postcondition: on success damage is applied (clamped to the target's HP), one action
// is spent, an attack entry is logged, and a target defeat that empties its team
// completes the match; on error nothing changes and src is not consumed.
func ExecuteAttack(m *Match, attackerID, targetID string, src Source) (AttackResult, error) {
	if err := m.guard(); err != nil {
		return AttackResult{}, err
	}
	attacker, ok := m.living(attackerID)
	if !ok {
		return AttackResult{}, fail(CodeAttackerNotFound, "no living attacker %q", attackerID)
	}
	target, ok := m.Participant(targetID)
	if !ok || target.ID == attacker.ID {
		return AttackResult{}, fail(CodeTargetNotFound, "no target %q", targetID)
	}
	if !target.Alive() {
		return AttackResult{}, fail(CodeTargetAlreadyDefeated, "%s is already defeated", target.DisplayName())
	}
	if !attacker.CanEngage(target) {
		return AttackResult{}, fail(CodeOutOfRange, "%s is out of %s's reach", target.DisplayName(), attacker.DisplayName())
	}

	raw, roll, crit := RollDamage(attacker.EffectiveAttack(), src)
	dealt := target.ApplyDamage(raw)
	m.spendAction()

	res := AttackResult{
		AttackerID:     attacker.ID,
		TargetID:       target.ID,
		Roll:           roll,
		Critical:       crit,
		Damage:         dealt,
		TargetHP:       target.CurrentHP,
		TargetDefeated: !target.Alive(),
	}
	if res.TargetDefeated {
		res.MatchEnded = m.settleDefeats(target.Team)
	}

	msg := fmt.Sprintf("%s attacks %s for %d damage.", attacker.DisplayName(), target.DisplayName(), dealt)
	if crit {
		msg = fmt.Sprintf("%s critically hits %s for %d damage!", attacker.DisplayName(), target.DisplayName(), dealt)
	}
	if res.TargetDefeated {
		msg += fmt.Sprintf(" %s is defeated.", target.DisplayName())
	}
	m.log.Append(m.TurnNumber, KindAttack, msg, Payload{
		ActorID:  attacker.ID,
		TargetID: target.ID,
		Deltas:   map[string]int{"damage": dealt, "target_hp": target.CurrentHP, "roll": roll},
		Data: map[string]string{
			"critical": strconv.FormatBool(crit),
			"defeated": strconv.FormatBool(res.TargetDefeated),
		},
	})
	return res, nil
}
