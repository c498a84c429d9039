package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/skill"
)

// SkillHit is the effect of a skill on one participant.
type SkillHit struct {
	TargetID string
	// Amount is the HP actually removed (damage, aoe) or restored (heal).
	Amount      int
	RemainingHP int
	Defeated    bool
}

// SkillResult reports a resolved skill.
type SkillResult struct {
	CasterID string
	SkillID  string
	Type     skill.Type
	MPSpent  int
	// Hits lists affected participants in seat order; empty for buffs and for
	// an aoe that caught nobody.
	Hits []SkillHit
	// Buff is the buff applied to the caster, for buff skills.
	Buff       *Buff
	MatchEnded bool
}

// ExecuteSkill validates and resolves sk cast by casterID.
// targetID is required for damage skills and optional for heals (defaulting to
// the caster); cell is required for aoe skills. Both are ignored where unused.
//
// Heals accept any living participant and aoe hits every other living
// participant regardless of team; faction policy belongs to the caller.
//
// Precondition: the caller holds exclusive access to m.
// Postcondition: on success MP is deducted, one action is spent, the effect is applied
// and a skill entry is logged; on error nothing changes.
func ExecuteSkill(m *Match, casterID string, sk *skill.Skill, targetID string, cell *grid.Cell) (SkillResult, error) {
	if err := m.guard(); err != nil {
		return SkillResult{}, err
	}
	caster, ok := m.living(casterID)
	if !ok {
		return SkillResult{}, fail(CodeParticipantNotFound, "no living caster %q", casterID)
	}
	if sk == nil || sk.Effect == nil {
		return SkillResult{}, fail(CodeUnknownSkillType, "skill has no resolvable effect")
	}
	if sk.MPCost < 0 {
		return SkillResult{}, fail(CodeUnknownSkillType, "skill %q has negative mp cost %d", sk.ID, sk.MPCost)
	}
	if caster.CurrentMP < sk.MPCost {
		return SkillResult{}, fail(CodeInsufficientResource, "%s needs %d MP, has %d", sk.Name, sk.MPCost, caster.CurrentMP)
	}

	// Validate and plan before touching any state.
	var apply func(*SkillResult)
	switch eff := sk.Effect.(type) {
	case skill.DamageEffect:
		target, ok := m.living(targetID)
		if !ok || target.ID == caster.ID {
			return SkillResult{}, fail(CodeTargetNotFound, "no living target %q", targetID)
		}
		if d := grid.Distance(caster.Pos, target.Pos); d > eff.Range {
			return SkillResult{}, fail(CodeTargetOutOfRange, "%s is %d steps away; %s reaches %d", target.DisplayName(), d, sk.Name, eff.Range)
		}
		amount := eff.Base + floorDiv(caster.Stats.Intelligence, 2)
		apply = func(r *SkillResult) {
			r.Hits = append(r.Hits, strike(target, amount))
		}

	case skill.HealEffect:
		target := caster
		if targetID != "" {
			if target, ok = m.living(targetID); !ok {
				return SkillResult{}, fail(CodeTargetNotFound, "no living target %q", targetID)
			}
		}
		amount := eff.Amount + floorDiv(caster.Stats.Spirit, 2)
		apply = func(r *SkillResult) {
			healed := target.ApplyHeal(amount)
			r.Hits = append(r.Hits, SkillHit{TargetID: target.ID, Amount: healed, RemainingHP: target.CurrentHP})
		}

	case skill.BuffEffect:
		b := Buff{Key: eff.Key, Magnitude: eff.Value, RoundsRemaining: eff.Duration}
		apply = func(r *SkillResult) {
			caster.AddBuff(b)
			r.Buff = &b
		}

	case skill.AoeEffect:
		if cell == nil {
			return SkillResult{}, fail(CodeTargetCellRequired, "%s needs a target cell", sk.Name)
		}
		center := *cell
		if !m.Grid.InBounds(center) {
			return SkillResult{}, fail(CodeOutOfBounds, "%s is outside the grid", center)
		}
		amount := eff.Base + floorDiv(caster.Stats.Intelligence, 3)
		var victims []*Participant
		for _, p := range m.participants {
			if p.ID != caster.ID && p.Alive() && grid.Distance(p.Pos, center) <= eff.Radius {
				victims = append(victims, p)
			}
		}
		apply = func(r *SkillResult) {
			for _, v := range victims {
				r.Hits = append(r.Hits, strike(v, amount))
			}
		}

	default:
		return SkillResult{}, fail(CodeUnknownSkillType, "skill %q has unsupported effect %T", sk.ID, sk.Effect)
	}

	res := SkillResult{CasterID: caster.ID, SkillID: sk.ID, Type: sk.Effect.Type(), MPSpent: sk.MPCost}
	caster.CurrentMP -= sk.MPCost
	apply(&res)
	m.spendAction()

	var fallenTeams []string
	for _, h := range res.Hits {
		if h.Defeated {
			p, _ := m.Participant(h.TargetID)
			fallenTeams = append(fallenTeams, p.Team)
		}
	}
	res.MatchEnded = m.settleDefeats(fallenTeams...)

	m.log.Append(m.TurnNumber, KindSkill, describeSkill(m, caster, sk, &res), skillPayload(caster, sk, &res))
	return res, nil
}

// strike applies skill damage to p.
func strike(p *Participant, amount int) SkillHit {
	dealt := p.ApplyDamage(amount)
	return SkillHit{TargetID: p.ID, Amount: dealt, RemainingHP: p.CurrentHP, Defeated: !p.Alive()}
}

func describeSkill(m *Match, caster *Participant, sk *skill.Skill, r *SkillResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s uses %s", caster.DisplayName(), sk.Name)
	switch r.Type {
	case skill.TypeBuff:
		fmt.Fprintf(&b, " and gains %s", r.Buff)
	case skill.TypeHeal:
		h := r.Hits[0]
		if h.TargetID == caster.ID {
			fmt.Fprintf(&b, " and recovers %d HP", h.Amount)
		} else {
			p, _ := m.Participant(h.TargetID)
			fmt.Fprintf(&b, " on %s, restoring %d HP", p.DisplayName(), h.Amount)
		}
	default:
		if len(r.Hits) == 0 {
			b.WriteString(" but hits nothing")
		}
		for i, h := range r.Hits {
			p, _ := m.Participant(h.TargetID)
			if i == 0 {
				b.WriteString(", hitting ")
			} else {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s for %d", p.DisplayName(), h.Amount)
			if h.Defeated {
				b.WriteString(" (defeated)")
			}
		}
	}
	b.WriteString(".")
	return b.String()
}

func skillPayload(caster *Participant, sk *skill.Skill, r *SkillResult) Payload {
	p := Payload{
		ActorID: caster.ID,
		Deltas:  map[string]int{"mp_spent": r.MPSpent, "caster_mp": caster.CurrentMP},
		Data:    map[string]string{"skill": sk.ID, "skill_type": string(r.Type)},
	}
	if len(r.Hits) == 1 {
		p.TargetID = r.Hits[0].TargetID
	}
	total := 0
	for _, h := range r.Hits {
		total += h.Amount
		p.Deltas["hp:"+h.TargetID] = h.Amount
	}
	p.Deltas["total"] = total
	if r.Buff != nil {
		p.Data["buff"] = r.Buff.Key
		p.Deltas["buff_value"] = r.Buff.Magnitude
		p.Deltas["buff_rounds"] = r.Buff.RoundsRemaining
	}
	return p
}
