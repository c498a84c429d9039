package ai

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/skill"
)

// Turn records what one NPC decided and what the engine made of it.
type Turn struct {
	NPCID    string
	Decision Decision
	// Outcomes lists the submitted actions in order: at most one move, then at
	// most one attack or skill.
	Outcomes []combat.Outcome
}

// Driver is the AI tick collaborator. It turns Decisions into actions
// submitted through the same Engine entry points players use.
type Driver struct {
	engine *combat.Engine
	logger *zap.Logger
}

// NewDriver creates a Driver for engine.
//
// Precondition: engine must not be nil; logger may be nil.
func NewDriver(engine *combat.Engine, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{engine: engine, logger: logger}
}

// Act decides and executes one NPC's turn. An attack decision against a target
// out of weapon reach uses the first affordable damage skill that reaches it;
// without one the NPC moves toward the target, then attacks if the move brought
// it in range, or casts if only a skill reaches. A defend decision by a wounded
// NPC casts its first affordable heal on itself.
//
// Precondition: src must be non-nil.
// Postcondition: Returns an error only when the NPC cannot act at all (unknown
// match, inactive match, missing or defeated NPC). Rejected actions are
// reported through Turn.Outcomes.
func (d *Driver) Act(matchID, npcID string, src Source) (Turn, error) {
	snap, err := d.engine.Snapshot(matchID)
	if err != nil {
		return Turn{}, err
	}
	if snap.Status != combat.StatusActive {
		return Turn{}, fmt.Errorf("npc %s in match %s: %w", npcID, matchID, combat.ErrMatchNotActive)
	}
	ws, ok := BuildWorldState(snap, npcID)
	if !ok || ws.Self.Dead {
		return Turn{}, fmt.Errorf("npc %s in match %s: %w", npcID, matchID, combat.ErrParticipantNotFound)
	}

	turn := Turn{NPCID: npcID}
	turn.Decision = Decide(ws.Archetype, ws.Self.HPRatio(), ws.Opponents(), src)
	d.logger.Debug("npc decided",
		zap.String("match_id", matchID),
		zap.String("npc_id", npcID),
		zap.String("archetype", ws.Archetype.String()),
		zap.Float64("hp_ratio", ws.Self.HPRatio()),
		zap.String("action", string(turn.Decision.Action)),
		zap.String("target_id", turn.Decision.TargetID),
		zap.String("region", turn.Decision.Region),
	)
	if turn.Decision.Action == ActionDefend && ws.Self.HP < ws.Self.MaxHP {
		if id, ok := d.pickSkill(ws, isHeal); ok {
			out := d.engine.Submit(matchID, combat.SkillAction{CasterID: npcID, SkillID: id}, src)
			turn.Outcomes = append(turn.Outcomes, out)
		}
	}
	if turn.Decision.Action != ActionAttack {
		return turn, nil
	}

	target := ws.Combatant(turn.Decision.TargetID)
	pos := ws.Self.Pos
	if grid.Distance(pos, target.Pos) > ws.AttackRange {
		if out, ok := d.castAt(matchID, ws, pos, target, src); ok {
			turn.Outcomes = append(turn.Outcomes, out)
			return turn, nil
		}
		dest, ok, err := d.approach(matchID, npcID, pos, target.Pos)
		if err != nil {
			return turn, err
		}
		if ok {
			out := d.engine.Submit(matchID, combat.MoveAction{ParticipantID: npcID, X: dest.X, Y: dest.Y}, src)
			turn.Outcomes = append(turn.Outcomes, out)
			if !out.Success {
				return turn, nil
			}
			pos = dest
		}
	}
	if grid.Distance(pos, target.Pos) <= ws.AttackRange {
		out := d.engine.Submit(matchID, combat.AttackAction{AttackerID: npcID, TargetID: target.ID}, src)
		turn.Outcomes = append(turn.Outcomes, out)
	} else if out, ok := d.castAt(matchID, ws, pos, target, src); ok {
		turn.Outcomes = append(turn.Outcomes, out)
	}
	return turn, nil
}

// castAt submits the first affordable damage skill that reaches target from pos.
func (d *Driver) castAt(matchID string, ws *WorldState, pos grid.Cell, target *CombatantState, src Source) (combat.Outcome, bool) {
	dist := grid.Distance(pos, target.Pos)
	id, ok := d.pickSkill(ws, func(e skill.Effect) bool {
		dmg, ok := e.(skill.DamageEffect)
		return ok && dmg.Range >= dist
	})
	if !ok {
		return combat.Outcome{}, false
	}
	return d.engine.Submit(matchID, combat.SkillAction{CasterID: ws.Self.ID, SkillID: id, TargetID: target.ID}, src), true
}

// pickSkill returns the first known, affordable skill whose effect matches.
func (d *Driver) pickSkill(ws *WorldState, match func(skill.Effect) bool) (string, bool) {
	for _, id := range ws.Skills {
		sk, ok := d.engine.Skill(id)
		if !ok || sk.MPCost > ws.MP || !match(sk.Effect) {
			continue
		}
		return id, true
	}
	return "", false
}

func isHeal(e skill.Effect) bool {
	_, ok := e.(skill.HealEffect)
	return ok
}

// approach picks the reachable cell nearest to goal, if it is nearer than from.
func (d *Driver) approach(matchID, npcID string, from, goal grid.Cell) (grid.Cell, bool, error) {
	cells, err := d.engine.ValidPositions(matchID, npcID)
	if err != nil {
		return grid.Cell{}, false, err
	}
	best, bestDist := from, grid.Distance(from, goal)
	found := false
	for _, c := range cells {
		if dist := grid.Distance(c, goal); dist < bestDist {
			best, bestDist, found = c, dist, true
		}
	}
	return best, found, nil
}

// Tick runs one AI pass over a match: every living NPC acts once, in
// initiative order, until the match ends or the turn's action budget runs out.
//
// Precondition: src must be non-nil.
// Postcondition: Returns the turns taken; an inactive match yields no turns and no error.
func (d *Driver) Tick(matchID string, src Source) ([]Turn, error) {
	snap, err := d.engine.Snapshot(matchID)
	if err != nil {
		return nil, err
	}
	if snap.Status != combat.StatusActive {
		return nil, nil
	}
	var npcs []*combat.Participant
	for _, p := range snap.Participants() {
		if p.IsNPC() && p.Alive() {
			npcs = append(npcs, p)
		}
	}

	var turns []Turn
	for _, id := range combat.RollInitiative(npcs, src) {
		turn, err := d.Act(matchID, id, src)
		switch {
		case errors.Is(err, combat.ErrMatchNotActive):
			return turns, nil
		case errors.Is(err, combat.ErrParticipantNotFound):
			// Defeated earlier in this pass.
			continue
		case err != nil:
			return turns, err
		}
		turns = append(turns, turn)
		if budgetSpent(turn) {
			break
		}
	}
	return turns, nil
}

func budgetSpent(t Turn) bool {
	for _, o := range t.Outcomes {
		if o.Error == combat.CodeActionBudgetExhausted || o.MatchEnded {
			return true
		}
	}
	return false
}
