package combat

import "github.com/cory-johannsen/tactics/internal/game/grid"

// ActionType identifies what a submitted action does.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionMove
	ActionAttack
	ActionSkill
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionSkill:
		return "skill"
	default:
		return "unknown"
	}
}

// Action is one request submitted to Engine.Submit: a MoveAction, AttackAction or SkillAction.
type Action interface {
	Type() ActionType
	// Actor returns the acting participant's ID.
	Actor() string
}

// MoveAction moves ParticipantID to (X, Y).
type MoveAction struct {
	ParticipantID string
	X, Y          int
}

// AttackAction has AttackerID strike TargetID.
type AttackAction struct {
	AttackerID string
	TargetID   string
}

// SkillAction has CasterID use SkillID, optionally at TargetID and/or Cell.
type SkillAction struct {
	CasterID string
	SkillID  string
	TargetID string
	Cell     *grid.Cell
}

func (MoveAction) Type() ActionType   { return ActionMove }
func (AttackAction) Type() ActionType { return ActionAttack }
func (SkillAction) Type() ActionType  { return ActionSkill }

func (a MoveAction) Actor() string   { return a.ParticipantID }
func (a AttackAction) Actor() string { return a.AttackerID }
func (a SkillAction) Actor() string  { return a.CasterID }

// Outcome is the discriminated result handed back across the engine boundary.
// Exactly one of Move, Attack and Skill is set when Success is true.
type Outcome struct {
	Action  ActionType
	Success bool
	Error   ErrorCode
	// Message is a human-readable failure reason; empty on success.
	Message    string
	MatchEnded bool
	Move       *MoveResult
	Attack     *AttackResult
	Skill      *SkillResult
}

func failedOutcome(a ActionType, err error) Outcome {
	return Outcome{Action: a, Error: CodeOf(err), Message: err.Error()}
}
