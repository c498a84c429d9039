// Package combat implements the tactical grid combat engine: match and
// participant state, movement, melee attacks, skills and the combat log.
package combat

import "fmt"

// Controller distinguishes player-driven participants from NPC-driven ones.
// Both act through the same entry points.
type Controller int

const (
	ControllerPlayer Controller = iota
	ControllerNPC
)

// String returns "player" or "npc".
func (c Controller) String() string {
	if c == ControllerNPC {
		return "npc"
	}
	return "player"
}

// Status is the match lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusCompleted
)

// String returns a human-readable status label.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Stats are the computed combat statistics of a participant. For players they are
// supplied by the character/equipment collaborator; for NPCs by npc.ResolveStats.
type Stats struct {
	Attack       int
	Defense      int
	Agility      int
	Intelligence int
	Spirit       int
	CritChance   int
	DodgeChance  int
}

// BuffAttackBonus is the buff key added to a participant's attack stat.
const BuffAttackBonus = "attack_bonus"

// Buff is a temporary named modifier.
type Buff struct {
	Key             string
	Magnitude       int
	RoundsRemaining int
}

// String returns "key+magnitude (n rounds)".
func (b Buff) String() string {
	return fmt.Sprintf("%s%+d (%d rounds)", b.Key, b.Magnitude, b.RoundsRemaining)
}

// floorDiv divides a by b rounding toward negative infinity.
//
// Precondition: b > 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
