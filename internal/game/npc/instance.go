package npc

import (
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// NewParticipant builds a full-health NPC participant from tmpl.
//
// Precondition: id and team must be non-empty; tmpl must be validated.
// Postcondition: CurrentHP == MaxHP and CurrentMP == MaxMP; Controller is ControllerNPC.
func NewParticipant(id, team string, tmpl *Template, pos grid.Cell) *combat.Participant {
	r := ResolveStats(tmpl)
	return &combat.Participant{
		ID:            id,
		CharacterRef:  tmpl.ID,
		Name:          tmpl.Name,
		Team:          team,
		Controller:    combat.ControllerNPC,
		Archetype:     tmpl.Archetype,
		Pos:           pos,
		CurrentHP:     r.MaxHP,
		MaxHP:         r.MaxHP,
		CurrentMP:     tmpl.MaxMP,
		MaxMP:         tmpl.MaxMP,
		MovementRange: tmpl.movementRange(),
		AttackRange:   tmpl.attackRange(),
		Stats:         r.Stats,
		Skills:        append([]string(nil), tmpl.Skills...),
	}
}

// HealthDescription returns a visible health state string for p.
//
// Postcondition: Returns a non-empty string.
func HealthDescription(p *combat.Participant) string {
	if !p.Alive() {
		return "defeated"
	}
	switch pct := p.HPRatio(); {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
