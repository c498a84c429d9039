package ai

import (
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// CombatantState captures a participant's combat-relevant state at decision time.
type CombatantState struct {
	ID    string
	Name  string
	Team  string
	Pos   grid.Cell
	HP    int
	MaxHP int
	Dead  bool
}

// HPRatio returns HP / MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPRatio() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// WorldState is the snapshot one NPC decides from.
//
// Invariant: Self must not be nil.
type WorldState struct {
	Self          *CombatantState
	Archetype     Archetype
	MovementRange int
	AttackRange   int
	// MP is Self's current MP; Skills its known skill IDs in preference order.
	MP         int
	Skills     []string
	Combatants []*CombatantState
}

// Opponents returns the living combatants not on Self's team, as decision candidates.
func (ws *WorldState) Opponents() []Candidate {
	var out []Candidate
	for _, c := range ws.Combatants {
		if c.Dead || c.Team == ws.Self.Team {
			continue
		}
		out = append(out, Candidate{ID: c.ID, CurrentHP: c.HP})
	}
	return out
}

// Combatant returns the state of id, or nil.
func (ws *WorldState) Combatant(id string) *CombatantState {
	for _, c := range ws.Combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// BuildWorldState constructs a WorldState for npcID from a match snapshot.
//
// Precondition: m must not be nil.
// Postcondition: Returns (nil, false) if npcID is not seated in m; otherwise every
// participant is represented in seat order.
func BuildWorldState(m *combat.Match, npcID string) (*WorldState, bool) {
	self, ok := m.Participant(npcID)
	if !ok {
		return nil, false
	}
	arch, _ := ParseArchetype(self.Archetype)
	ws := &WorldState{
		Archetype:     arch,
		MovementRange: self.MovementRange,
		AttackRange:   self.AttackRange,
		MP:            self.CurrentMP,
		Skills:        append([]string(nil), self.Skills...),
	}
	for _, p := range m.Participants() {
		cs := &CombatantState{
			ID:    p.ID,
			Name:  p.DisplayName(),
			Team:  p.Team,
			Pos:   p.Pos,
			HP:    p.CurrentHP,
			MaxHP: p.MaxHP,
			Dead:  !p.Alive(),
		}
		if p.ID == npcID {
			ws.Self = cs
		}
		ws.Combatants = append(ws.Combatants, cs)
	}
	return ws, true
}
