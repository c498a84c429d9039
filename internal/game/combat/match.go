package combat

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// Match holds the state of one grid combat. It is not safe for concurrent use;
// all mutation goes through the Engine, which holds the match's lock.
//
// Invariant: ActionsRemaining is in [0, ActionsPerTurn]; actions resolve only while Status == StatusActive.
type Match struct {
	ID     string
	Status Status
	Grid   *grid.Grid
	// TurnNumber starts at 1 when the match becomes active.
	TurnNumber       int
	ActionsPerTurn   int
	ActionsRemaining int

	participants []*Participant
	byID         map[string]*Participant
	log          *Log
}

// NewMatch creates a pending match on g.
//
// Precondition: id non-empty; g non-nil; actionsPerTurn >= 1.
// Postcondition: Returns a pending Match with no participants, or an error.
func NewMatch(id string, g *grid.Grid, actionsPerTurn int) (*Match, error) {
	if id == "" {
		return nil, fmt.Errorf("match id must not be empty")
	}
	if g == nil {
		return nil, fmt.Errorf("match %q: grid must not be nil", id)
	}
	if actionsPerTurn < 1 {
		return nil, fmt.Errorf("match %q: actions per turn must be >= 1, got %d", id, actionsPerTurn)
	}
	return &Match{
		ID:             id,
		Status:         StatusPending,
		Grid:           g,
		ActionsPerTurn: actionsPerTurn,
		byID:           make(map[string]*Participant),
		log:            NewLog(),
	}, nil
}

// Seat places p in the match.
//
// Precondition: match is pending; p is non-nil with a unique ID.
// Postcondition: on success p is owned by the match; on error the match is unchanged.
// Placement failures carry the spatial error codes (OutOfBounds, TileImpassable, TileOccupied).
func (m *Match) Seat(p *Participant) error {
	if m.Status != StatusPending {
		return fail(CodeMatchNotActive, "match %s is %s; participants can only be seated while pending", m.ID, m.Status)
	}
	if p == nil {
		return fail(CodeParticipantNotFound, "nil participant")
	}
	if err := p.validate(); err != nil {
		return err
	}
	if _, dup := m.byID[p.ID]; dup {
		return fmt.Errorf("participant %q already seated in match %s", p.ID, m.ID)
	}
	switch ix := m.Index(); {
	case !m.Grid.InBounds(p.Pos):
		return fail(CodeOutOfBounds, "%s is outside the grid", p.Pos)
	case !m.Grid.Passable(p.Pos):
		return fail(CodeTileImpassable, "%s is impassable", p.Pos)
	case ix.Occupied(p.Pos):
		return fail(CodeTileOccupied, "%s is occupied", p.Pos)
	}
	m.participants = append(m.participants, p)
	m.byID[p.ID] = p
	return nil
}

// Start activates a pending match.
//
// Precondition: at least two teams have living participants.
// Postcondition: Status == StatusActive, TurnNumber == 1, ActionsRemaining == ActionsPerTurn.
func (m *Match) Start() error {
	if m.Status != StatusPending {
		return fail(CodeMatchNotActive, "match %s is %s, not pending", m.ID, m.Status)
	}
	if n := len(m.livingTeams()); n < 2 {
		return fmt.Errorf("match %s needs two sides with living participants, has %d", m.ID, n)
	}
	m.Status = StatusActive
	m.TurnNumber = 1
	m.ActionsRemaining = m.ActionsPerTurn
	return nil
}

// Participant returns the participant with id.
func (m *Match) Participant(id string) (*Participant, bool) {
	p, ok := m.byID[id]
	return p, ok
}

// Participants returns the participants in seat order. The slice is a copy;
// the pointed-to participants are shared.
func (m *Match) Participants() []*Participant {
	return append([]*Participant(nil), m.participants...)
}

// Log returns the match's combat log.
func (m *Match) Log() *Log { return m.log }

// Index builds the occupancy index over the living participants.
// Defeated participants do not block cells.
func (m *Match) Index() *grid.Index {
	occ := make(map[grid.Cell]string, len(m.participants))
	for _, p := range m.participants {
		if p.Alive() {
			occ[p.Pos] = p.ID
		}
	}
	return grid.NewIndex(m.Grid, occ)
}

// LivingOnTeam counts living participants on team.
func (m *Match) LivingOnTeam(team string) int {
	n := 0
	for _, p := range m.participants {
		if p.Team == team && p.Alive() {
			n++
		}
	}
	return n
}

// Teams returns the distinct team tags in seat order.
func (m *Match) Teams() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range m.participants {
		if !seen[p.Team] {
			seen[p.Team] = true
			out = append(out, p.Team)
		}
	}
	return out
}

func (m *Match) livingTeams() []string {
	var out []string
	for _, t := range m.Teams() {
		if m.LivingOnTeam(t) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// guard checks the state errors shared by every action.
func (m *Match) guard() error {
	if m.Status != StatusActive {
		return fail(CodeMatchNotActive, "match %s is %s", m.ID, m.Status)
	}
	if m.ActionsRemaining <= 0 {
		return fail(CodeActionBudgetExhausted, "no actions remain in turn %d", m.TurnNumber)
	}
	return nil
}

// living looks up a participant that can act or be acted upon.
func (m *Match) living(id string) (*Participant, bool) {
	p, ok := m.byID[id]
	if !ok || !p.Alive() {
		return nil, false
	}
	return p, true
}

// spendAction consumes one action from the turn budget.
func (m *Match) spendAction() {
	if m.ActionsRemaining > 0 {
		m.ActionsRemaining--
	}
}

// settleDefeats completes the match if any team touched by an action has no
// living members left.
//
// Postcondition: returns true iff this call moved the match to StatusCompleted.
func (m *Match) settleDefeats(teams ...string) bool {
	if m.Status != StatusActive {
		return false
	}
	for _, t := range teams {
		if m.LivingOnTeam(t) == 0 {
			m.Status = StatusCompleted
			return true
		}
	}
	return false
}

// clone returns a deep copy of the match for read-only snapshots.
func (m *Match) clone() *Match {
	cp := *m
	cp.participants = make([]*Participant, len(m.participants))
	cp.byID = make(map[string]*Participant, len(m.byID))
	for i, p := range m.participants {
		pc := p.clone()
		cp.participants[i] = pc
		cp.byID[pc.ID] = pc
	}
	cp.log = m.log.clone()
	return &cp
}
