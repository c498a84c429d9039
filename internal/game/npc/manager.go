package npc

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
)

// Roster indexes templates by ID and spawns participants from them.
// All methods are safe for concurrent use.
type Roster struct {
	mu        sync.RWMutex
	templates map[string]*Template
	counter   atomic.Uint64
}

// NewRoster creates a Roster from templates.
//
// Precondition: every template must be validated.
// Postcondition: Returns an error on a duplicate template ID.
func NewRoster(templates []*Template) (*Roster, error) {
	r := &Roster{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if err := r.Add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers tmpl.
//
// Postcondition: Returns an error if tmpl is nil or its ID is already registered.
func (r *Roster) Add(tmpl *Template) error {
	if tmpl == nil {
		return fmt.Errorf("npc.Roster.Add: tmpl must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[tmpl.ID]; exists {
		return fmt.Errorf("npc template %q already registered", tmpl.ID)
	}
	r.templates[tmpl.ID] = tmpl
	return nil
}

// Get returns the template with the given ID.
func (r *Roster) Get(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t, ok
}

// IDs returns every registered template ID, sorted.
func (r *Roster) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for id := range r.templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Spawn builds a participant from templateID on team at pos. When id is empty
// a unique one is generated from the template ID and a counter.
//
// Postcondition: Returns an error if templateID is not registered.
func (r *Roster) Spawn(id, templateID, team string, pos grid.Cell) (*combat.Participant, error) {
	tmpl, ok := r.Get(templateID)
	if !ok {
		return nil, fmt.Errorf("npc template %q not found", templateID)
	}
	if id == "" {
		id = fmt.Sprintf("%s-%d", tmpl.ID, r.counter.Add(1))
	}
	return NewParticipant(id, team, tmpl, pos), nil
}
