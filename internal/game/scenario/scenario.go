// Package scenario loads skirmish definitions and seeds them into the combat engine.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/grid"
	"github.com/cory-johannsen/tactics/internal/game/npc"
)

// TileSpec overrides one grid cell.
type TileSpec struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Passable bool   `yaml:"passable"`
	Terrain  string `yaml:"terrain"`
}

// Seat places one NPC from a template.
type Seat struct {
	// ID is optional; the roster generates one when empty.
	ID       string `yaml:"id"`
	Template string `yaml:"template"`
	Team     string `yaml:"team"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	// Archetype overrides the template's archetype when set.
	Archetype string `yaml:"archetype"`
}

// Scenario is a grid plus the roster seated on it.
type Scenario struct {
	Name string `yaml:"name"`
	// GridSize and ActionsPerTurn fall back to the engine defaults when zero.
	GridSize       int        `yaml:"grid_size"`
	ActionsPerTurn int        `yaml:"actions_per_turn"`
	Tiles          []TileSpec `yaml:"tiles"`
	Roster         []Seat     `yaml:"roster"`
}

// Validate checks the scenario's static invariants.
//
// Postcondition: Returns nil iff Name is set, sizes are non-negative, every seat
// names a template and a team, and at least two teams are present.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name must not be empty")
	}
	if s.GridSize < 0 || s.ActionsPerTurn < 0 {
		return fmt.Errorf("scenario %q: grid_size and actions_per_turn must be >= 0", s.Name)
	}
	teams := make(map[string]bool)
	for i, seat := range s.Roster {
		if seat.Template == "" || seat.Team == "" {
			return fmt.Errorf("scenario %q: roster[%d] needs template and team", s.Name, i)
		}
		if seat.Archetype != "" {
			if _, ok := ai.ParseArchetype(seat.Archetype); !ok {
				return fmt.Errorf("scenario %q: roster[%d] has unknown archetype %q", s.Name, i, seat.Archetype)
			}
		}
		teams[seat.Team] = true
	}
	if len(teams) < 2 {
		return fmt.Errorf("scenario %q: roster needs at least two teams, has %d", s.Name, len(teams))
	}
	return nil
}

// Teams returns the distinct roster teams, sorted.
func (s *Scenario) Teams() []string {
	seen := make(map[string]bool)
	var out []string
	for _, seat := range s.Roster {
		if !seen[seat.Team] {
			seen[seat.Team] = true
			out = append(out, seat.Team)
		}
	}
	sort.Strings(out)
	return out
}

// Parse decodes and validates a scenario from YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scenario from path. A bare name without an extension is
// resolved as dir/<name>.yaml.
func Load(dir, nameOrPath string) (*Scenario, error) {
	path := nameOrPath
	if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
		path = filepath.Join(dir, nameOrPath+".yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return s, nil
}

// Defaults supplies the values a scenario may leave unset.
type Defaults struct {
	GridSize       int
	ActionsPerTurn int
}

// Build creates a match for s in eng, seats the roster and starts it.
//
// Precondition: s must be validated; roster must hold every referenced template.
// Postcondition: Returns the active match's ID, or an error. On error the
// partially built match is removed from eng.
func Build(eng *combat.Engine, roster *npc.Roster, s *Scenario, d Defaults) (string, error) {
	size := s.GridSize
	if size == 0 {
		size = d.GridSize
	}
	actions := s.ActionsPerTurn
	if actions == 0 {
		actions = d.ActionsPerTurn
	}

	tiles := make(map[grid.Cell]grid.Tile, len(s.Tiles))
	for _, t := range s.Tiles {
		tiles[grid.Cell{X: t.X, Y: t.Y}] = grid.Tile{Passable: t.Passable, Terrain: t.Terrain}
	}
	g, err := grid.New(size, tiles)
	if err != nil {
		return "", fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	matchID, err := eng.CreateMatch(g, actions)
	if err != nil {
		return "", fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	fail := func(err error) (string, error) {
		eng.EndMatch(matchID)
		return "", fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	for _, seat := range s.Roster {
		p, err := roster.Spawn(seat.ID, seat.Template, seat.Team, grid.Cell{X: seat.X, Y: seat.Y})
		if err != nil {
			return fail(err)
		}
		if seat.Archetype != "" {
			p.Archetype = seat.Archetype
		}
		if err := eng.Seat(matchID, p); err != nil {
			return fail(fmt.Errorf("seating %s: %w", p.ID, err))
		}
	}
	if err := eng.Start(matchID); err != nil {
		return fail(err)
	}
	return matchID, nil
}
