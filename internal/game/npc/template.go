// Package npc provides NPC template definitions, stat resolution and the
// roster that turns templates into combat participants.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/ai"
)

// Default ranges applied when a template leaves them unset.
const (
	DefaultMovementRange = 3
	DefaultAttackRange   = 1
)

// StatBlock is an explicit, fully specified set of combat stats.
type StatBlock struct {
	HP           int `yaml:"hp"`
	Attack       int `yaml:"attack"`
	Defense      int `yaml:"defense"`
	Agility      int `yaml:"agility"`
	Intelligence int `yaml:"intelligence"`
	Spirit       int `yaml:"spirit"`
	CritChance   int `yaml:"crit_chance"`
	DodgeChance  int `yaml:"dodge_chance"`
}

// BaseFields are the declared attributes that combat stats are derived from.
type BaseFields struct {
	Strength  int `yaml:"strength"`
	Toughness int `yaml:"toughness"`
	Quickness int `yaml:"quickness"`
	Wits      int `yaml:"wits"`
	Resolve   int `yaml:"resolve"`
}

// Template defines a reusable NPC loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	// Role selects the stat multiplier; empty means hostile.
	Role Role `yaml:"role"`
	// Archetype is the AI behavior profile; empty means balanced.
	Archetype     string `yaml:"archetype"`
	MovementRange int    `yaml:"movement_range"`
	AttackRange   int    `yaml:"attack_range"`
	MaxMP         int    `yaml:"max_mp"`
	// Overrides, when present, replace every computed stat.
	Overrides *StatBlock `yaml:"overrides"`
	// Base, when present and Overrides is not, derives stats from attributes.
	Base   *BaseFields `yaml:"base"`
	Skills []string    `yaml:"skills"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, Role and
// Archetype are known, ranges and MaxMP are non-negative and any Overrides carry
// HP >= 1; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.ID)
	}
	if _, ok := roleMultipliers[t.role()]; !ok {
		return fmt.Errorf("npc template %q: unknown role %q", t.ID, t.Role)
	}
	if t.Archetype != "" {
		if _, ok := ai.ParseArchetype(t.Archetype); !ok {
			return fmt.Errorf("npc template %q: unknown archetype %q", t.ID, t.Archetype)
		}
	}
	if t.MovementRange < 0 || t.AttackRange < 0 || t.MaxMP < 0 {
		return fmt.Errorf("npc template %q: movement_range, attack_range and max_mp must be >= 0", t.ID)
	}
	if t.Overrides != nil && t.Overrides.HP < 1 {
		return fmt.Errorf("npc template %q: overrides.hp must be >= 1", t.ID)
	}
	return nil
}

func (t *Template) role() Role {
	if t.Role == "" {
		return RoleHostile
	}
	return t.Role
}

func (t *Template) movementRange() int {
	if t.MovementRange == 0 {
		return DefaultMovementRange
	}
	return t.MovementRange
}

func (t *Template) attackRange() int {
	if t.AttackRange == 0 {
		return DefaultAttackRange
	}
	return t.AttackRange
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
