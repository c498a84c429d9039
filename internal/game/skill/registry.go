package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry holds compiled skills keyed by ID. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]*Skill
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]*Skill)}
}

// Register compiles def and stores it.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error on compile failure or duplicate ID; the registry is unchanged on error.
func (r *Registry) Register(def *Definition) error {
	s, err := def.Compile()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.skills[s.ID]; dup {
		return fmt.Errorf("skill %q already registered", s.ID)
	}
	r.skills[s.ID] = s
	return nil
}

// Get returns the skill with id, or (nil, false).
func (r *Registry) Get(id string) (*Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[id]
	return s, ok
}

// IDs returns all registered skill IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.skills))
	for id := range r.skills {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// skillFile is the top-level layout of a skills YAML file.
type skillFile struct {
	Skills []*Definition `yaml:"skills"`
}

// LoadFromBytes parses a skills YAML document and registers every entry.
//
// Postcondition: Returns the first parse, compile or duplicate error.
func (r *Registry) LoadFromBytes(data []byte) error {
	var f skillFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing skills YAML: %w", err)
	}
	for _, def := range f.Skills {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir into a new Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry or the first error, naming the file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading skills dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := reg.LoadFromBytes(data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
