package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnitTemplate holds the base stats for a unit type loaded from YAML.
type UnitTemplate struct {
	UnitID  int32  `yaml:"unit_id"`
	Name    string `yaml:"name"`
	HP      int32  `yaml:"hp"`
	Attack  int32  `yaml:"attack"`
	Defense int32  `yaml:"defense"`
}

// ArmyEntry spawns Count units of UnitID on Team (0 or 1).
type ArmyEntry struct {
	UnitID int32 `yaml:"unit_id"`
	Team   int   `yaml:"team"`
	Count  int   `yaml:"count"`
}

type rosterFile struct {
	Units  []UnitTemplate `yaml:"units"`
	Armies []ArmyEntry    `yaml:"armies"`
}

// Roster holds unit templates indexed by UnitID plus the armies to field.
type Roster struct {
	templates map[int32]*UnitTemplate
	order     []int32
	armies    []ArmyEntry
}

// LoadRoster loads unit templates and armies from a YAML file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	r, err := ParseRoster(data)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return r, nil
}

// ParseRoster decodes and validates roster YAML.
func ParseRoster(data []byte) (*Roster, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	r := &Roster{
		templates: make(map[int32]*UnitTemplate, len(f.Units)),
		order:     make([]int32, 0, len(f.Units)),
		armies:    f.Armies,
	}
	for i := range f.Units {
		u := &f.Units[i]
		if _, dup := r.templates[u.UnitID]; dup {
			return nil, fmt.Errorf("duplicate unit_id %d", u.UnitID)
		}
		if u.HP <= 0 {
			return nil, fmt.Errorf("unit %d (%s): hp must be positive", u.UnitID, u.Name)
		}
		r.templates[u.UnitID] = u
		r.order = append(r.order, u.UnitID)
	}
	for i, a := range r.armies {
		if _, ok := r.templates[a.UnitID]; !ok {
			return nil, fmt.Errorf("army %d: unknown unit_id %d", i, a.UnitID)
		}
		if a.Team != 0 && a.Team != 1 {
			return nil, fmt.Errorf("army %d: team must be 0 or 1, got %d", i, a.Team)
		}
		if a.Count < 0 {
			return nil, fmt.Errorf("army %d: negative count", i)
		}
	}
	return r, nil
}

// Get returns a template by UnitID. Returns nil if not found.
func (r *Roster) Get(unitID int32) *UnitTemplate {
	return r.templates[unitID]
}

// Units returns the templates in file order.
func (r *Roster) Units() []*UnitTemplate {
	out := make([]*UnitTemplate, len(r.order))
	for i, id := range r.order {
		out[i] = r.templates[id]
	}
	return out
}

func (r *Roster) Armies() []ArmyEntry { return r.armies }

// Total returns the number of units the armies field.
func (r *Roster) Total() int {
	n := 0
	for _, a := range r.armies {
		n += a.Count
	}
	return n
}
