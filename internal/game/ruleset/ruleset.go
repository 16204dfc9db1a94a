// Package ruleset holds the static game content: races, classes, skills,
// starting equipment, locations and random encounters.
package ruleset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/companion/internal/game/inventory"
)

//go:embed default.yaml
var defaultContent []byte

// AttributeNames lists the ability keys skills and race bonuses may reference.
var AttributeNames = []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

// Race is a playable ancestry. Bonuses are informational and are not applied
// to ability scores.
type Race struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Bonuses map[string]int `yaml:"bonuses"`
}

// Class is a playable class.
//
// Precondition: ID and Name must be non-empty; BaseHP must be >= 1.
type Class struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	BaseHP int    `yaml:"base_hp"`
}

// Skill is a proficiency governed by one ability.
type Skill struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Attribute   string `yaml:"attribute"`
	Description string `yaml:"description"`
}

// Location is a named place the map can describe.
type Location struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Encounter kinds. Only EncounterCombat changes the session state.
const (
	EncounterCombat   = "combat"
	EncounterTreasure = "treasure"
	EncounterNPC      = "npc"
	EncounterTrap     = "trap"
)

// Encounter is a random event triggered while exploring.
type Encounter struct {
	Type    string `yaml:"type"`
	Message string `yaml:"message"`
}

// RandomContent feeds character randomization.
type RandomContent struct {
	Names       []string `yaml:"names"`
	Background  string   `yaml:"background"`
	Description string   `yaml:"description"`
}

// Ruleset is the full content set.
type Ruleset struct {
	Races             []Race           `yaml:"races"`
	Classes           []Class          `yaml:"classes"`
	DefaultBaseHP     int              `yaml:"default_base_hp"`
	MaxStartingSkills int              `yaml:"max_starting_skills"`
	Skills            []Skill          `yaml:"skills"`
	StartingItems     []inventory.Item `yaml:"starting_items"`
	Locations         []Location       `yaml:"locations"`
	Encounters        []Encounter      `yaml:"encounters"`
	Random            RandomContent    `yaml:"random"`
}

// Default returns the embedded ruleset.
//
// Postcondition: the result passes Validate. Panics if the embedded content is broken.
func Default() *Ruleset {
	rs, err := Parse(defaultContent)
	if err != nil {
		panic("ruleset: embedded content invalid: " + err.Error())
	}
	return rs
}

// Parse decodes YAML content and validates it.
//
// Postcondition: Returns a valid Ruleset or a non-nil error.
func Parse(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing ruleset: %w", err)
	}
	if rs.DefaultBaseHP == 0 {
		rs.DefaultBaseHP = 10
	}
	if rs.MaxStartingSkills == 0 {
		rs.MaxStartingSkills = 4
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("validating ruleset: %w", err)
	}
	return &rs, nil
}

// LoadFile reads and parses a ruleset file.
//
// Precondition: path must name a readable YAML file.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Validate checks every section and reports all problems at once.
func (rs *Ruleset) Validate() error {
	var errs []error
	if len(rs.Races) == 0 {
		errs = append(errs, errors.New("at least one race is required"))
	}
	if len(rs.Classes) == 0 {
		errs = append(errs, errors.New("at least one class is required"))
	}
	if len(rs.Skills) == 0 {
		errs = append(errs, errors.New("at least one skill is required"))
	}
	if len(rs.Locations) == 0 {
		errs = append(errs, errors.New("at least one location is required"))
	}
	if len(rs.Encounters) == 0 {
		errs = append(errs, errors.New("at least one encounter is required"))
	}
	if rs.DefaultBaseHP < 1 {
		errs = append(errs, fmt.Errorf("default_base_hp must be >= 1; got %d", rs.DefaultBaseHP))
	}
	if rs.MaxStartingSkills < 0 {
		errs = append(errs, fmt.Errorf("max_starting_skills must be >= 0; got %d", rs.MaxStartingSkills))
	}

	seen := map[string]bool{}
	unique := func(kind, id string) {
		key := kind + "/" + id
		if id == "" {
			errs = append(errs, fmt.Errorf("%s id must not be empty", kind))
		} else if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate %s id %q", kind, id))
		}
		seen[key] = true
	}
	for _, r := range rs.Races {
		unique("race", r.ID)
		for attr := range r.Bonuses {
			if !IsAttribute(attr) {
				errs = append(errs, fmt.Errorf("race %q: unknown attribute %q", r.ID, attr))
			}
		}
	}
	for _, c := range rs.Classes {
		unique("class", c.ID)
		if c.BaseHP < 1 {
			errs = append(errs, fmt.Errorf("class %q: base_hp must be >= 1", c.ID))
		}
	}
	for _, s := range rs.Skills {
		unique("skill", s.ID)
		if !IsAttribute(s.Attribute) {
			errs = append(errs, fmt.Errorf("skill %q: unknown attribute %q", s.ID, s.Attribute))
		}
	}
	for _, it := range rs.StartingItems {
		unique("item", it.ID)
		if err := it.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("starting item %q: %w", it.ID, err))
		}
	}
	for i, e := range rs.Encounters {
		if e.Type == "" || e.Message == "" {
			errs = append(errs, fmt.Errorf("encounter %d: type and message are required", i))
		}
	}
	return errors.Join(errs...)
}

// IsAttribute reports whether name is one of AttributeNames.
func IsAttribute(name string) bool {
	for _, a := range AttributeNames {
		if a == name {
			return true
		}
	}
	return false
}

// Race returns the race with the given ID.
func (rs *Ruleset) Race(id string) (*Race, bool) {
	for i := range rs.Races {
		if rs.Races[i].ID == id {
			return &rs.Races[i], true
		}
	}
	return nil, false
}

// Class returns the class with the given ID.
func (rs *Ruleset) Class(id string) (*Class, bool) {
	for i := range rs.Classes {
		if rs.Classes[i].ID == id {
			return &rs.Classes[i], true
		}
	}
	return nil, false
}

// Skill returns the skill with the given ID.
func (rs *Ruleset) Skill(id string) (*Skill, bool) {
	for i := range rs.Skills {
		if rs.Skills[i].ID == id {
			return &rs.Skills[i], true
		}
	}
	return nil, false
}

// ClassBaseHP returns the class's base hit points, or DefaultBaseHP for an
// unknown class.
func (rs *Ruleset) ClassBaseHP(id string) int {
	if c, ok := rs.Class(id); ok {
		return c.BaseHP
	}
	return rs.DefaultBaseHP
}

// RaceName returns the display name of a race, or id itself when unknown.
func (rs *Ruleset) RaceName(id string) string {
	if r, ok := rs.Race(id); ok {
		return r.Name
	}
	return id
}

// ClassName returns the display name of a class, or id itself when unknown.
func (rs *Ruleset) ClassName(id string) string {
	if c, ok := rs.Class(id); ok {
		return c.Name
	}
	return id
}

// IsStartingItem reports whether id names a starting item.
func (rs *Ruleset) IsStartingItem(id string) bool {
	for _, it := range rs.StartingItems {
		if it.ID == id {
			return true
		}
	}
	return false
}

// StartingInventory returns a fresh copy of the starting items.
func (rs *Ruleset) StartingInventory() inventory.Inventory {
	return append(inventory.Inventory(nil), rs.StartingItems...)
}
