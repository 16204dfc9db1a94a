package character

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/companion/internal/game/inventory"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

// DefaultName is the placeholder name of a fresh character.
const DefaultName = "New Character"

// ID identifies a character. Older records stored numeric IDs; both forms
// decode into the same string representation.
type ID string

// NewID returns a fresh random ID.
func NewID() ID { return ID(uuid.NewString()) }

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("character id: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Appearance is descriptive, free-form data about a character.
type Appearance struct {
	Gender      string `json:"gender"`
	Age         int    `json:"age"`
	Height      int    `json:"height"` // centimeters
	Weight      int    `json:"weight"` // kilograms
	Description string `json:"description"`
}

// Character is a player character record.
type Character struct {
	ID           ID                  `json:"id"`
	Name         string              `json:"name"`
	Race         string              `json:"race"`
	Class        string              `json:"class"`
	Level        int                 `json:"level"`
	Attributes   AbilityScores       `json:"attributes"`
	Skills       []string            `json:"skills"`
	Inventory    inventory.Inventory `json:"inventory"`
	Appearance   Appearance          `json:"appearance"`
	Background   string              `json:"background"`
	HP           int                 `json:"hp"`
	MaxHP        int                 `json:"maxHp"`
	Mana         int                 `json:"mana"`
	MaxMana      int                 `json:"maxMana"`
	XP           int                 `json:"xp"`
	Gold         int                 `json:"gold"`
	LastTab      string              `json:"lastTab,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	LastModified time.Time           `json:"lastModified"`
}

// NewDefault returns a level 1 human warrior with every attribute at
// DefaultScore, the starting inventory and 100 gold.
//
// Precondition: rules must be non-nil.
func NewDefault(rules *ruleset.Ruleset, now time.Time) *Character {
	return &Character{
		ID:         NewID(),
		Name:       DefaultName,
		Race:       "human",
		Class:      "warrior",
		Level:      1,
		Attributes: DefaultScores(),
		Skills:     []string{},
		Inventory:  rules.StartingInventory(),
		Appearance: Appearance{
			Gender: "male",
			Age:    25,
			Height: 175,
			Weight: 70,
		},
		HP:           10,
		MaxHP:        10,
		Mana:         10,
		MaxMana:      10,
		Gold:         100,
		CreatedAt:    now,
		LastModified: now,
	}
}

// Clone returns a deep copy.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Skills = append([]string(nil), c.Skills...)
	out.Inventory = c.Inventory.Clone()
	return &out
}

// Normalize fills fields that older or hand-edited records may lack:
// zero attributes become DefaultScore, level is at least 1, collections are
// non-nil and MaxHP/MaxMana fall back to 10.
func (c *Character) Normalize() {
	for _, a := range Attributes {
		if c.Attributes.Get(a) == 0 {
			c.Attributes.Set(a, DefaultScore)
		}
	}
	if c.Level < 1 {
		c.Level = 1
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.Inventory == nil {
		c.Inventory = inventory.Inventory{}
	}
	if c.MaxHP <= 0 {
		c.MaxHP = 10
	}
	if c.MaxMana <= 0 {
		c.MaxMana = 10
	}
	if c.ID == "" {
		c.ID = NewID()
	}
}
