// Package inventory models a character's carried items and their weight.
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// Type classifies an Item.
type Type string

// Item types.
const (
	TypeConsumable Type = "consumable"
	TypeTool       Type = "tool"
	TypeWeapon     Type = "weapon"
	TypeArmor      Type = "armor"
	TypeMagic      Type = "magic"
	TypeQuest      Type = "quest"
	TypeTreasure   Type = "treasure"
	TypeMisc       Type = "misc"
)

var validTypes = map[Type]bool{
	TypeConsumable: true,
	TypeTool:       true,
	TypeWeapon:     true,
	TypeArmor:      true,
	TypeMagic:      true,
	TypeQuest:      true,
	TypeTreasure:   true,
	TypeMisc:       true,
}

// Types returns every valid item type in display order.
func Types() []Type {
	return []Type{TypeWeapon, TypeArmor, TypeTool, TypeConsumable, TypeMagic, TypeQuest, TypeTreasure, TypeMisc}
}

// ParseType returns the Type named by s (case-insensitive).
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, validTypes[t]
}

// Item is a stack of identical things carried by a character.
type Item struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Quantity int     `json:"quantity" yaml:"quantity"`
	Weight   float64 `json:"weight" yaml:"weight"` // per unit
	Type     Type    `json:"type" yaml:"type"`
}

// TotalWeight returns Weight times Quantity. A quantity below 1 counts as 1.
func (i Item) TotalWeight() float64 {
	q := i.Quantity
	if q < 1 {
		q = 1
	}
	return i.Weight * float64(q)
}

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (i Item) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if i.Quantity < 1 {
		errs = append(errs, fmt.Errorf("Quantity must be >= 1; got %d", i.Quantity))
	}
	if i.Weight < 0 {
		errs = append(errs, fmt.Errorf("Weight must be >= 0; got %g", i.Weight))
	}
	if !validTypes[i.Type] {
		errs = append(errs, fmt.Errorf("Type %q is not a known item type", i.Type))
	}
	return errors.Join(errs...)
}
