// Package character defines the character record, the point-buy attribute
// allocator and the creation workflow that edits a draft character.
package character

import (
	"fmt"
	"strings"
)

// Attribute names one of the six ability scores.
type Attribute string

// The six ability scores.
const (
	Strength     Attribute = "strength"
	Dexterity    Attribute = "dexterity"
	Constitution Attribute = "constitution"
	Intelligence Attribute = "intelligence"
	Wisdom       Attribute = "wisdom"
	Charisma     Attribute = "charisma"
)

// Attributes lists every Attribute in sheet order.
var Attributes = []Attribute{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// Abbrev returns the three-letter upper-case abbreviation, e.g. "STR".
func (a Attribute) Abbrev() string {
	if len(a) < 3 {
		return strings.ToUpper(string(a))
	}
	return strings.ToUpper(string(a[:3]))
}

// Valid reports whether a is one of Attributes.
func (a Attribute) Valid() bool {
	for _, known := range Attributes {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAttribute accepts a full attribute name or its three-letter
// abbreviation, case-insensitively.
func ParseAttribute(s string) (Attribute, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range Attributes {
		if s == string(a) || (len(s) == 3 && strings.HasPrefix(string(a), s)) {
			return a, true
		}
	}
	return "", false
}

// AbilityScores holds the six ability score values.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// DefaultScores returns every score at DefaultScore.
func DefaultScores() AbilityScores {
	return Uniform(DefaultScore)
}

// Uniform returns every score set to v.
func Uniform(v int) AbilityScores {
	return AbilityScores{v, v, v, v, v, v}
}

// Get returns the value of a.
//
// Precondition: a is one of Attributes; any other value yields 0.
func (s AbilityScores) Get(a Attribute) int {
	switch a {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	}
	return 0
}

// Set assigns v to a. Unknown attributes are ignored.
func (s *AbilityScores) Set(a Attribute, v int) {
	switch a {
	case Strength:
		s.Strength = v
	case Dexterity:
		s.Dexterity = v
	case Constitution:
		s.Constitution = v
	case Intelligence:
		s.Intelligence = v
	case Wisdom:
		s.Wisdom = v
	case Charisma:
		s.Charisma = v
	}
}

// Modifier returns floor((value-10)/2). Odd values below 10 round toward
// negative infinity, so 9 yields -1 and 7 yields -2.
func Modifier(value int) int {
	d := value - 10
	if d < 0 {
		return -((-d + 1) / 2)
	}
	return d / 2
}

// FormatModifier renders a modifier with an explicit sign, e.g. "+2" or "-1".
func FormatModifier(m int) string {
	return fmt.Sprintf("%+d", m)
}
