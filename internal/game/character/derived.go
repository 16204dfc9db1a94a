package character

import (
	"github.com/cory-johannsen/companion/internal/game/inventory"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

// MaxHPFor returns the class base hit points plus the constitution modifier,
// never less than 1.
func MaxHPFor(rules *ruleset.Ruleset, class string, constitution int) int {
	hp := rules.ClassBaseHP(class) + Modifier(constitution)
	if hp < 1 {
		hp = 1
	}
	return hp
}

// RecalculateHP sets MaxHP from class and constitution and refills HP.
func (c *Character) RecalculateHP(rules *ruleset.Ruleset) {
	c.MaxHP = MaxHPFor(rules, c.Class, c.Attributes.Constitution)
	c.HP = c.MaxHP
}

// ArmorClass returns 10 plus the dexterity modifier.
func (c *Character) ArmorClass() int {
	return 10 + Modifier(c.Attributes.Dexterity)
}

// Initiative returns the dexterity modifier.
func (c *Character) Initiative() int {
	return Modifier(c.Attributes.Dexterity)
}

// CarryCapacity returns the inventory weight limit for the character's
// strength.
func (c *Character) CarryCapacity() float64 {
	return inventory.CapacityFor(Modifier(c.Attributes.Strength))
}

// OverCapacity reports whether the inventory outweighs CarryCapacity.
func (c *Character) OverCapacity() bool {
	return c.Inventory.OverCapacity(c.CarryCapacity())
}

// ProficiencyBonus is added to skill checks for proficient skills.
const ProficiencyBonus = 2

// SkillModifier returns the governing attribute modifier plus
// ProficiencyBonus when the character is proficient. ok is false for an
// unknown skill.
func (c *Character) SkillModifier(rules *ruleset.Ruleset, skillID string) (mod int, ok bool) {
	skill, ok := rules.Skill(skillID)
	if !ok {
		return 0, false
	}
	mod = Modifier(c.Attributes.Get(Attribute(skill.Attribute)))
	if c.HasSkill(skillID) {
		mod += ProficiencyBonus
	}
	return mod, true
}

// HasSkill reports whether the character is proficient in skillID.
func (c *Character) HasSkill(skillID string) bool {
	for _, s := range c.Skills {
		if s == skillID {
			return true
		}
	}
	return false
}

// ToggleSkill removes skillID when present, otherwise adds it if fewer than
// limit skills are held. Returns false when the skill could not be added.
func (c *Character) ToggleSkill(skillID string, limit int) bool {
	for i, s := range c.Skills {
		if s == skillID {
			c.Skills = append(c.Skills[:i], c.Skills[i+1:]...)
			return true
		}
	}
	if len(c.Skills) >= limit {
		return false
	}
	c.Skills = append(c.Skills, skillID)
	return true
}
