package character_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/inventory"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

var now = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func TestNewDefault(t *testing.T) {
	c := character.NewDefault(ruleset.Default(), now)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, character.DefaultName, c.Name)
	assert.Equal(t, "human", c.Race)
	assert.Equal(t, "warrior", c.Class)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, character.DefaultScores(), c.Attributes)
	assert.Equal(t, 10, c.HP)
	assert.Equal(t, 10, c.MaxHP)
	assert.Equal(t, 100, c.Gold)
	assert.Len(t, c.Inventory, 3)
	assert.Equal(t, now, c.CreatedAt)
}

func TestCharacter_JSONFieldNames(t *testing.T) {
	c := character.NewDefault(ruleset.Default(), now)
	data, err := json.Marshal(c)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "name", "race", "class", "level", "attributes", "skills", "inventory",
		"appearance", "background", "hp", "maxHp", "mana", "maxMana", "xp", "gold", "createdAt", "lastModified"} {
		assert.Contains(t, raw, key)
	}
	attrs := raw["attributes"].(map[string]any)
	assert.Contains(t, attrs, "constitution")
}

func TestID_AcceptsLegacyNumber(t *testing.T) {
	var c character.Character
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1712345678901, "name": "Old"}`), &c))
	assert.Equal(t, character.ID("1712345678901"), c.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc"}`), &c))
	assert.Equal(t, character.ID("abc"), c.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &c))
}

func TestCharacter_Normalize(t *testing.T) {
	c := &character.Character{Attributes: character.AbilityScores{Strength: 14}}
	c.Normalize()
	assert.Equal(t, 14, c.Attributes.Strength)
	assert.Equal(t, 10, c.Attributes.Wisdom)
	assert.Equal(t, 1, c.Level)
	assert.NotNil(t, c.Skills)
	assert.NotNil(t, c.Inventory)
	assert.Equal(t, 10, c.MaxHP)
	assert.NotEmpty(t, c.ID)
}

func TestCharacter_CloneIsDeep(t *testing.T) {
	c := character.NewDefault(ruleset.Default(), now)
	c.Skills = []string{"stealth"}
	cp := c.Clone()
	cp.Skills[0] = "arcana"
	cp.Inventory[0].Quantity = 99
	assert.Equal(t, "stealth", c.Skills[0])
	assert.Equal(t, 3, c.Inventory[0].Quantity)
}

func TestDerivedStats(t *testing.T) {
	rules := ruleset.Default()
	c := character.NewDefault(rules, now)
	c.Attributes.Dexterity = 15
	c.Attributes.Constitution = 14
	c.Class = "mage"
	c.RecalculateHP(rules)
	assert.Equal(t, 8, c.MaxHP)
	assert.Equal(t, 8, c.HP)
	assert.Equal(t, 12, c.ArmorClass())
	assert.Equal(t, 2, c.Initiative())

	assert.Equal(t, 1, character.MaxHPFor(rules, "mage", 1), "hit points never drop below 1")
	assert.Equal(t, 9, character.MaxHPFor(rules, "unknown", 8))
}

func TestCarryCapacity(t *testing.T) {
	c := character.NewDefault(ruleset.Default(), now)
	c.Attributes.Strength = 10
	assert.InDelta(t, 100, c.CarryCapacity(), 1e-9)
	c.Attributes.Strength = 16
	assert.InDelta(t, 130, c.CarryCapacity(), 1e-9)
	c.Attributes.Strength = 8
	assert.InDelta(t, 90, c.CarryCapacity(), 1e-9)

	c.Inventory = inventory.Inventory{{ID: "anvil", Name: "Anvil", Quantity: 1, Weight: 95, Type: inventory.TypeMisc}}
	assert.True(t, c.OverCapacity())
	c.Attributes.Strength = 10
	assert.False(t, c.OverCapacity())
}

func TestSkillModifier(t *testing.T) {
	rules := ruleset.Default()
	c := character.NewDefault(rules, now)
	c.Attributes.Dexterity = 14
	mod, ok := c.SkillModifier(rules, "stealth")
	require.True(t, ok)
	assert.Equal(t, 2, mod)

	c.Skills = []string{"stealth"}
	mod, _ = c.SkillModifier(rules, "stealth")
	assert.Equal(t, 4, mod)

	_, ok = c.SkillModifier(rules, "juggling")
	assert.False(t, ok)
}

func TestToggleSkill_Limit(t *testing.T) {
	c := &character.Character{}
	for _, s := range []string{"a", "b", "c", "d"} {
		require.True(t, c.ToggleSkill(s, 4))
	}
	assert.False(t, c.ToggleSkill("e", 4))
	assert.True(t, c.ToggleSkill("b", 4), "removing is always allowed")
	assert.Equal(t, []string{"a", "c", "d"}, c.Skills)
}

func TestExport(t *testing.T) {
	c := character.NewDefault(ruleset.Default(), now)
	c.Name = "Ana Maria"
	data, err := character.Export(c, now)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "1.0", raw["version"])
	assert.Equal(t, now.Format(time.RFC3339), raw["exportDate"])
	assert.Equal(t, "Ana Maria", raw["name"])
	assert.Contains(t, string(data), "\n  \"id\"", "output is indented by two spaces")

	assert.Equal(t, "character_Ana_Maria_1772600767000.json", character.ExportFileName(c, now))
}

func TestRandomize(t *testing.T) {
	rules := ruleset.Default()
	for seed := int64(0); seed < 50; seed++ {
		c := character.NewDefault(rules, now)
		al := character.Randomize(c, rules, dice.NewSeededSource(seed))

		assert.Contains(t, rules.Random.Names, c.Name)
		_, ok := rules.Race(c.Race)
		assert.True(t, ok)
		_, ok = rules.Class(c.Class)
		assert.True(t, ok)
		assert.Equal(t, al.Scores(), c.Attributes)
		assert.LessOrEqual(t, al.Remaining(), 1)
		assert.GreaterOrEqual(t, al.Remaining(), 0)

		spent := 0
		for _, a := range character.Attributes {
			v := c.Attributes.Get(a)
			assert.GreaterOrEqual(t, v, character.MinScore)
			assert.LessOrEqual(t, v, character.MaxScore)
			spent += character.CostToReach(v)
		}
		assert.Equal(t, character.PointBuyTotal, spent+al.Remaining())

		assert.GreaterOrEqual(t, len(c.Skills), 2)
		assert.LessOrEqual(t, len(c.Skills), 4)
		seen := map[string]bool{}
		for _, s := range c.Skills {
			assert.False(t, seen[s], "skills are distinct")
			seen[s] = true
		}
		assert.GreaterOrEqual(t, c.Appearance.Age, 18)
		assert.Less(t, c.Appearance.Age, 68)
		assert.Equal(t, character.MaxHPFor(rules, c.Class, c.Attributes.Constitution), c.MaxHP)
	}
}

func TestRandomize_RespectsSkillLimit(t *testing.T) {
	rules := ruleset.Default()
	rules.MaxStartingSkills = 1
	for seed := int64(0); seed < 50; seed++ {
		c := character.NewDefault(rules, now)
		character.Randomize(c, rules, dice.NewSeededSource(seed))
		assert.Len(t, c.Skills, 1, "seed %d", seed)
	}
}
