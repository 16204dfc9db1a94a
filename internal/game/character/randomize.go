package character

import (
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

// Randomize overwrites c with random identity, appearance, attributes and
// skills. Attributes restart at MinScore and PointBuyTotal points are spent
// on randomly chosen attributes that can still afford an increment, so at
// most one point can be left over. Two to four distinct skills are chosen,
// capped at rules.MaxStartingSkills.
//
// Postcondition: the returned Allocator holds c.Attributes and the unspent points.
func Randomize(c *Character, rules *ruleset.Ruleset, src dice.Source) *Allocator {
	if n := len(rules.Random.Names); n > 0 {
		c.Name = rules.Random.Names[src.Intn(n)]
	}
	c.Race = rules.Races[src.Intn(len(rules.Races))].ID
	c.Class = rules.Classes[src.Intn(len(rules.Classes))].ID
	c.Background = rules.Random.Background

	alloc := NewAllocatorFrom(Uniform(MinScore), PointBuyTotal)
	for {
		var open []Attribute
		for _, a := range Attributes {
			if alloc.CanIncrement(a) {
				open = append(open, a)
			}
		}
		if len(open) == 0 {
			break
		}
		alloc.Increment(open[src.Intn(len(open))])
	}
	c.Attributes = alloc.Scores()

	pool := make([]string, len(rules.Skills))
	for i, s := range rules.Skills {
		pool[i] = s.ID
	}
	want := src.Intn(3) + 2
	if rules.MaxStartingSkills > 0 {
		want = min(want, rules.MaxStartingSkills)
	}
	c.Skills = make([]string, 0, want)
	for i := 0; i < want && len(pool) > 0; i++ {
		j := src.Intn(len(pool))
		c.Skills = append(c.Skills, pool[j])
		pool = append(pool[:j], pool[j+1:]...)
	}

	gender := "male"
	if src.Intn(2) == 1 {
		gender = "female"
	}
	c.Appearance = Appearance{
		Gender:      gender,
		Age:         src.Intn(50) + 18,
		Height:      src.Intn(40) + 150,
		Weight:      src.Intn(40) + 50,
		Description: rules.Random.Description,
	}
	c.RecalculateHP(rules)
	return alloc
}
