package dice_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/companion/internal/game/dice"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// TestRollResult_Sum verifies the postcondition: Sum() == sum(Dice) + Modifier.
func TestRollResult_Sum(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, 12, r.Sum(), "Sum() must equal sum(Dice)+Modifier")
}

// TestRollResult_String verifies the audit string contains expression, dice, and total.
func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
		Total:      12,
	}
	s := r.String()
	require.Contains(t, s, "2d6+3", "String() must contain the expression")
	require.Contains(t, s, "[4 5]", "String() must contain the dice results")
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", s, "String() must match exact format")
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}, Modifier: 0}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRoll_SeededScenario(t *testing.T) {
	expr, err := dice.Parse("2d6+3")
	require.NoError(t, err)
	assert.Equal(t, dice.Expression{Quantity: 2, Sides: 6, Modifier: 3}, expr)

	r := dice.Roll(expr, dice.NewFixedSource(4, 5), epoch)
	assert.Equal(t, []int{4, 5}, r.Dice)
	assert.Equal(t, 12, r.Total)
	assert.False(t, r.Critical)
	assert.False(t, r.Fumble)
	assert.Equal(t, "2d6+3", r.Expression)
	assert.Equal(t, epoch, r.Timestamp)
}

func TestRoll_CriticalAndFumbleOnSameRoll(t *testing.T) {
	r := dice.Roll(dice.MustParse("2d20"), dice.NewFixedSource(20, 1), epoch)
	assert.True(t, r.Critical)
	assert.True(t, r.Fumble)
}

func TestRoll_NoFlagsOffD20(t *testing.T) {
	r := dice.Roll(dice.MustParse("3d6"), dice.NewFixedSource(1, 6, 6), epoch)
	assert.False(t, r.Critical)
	assert.False(t, r.Fumble)
}

// Property: every die is in [1, sides] and Total == sum + modifier.
func TestRoll_Property_Bounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := dice.Expression{
			Quantity: rapid.IntRange(1, 30).Draw(rt, "quantity"),
			Sides:    rapid.IntRange(2, 100).Draw(rt, "sides"),
			Modifier: rapid.IntRange(-50, 50).Draw(rt, "modifier"),
		}
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		r := dice.Roll(expr, src, epoch)

		require.Len(rt, r.Dice, expr.Quantity)
		sum := 0
		for _, d := range r.Dice {
			if d < 1 || d > expr.Sides {
				rt.Fatalf("die %d outside [1, %d]", d, expr.Sides)
			}
			sum += d
		}
		assert.Equal(rt, sum+expr.Modifier, r.Total)
	})
}

// Property: critical iff a 20 was rolled, fumble iff a 1 was rolled, d20 only.
func TestRoll_Property_CriticalFumble(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.SampledFrom([]int{4, 6, 8, 10, 12, 20, 100}).Draw(rt, "sides")
		faces := rapid.SliceOfN(rapid.IntRange(1, sides), 1, 6).Draw(rt, "faces")
		expr := dice.Expression{Quantity: len(faces), Sides: sides}
		r := dice.Roll(expr, dice.NewFixedSource(faces...), epoch)

		has := func(v int) bool {
			for _, f := range faces {
				if f == v {
					return true
				}
			}
			return false
		}
		if sides == 20 {
			assert.Equal(rt, has(20), r.Critical)
			assert.Equal(rt, has(1), r.Fumble)
		} else {
			assert.False(rt, r.Critical)
			assert.False(rt, r.Fumble)
		}
	})
}

func TestRollResult_String_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		faces := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 10).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")
		expr := dice.Expression{Quantity: len(faces), Sides: 20, Modifier: modifier}
		r := dice.Roll(expr, dice.NewFixedSource(faces...), epoch)

		s := r.String()
		assert.True(rt, strings.HasPrefix(s, expr.String()))
		assert.Contains(rt, s, fmt.Sprintf("= %d", r.Total))
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestFixedSource_ClampsAndDefaults(t *testing.T) {
	src := dice.NewFixedSource(9, 0)
	assert.Equal(t, 5, src.Intn(6), "face above n is clamped to n-1")
	assert.Equal(t, 0, src.Intn(6), "face below 1 is clamped to 0")
	assert.Equal(t, 0, src.Intn(6), "empty queue yields 0")
	src.Push(3)
	assert.Equal(t, 2, src.Intn(6))
}
