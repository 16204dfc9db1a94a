package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/companion/internal/game/dice"
)

func TestParse_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expression
	}{
		{"1d20", dice.Expression{Quantity: 1, Sides: 20}},
		{"2d6+3", dice.Expression{Quantity: 2, Sides: 6, Modifier: 3}},
		{"4d8-2", dice.Expression{Quantity: 4, Sides: 8, Modifier: -2}},
		{"1d20+0", dice.Expression{Quantity: 1, Sides: 20}},
		{"3D10", dice.Expression{Quantity: 3, Sides: 10}},
		{"1000d1000", dice.Expression{Quantity: 1000, Sides: 1000}},
	}
	for _, tc := range cases {
		got, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"", "20", "d20", "xd6", "2dx", "0d6", "2d0", "2d1", "-1d6", "2d-6",
		"2d6+", "2d6+-3", "2d6+3+1", " 2d6", "2d6 ", "2d6*2", "1001d6", "1d1001",
		"99999999999999999999d6", "1d20+1001", "1d20-1001", "1d20+9223372036854775807",
	} {
		_, err := dice.Parse(in)
		require.Error(t, err, "%q should be rejected", in)
		assert.ErrorIs(t, err, dice.ErrInvalidExpression, in)
	}
}

func TestLimits_Custom(t *testing.T) {
	l := dice.Limits{MaxQuantity: 5, MaxSides: 12}
	_, err := l.Parse("6d6")
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)
	_, err = l.Parse("1d20")
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)
	_, err = l.Parse("5d12-1")
	assert.NoError(t, err)
}

func TestLimits_Modifier(t *testing.T) {
	l := dice.Limits{MaxModifier: 5}
	_, err := l.Parse("1d6+6")
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)
	_, err = l.Parse("1d6-6")
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)
	got, err := l.Parse("1d6-5")
	require.NoError(t, err)
	assert.Equal(t, -5, got.Modifier)

	_, err = dice.Limits{}.Parse("1d6+1000")
	assert.NoError(t, err, "unset limits fall back to the defaults")
	_, err = dice.Limits{}.Parse("1d6+1001")
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)
}

func TestExpression_String(t *testing.T) {
	assert.Equal(t, "1d20", dice.Expression{Quantity: 1, Sides: 20}.String())
	assert.Equal(t, "2d6+3", dice.Expression{Quantity: 2, Sides: 6, Modifier: 3}.String())
	assert.Equal(t, "4d8-2", dice.Expression{Quantity: 4, Sides: 8, Modifier: -2}.String())
}

// Property: Parse(Format(s, q, m)) reproduces the components exactly.
func TestFormat_Property_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		want := dice.Expression{
			Quantity: rapid.IntRange(1, dice.DefaultMaxQuantity).Draw(rt, "quantity"),
			Sides:    rapid.IntRange(2, dice.DefaultMaxSides).Draw(rt, "sides"),
			Modifier: rapid.IntRange(-dice.DefaultMaxModifier, dice.DefaultMaxModifier).Draw(rt, "modifier"),
		}
		got, err := dice.Parse(dice.Format(want.Sides, want.Quantity, want.Modifier))
		require.NoError(rt, err)
		assert.Equal(rt, want, got)
	})
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
	assert.NotPanics(t, func() { dice.MustParse("1d4") })
}
