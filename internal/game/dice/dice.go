// Package dice provides dice-notation parsing, roll evaluation, a bounded roll
// history and the Engine that ties them to persistence.
package dice

import (
	"fmt"
	"time"
)

// CriticalSides is the die size on which natural 20s and natural 1s are flagged.
const CriticalSides = 20

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total == sum(Dice) + Modifier.
// Invariant: Critical and Fumble are false unless Sides == CriticalSides.
type RollResult struct {
	Expression string    `json:"expression"` // canonical expression text, e.g. "2d6+3"
	Quantity   int       `json:"quantity"`
	Sides      int       `json:"sides"`
	Modifier   int       `json:"modifier"`
	Dice       []int     `json:"rolls"` // individual die results before modifier, in roll order
	Total      int       `json:"total"`
	Critical   bool      `json:"critical"`
	Fumble     bool      `json:"fumble"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sum returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Sum() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s → %s %s = %d", r.Expression, diceStr, modStr, r.Total)
}

// newResult evaluates the flags and total for a set of dice.
func newResult(expr Expression, rolled []int, at time.Time) RollResult {
	r := RollResult{
		Expression: expr.String(),
		Quantity:   expr.Quantity,
		Sides:      expr.Sides,
		Modifier:   expr.Modifier,
		Dice:       rolled,
		Timestamp:  at,
	}
	r.Total = r.Sum()
	if expr.Sides == CriticalSides {
		for _, d := range rolled {
			switch d {
			case CriticalSides:
				r.Critical = true
			case 1:
				r.Fumble = true
			}
		}
	}
	return r
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
