package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Default upper bounds applied by Parse. Untrusted input beyond these is rejected.
const (
	DefaultMaxQuantity = 1000
	DefaultMaxSides    = 1000
	DefaultMaxModifier = 1000
)

// ErrInvalidExpression is returned for any malformed dice notation.
var ErrInvalidExpression = errors.New("dice: invalid expression")

// Expression represents a parsed dice expression ready to be rolled.
//
// Invariant: Quantity >= 1 and Sides >= 2 after a successful Parse.
type Expression struct {
	Quantity int // number of dice
	Sides    int // faces per die
	Modifier int // flat modifier (may be negative)
}

// String returns the canonical form "{q}d{s}{+|-}{m}". The modifier is
// omitted when zero.
func (e Expression) String() string {
	return Format(e.Sides, e.Quantity, e.Modifier)
}

// Format builds the canonical expression text for the given components.
func Format(sides, quantity, modifier int) string {
	switch {
	case modifier > 0:
		return fmt.Sprintf("%dd%d+%d", quantity, sides, modifier)
	case modifier < 0:
		return fmt.Sprintf("%dd%d%d", quantity, sides, modifier)
	default:
		return fmt.Sprintf("%dd%d", quantity, sides)
	}
}

// Limits bounds the dice Parse accepts. A zero or negative field uses the
// matching default, so every expression is bounded and its total cannot
// overflow.
type Limits struct {
	MaxQuantity int
	MaxSides    int
	// MaxModifier bounds the absolute value of the flat modifier.
	MaxModifier int
}

// DefaultLimits returns the default parse limits.
func DefaultLimits() Limits {
	return Limits{MaxQuantity: DefaultMaxQuantity, MaxSides: DefaultMaxSides, MaxModifier: DefaultMaxModifier}
}

// effective fills unset fields with their defaults.
func (l Limits) effective() Limits {
	d := DefaultLimits()
	if l.MaxQuantity <= 0 {
		l.MaxQuantity = d.MaxQuantity
	}
	if l.MaxSides <= 0 {
		l.MaxSides = d.MaxSides
	}
	if l.MaxModifier <= 0 {
		l.MaxModifier = d.MaxModifier
	}
	return l
}

// Parse parses a dice expression using DefaultLimits.
// Supported forms: "1d20", "2d6", "2d6+3", "4d8-2".
func Parse(text string) (Expression, error) {
	return DefaultLimits().Parse(text)
}

// Parse parses text of the form <quantity>d<sides>[(+|-)<modifier>].
//
// Postcondition: Returns a valid Expression or an error wrapping ErrInvalidExpression.
func (l Limits) Parse(text string) (Expression, error) {
	if text == "" {
		return Expression{}, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}
	s := strings.ToLower(text)

	dIdx := strings.IndexByte(s, 'd')
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("%w: missing 'd' in %q", ErrInvalidExpression, text)
	}

	quantity, err := parseUnsigned(s[:dIdx])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: invalid die count in %q", ErrInvalidExpression, text)
	}
	if quantity < 1 {
		return Expression{}, fmt.Errorf("%w: die count in %q must be >= 1", ErrInvalidExpression, text)
	}

	rest := s[dIdx+1:]
	sidesStr, modStr := rest, ""
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesStr, modStr = rest[:i], rest[i:]
	}

	sides, err := parseUnsigned(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: invalid die sides in %q", ErrInvalidExpression, text)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("%w: die sides in %q must be >= 2", ErrInvalidExpression, text)
	}

	modifier := 0
	if modStr != "" {
		m, err := parseUnsigned(modStr[1:])
		if err != nil {
			return Expression{}, fmt.Errorf("%w: invalid modifier in %q", ErrInvalidExpression, text)
		}
		if modStr[0] == '-' {
			m = -m
		}
		modifier = m
	}

	expr := Expression{Quantity: quantity, Sides: sides, Modifier: modifier}
	if err := l.check(expr); err != nil {
		return Expression{}, fmt.Errorf("%w in %q", err, text)
	}
	return expr, nil
}

// check reports whether expr satisfies the structural invariants and limits.
func (l Limits) check(expr Expression) error {
	if expr.Quantity < 1 {
		return fmt.Errorf("%w: die count must be >= 1", ErrInvalidExpression)
	}
	if expr.Sides < 2 {
		return fmt.Errorf("%w: die sides must be >= 2", ErrInvalidExpression)
	}
	l = l.effective()
	if expr.Quantity > l.MaxQuantity {
		return fmt.Errorf("%w: die count %d exceeds limit %d", ErrInvalidExpression, expr.Quantity, l.MaxQuantity)
	}
	if expr.Sides > l.MaxSides {
		return fmt.Errorf("%w: die sides %d exceed limit %d", ErrInvalidExpression, expr.Sides, l.MaxSides)
	}
	if expr.Modifier > l.MaxModifier || expr.Modifier < -l.MaxModifier {
		return fmt.Errorf("%w: modifier %d exceeds limit %d", ErrInvalidExpression, expr.Modifier, l.MaxModifier)
	}
	return nil
}

// parseUnsigned accepts only ASCII digits; signs and whitespace are rejected.
func parseUnsigned(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty number")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("unexpected %q", s[i])
		}
	}
	return strconv.Atoi(s)
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
