package dice

import "time"

// Roll evaluates an Expression using the given Source and returns a RollResult
// stamped with at. It does not touch any history.
//
// Precondition: expr must come from Parse (Quantity >= 1, Sides >= 2); src must be non-nil.
// Postcondition: len(result.Dice) == expr.Quantity; every die is in [1, expr.Sides];
// result.Total == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source, at time.Time) RollResult {
	rolled := make([]int, expr.Quantity)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return newResult(expr, rolled, at)
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Postcondition: Returns a RollResult or an error wrapping ErrInvalidExpression.
func RollExpr(expr string, src Source, at time.Time) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src, at), nil
}
