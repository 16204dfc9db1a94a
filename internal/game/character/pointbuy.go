package character

// Point-buy bounds.
const (
	PointBuyTotal = 27
	MinScore      = 8
	MaxScore      = 18
	DefaultScore  = 10

	// highTier is the first value whose next increment costs two points.
	highTier = 13
)

// IncrementCost returns the points needed to raise a score currently at v.
func IncrementCost(v int) int {
	if v >= highTier {
		return 2
	}
	return 1
}

// decrementRefund returns the points returned when lowering a score from v.
// The tier is judged on the value being moved to, so the refund always
// equals the IncrementCost that produced v.
func decrementRefund(v int) int {
	if v-1 >= highTier {
		return 2
	}
	return 1
}

// CostToReach returns the total points spent raising a score from MinScore to
// v. Values at or below MinScore cost nothing.
func CostToReach(v int) int {
	cost := 0
	for x := MinScore; x < v; x++ {
		cost += IncrementCost(x)
	}
	return cost
}

// Allocator enforces the point-buy economy over the six attributes. It is not
// safe for concurrent use.
//
// Invariant: Remaining() + sum(CostToReach(v)) is unchanged by every accepted
// Increment or Decrement.
// Invariant: starting from NewAllocator, every value stays in [MinScore, MaxScore]
// and Remaining() never drops below 0.
type Allocator struct {
	scores AbilityScores
	budget int
}

// NewAllocator returns every attribute at DefaultScore with PointBuyTotal points.
func NewAllocator() *Allocator {
	return &Allocator{scores: DefaultScores(), budget: PointBuyTotal}
}

// NewAllocatorFrom rehydrates an allocation produced elsewhere. Values and
// budget are taken as-is; an imbalanced state (negative budget, values outside
// bounds) is tolerated and only constrains further operations.
func NewAllocatorFrom(scores AbilityScores, budget int) *Allocator {
	return &Allocator{scores: scores, budget: budget}
}

// CanIncrement reports whether Increment(a) would be accepted. Attributes
// outside Attributes are always rejected.
func (al *Allocator) CanIncrement(a Attribute) bool {
	if !a.Valid() {
		return false
	}
	v := al.scores.Get(a)
	return v < MaxScore && al.budget >= IncrementCost(v)
}

// CanDecrement reports whether Decrement(a) would be accepted.
func (al *Allocator) CanDecrement(a Attribute) bool {
	return a.Valid() && al.scores.Get(a) > MinScore
}

// Increment raises a by one and spends IncrementCost of its current value.
// Returns false, leaving state unchanged, when a is unknown, the value is at
// MaxScore or the budget cannot cover the cost.
func (al *Allocator) Increment(a Attribute) bool {
	if !al.CanIncrement(a) {
		return false
	}
	v := al.scores.Get(a)
	al.scores.Set(a, v+1)
	al.budget -= IncrementCost(v)
	return true
}

// Decrement lowers a by one and refunds the tier cost of the new value.
// Returns false, leaving state unchanged, when a is unknown or the value is
// at MinScore.
func (al *Allocator) Decrement(a Attribute) bool {
	if !al.CanDecrement(a) {
		return false
	}
	v := al.scores.Get(a)
	al.scores.Set(a, v-1)
	al.budget += decrementRefund(v)
	return true
}

// Remaining returns the unspent budget. It may be negative only for an
// allocation rehydrated by NewAllocatorFrom.
func (al *Allocator) Remaining() int { return al.budget }

// Value returns the current value of a.
func (al *Allocator) Value(a Attribute) int { return al.scores.Get(a) }

// Scores returns a copy of the current values.
func (al *Allocator) Scores() AbilityScores { return al.scores }

// Reset restores every value to DefaultScore and the budget to PointBuyTotal.
func (al *Allocator) Reset() {
	al.scores = DefaultScores()
	al.budget = PointBuyTotal
}
