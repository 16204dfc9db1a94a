package dice

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HistoryStore persists the roll history as a whole document.
type HistoryStore interface {
	LoadHistory(ctx context.Context) ([]RollResult, error)
	SaveHistory(ctx context.Context, entries []RollResult) error
	ClearHistory(ctx context.Context) error
}

// Engine evaluates dice expressions, maintains the bounded roll history and
// keeps the persisted copy in sync. All methods are safe for concurrent use;
// the random source and history are guarded by a single mutex because
// append-and-evict is not atomic.
type Engine struct {
	mu        sync.Mutex
	src       Source
	limits    Limits
	history   *History
	store     HistoryStore
	logger    *zap.Logger
	now       func() time.Time
	observers []func(RollResult)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the parse limits.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithHistoryCapacity overrides the history capacity.
func WithHistoryCapacity(n int) Option {
	return func(e *Engine) { e.history = NewHistory(n) }
}

// WithStore attaches a persistence backend for the history.
func WithStore(s HistoryStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns an Engine with an empty history.
func NewEngine(src Source, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		src:     src,
		limits:  DefaultLimits(),
		history: NewHistory(DefaultHistoryCapacity),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load rehydrates the history from the store. Missing or unreadable data
// leaves the history empty; the failure is logged, never returned.
func (e *Engine) Load(ctx context.Context) {
	if e.store == nil {
		return
	}
	entries, err := e.store.LoadHistory(ctx)
	if err != nil {
		e.logger.Warn("dice history unavailable, starting empty", zap.Error(err))
		entries = nil
	}
	e.mu.Lock()
	e.history.Replace(entries)
	n := e.history.Len()
	e.mu.Unlock()
	e.logger.Debug("dice history loaded", zap.Int("entries", n))
}

// Subscribe registers fn to be called after every successful roll.
func (e *Engine) Subscribe(fn func(RollResult)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Parse parses text using the engine's limits.
func (e *Engine) Parse(text string) (Expression, error) {
	return e.limits.Parse(text)
}

// Roll evaluates expr, records it in the history and persists the history.
//
// Precondition: expr must satisfy the engine's limits.
// Postcondition: on success History()[0] is the returned result.
func (e *Engine) Roll(ctx context.Context, expr Expression) (RollResult, error) {
	if err := e.limits.check(expr); err != nil {
		return RollResult{}, err
	}

	e.mu.Lock()
	result := Roll(expr, e.src, e.now())
	e.history.Push(result)
	e.persistLocked(ctx)
	observers := append([]func(RollResult){}, e.observers...)
	e.mu.Unlock()

	e.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total),
		zap.Bool("critical", result.Critical),
		zap.Bool("fumble", result.Fumble),
	)
	for _, fn := range observers {
		fn(result)
	}
	return result, nil
}

// RollExpr parses text and rolls it.
//
// Postcondition: Returns a RollResult or an error wrapping ErrInvalidExpression.
func (e *Engine) RollExpr(ctx context.Context, text string) (RollResult, error) {
	expr, err := e.Parse(text)
	if err != nil {
		return RollResult{}, err
	}
	return e.Roll(ctx, expr)
}

// RollSimple rolls quantity dice of the given sides plus modifier. The
// canonical text is built first and parsed back, so the recorded expression
// is always one Parse accepts.
func (e *Engine) RollSimple(ctx context.Context, sides, quantity, modifier int) (RollResult, error) {
	return e.RollExpr(ctx, Format(sides, quantity, modifier))
}

// History returns a copy of the retained results, newest first.
func (e *Engine) History() []RollResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Entries()
}

// Statistics summarizes d20 rolls in the history. ok is false when there are none.
func (e *Engine) Statistics() (Stats, bool) {
	return ComputeStats(e.History())
}

// ClearHistory empties the history and removes the persisted copy. Idempotent.
func (e *Engine) ClearHistory(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Clear()
	if e.store == nil {
		return
	}
	if err := e.store.ClearHistory(ctx); err != nil {
		e.logger.Warn("clearing persisted dice history", zap.Error(err))
	}
}

func (e *Engine) persistLocked(ctx context.Context) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveHistory(ctx, e.history.Entries()); err != nil {
		e.logger.Warn("persisting dice history", zap.Error(err))
	}
}
