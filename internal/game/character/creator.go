package character

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/inventory"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

// Creator errors.
var (
	ErrNameRequired     = errors.New("character: name is required")
	ErrNotFound         = errors.New("character: not found")
	ErrNoDraft          = errors.New("character: no draft saved")
	ErrUnknownRace      = errors.New("character: unknown race")
	ErrUnknownClass     = errors.New("character: unknown class")
	ErrUnknownSkill     = errors.New("character: unknown skill")
	ErrSkillLimit       = errors.New("character: starting skill limit reached")
	ErrStartingItem     = errors.New("character: starting items cannot be removed")
	ErrNoSuchItem       = errors.New("character: no item at that position")
	ErrItemNameRequired = errors.New("character: item name is required")
)

// Draft is the autosaved in-progress character. AttributePoints is nil when
// the stored document did not carry a budget.
type Draft struct {
	Character       *Character `json:"character"`
	AttributePoints *int       `json:"attributePoints"`
	Timestamp       time.Time  `json:"timestamp"`
}

// DraftStore persists the single in-progress draft.
type DraftStore interface {
	// LoadDraft returns ErrNoDraft when nothing is stored.
	LoadDraft(ctx context.Context) (Draft, error)
	SaveDraft(ctx context.Context, d Draft) error
}

// RosterStore persists saved characters.
type RosterStore interface {
	List(ctx context.Context) ([]*Character, error)
	// Get returns ErrNotFound when no character has the ID.
	Get(ctx context.Context, id ID) (*Character, error)
	// Upsert replaces the character with the same ID or appends it.
	Upsert(ctx context.Context, c *Character) error
	// Delete returns ErrNotFound when no character has the ID.
	Delete(ctx context.Context, id ID) error
}

// SaveResult reports the outcome of Creator.Save.
type SaveResult struct {
	ID ID
	// Unspent is the point-buy budget left over; callers may warn on non-zero.
	Unspent int
}

// Creator drives the creation and editing of one character at a time. Every
// accepted edit is written through to the DraftStore. Methods are safe for
// concurrent use.
type Creator struct {
	mu     sync.Mutex
	rules  *ruleset.Ruleset
	src    dice.Source
	drafts DraftStore
	roster RosterStore
	logger *zap.Logger
	now    func() time.Time

	char  *Character
	alloc *Allocator
}

// CreatorOption configures a Creator.
type CreatorOption func(*Creator)

// WithCreatorClock overrides the timestamp source.
func WithCreatorClock(now func() time.Time) CreatorOption {
	return func(c *Creator) { c.now = now }
}

// NewCreator returns a Creator editing a fresh default character.
//
// Precondition: all arguments must be non-nil.
func NewCreator(rules *ruleset.Ruleset, src dice.Source, drafts DraftStore, roster RosterStore, logger *zap.Logger, opts ...CreatorOption) *Creator {
	c := &Creator{
		rules:  rules,
		src:    src,
		drafts: drafts,
		roster: roster,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.char = NewDefault(rules, c.now())
	c.alloc = NewAllocator()
	return c
}

// Load resumes the stored draft. A missing or unreadable draft leaves the
// fresh default in place; the failure is logged, not returned. Returns true
// when a draft was resumed.
func (c *Creator) Load(ctx context.Context) bool {
	d, err := c.drafts.LoadDraft(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoDraft) {
			c.logger.Warn("character draft unavailable, starting fresh", zap.Error(err))
		}
		return false
	}
	if d.Character == nil {
		return false
	}
	budget := PointBuyTotal
	if d.AttributePoints != nil {
		budget = *d.AttributePoints
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.char = d.Character.Clone()
	c.char.Normalize()
	c.char.Inventory.EnsureItems(c.rules.StartingItems)
	c.alloc = NewAllocatorFrom(c.char.Attributes, budget)
	c.logger.Debug("character draft resumed", zap.String("id", string(c.char.ID)), zap.Int("points", budget))
	return true
}

// Character returns a copy of the character being edited.
func (c *Creator) Character() *Character {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.char.Clone()
}

// Remaining returns the unspent point-buy budget.
func (c *Creator) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alloc.Remaining()
}

// CanIncrement reports whether Increment(a) would be accepted.
func (c *Creator) CanIncrement(a Attribute) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alloc.CanIncrement(a)
}

// CanDecrement reports whether Decrement(a) would be accepted.
func (c *Creator) CanDecrement(a Attribute) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alloc.CanDecrement(a)
}

// SetName sets the character name.
func (c *Creator) SetName(ctx context.Context, name string) {
	c.edit(ctx, func(ch *Character) { ch.Name = strings.TrimSpace(name) })
}

// SetBackground sets the free-form background text.
func (c *Creator) SetBackground(ctx context.Context, text string) {
	c.edit(ctx, func(ch *Character) { ch.Background = text })
}

// SetAppearance replaces the appearance block.
func (c *Creator) SetAppearance(ctx context.Context, a Appearance) {
	c.edit(ctx, func(ch *Character) { ch.Appearance = a })
}

// SetRace selects a race from the ruleset.
func (c *Creator) SetRace(ctx context.Context, id string) error {
	if _, ok := c.rules.Race(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRace, id)
	}
	c.edit(ctx, func(ch *Character) { ch.Race = id })
	return nil
}

// SetClass selects a class from the ruleset and recomputes hit points.
func (c *Creator) SetClass(ctx context.Context, id string) error {
	if _, ok := c.rules.Class(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClass, id)
	}
	c.edit(ctx, func(ch *Character) {
		ch.Class = id
		ch.RecalculateHP(c.rules)
	})
	return nil
}

// Increment raises an attribute under the point-buy rules.
func (c *Creator) Increment(ctx context.Context, a Attribute) bool {
	return c.allocate(ctx, func() bool { return c.alloc.Increment(a) })
}

// Decrement lowers an attribute under the point-buy rules.
func (c *Creator) Decrement(ctx context.Context, a Attribute) bool {
	return c.allocate(ctx, func() bool { return c.alloc.Decrement(a) })
}

func (c *Creator) allocate(ctx context.Context, op func() bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !op() {
		return false
	}
	c.char.Attributes = c.alloc.Scores()
	c.char.RecalculateHP(c.rules)
	c.persistLocked(ctx)
	return true
}

// ToggleSkill adds or removes a skill proficiency. Adding fails with
// ErrSkillLimit when the ruleset's starting limit is already held.
func (c *Creator) ToggleSkill(ctx context.Context, id string) (added bool, err error) {
	if _, ok := c.rules.Skill(id); !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.char.HasSkill(id)
	if !c.char.ToggleSkill(id, c.rules.MaxStartingSkills) {
		return false, fmt.Errorf("%w (%d)", ErrSkillLimit, c.rules.MaxStartingSkills)
	}
	c.persistLocked(ctx)
	return !had, nil
}

// AddItem appends a custom item with a generated "custom_" ID.
func (c *Creator) AddItem(ctx context.Context, name string, quantity int, weight float64, typ inventory.Type) (inventory.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return inventory.Item{}, ErrItemNameRequired
	}
	if typ == "" {
		typ = inventory.TypeTool
	}
	item := inventory.Item{
		ID:       "custom_" + uuid.NewString(),
		Name:     name,
		Quantity: quantity,
		Weight:   weight,
		Type:     typ,
	}
	if err := item.Validate(); err != nil {
		return inventory.Item{}, fmt.Errorf("adding item: %w", err)
	}
	c.edit(ctx, func(ch *Character) { ch.Inventory = append(ch.Inventory, item) })
	return item, nil
}

// RemoveItem deletes the inventory stack at index. Starting items are protected.
func (c *Creator) RemoveItem(ctx context.Context, index int) (inventory.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.char.Inventory) {
		return inventory.Item{}, ErrNoSuchItem
	}
	if c.rules.IsStartingItem(c.char.Inventory[index].ID) {
		return inventory.Item{}, fmt.Errorf("%w: %s", ErrStartingItem, c.char.Inventory[index].Name)
	}
	removed, _ := c.char.Inventory.Drop(index)
	c.persistLocked(ctx)
	return removed, nil
}

// ClearInventory removes everything except a fresh set of starting items.
func (c *Creator) ClearInventory(ctx context.Context) {
	c.edit(ctx, func(ch *Character) {
		ch.Inventory = c.rules.StartingInventory()
	})
}

// Reset discards the draft in favor of a fresh default character.
func (c *Creator) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.char = NewDefault(c.rules, c.now())
	c.alloc = NewAllocator()
	c.persistLocked(ctx)
}

// Randomize replaces identity, attributes, skills and appearance with random
// values. ID, inventory and timestamps are kept.
func (c *Creator) Randomize(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alloc = Randomize(c.char, c.rules, c.src)
	c.persistLocked(ctx)
}

// Edit loads a saved character for editing. Its points are considered
// spent, so the budget starts at zero.
func (c *Creator) Edit(ctx context.Context, id ID) error {
	saved, err := c.roster.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading character %s for edit: %w", id, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.char = saved.Clone()
	c.char.Normalize()
	c.alloc = NewAllocatorFrom(c.char.Attributes, 0)
	c.persistLocked(ctx)
	return nil
}

// Save validates the character and stores it in the roster.
//
// Postcondition: on success the roster holds a copy with a fresh LastModified.
func (c *Creator) Save(ctx context.Context) (SaveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(c.char.Name) == "" {
		return SaveResult{}, ErrNameRequired
	}
	c.char.RecalculateHP(c.rules)
	c.char.LastModified = c.now()
	if err := c.roster.Upsert(ctx, c.char.Clone()); err != nil {
		return SaveResult{}, fmt.Errorf("saving character %s: %w", c.char.ID, err)
	}
	c.persistLocked(ctx)
	c.logger.Info("character saved",
		zap.String("id", string(c.char.ID)),
		zap.String("name", c.char.Name),
		zap.Int("unspent", c.alloc.Remaining()),
	)
	return SaveResult{ID: c.char.ID, Unspent: c.alloc.Remaining()}, nil
}

// Export renders the character being edited as a download document.
func (c *Creator) Export() (data []byte, filename string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	data, err = Export(c.char, now)
	if err != nil {
		return nil, "", err
	}
	return data, ExportFileName(c.char, now), nil
}

// AutosaveDraft writes the draft when the character has a name. It is the
// periodic autosave entry point.
func (c *Creator) AutosaveDraft(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(c.char.Name) == "" {
		return nil
	}
	return c.saveDraftLocked(ctx)
}

func (c *Creator) edit(ctx context.Context, fn func(*Character)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.char)
	c.persistLocked(ctx)
}

func (c *Creator) persistLocked(ctx context.Context) {
	if err := c.saveDraftLocked(ctx); err != nil {
		c.logger.Warn("persisting character draft", zap.Error(err))
	}
}

func (c *Creator) saveDraftLocked(ctx context.Context) error {
	points := c.alloc.Remaining()
	return c.drafts.SaveDraft(ctx, Draft{
		Character:       c.char.Clone(),
		AttributePoints: &points,
		Timestamp:       c.now(),
	})
}
