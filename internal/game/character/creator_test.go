package character_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/inventory"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

type fakeDrafts struct {
	mu    sync.Mutex
	draft *character.Draft
	saves int
	err   error
}

func (f *fakeDrafts) LoadDraft(context.Context) (character.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return character.Draft{}, f.err
	}
	if f.draft == nil {
		return character.Draft{}, character.ErrNoDraft
	}
	return *f.draft, nil
}

func (f *fakeDrafts) SaveDraft(_ context.Context, d character.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = &d
	f.saves++
	return nil
}

type fakeRoster struct {
	mu    sync.Mutex
	chars []*character.Character
}

func (f *fakeRoster) List(context.Context) ([]*character.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*character.Character(nil), f.chars...), nil
}

func (f *fakeRoster) Get(_ context.Context, id character.ID) (*character.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.chars {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return nil, character.ErrNotFound
}

func (f *fakeRoster) Upsert(_ context.Context, c *character.Character) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.chars {
		if f.chars[i].ID == c.ID {
			f.chars[i] = c
			return nil
		}
	}
	f.chars = append(f.chars, c)
	return nil
}

func (f *fakeRoster) Delete(_ context.Context, id character.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.chars {
		if f.chars[i].ID == id {
			f.chars = append(f.chars[:i], f.chars[i+1:]...)
			return nil
		}
	}
	return character.ErrNotFound
}

func newCreator(t *testing.T) (*character.Creator, *fakeDrafts, *fakeRoster) {
	t.Helper()
	drafts := &fakeDrafts{}
	roster := &fakeRoster{}
	c := character.NewCreator(ruleset.Default(), dice.NewSeededSource(3), drafts, roster, zap.NewNop(),
		character.WithCreatorClock(func() time.Time { return now }))
	return c, drafts, roster
}

func TestCreator_EditsWriteDraft(t *testing.T) {
	ctx := context.Background()
	cr, drafts, _ := newCreator(t)
	cr.SetName(ctx, "  Lyra ")
	require.True(t, cr.Increment(ctx, character.Constitution))
	require.True(t, cr.Increment(ctx, character.Constitution))

	require.NotNil(t, drafts.draft)
	assert.Equal(t, "Lyra", drafts.draft.Character.Name)
	assert.Equal(t, 12, drafts.draft.Character.Attributes.Constitution)
	require.NotNil(t, drafts.draft.AttributePoints)
	assert.Equal(t, 25, *drafts.draft.AttributePoints)
	assert.Equal(t, 13, drafts.draft.Character.MaxHP, "warrior 12 + CON 12 modifier")
	assert.Equal(t, 3, drafts.saves)
}

func TestCreator_RejectedIncrementDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	cr, drafts, _ := newCreator(t)
	for cr.Increment(ctx, character.Strength) {
	}
	saves := drafts.saves
	assert.Equal(t, 18, cr.Character().Attributes.Strength)
	assert.False(t, cr.Increment(ctx, character.Strength))
	assert.Equal(t, saves, drafts.saves)
	assert.False(t, cr.CanIncrement(character.Strength))
	assert.True(t, cr.CanDecrement(character.Strength))
}

func TestCreator_Load(t *testing.T) {
	ctx := context.Background()
	cr, drafts, _ := newCreator(t)
	stored := character.NewDefault(ruleset.Default(), now)
	stored.Name = "Resumed"
	stored.Attributes.Strength = 12
	stored.Inventory = nil
	drafts.draft = &character.Draft{Character: stored}

	require.True(t, cr.Load(ctx))
	got := cr.Character()
	assert.Equal(t, "Resumed", got.Name)
	assert.Len(t, got.Inventory, 3, "starting items are restored")
	assert.Equal(t, character.PointBuyTotal, cr.Remaining(), "missing budget defaults to the full pool")

	zero := 0
	drafts.draft = &character.Draft{Character: stored, AttributePoints: &zero}
	require.True(t, cr.Load(ctx))
	assert.Equal(t, 0, cr.Remaining(), "an explicit zero budget is kept")
}

func TestCreator_LoadFailureKeepsDefault(t *testing.T) {
	cr, drafts, _ := newCreator(t)
	assert.False(t, cr.Load(context.Background()))
	drafts.err = errors.New("corrupt")
	assert.False(t, cr.Load(context.Background()))
	assert.Equal(t, character.DefaultName, cr.Character().Name)
}

func TestCreator_SaveRequiresName(t *testing.T) {
	ctx := context.Background()
	cr, _, roster := newCreator(t)
	cr.SetName(ctx, "   ")
	_, err := cr.Save(ctx)
	assert.ErrorIs(t, err, character.ErrNameRequired)
	assert.Empty(t, roster.chars)
}

func TestCreator_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	cr, _, roster := newCreator(t)
	cr.SetName(ctx, "Bram")
	require.True(t, cr.Increment(ctx, character.Dexterity))

	res, err := cr.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 26, res.Unspent)
	require.Len(t, roster.chars, 1)
	assert.Equal(t, res.ID, roster.chars[0].ID)
	assert.Equal(t, now, roster.chars[0].LastModified)

	cr.SetName(ctx, "Bram the Bold")
	_, err = cr.Save(ctx)
	require.NoError(t, err)
	require.Len(t, roster.chars, 1, "saving again replaces the same record")
	assert.Equal(t, "Bram the Bold", roster.chars[0].Name)
}

func TestCreator_EditStartsWithZeroBudget(t *testing.T) {
	ctx := context.Background()
	cr, _, roster := newCreator(t)
	saved := character.NewDefault(ruleset.Default(), now)
	saved.Name = "Veteran"
	saved.Attributes.Wisdom = 16
	roster.chars = append(roster.chars, saved)

	require.NoError(t, cr.Edit(ctx, saved.ID))
	assert.Equal(t, "Veteran", cr.Character().Name)
	assert.Equal(t, 0, cr.Remaining())
	assert.False(t, cr.Increment(ctx, character.Strength))
	assert.True(t, cr.Decrement(ctx, character.Wisdom))
	assert.Equal(t, 2, cr.Remaining())

	err := cr.Edit(ctx, "missing")
	assert.ErrorIs(t, err, character.ErrNotFound)
}

func TestCreator_SetRaceAndClass(t *testing.T) {
	ctx := context.Background()
	cr, _, _ := newCreator(t)
	require.NoError(t, cr.SetRace(ctx, "elf"))
	require.NoError(t, cr.SetClass(ctx, "mage"))
	got := cr.Character()
	assert.Equal(t, "elf", got.Race)
	assert.Equal(t, 6, got.MaxHP)

	assert.ErrorIs(t, cr.SetRace(ctx, "goblin"), character.ErrUnknownRace)
	assert.ErrorIs(t, cr.SetClass(ctx, "pirate"), character.ErrUnknownClass)
}

func TestCreator_ToggleSkill(t *testing.T) {
	ctx := context.Background()
	cr, _, _ := newCreator(t)
	for _, s := range []string{"stealth", "arcana", "history", "medicine"} {
		added, err := cr.ToggleSkill(ctx, s)
		require.NoError(t, err)
		assert.True(t, added)
	}
	_, err := cr.ToggleSkill(ctx, "nature")
	assert.ErrorIs(t, err, character.ErrSkillLimit)

	added, err := cr.ToggleSkill(ctx, "arcana")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = cr.ToggleSkill(ctx, "juggling")
	assert.ErrorIs(t, err, character.ErrUnknownSkill)
}

func TestCreator_Items(t *testing.T) {
	ctx := context.Background()
	cr, _, _ := newCreator(t)
	item, err := cr.AddItem(ctx, "Longsword", 1, 1.5, inventory.TypeWeapon)
	require.NoError(t, err)
	assert.Regexp(t, `^custom_[0-9a-f-]{36}$`, item.ID)
	require.Len(t, cr.Character().Inventory, 4)

	_, err = cr.AddItem(ctx, " ", 1, 1, inventory.TypeWeapon)
	assert.ErrorIs(t, err, character.ErrItemNameRequired)
	_, err = cr.AddItem(ctx, "Cursed", 1, 1, "bogus")
	assert.Error(t, err)

	_, err = cr.RemoveItem(ctx, 0)
	assert.ErrorIs(t, err, character.ErrStartingItem)
	_, err = cr.RemoveItem(ctx, 9)
	assert.ErrorIs(t, err, character.ErrNoSuchItem)

	removed, err := cr.RemoveItem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Longsword", removed.Name)
	assert.Len(t, cr.Character().Inventory, 3)

	_, _ = cr.AddItem(ctx, "Gem", 2, 0.1, inventory.TypeTreasure)
	cr.ClearInventory(ctx)
	assert.Len(t, cr.Character().Inventory, 3)
}

func TestCreator_ResetAndRandomize(t *testing.T) {
	ctx := context.Background()
	cr, _, _ := newCreator(t)
	cr.Randomize(ctx)
	got := cr.Character()
	assert.NotEqual(t, character.DefaultName, got.Name)
	assert.LessOrEqual(t, cr.Remaining(), 1)

	cr.Reset(ctx)
	assert.Equal(t, character.DefaultName, cr.Character().Name)
	assert.Equal(t, character.PointBuyTotal, cr.Remaining())
}

func TestCreator_AutosaveDraftSkipsUnnamed(t *testing.T) {
	ctx := context.Background()
	cr, drafts, _ := newCreator(t)
	require.NoError(t, cr.AutosaveDraft(ctx))
	assert.Equal(t, 1, drafts.saves)

	cr.SetName(ctx, "")
	saves := drafts.saves
	require.NoError(t, cr.AutosaveDraft(ctx))
	assert.Equal(t, saves, drafts.saves)
}

func TestCreator_Export(t *testing.T) {
	cr, _, _ := newCreator(t)
	cr.SetName(context.Background(), "Exported")
	data, name, err := cr.Export()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.0"`)
	assert.Equal(t, "character_Exported_1772600767000.json", name)
}
