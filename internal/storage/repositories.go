package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/session"
)

// Repositories bundles the typed repositories over one Store.
type Repositories struct {
	Roster    *Roster
	Drafts    *Drafts
	History   *History
	Snapshots *Snapshots
	Settings  *Settings
}

// NewRepositories builds every repository over store.
//
// Precondition: store and logger must be non-nil.
func NewRepositories(store Store, logger *zap.Logger) *Repositories {
	return &Repositories{
		Roster:    &Roster{store: store, logger: logger},
		Drafts:    &Drafts{store: store, logger: logger},
		History:   &History{store: store, logger: logger},
		Snapshots: &Snapshots{store: store, logger: logger},
		Settings:  &Settings{store: store, logger: logger},
	}
}

// load reads key and decodes it over base. found is false when the key is
// missing or the document is unreadable; unreadable documents are logged and
// base is returned.
func load[T any](ctx context.Context, store Store, logger *zap.Logger, key string, base T, up upgrader) (T, bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return base, false, nil
	}
	if err != nil {
		return base, false, fmt.Errorf("reading %s: %w", key, err)
	}
	v := base
	if err := decodeDoc(raw, &v, up); err != nil {
		logger.Warn("discarding unreadable document",
			zap.String("key", key),
			zap.Error(err),
		)
		return base, false, nil
	}
	return v, true, nil
}

func save(ctx context.Context, store Store, key string, v any) error {
	data, err := encodeDoc(v)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func remove(ctx context.Context, store Store, key string) error {
	if err := store.Remove(ctx, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Roster stores the saved characters as one ordered list.
// It implements character.RosterStore.
type Roster struct {
	mu     sync.Mutex
	store  Store
	logger *zap.Logger
}

// List returns every saved character in save order.
func (r *Roster) List(ctx context.Context) ([]*character.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

func (r *Roster) loadLocked(ctx context.Context) ([]*character.Character, error) {
	chars, _, err := load[[]*character.Character](ctx, r.store, r.logger, KeyRoster, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*character.Character, 0, len(chars))
	for _, c := range chars {
		if c == nil {
			continue
		}
		c.Normalize()
		out = append(out, c)
	}
	return out, nil
}

// Get returns the character with id or character.ErrNotFound.
func (r *Roster) Get(ctx context.Context, id character.ID) (*character.Character, error) {
	chars, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range chars {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("character %s: %w", id, character.ErrNotFound)
}

// Upsert replaces the character with the same ID or appends c.
func (r *Roster) Upsert(ctx context.Context, c *character.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chars, err := r.loadLocked(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range chars {
		if chars[i].ID == c.ID {
			chars[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		chars = append(chars, c)
	}
	return save(ctx, r.store, KeyRoster, chars)
}

// Delete removes the character with id or returns character.ErrNotFound.
func (r *Roster) Delete(ctx context.Context, id character.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chars, err := r.loadLocked(ctx)
	if err != nil {
		return err
	}
	for i := range chars {
		if chars[i].ID == id {
			chars = append(chars[:i], chars[i+1:]...)
			return save(ctx, r.store, KeyRoster, chars)
		}
	}
	return fmt.Errorf("character %s: %w", id, character.ErrNotFound)
}

// Drafts stores the single in-progress character draft.
// It implements character.DraftStore.
type Drafts struct {
	store  Store
	logger *zap.Logger
}

// LoadDraft returns the stored draft or character.ErrNoDraft.
func (d *Drafts) LoadDraft(ctx context.Context) (character.Draft, error) {
	draft, found, err := load(ctx, d.store, d.logger, KeyDraft, character.Draft{}, nil)
	if err != nil {
		return character.Draft{}, err
	}
	if !found || draft.Character == nil {
		return character.Draft{}, character.ErrNoDraft
	}
	return draft, nil
}

// SaveDraft replaces the stored draft.
func (d *Drafts) SaveDraft(ctx context.Context, draft character.Draft) error {
	return save(ctx, d.store, KeyDraft, draft)
}

// ClearDraft removes the stored draft.
func (d *Drafts) ClearDraft(ctx context.Context) error {
	return remove(ctx, d.store, KeyDraft)
}

// History stores the dice roll history, newest first.
// It implements dice.HistoryStore.
type History struct {
	store  Store
	logger *zap.Logger
}

// LoadHistory returns the stored rolls; a missing history is empty.
func (h *History) LoadHistory(ctx context.Context) ([]dice.RollResult, error) {
	entries, _, err := load[[]dice.RollResult](ctx, h.store, h.logger, KeyDiceHistory, nil, upgradeHistory)
	return entries, err
}

// SaveHistory replaces the stored history.
func (h *History) SaveHistory(ctx context.Context, entries []dice.RollResult) error {
	return save(ctx, h.store, KeyDiceHistory, entries)
}

// ClearHistory removes the stored history.
func (h *History) ClearHistory(ctx context.Context) error {
	return remove(ctx, h.store, KeyDiceHistory)
}

// Snapshots stores the quick save, the autosaved engine state and the
// character selected for play. It implements session.Store.
type Snapshots struct {
	store  Store
	logger *zap.Logger
}

// LoadQuickSave returns the quick save or session.ErrNoQuickSave.
func (s *Snapshots) LoadQuickSave(ctx context.Context) (session.QuickSave, error) {
	q, found, err := load(ctx, s.store, s.logger, KeyQuickSave, session.QuickSave{}, upgradePosition)
	if err != nil {
		return session.QuickSave{}, err
	}
	if !found || q.Character == nil {
		return session.QuickSave{}, session.ErrNoQuickSave
	}
	q.Character.Normalize()
	return q, nil
}

// SaveQuickSave replaces the quick save.
func (s *Snapshots) SaveQuickSave(ctx context.Context, q session.QuickSave) error {
	return save(ctx, s.store, KeyQuickSave, q)
}

// LoadEngineState returns the autosaved state or session.ErrNoEngineState.
func (s *Snapshots) LoadEngineState(ctx context.Context) (session.EngineState, error) {
	st, found, err := load(ctx, s.store, s.logger, KeyEngineState, session.EngineState{}, upgradePosition)
	if err != nil {
		return session.EngineState{}, err
	}
	if !found {
		return session.EngineState{}, session.ErrNoEngineState
	}
	return st, nil
}

// SaveEngineState replaces the autosaved state.
func (s *Snapshots) SaveEngineState(ctx context.Context, st session.EngineState) error {
	return save(ctx, s.store, KeyEngineState, st)
}

// SaveSelected records the character chosen for play.
func (s *Snapshots) SaveSelected(ctx context.Context, c *character.Character) error {
	return save(ctx, s.store, KeySelected, c)
}

// LoadSelected returns the character chosen for play or character.ErrNotFound.
func (s *Snapshots) LoadSelected(ctx context.Context) (*character.Character, error) {
	c, found, err := load[*character.Character](ctx, s.store, s.logger, KeySelected, nil, nil)
	if err != nil {
		return nil, err
	}
	if !found || c == nil {
		return nil, fmt.Errorf("selected character: %w", character.ErrNotFound)
	}
	c.Normalize()
	return c, nil
}

// Settings stores the player preferences. It implements session.SettingsStore.
type Settings struct {
	store  Store
	logger *zap.Logger
}

// LoadSettings returns the stored settings or session.ErrNoSettings. Fields
// absent from the stored document keep their defaults.
func (s *Settings) LoadSettings(ctx context.Context) (session.Settings, error) {
	st, found, err := load(ctx, s.store, s.logger, KeySettings, session.DefaultSettings(), nil)
	if err != nil {
		return session.DefaultSettings(), err
	}
	if !found {
		return session.DefaultSettings(), session.ErrNoSettings
	}
	if err := st.Validate(); err != nil {
		s.logger.Warn("discarding invalid settings", zap.Error(err))
		return session.DefaultSettings(), session.ErrNoSettings
	}
	return st, nil
}

// SaveSettings validates and stores st.
func (s *Settings) SaveSettings(ctx context.Context, st session.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	return save(ctx, s.store, KeySettings, st)
}

// ResetSettings removes the stored settings so defaults apply.
func (s *Settings) ResetSettings(ctx context.Context) error {
	return remove(ctx, s.store, KeySettings)
}

var (
	_ character.RosterStore = (*Roster)(nil)
	_ character.DraftStore  = (*Drafts)(nil)
	_ dice.HistoryStore     = (*History)(nil)
	_ session.Store         = (*Snapshots)(nil)
	_ session.SettingsStore = (*Settings)(nil)
)
