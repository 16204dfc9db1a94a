package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/character"
)

// Snapshot errors.
var (
	ErrNoQuickSave   = errors.New("session: no quick save")
	ErrNoEngineState = errors.New("session: no saved state")
	ErrNoSettings    = errors.New("session: no saved settings")
)

// QuickSave is a manual or periodic save of the running adventure.
type QuickSave struct {
	Character    *character.Character `json:"character"`
	GameTime     int                  `json:"gameTime"`
	MapPosition  Position             `json:"mapPosition"`
	AdventureLog []LogEntry           `json:"adventureLog"`
	Notes        []Note               `json:"notes"`
	Timestamp    time.Time            `json:"timestamp"`
}

// EngineState is the periodically autosaved play-screen state. It carries
// no character.
type EngineState struct {
	GameTime     int        `json:"gameTime"`
	MapPosition  Position   `json:"mapPosition"`
	AdventureLog []LogEntry `json:"adventureLog"`
	CombatLog    []LogEntry `json:"combatLog"`
	Notes        []Note     `json:"notes"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Store persists session snapshots.
type Store interface {
	// LoadQuickSave returns ErrNoQuickSave when nothing is stored.
	LoadQuickSave(ctx context.Context) (QuickSave, error)
	SaveQuickSave(ctx context.Context, q QuickSave) error
	// LoadEngineState returns ErrNoEngineState when nothing is stored.
	LoadEngineState(ctx context.Context) (EngineState, error)
	SaveEngineState(ctx context.Context, s EngineState) error
	SaveSelected(ctx context.Context, c *character.Character) error
}

// QuickSave stores the character, clock, position, recent adventure log and
// notes.
func (s *Session) QuickSave(ctx context.Context) error {
	s.mu.Lock()
	if s.char == nil {
		s.mu.Unlock()
		return ErrNoCharacter
	}
	q := QuickSave{
		Character:    s.char.Clone(),
		GameTime:     s.gameTime,
		MapPosition:  s.pos,
		AdventureLog: tail(s.adventure, QuickSaveLogCap),
		Notes:        append([]Note(nil), s.notes...),
		Timestamp:    s.now(),
	}
	s.mu.Unlock()

	if err := s.store.SaveQuickSave(ctx, q); err != nil {
		return fmt.Errorf("quick save: %w", err)
	}
	s.setMessage("Game saved")
	s.logger.Info("quick save written", zap.String("character", string(q.Character.ID)))
	return nil
}

// QuickLoad restores the last QuickSave. Combat, if any, ends.
func (s *Session) QuickLoad(ctx context.Context) error {
	q, err := s.store.LoadQuickSave(ctx)
	if err != nil {
		return fmt.Errorf("quick load: %w", err)
	}
	if q.Character == nil {
		return fmt.Errorf("quick load: %w", ErrNoQuickSave)
	}
	s.mu.Lock()
	s.char = q.Character.Clone()
	s.char.Normalize()
	s.gameTime = q.GameTime
	s.pos = clampPosition(q.MapPosition)
	s.adventure = tail(q.AdventureLog, AdventureLogCap)
	s.notes = append([]Note(nil), q.Notes...)
	s.state = StateExploring
	s.turn = 0
	s.addLogLocked("Game loaded from quick save", LogSystem)
	s.message = "Game loaded"
	s.mu.Unlock()
	return nil
}

// SaveState writes the engine state autosave.
func (s *Session) SaveState(ctx context.Context) error {
	s.mu.Lock()
	st := EngineState{
		GameTime:     s.gameTime,
		MapPosition:  s.pos,
		AdventureLog: tail(s.adventure, AdventureLogCap),
		CombatLog:    tail(s.combat, CombatLogCap),
		Notes:        tail(s.notes, SavedNotesCap),
		Timestamp:    s.now(),
	}
	s.mu.Unlock()
	if err := s.store.SaveEngineState(ctx, st); err != nil {
		return fmt.Errorf("saving session state: %w", err)
	}
	return nil
}

// LoadState restores the engine state autosave. Missing or unreadable state
// leaves the session at its defaults; the failure is logged.
func (s *Session) LoadState(ctx context.Context) {
	st, err := s.store.LoadEngineState(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoEngineState) {
			s.logger.Warn("session state unavailable, starting fresh", zap.Error(err))
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameTime = st.GameTime
	s.pos = clampPosition(st.MapPosition)
	s.adventure = tail(st.AdventureLog, AdventureLogCap)
	s.combat = tail(st.CombatLog, CombatLogCap)
	s.notes = append([]Note(nil), st.Notes...)
}

func clampPosition(p Position) Position {
	if !p.InBounds() {
		return StartPosition
	}
	return p
}
