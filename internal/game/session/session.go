// Package session runs the play screen: the loaded character, the map, the
// combat tracker, the adventure and combat logs, notes and the game clock.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

// State is the session mode.
type State string

// Session states.
const (
	StateIdle      State = "idle"
	StateExploring State = "exploring"
	StateCombat    State = "combat"
)

// Session errors.
var (
	ErrNoCharacter   = errors.New("session: no character loaded")
	ErrUnknownAction = errors.New("session: unknown combat action")
	ErrUnknownSkill  = errors.New("session: unknown skill")
	ErrNoSuchItem    = errors.New("session: no item at that position")
	ErrEmptyMessage  = errors.New("session: message must not be empty")
	ErrUnknownType   = errors.New("session: unknown log type")
)

// DefaultEncounterChance is the probability of an encounter per move.
const DefaultEncounterChance = 0.2

// Session is the state of one play screen. All methods are safe for
// concurrent use. Methods that roll dice never hold the session lock while
// the Engine runs, because roll observers write back into the session.
type Session struct {
	mu     sync.Mutex
	rules  *ruleset.Ruleset
	engine *dice.Engine
	src    dice.Source
	store  Store
	hook   EncounterChooser
	logger *zap.Logger
	now    func() time.Time

	encounterChance float64

	state     State
	char      *character.Character
	gameTime  int // seconds
	started   time.Time
	pos       Position
	location  ruleset.Location
	turn      int
	adventure []LogEntry
	combat    []LogEntry
	notes     []Note
	message   string
}

// EncounterChooser picks the encounter type for a map cell. ok is false to
// fall back to a uniformly random encounter.
type EncounterChooser interface {
	Choose(ctx context.Context, x, y, roll int) (kind string, ok bool)
}

// Option configures a Session.
type Option func(*Session)

// WithEncounterChance overrides DefaultEncounterChance.
func WithEncounterChance(p float64) Option {
	return func(s *Session) { s.encounterChance = p }
}

// WithEncounterChooser delegates encounter selection.
func WithEncounterChooser(h EncounterChooser) Option {
	return func(s *Session) { s.hook = h }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates an idle Session at the map start and subscribes it to the
// engine so every roll lands in the adventure log.
//
// Precondition: all arguments must be non-nil.
func New(rules *ruleset.Ruleset, engine *dice.Engine, src dice.Source, store Store, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		rules:           rules,
		engine:          engine,
		src:             src,
		store:           store,
		logger:          logger,
		now:             time.Now,
		encounterChance: DefaultEncounterChance,
		state:           StateIdle,
		pos:             StartPosition,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.location = rules.Locations[0]
	engine.Subscribe(s.onRoll)
	return s
}

func (s *Session) onRoll(r dice.RollResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLogLocked(fmt.Sprintf("Rolled %s: %d", r.Expression, r.Total), LogAction)
}

// LoadCharacter makes c the active character and starts exploring.
func (s *Session) LoadCharacter(ctx context.Context, c *character.Character) {
	s.mu.Lock()
	s.char = c.Clone()
	s.char.Normalize()
	s.state = StateExploring
	s.started = s.now()
	s.addLogLocked(fmt.Sprintf("%s joined the adventure!", s.char.Name), LogSystem)
	s.message = fmt.Sprintf("%s entered the adventure!", s.char.Name)
	selected := s.char.Clone()
	s.mu.Unlock()

	if err := s.store.SaveSelected(ctx, selected); err != nil {
		s.logger.Warn("persisting selected character", zap.Error(err))
	}
}

// UnloadCharacter clears the active character and returns to idle.
func (s *Session) UnloadCharacter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.char = nil
	s.state = StateIdle
	s.turn = 0
	s.message = "No character selected"
}

// State returns the current mode.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Character returns a copy of the active character, or nil.
func (s *Session) Character() *character.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.char.Clone()
}

// Position returns the map position.
func (s *Session) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Location returns the last described location.
func (s *Session) Location() ruleset.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Turn returns the combat turn counter.
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Message returns the latest status line.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// AdventureLog returns a copy of the adventure log, oldest first.
func (s *Session) AdventureLog() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.adventure...)
}

// CombatLog returns a copy of the combat log, oldest first.
func (s *Session) CombatLog() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.combat...)
}

// Notes returns up to n of the most recent notes, newest first. n <= 0
// returns all of them.
func (s *Session) Notes(n int) []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.notes
	if n > 0 {
		src = tail(src, n)
	}
	out := make([]Note, len(src))
	for i := range src {
		out[i] = src[len(src)-1-i]
	}
	return out
}

// AddLog appends a player-written adventure log entry.
func (s *Session) AddLog(message string, typ LogType) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	if !adventureTypes[typ] {
		return fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLogLocked(message, typ)
	return nil
}

// AddNote records a quick note and mirrors it into the adventure log.
func (s *Session) AddNote(content string) (Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Note{}, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := Note{ID: character.NewID(), Content: content, Timestamp: s.now(), Category: "quick"}
	s.notes = append(s.notes, n)
	s.addLogLocked("Quick note: "+content, LogNote)
	return n, nil
}

// Tick advances the game clock by one second.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameTime++
}

// GameTime returns elapsed game seconds.
func (s *Session) GameTime() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameTime
}

// GameTimeString returns the game clock as HH:MM:SS.
func (s *Session) GameTimeString() string {
	return FormatGameTime(s.GameTime())
}

// SessionDuration returns the wall time since the character was loaded, as
// MM:SS. It is "00:00" when nothing is loaded.
func (s *Session) SessionDuration() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.char == nil || s.started.IsZero() {
		return "00:00"
	}
	d := int(s.now().Sub(s.started) / time.Second)
	return fmt.Sprintf("%02d:%02d", d/60, d%60)
}

// SkillCheckResult is the outcome of SkillCheck.
type SkillCheckResult struct {
	Skill    ruleset.Skill
	Modifier int
	Roll     dice.RollResult
}

// SkillCheck rolls 1d20 plus the character's skill modifier and logs the
// result with critical and fumble annotations.
func (s *Session) SkillCheck(ctx context.Context, skillID string) (SkillCheckResult, error) {
	s.mu.Lock()
	if s.char == nil {
		s.mu.Unlock()
		return SkillCheckResult{}, ErrNoCharacter
	}
	mod, ok := s.char.SkillModifier(s.rules, skillID)
	s.mu.Unlock()
	if !ok {
		return SkillCheckResult{}, fmt.Errorf("%w: %q", ErrUnknownSkill, skillID)
	}
	skill, _ := s.rules.Skill(skillID)

	r, err := s.engine.RollSimple(ctx, 20, 1, mod)
	if err != nil {
		return SkillCheckResult{}, fmt.Errorf("skill check: %w", err)
	}

	msg := fmt.Sprintf("%s check: %d (d20: %d %s)", skill.Name, r.Total, r.Dice[0], character.FormatModifier(mod))
	switch {
	case r.Critical:
		msg += " CRITICAL!"
	case r.Fumble:
		msg += " CRITICAL FAILURE!"
	}
	s.mu.Lock()
	s.addLogLocked(msg, LogAction)
	s.message = fmt.Sprintf("Tested %s: %d", skill.Name, r.Total)
	s.mu.Unlock()
	return SkillCheckResult{Skill: *skill, Modifier: mod, Roll: r}, nil
}

// UseItem uses the inventory stack at index on the active character.
// Consumables lose one unit.
func (s *Session) UseItem(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.char == nil {
		return "", ErrNoCharacter
	}
	item, ok := s.char.Inventory.Use(index)
	if !ok {
		return "", ErrNoSuchItem
	}
	s.addLogLocked("Used "+item.Name, LogAction)
	s.message = "Used " + item.Name
	return item.Name, nil
}

// DropItem discards the inventory stack at index from the active character.
func (s *Session) DropItem(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.char == nil {
		return "", ErrNoCharacter
	}
	item, ok := s.char.Inventory.Drop(index)
	if !ok {
		return "", ErrNoSuchItem
	}
	s.addLogLocked("Dropped "+item.Name, LogAction)
	s.message = "Dropped " + item.Name
	return item.Name, nil
}

func (s *Session) setMessage(m string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = m
}

func (s *Session) addLogLocked(message string, typ LogType) {
	s.adventure = appendBounded(s.adventure, LogEntry{Time: s.now(), Message: message, Type: typ}, AdventureLogCap)
}

func (s *Session) addCombatLocked(message string, typ LogType) {
	s.combat = appendBounded(s.combat, LogEntry{Time: s.now(), Message: message, Type: typ}, CombatLogCap)
}
