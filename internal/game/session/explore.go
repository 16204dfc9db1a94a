package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/ruleset"
)

// MoveResult is the outcome of Move.
type MoveResult struct {
	Moved     bool
	Position  Position
	Terrain   Terrain
	Location  ruleset.Location
	Encounter *ruleset.Encounter
}

// Move steps the character one cell in d. Moving into an edge leaves the
// position unchanged and logs nothing. A successful move describes a new
// location and, outside combat, may trigger a random encounter; a combat
// encounter starts combat.
func (s *Session) Move(ctx context.Context, d Direction) (MoveResult, error) {
	s.mu.Lock()
	if s.char == nil {
		s.mu.Unlock()
		return MoveResult{}, ErrNoCharacter
	}
	next := s.pos.Step(d)
	if next == s.pos {
		res := MoveResult{Position: s.pos, Terrain: TerrainAt(s.pos), Location: s.location}
		s.mu.Unlock()
		return res, nil
	}
	s.pos = next
	s.location = s.rules.Locations[s.src.Intn(len(s.rules.Locations))]
	s.addLogLocked(fmt.Sprintf("Moved %s", d), LogExploration)
	inCombat := s.state == StateCombat
	res := MoveResult{Moved: true, Position: next, Terrain: TerrainAt(next), Location: s.location}
	s.mu.Unlock()

	if inCombat || !s.encounterRoll() {
		return res, nil
	}
	enc := s.chooseEncounter(ctx, next)
	res.Encounter = &enc

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLogLocked(enc.Message, LogExploration)
	if enc.Type == ruleset.EncounterCombat && s.state != StateCombat {
		s.startCombatLocked()
		s.addCombatLocked(enc.Message, CombatEncounter)
	}
	s.message = enc.Message
	return res, nil
}

// encounterRoll reports whether an encounter happens, with probability
// encounterChance at a resolution of 1/1000.
func (s *Session) encounterRoll() bool {
	return float64(s.src.Intn(1000)) < s.encounterChance*1000
}

// chooseEncounter asks the hook first and falls back to a uniform pick.
func (s *Session) chooseEncounter(ctx context.Context, p Position) ruleset.Encounter {
	table := s.rules.Encounters
	if s.hook != nil {
		roll := s.src.Intn(100) + 1
		if kind, ok := s.hook.Choose(ctx, p.X, p.Y, roll); ok {
			for _, e := range table {
				if e.Type == kind {
					return e
				}
			}
			s.logger.Warn("encounter hook chose unknown type", zap.String("type", kind))
		}
	}
	return table[s.src.Intn(len(table))]
}
