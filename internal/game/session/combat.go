package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/cory-johannsen/companion/internal/game/dice"
)

// Action is a combat command.
type Action string

// Combat actions.
const (
	ActionAttack Action = "attack"
	ActionDefend Action = "defend"
	ActionSkill  Action = "skill"
	ActionItem   Action = "item"
	ActionMagic  Action = "magic"
	ActionFlee   Action = "flee"
)

// ParseAction returns the Action named by s.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionAttack, ActionDefend, ActionSkill, ActionItem, ActionMagic, ActionFlee:
		return a, true
	}
	return "", false
}

// ActResult is the outcome of one combat action.
type ActResult struct {
	Action  Action
	Message string
	// Roll is set for attack and magic.
	Roll *dice.RollResult
	Turn int
}

// StartCombat enters combat at turn 1.
func (s *Session) StartCombat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startCombatLocked()
}

// EndCombat returns to exploring.
func (s *Session) EndCombat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endCombatLocked()
}

func (s *Session) startCombatLocked() {
	s.state = StateCombat
	s.turn = 1
	s.addCombatLocked("COMBAT STARTED!", CombatStart)
	s.message = "Combat started!"
}

func (s *Session) endCombatLocked() {
	s.state = StateExploring
	s.addCombatLocked("Combat ended!", CombatEnd)
	s.message = "Combat ended"
}

// Act performs a combat action for the active character, starting combat
// first when needed. Attack and magic roll 1d20 through the dice engine.
// Every action except flee advances the turn; flee ends combat.
func (s *Session) Act(ctx context.Context, action Action) (ActResult, error) {
	if _, ok := ParseAction(string(action)); !ok {
		return ActResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	s.mu.Lock()
	if s.char == nil {
		s.mu.Unlock()
		return ActResult{}, ErrNoCharacter
	}
	name := s.char.Name
	s.mu.Unlock()

	var roll *dice.RollResult
	if action == ActionAttack || action == ActionMagic {
		r, err := s.engine.RollSimple(ctx, 20, 1, 0)
		if err != nil {
			return ActResult{}, fmt.Errorf("combat roll: %w", err)
		}
		roll = &r
	}

	var msg string
	switch action {
	case ActionAttack:
		msg = fmt.Sprintf("%s attacks! Rolled %d to hit.", name, roll.Total)
	case ActionDefend:
		msg = fmt.Sprintf("%s takes a defensive stance!", name)
	case ActionSkill:
		msg = fmt.Sprintf("%s uses a special skill!", name)
	case ActionItem:
		msg = fmt.Sprintf("%s uses an item!", name)
	case ActionMagic:
		msg = fmt.Sprintf("%s casts a spell! Rolled %d for concentration.", name, roll.Total)
	case ActionFlee:
		msg = fmt.Sprintf("%s tries to flee the fight!", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCombat {
		s.startCombatLocked()
	}
	s.addCombatLocked(msg, CombatAction)
	if action == ActionFlee {
		s.endCombatLocked()
	} else {
		s.turn++
	}
	return ActResult{Action: action, Message: msg, Roll: roll, Turn: s.turn}, nil
}
