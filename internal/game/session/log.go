package session

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/companion/internal/game/character"
)

// Log capacities.
const (
	AdventureLogCap = 50
	CombatLogCap    = 20
	QuickSaveLogCap = 20
	SavedNotesCap   = 10
)

// LogType classifies an adventure log entry.
type LogType string

// Adventure log entry types.
const (
	LogAction      LogType = "action"
	LogDialogue    LogType = "dialogue"
	LogCombat      LogType = "combat"
	LogExploration LogType = "exploration"
	LogLoot        LogType = "loot"
	LogNote        LogType = "note"
	LogSystem      LogType = "system"
)

// Combat log entry types.
const (
	CombatAction    LogType = "action"
	CombatStart     LogType = "combat-start"
	CombatEnd       LogType = "combat-end"
	CombatEncounter LogType = "encounter"
)

var adventureTypes = map[LogType]bool{
	LogAction: true, LogDialogue: true, LogCombat: true, LogExploration: true,
	LogLoot: true, LogNote: true, LogSystem: true,
}

// ParseLogType returns the adventure LogType named by s.
func ParseLogType(s string) (LogType, bool) {
	t := LogType(s)
	return t, adventureTypes[t]
}

// LogEntry is one line of the adventure or combat log.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Type    LogType   `json:"type"`
}

// Note is a free-form player note.
type Note struct {
	ID        character.ID `json:"id"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Category  string       `json:"category"`
}

// appendBounded appends v and drops the oldest entries beyond max.
func appendBounded[T any](s []T, v T, max int) []T {
	s = append(s, v)
	if len(s) > max {
		s = append(s[:0:0], s[len(s)-max:]...)
	}
	return s
}

// tail returns a copy of the last n entries of s.
func tail[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return append([]T(nil), s...)
}

// FormatGameTime renders seconds as HH:MM:SS.
func FormatGameTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
