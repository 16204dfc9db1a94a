package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyNormal = "normal"
	DifficultyHard   = "hard"
)

// MaxAutoSaveMinutes bounds Settings.AutoSave.
const MaxAutoSaveMinutes = 120

// Minutes is an interval in whole minutes. Older documents stored it as a
// string; both forms decode.
type Minutes int

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("autoSave %q: %w", s, err)
		}
		*m = Minutes(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("autoSave: %w", err)
	}
	*m = Minutes(n)
	return nil
}

// Duration converts m to a time.Duration.
func (m Minutes) Duration() time.Duration { return time.Duration(m) * time.Minute }

// Settings are the user preferences of the play screen. AutoSave of zero
// disables the periodic quick save.
type Settings struct {
	DarkMode   bool    `json:"darkMode"`
	Animations bool    `json:"animations"`
	Sounds     bool    `json:"sounds"`
	Difficulty string  `json:"difficulty"`
	AutoSave   Minutes `json:"autoSave"`
}

// DefaultSettings returns the factory preferences.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:   true,
		Animations: true,
		Sounds:     true,
		Difficulty: DifficultyNormal,
		AutoSave:   10,
	}
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error
	switch s.Difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
	default:
		errs = append(errs, fmt.Errorf("difficulty must be one of easy, normal, hard; got %q", s.Difficulty))
	}
	if s.AutoSave < 0 || s.AutoSave > MaxAutoSaveMinutes {
		errs = append(errs, fmt.Errorf("autoSave must be in [0, %d] minutes; got %d", MaxAutoSaveMinutes, s.AutoSave))
	}
	return errors.Join(errs...)
}

// SettingsStore persists Settings.
type SettingsStore interface {
	// LoadSettings returns ErrNoSettings when nothing is stored.
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	ResetSettings(ctx context.Context) error
}
