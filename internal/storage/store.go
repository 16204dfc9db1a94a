// Package storage persists the companion's documents in a key-value store and
// provides typed repositories on top of it.
package storage

import (
	"context"
	"errors"
)

// Sentinel errors.
var (
	// ErrNotFound is returned by Store.Get when the key holds no value.
	ErrNotFound = errors.New("storage: not found")
	// ErrCorrupt marks a stored document that cannot be decoded.
	ErrCorrupt = errors.New("storage: corrupt document")
)

// Document keys.
const (
	KeyRoster      = "rpgCharacters"
	KeyDraft       = "characterDraft"
	KeyDiceHistory = "diceHistory"
	KeyQuickSave   = "quickSave"
	KeyEngineState = "gameEngineState"
	KeySettings    = "gameSettings"
	KeySelected    = "selectedCharacter"
)

// Keys returns every document key in a stable order.
func Keys() []string {
	return []string{KeyRoster, KeyDraft, KeyDiceHistory, KeyQuickSave, KeyEngineState, KeySettings, KeySelected}
}

// Store is a string-keyed document store. Values are opaque bytes.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key or an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
