package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/session"
)

// SchemaVersion is the document version written by this package. Version 1
// is the bare payload without an envelope.
const SchemaVersion = 2

// envelope wraps every stored payload with its schema version.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// upgrader rewrites a version-1 payload into the current shape.
type upgrader func(data []byte) ([]byte, error)

func encodeDoc(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return json.Marshal(envelope{Version: SchemaVersion, Data: data})
}

// decodeDoc unwraps raw, upgrades older payloads and unmarshals into v.
//
// Postcondition: every decode failure wraps ErrCorrupt.
func decodeDoc(raw []byte, v any, up upgrader) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("%w: invalid json", ErrCorrupt)
	}
	version, data := 1, raw
	if doc := gjson.ParseBytes(raw); doc.IsObject() {
		ver, payload := doc.Get("version"), doc.Get("data")
		if ver.Type == gjson.Number && payload.Exists() {
			version, data = int(ver.Int()), []byte(payload.Raw)
		}
	}
	if version > SchemaVersion {
		return fmt.Errorf("%w: version %d is newer than %d", ErrCorrupt, version, SchemaVersion)
	}
	if version < SchemaVersion && up != nil {
		var err error
		if data, err = up(data); err != nil {
			return fmt.Errorf("%w: upgrading version %d: %v", ErrCorrupt, version, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}

// upgradeHistory fills quantity, sides and modifier from the expression text
// and drops timestamps that are not RFC 3339 (older entries stored a
// locale-formatted time of day).
func upgradeHistory(data []byte) ([]byte, error) {
	if !gjson.ParseBytes(data).IsArray() {
		return data, nil
	}
	var err error
	n := int(gjson.GetBytes(data, "#").Int())
	for i := 0; i < n; i++ {
		entry := gjson.GetBytes(data, fmt.Sprintf("%d", i))
		if entry.Get("sides").Int() == 0 {
			if expr, perr := dice.Parse(entry.Get("expression").String()); perr == nil {
				prefix := fmt.Sprintf("%d.", i)
				if data, err = sjson.SetBytes(data, prefix+"quantity", expr.Quantity); err != nil {
					return nil, err
				}
				if data, err = sjson.SetBytes(data, prefix+"sides", expr.Sides); err != nil {
					return nil, err
				}
				if !entry.Get("modifier").Exists() {
					if data, err = sjson.SetBytes(data, prefix+"modifier", expr.Modifier); err != nil {
						return nil, err
					}
				}
			}
		}
		if ts := entry.Get("timestamp"); ts.Exists() {
			if _, perr := time.Parse(time.RFC3339Nano, ts.String()); perr != nil {
				if data, err = sjson.DeleteBytes(data, fmt.Sprintf("%d.timestamp", i)); err != nil {
					return nil, err
				}
			}
		}
	}
	return data, nil
}

// upgradePosition defaults a missing mapPosition to the map start.
func upgradePosition(data []byte) ([]byte, error) {
	if !gjson.ParseBytes(data).IsObject() || gjson.GetBytes(data, "mapPosition").Exists() {
		return data, nil
	}
	return sjson.SetBytes(data, "mapPosition", session.StartPosition)
}
