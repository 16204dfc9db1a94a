package character

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ExportVersion is stamped on every exported document.
const ExportVersion = "1.0"

type exportDocument struct {
	*Character
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
}

// Export renders c as indented JSON with exportDate and version appended.
func Export(c *Character, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(exportDocument{Character: c, ExportDate: now, Version: ExportVersion}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporting character %s: %w", c.ID, err)
	}
	return data, nil
}

// ExportFileName returns "character_<name>_<unix millis>.json" with every
// character outside letters, digits, '-' and '_' replaced by '_'.
func ExportFileName(c *Character, now time.Time) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, c.Name)
	return fmt.Sprintf("character_%s_%d.json", name, now.UnixMilli())
}
