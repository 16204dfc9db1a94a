package console

import "fmt"

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	// Foreground colors
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	// Bright foreground colors
	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...interface{}) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}

// role names a semantic text style.
type role int

const (
	roleTitle role = iota
	roleText
	roleLabel
	roleValue
	roleGood
	roleBad
	roleWarn
	roleMuted
	roleCombat
	rolePlayer
)

// palette maps roles to escape codes. An empty palette renders plain text.
type palette map[role]string

// darkPalette favors bright colors on a dark terminal.
var darkPalette = palette{
	roleTitle:  BrightYellow,
	roleText:   White,
	roleLabel:  Cyan,
	roleValue:  BrightWhite,
	roleGood:   BrightGreen,
	roleBad:    BrightRed,
	roleWarn:   Yellow,
	roleMuted:  BrightBlack,
	roleCombat: BrightMagenta,
	rolePlayer: BrightCyan,
}

// lightPalette keeps to the normal-intensity colors for light backgrounds.
var lightPalette = palette{
	roleTitle:  Blue,
	roleText:   "",
	roleLabel:  Cyan,
	roleValue:  Bold,
	roleGood:   Green,
	roleBad:    Red,
	roleWarn:   Magenta,
	roleMuted:  Dim,
	roleCombat: Magenta,
	rolePlayer: Blue,
}

// paint styles text for r. Roles without a code render unstyled.
func (p palette) paint(r role, text string) string {
	code := p[r]
	if code == "" {
		return text
	}
	return Colorize(code, text)
}

// paintf formats and styles text for r.
func (p palette) paintf(r role, format string, args ...interface{}) string {
	return p.paint(r, fmt.Sprintf(format, args...))
}

// selectPalette picks the palette for the color and dark-mode preferences.
func selectPalette(color, dark bool) palette {
	switch {
	case !color:
		return palette{}
	case dark:
		return darkPalette
	default:
		return lightPalette
	}
}
