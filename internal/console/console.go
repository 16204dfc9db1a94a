// Package console is the interactive text front end of the companion. It
// reads command lines, dispatches them to the dice engine, the character
// creator and the play session, and writes ANSI-styled results.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/clock"
	"github.com/cory-johannsen/companion/internal/game/command"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
	"github.com/cory-johannsen/companion/internal/game/session"
)

// Deps are the components the console drives.
type Deps struct {
	Rules    *ruleset.Ruleset
	Engine   *dice.Engine
	Creator  *character.Creator
	Session  *session.Session
	Roster   character.RosterStore
	Settings session.SettingsStore
}

func (d Deps) validate() error {
	var missing []string
	if d.Rules == nil {
		missing = append(missing, "Rules")
	}
	if d.Engine == nil {
		missing = append(missing, "Engine")
	}
	if d.Creator == nil {
		missing = append(missing, "Creator")
	}
	if d.Session == nil {
		missing = append(missing, "Session")
	}
	if d.Roster == nil {
		missing = append(missing, "Roster")
	}
	if d.Settings == nil {
		missing = append(missing, "Settings")
	}
	if len(missing) > 0 {
		return fmt.Errorf("console: missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Option configures a Console.
type Option func(*Console)

// WithColor enables or disables ANSI styling. Styling is on by default.
func WithColor(enabled bool) Option {
	return func(c *Console) { c.color = enabled }
}

// WithExportDir sets the directory export writes to when no directory is given.
func WithExportDir(dir string) Option {
	return func(c *Console) { c.exportDir = dir }
}

// WithAutosave hands the console the periodic quick-save ticker so the
// autosave setting can retune it.
func WithAutosave(t *clock.Ticker) Option {
	return func(c *Console) { c.autosave = t }
}

// WithClock overrides the time source used for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// Console is a line-oriented command interpreter. It implements
// server.Service: Start runs the read loop until quit, end of input or Stop.
type Console struct {
	deps      Deps
	in        io.Reader
	out       io.Writer
	registry  *command.Registry
	logger    *zap.Logger
	autosave  *clock.Ticker
	exportDir string
	color     bool
	now       func() time.Time

	mu    sync.Mutex // guards out, prefs and pal
	prefs session.Settings
	pal   palette

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	quit     chan struct{}
}

// New creates a Console reading commands from in and writing to out.
//
// Precondition: in, out and logger must be non-nil.
// Postcondition: Returns a Console or an error naming any missing dependency.
func New(in io.Reader, out io.Writer, deps Deps, logger *zap.Logger, opts ...Option) (*Console, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Console{
		deps:      deps,
		in:        in,
		out:       out,
		registry:  command.DefaultRegistry(),
		logger:    logger,
		exportDir: ".",
		color:     true,
		now:       time.Now,
		prefs:     session.DefaultSettings(),
		ctx:       ctx,
		cancel:    cancel,
		quit:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pal = selectPalette(c.color, c.prefs.DarkMode)
	return c, nil
}

// LoadSettings restores the stored preferences and applies them. A missing
// or invalid document leaves the defaults in place.
func (c *Console) LoadSettings(ctx context.Context) {
	s, err := c.deps.Settings.LoadSettings(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSettings) {
			c.logger.Warn("settings unavailable, using defaults", zap.Error(err))
		}
		s = session.DefaultSettings()
	}
	c.applySettings(s)
}

// applySettings switches palette and autosave interval to s.
func (c *Console) applySettings(s session.Settings) {
	c.mu.Lock()
	c.prefs = s
	c.pal = selectPalette(c.color, s.DarkMode)
	c.mu.Unlock()
	if c.autosave != nil {
		c.autosave.SetInterval(s.AutoSave.Duration())
	}
	c.logger.Debug("settings applied",
		zap.Bool("darkMode", s.DarkMode),
		zap.String("difficulty", s.Difficulty),
		zap.Int("autoSaveMinutes", int(s.AutoSave)),
	)
}

// Settings returns the active preferences.
func (c *Console) Settings() session.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

func (c *Console) style() palette {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pal
}

// Start loads settings, prints the banner and processes lines until quit,
// end of input or Stop.
//
// Postcondition: returns nil on a clean exit or the read error otherwise.
func (c *Console) Start() error {
	c.LoadSettings(c.ctx)
	c.writeLine(c.style().paint(roleTitle, "Tabletop RPG Companion") +
		c.style().paint(roleMuted, "  (type help for commands)"))
	c.prompt()

	lines := make(chan string)
	errc := make(chan error, 1)
	go c.readLines(lines, errc)

	for {
		select {
		case <-c.quit:
			return nil
		case line, ok := <-lines:
			if !ok {
				c.writeLine("")
				return <-errc
			}
			if c.Exec(c.ctx, line) {
				c.Stop()
				return nil
			}
			c.prompt()
		}
	}
}

// readLines forwards input lines until EOF or Stop. The scan error, or nil,
// is sent on errc before lines is closed.
func (c *Console) readLines(lines chan<- string, errc chan<- error) {
	defer close(lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-c.quit:
			errc <- nil
			return
		}
	}
	errc <- scanner.Err()
}

// Stop ends the read loop and cancels in-flight commands. Stop is idempotent.
func (c *Console) Stop() {
	c.stopOnce.Do(func() {
		c.cancel()
		close(c.quit)
	})
}

// Exec runs one command line and reports whether the user asked to quit.
// Command failures are written to the output, never returned.
func (c *Console) Exec(ctx context.Context, line string) (quit bool) {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return false
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		c.writeError(fmt.Sprintf("Unknown command %q. Type help for a list.", parsed.Command))
		return false
	}
	fn, ok := handlerMap[cmd.Handler]
	if !ok {
		c.logger.Error("command has no handler", zap.String("command", cmd.Name), zap.String("handler", cmd.Handler))
		c.writeError(fmt.Sprintf("%s is not available.", cmd.Name))
		return false
	}

	res, err := fn(&handlerContext{ctx: ctx, c: c, cmd: cmd, parsed: parsed})
	if err != nil {
		c.logger.Debug("command failed", zap.String("command", cmd.Name), zap.Error(err))
		c.writeError(describeError(err))
		return false
	}
	return res.quit
}

// prompt writes the mode-dependent prompt without a newline.
func (c *Console) prompt() {
	name := ""
	if ch := c.deps.Session.Character(); ch != nil {
		name = ch.Name
	}
	text := renderPrompt(c.style(), name, c.deps.Session.State())
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, text)
}

// writeLine writes text followed by a newline.
func (c *Console) writeLine(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, text+"\n"); err != nil {
		c.logger.Warn("console write failed", zap.Error(err))
	}
}

// writeError writes msg in the error style.
func (c *Console) writeError(msg string) {
	c.writeLine(c.style().paint(roleBad, msg))
}

// describeError turns well-known failures into player-facing text.
func describeError(err error) string {
	switch {
	case errors.Is(err, session.ErrNoCharacter):
		return "No character selected. Use chars to list them and play <n> to start."
	case errors.Is(err, session.ErrNoQuickSave):
		return "No quick save found."
	case errors.Is(err, session.ErrNoSuchItem), errors.Is(err, character.ErrNoSuchItem):
		return "There is no item at that position. Use inventory to list them."
	case errors.Is(err, character.ErrNotFound):
		return "No saved character matches. Use chars to list them."
	case errors.Is(err, character.ErrNameRequired):
		return "Give the character a name first: name <name>."
	case errors.Is(err, session.ErrEmptyMessage):
		return "Write something first."
	}
	return err.Error()
}
