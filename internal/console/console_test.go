package console

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/clock"
	"github.com/cory-johannsen/companion/internal/game/command"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
	"github.com/cory-johannsen/companion/internal/game/session"
	"github.com/cory-johannsen/companion/internal/storage"
	"github.com/cory-johannsen/companion/internal/storage/memory"
)

// syncBuffer is a bytes.Buffer safe for the read loop and the test to share.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func (s *syncBuffer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b.Reset()
}

type fixture struct {
	c       *Console
	out     *syncBuffer
	src     *dice.FixedSource
	repos   *storage.Repositories
	engine  *dice.Engine
	creator *character.Creator
	sess    *session.Session
	rules   *ruleset.Ruleset
}

func newFixture(t *testing.T, in io.Reader, opts ...Option) *fixture {
	t.Helper()
	logger := zap.NewNop()
	rules := ruleset.Default()
	repos := storage.NewRepositories(memory.New(), logger)
	src := dice.NewFixedSource()
	engine := dice.NewEngine(src, logger, dice.WithStore(repos.History))
	creator := character.NewCreator(rules, src, repos.Drafts, repos.Roster, logger)
	sess := session.New(rules, engine, src, repos.Snapshots, logger, session.WithEncounterChance(0))
	out := &syncBuffer{}
	if in == nil {
		in = strings.NewReader("")
	}
	base := []Option{WithColor(false), WithExportDir(t.TempDir())}
	c, err := New(in, out, Deps{
		Rules:    rules,
		Engine:   engine,
		Creator:  creator,
		Session:  sess,
		Roster:   repos.Roster,
		Settings: repos.Settings,
	}, logger, append(base, opts...)...)
	require.NoError(t, err)
	return &fixture{c: c, out: out, src: src, repos: repos, engine: engine, creator: creator, sess: sess, rules: rules}
}

// run executes line and returns what it printed.
func (f *fixture) run(line string) string {
	f.out.Reset()
	f.c.Exec(context.Background(), line)
	return f.out.String()
}

// saveHero stores a named character through the creator.
func (f *fixture) saveHero(t *testing.T, name string) {
	t.Helper()
	f.run("new")
	f.run("name " + name)
	out := f.run("save")
	require.Contains(t, out, "Character saved.")
}

// TestAllCommandHandlersAreWired asserts that every Handler constant
// registered in BuiltinCommands has a corresponding entry in the dispatch map.
//
// Postcondition: every cmd.Handler in BuiltinCommands() is a key in Handlers().
func TestAllCommandHandlersAreWired(t *testing.T) {
	registered := Handlers()
	for _, cmd := range command.BuiltinCommands() {
		if _, ok := registered[cmd.Handler]; !ok {
			t.Errorf("handler %q is in BuiltinCommands() but missing from Handlers(); add it to handlers.go", cmd.Handler)
		}
	}
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(strings.NewReader(""), io.Discard, Deps{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Engine")
	assert.Contains(t, err.Error(), "Settings")
}

func TestExec_UnknownCommand(t *testing.T) {
	f := newFixture(t, nil)
	assert.Contains(t, f.run("teleport home"), `Unknown command "teleport"`)
	assert.Empty(t, f.run("   "))
}

func TestExec_Roll(t *testing.T) {
	f := newFixture(t, nil)
	f.src.Push(4, 5)
	assert.Contains(t, f.run("roll 2d6+3"), "2d6+3: [4 5] +3 = 12")

	f.src.Push(6)
	assert.Contains(t, f.run("r 1d6 - 1"), "1d6-1: [6] -1 = 5", "spaces inside the expression are ignored")

	assert.Contains(t, f.run("roll"), "usage: roll <NdS[+M]>")
	assert.Contains(t, f.run("roll fireball"), "invalid expression")
	assert.Len(t, f.engine.History(), 2)
}

func TestExec_HistoryAndStats(t *testing.T) {
	f := newFixture(t, nil)
	assert.Contains(t, f.run("stats"), "No d20 rolls yet.")
	assert.Contains(t, f.run("history"), "No rolls yet.")

	f.src.Push(20, 1)
	assert.Contains(t, f.run("roll 1d20"), "CRITICAL!")
	assert.Contains(t, f.run("roll 1d20"), "FUMBLE!")

	out := f.run("stats")
	assert.Contains(t, out, "Criticals")
	assert.Contains(t, out, "10.50")

	out = f.run("history 1")
	assert.Contains(t, out, "Roll history (1)")
	assert.Contains(t, out, "FUMBLE!")
	assert.Contains(t, f.run("history zero"), "usage: history")

	assert.Contains(t, f.run("clear"), "Roll history cleared.")
	assert.Empty(t, f.engine.History())
}

func TestExec_CharacterCreation(t *testing.T) {
	f := newFixture(t, nil)

	assert.Contains(t, f.run("name Aria Swiftwind"), "Aria Swiftwind")
	assert.Contains(t, f.run("race elf"), "Race set to")
	assert.Contains(t, f.run("race gnome"), "choose one of human")
	assert.Contains(t, f.run("class mage"), "Class set to Mage")
	assert.Contains(t, f.run("inc int"), "Points remaining: 26/27")
	assert.Contains(t, f.run("dec int"), "Points remaining: 27/27")
	assert.Contains(t, f.run("inc luck"), "unknown attribute")
	assert.Contains(t, f.run("skill arcana"), "Proficient in Arcana.")
	assert.Contains(t, f.run("skill arcana"), "No longer proficient in Arcana.")
	assert.Contains(t, f.run("bg Raised by wolves"), "Background updated.")
	assert.Contains(t, f.run("appearance age 120"), "Appearance age set.")
	assert.Contains(t, f.run("appearance age old"), "must be a whole number")
	assert.Contains(t, f.run("appearance hair red"), "unknown appearance field")

	ch := f.creator.Character()
	assert.Equal(t, "Aria Swiftwind", ch.Name)
	assert.Equal(t, "elf", ch.Race)
	assert.Equal(t, "mage", ch.Class)
	assert.Equal(t, "Raised by wolves", ch.Background)
	assert.Equal(t, 120, ch.Appearance.Age)

	sheet := f.run("sheet")
	assert.Contains(t, sheet, "Aria Swiftwind")
	assert.Contains(t, sheet, "Mage")
	assert.Contains(t, sheet, "Inventory")

	draft, err := f.repos.Drafts.LoadDraft(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Aria Swiftwind", draft.Character.Name, "edits are written through to the draft")
}

func TestExec_IncrementAtMaximum(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 8; i++ {
		f.run("inc str")
	}
	assert.Contains(t, f.run("inc str"), "already at the maximum of 18")
	for i := 0; i < 10; i++ {
		f.run("dec dex")
	}
	assert.Contains(t, f.run("dec dex"), "already at the minimum of 8")
}

func TestExec_Items(t *testing.T) {
	f := newFixture(t, nil)
	base := len(f.creator.Character().Inventory)

	assert.Contains(t, f.run("item Healing Potion 2 0.5 consumable"), "Added Healing Potion x2.")
	inv := f.creator.Character().Inventory
	require.Len(t, inv, base+1)
	added := inv[len(inv)-1]
	assert.Equal(t, 2, added.Quantity)
	assert.InDelta(t, 0.5, added.Weight, 1e-9)
	assert.Equal(t, "consumable", string(added.Type))

	assert.Contains(t, f.run("unitem 1"), "starting items cannot be removed")
	assert.Contains(t, f.run("unitem 99"), "There is no item at that position.")
	assert.Contains(t, f.run("unitem "+strconv.Itoa(base+1)), "Removed Healing Potion.")
	assert.Contains(t, f.run("unitem"), "usage: unitem <index>")
}

func TestParseItemArgs(t *testing.T) {
	tests := []struct {
		args   []string
		name   string
		qty    int
		weight float64
		typ    string
	}{
		{[]string{"rope"}, "rope", 1, 0, "misc"},
		{[]string{"10", "foot", "pole"}, "10 foot pole", 1, 0, "misc"},
		{[]string{"arrows", "20"}, "arrows", 20, 0, "misc"},
		{[]string{"long", "sword", "1", "3", "weapon"}, "long sword", 1, 3, "weapon"},
		{[]string{"weapon"}, "weapon", 1, 0, "misc"},
	}
	for _, tt := range tests {
		name, qty, weight, typ, err := parseItemArgs(tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.name, name, tt.args)
		assert.Equal(t, tt.qty, qty, tt.args)
		assert.InDelta(t, tt.weight, weight, 1e-9, tt.args)
		assert.Equal(t, tt.typ, string(typ), tt.args)
	}

	_, _, _, _, err := parseItemArgs([]string{"gem", "1.5", "2"})
	assert.Error(t, err, "quantity must be whole")
}

func TestExec_SaveRequiresName(t *testing.T) {
	f := newFixture(t, nil)
	blank := character.NewDefault(f.rules, time.Now())
	blank.Name = "  "
	require.NoError(t, f.repos.Drafts.SaveDraft(context.Background(), character.Draft{Character: blank}))
	require.True(t, f.creator.Load(context.Background()))

	assert.Contains(t, f.run("save"), "Give the character a name first")
	assert.Contains(t, f.run("chars"), "No saved characters.")
}

func TestExec_NewCharacterSavesWithDefaultName(t *testing.T) {
	f := newFixture(t, nil)
	f.run("new")
	assert.Contains(t, f.run("save"), "Character saved.")
	assert.Contains(t, f.run("chars"), "New Character")
}

func TestExec_SaveRosterAndDelete(t *testing.T) {
	f := newFixture(t, nil)
	f.saveHero(t, "Borin")
	assert.Contains(t, f.run("save"), "27 attribute points")

	out := f.run("chars")
	assert.Contains(t, out, "Saved characters (1)")
	assert.Contains(t, out, "Borin")

	assert.Contains(t, f.run("delete 7"), "No saved character matches.")
	assert.Contains(t, f.run("delete borin"), "Deleted Borin.")
	assert.Contains(t, f.run("chars"), "No saved characters.")
}

func TestExec_EditLoadsSavedCharacter(t *testing.T) {
	f := newFixture(t, nil)
	f.saveHero(t, "Borin")
	f.run("new")

	assert.Contains(t, f.run("edit 1"), "Editing Borin")
	assert.Equal(t, "Borin", f.creator.Character().Name)
	assert.Equal(t, 0, f.creator.Remaining())
}

func TestExec_Export(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, nil, WithExportDir(dir))
	f.run("name Vex")

	out := f.run("export")
	require.Contains(t, out, "Exported to")
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Vex"`)
}

func TestExec_PlayRequiresCharacter(t *testing.T) {
	f := newFixture(t, nil)
	for _, line := range []string{"north", "look", "check stealth", "use 1", "inventory", "attack", "fight", "leave", "quicksave"} {
		assert.Contains(t, f.run(line), "No character selected.", line)
	}
}

func TestExec_Adventure(t *testing.T) {
	f := newFixture(t, nil)
	f.saveHero(t, "Borin")

	out := f.run("play 1")
	assert.Contains(t, out, "Borin entered the adventure!")
	assert.Equal(t, session.StateExploring, f.sess.State())

	out = f.run("n")
	assert.NotContains(t, out, "cannot go")
	assert.Equal(t, session.Position{X: session.MapCenter, Y: session.MapCenter - 1}, f.sess.Position())

	mapOut := f.run("map")
	assert.Contains(t, mapOut, "@")
	assert.Len(t, strings.Split(mapOut, "\n"), session.MapSize+1)

	assert.Contains(t, f.run("log dialogue The innkeeper winks"), "Logged.")
	assert.Contains(t, f.run("note found a brass key"), "Noted.")
	assert.Contains(t, f.run("notes"), "found a brass key")
	logOut := f.run("log")
	assert.Contains(t, logOut, "The innkeeper winks")
	assert.Contains(t, logOut, "Quick note: found a brass key")

	f.src.Push(15)
	assert.Contains(t, f.run("check perception"), "Perception check")
	assert.Contains(t, f.run("check cooking"), "unknown skill")

	assert.Contains(t, f.run("use 1"), "Used Rations")
	assert.Contains(t, f.run("inventory"), "Rations")
	assert.Contains(t, f.run("time"), "Game time 00:00:00")

	assert.Contains(t, f.run("leave"), "No character selected.")
	assert.Equal(t, session.StateIdle, f.sess.State())
}

func TestExec_Combat(t *testing.T) {
	f := newFixture(t, nil)
	f.saveHero(t, "Borin")
	f.run("play Borin")

	assert.Contains(t, f.run("fight"), "Combat started!")
	assert.Contains(t, f.run("fight"), "already in combat")

	f.src.Push(17)
	out := f.run("attack")
	assert.Contains(t, out, "Borin attacks! Rolled 17 to hit.")
	assert.Contains(t, out, "Turn 2")

	assert.Contains(t, f.run("ability"), "uses a special skill")
	assert.Contains(t, f.run("flee"), "Combat ended.")
	assert.Equal(t, session.StateExploring, f.sess.State())

	clog := f.run("clog")
	assert.Contains(t, clog, "COMBAT STARTED!")
	assert.Contains(t, clog, "Combat ended!")
}

func TestExec_QuickSaveAndLoad(t *testing.T) {
	f := newFixture(t, nil)
	assert.Contains(t, f.run("quickload"), "No quick save found.")

	f.saveHero(t, "Borin")
	f.run("play 1")
	f.run("east")
	assert.Contains(t, f.run("qs"), "Game saved.")
	f.run("west")

	assert.Contains(t, f.run("ql"), "Game loaded.")
	assert.Equal(t, session.Position{X: session.MapCenter + 1, Y: session.MapCenter}, f.sess.Position())
}

func TestExec_Settings(t *testing.T) {
	autosave := clock.NewTicker("autosave", 0, func(context.Context) {}, zap.NewNop())
	t.Cleanup(autosave.Stop)
	f := newFixture(t, nil, WithAutosave(autosave))
	ctx := context.Background()

	f.c.LoadSettings(ctx)
	assert.Equal(t, 10*time.Minute, autosave.Interval())
	assert.Contains(t, f.run("settings"), "every 10 min")

	assert.Contains(t, f.run("settings autosave 5"), "every 5 min")
	assert.Equal(t, 5*time.Minute, autosave.Interval())
	stored, err := f.repos.Settings.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Minutes(5), stored.AutoSave)

	assert.Contains(t, f.run("settings autosave off"), "autosave    off")
	assert.Equal(t, time.Duration(0), autosave.Interval())

	assert.Contains(t, f.run("settings difficulty legendary"), "difficulty must be one of")
	assert.Contains(t, f.run("settings darkmode maybe"), "expected on or off")
	assert.Contains(t, f.run("settings volume 3"), "unknown setting")
	assert.Contains(t, f.run("settings difficulty"), "usage: settings")

	f.run("settings darkmode off")
	assert.False(t, f.c.Settings().DarkMode)

	assert.Contains(t, f.run("settings reset"), "Settings reset.")
	assert.Equal(t, session.DefaultSettings(), f.c.Settings())
	_, err = f.repos.Settings.LoadSettings(ctx)
	assert.ErrorIs(t, err, session.ErrNoSettings)
}

func TestExec_Help(t *testing.T) {
	f := newFixture(t, nil)
	out := f.run("help")
	for _, heading := range []string{"Dice", "Character", "Play", "Combat", "System"} {
		assert.Contains(t, out, heading)
	}
	out = f.run("? roll")
	assert.Contains(t, out, "roll <NdS[+M]>")
	assert.Contains(t, out, "aliases: r")
	assert.Contains(t, f.run("help dance"), `no command named "dance"`)
}

func TestExec_Quit(t *testing.T) {
	f := newFixture(t, nil)
	assert.True(t, f.c.Exec(context.Background(), "quit"))
	assert.False(t, f.c.Exec(context.Background(), "stats"))
}

func TestStart_RunsUntilQuit(t *testing.T) {
	f := newFixture(t, strings.NewReader("roll 1d4\nquit\nroll 1d4\n"))
	f.src.Push(3)

	require.NoError(t, f.c.Start())
	out := f.out.String()
	assert.Contains(t, out, "Tabletop RPG Companion")
	assert.Contains(t, out, "1d4: [3] = 3")
	assert.Contains(t, out, "Farewell, adventurer.")
	assert.Len(t, f.engine.History(), 1, "lines after quit are not executed")
}

func TestStart_EndsAtEOF(t *testing.T) {
	f := newFixture(t, strings.NewReader("stats\n"))
	require.NoError(t, f.c.Start())
	assert.Contains(t, f.out.String(), "No d20 rolls yet.")
}

func TestStart_StopUnblocks(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	f := newFixture(t, pr)

	errc := make(chan error, 1)
	go func() { errc <- f.c.Start() }()

	f.c.Stop()
	f.c.Stop()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestDescribeError(t *testing.T) {
	assert.Contains(t, describeError(session.ErrNoCharacter), "No character selected.")
	assert.Contains(t, describeError(character.ErrNameRequired), "name")
	assert.Equal(t, "boom", describeError(assertError("boom")))
}

type assertError string

func (e assertError) Error() string { return string(e) }
