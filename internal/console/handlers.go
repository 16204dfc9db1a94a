package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/command"
	"github.com/cory-johannsen/companion/internal/game/inventory"
	"github.com/cory-johannsen/companion/internal/game/session"
)

// handlerContext carries all inputs a handler needs.
type handlerContext struct {
	ctx    context.Context
	c      *Console
	cmd    *command.Command
	parsed command.ParseResult
}

// say writes one line of output.
func (h *handlerContext) say(text string) { h.c.writeLine(text) }

// style returns the active palette.
func (h *handlerContext) style() palette { return h.c.style() }

// usage is the error returned when required arguments are missing.
func (h *handlerContext) usage() error {
	return fmt.Errorf("usage: %s %s", h.cmd.Name, h.cmd.Usage)
}

// handlerResult is returned by every handler. quit ends the read loop.
type handlerResult struct {
	quit bool
}

// handlerFunc is the signature for all console dispatch functions.
type handlerFunc func(h *handlerContext) (handlerResult, error)

// Handlers returns the map from Handler constant to handler function.
// Exported so tests can verify every built-in command is wired.
func Handlers() map[string]handlerFunc {
	return handlerMap
}

// handlerMap is the single source of truth for console command dispatch.
// To add a new command: add a Handler constant to commands.go AND add an entry here.
var handlerMap = map[string]handlerFunc{
	command.HandlerRoll:         handleRoll,
	command.HandlerStats:        handleStats,
	command.HandlerHistory:      handleHistory,
	command.HandlerClearHistory: handleClearHistory,

	command.HandlerNew:        handleNew,
	command.HandlerName:       handleName,
	command.HandlerRace:       handleRace,
	command.HandlerClass:      handleClass,
	command.HandlerBackground: handleBackground,
	command.HandlerAppearance: handleAppearance,
	command.HandlerIncrement:  handleIncrement,
	command.HandlerDecrement:  handleDecrement,
	command.HandlerPoints:     handlePoints,
	command.HandlerSkill:      handleSkill,
	command.HandlerItem:       handleItem,
	command.HandlerUnitem:     handleUnitem,
	command.HandlerRandomize:  handleRandomize,
	command.HandlerReset:      handleReset,
	command.HandlerSheet:      handleSheet,
	command.HandlerSave:       handleSave,
	command.HandlerExport:     handleExport,
	command.HandlerRoster:     handleRoster,
	command.HandlerEdit:       handleEdit,
	command.HandlerDelete:     handleDelete,

	command.HandlerPlay:      handlePlay,
	command.HandlerLeave:     handleLeave,
	command.HandlerMove:      handleMove,
	command.HandlerLook:      handleLook,
	command.HandlerMap:       handleMap,
	command.HandlerLog:       handleLog,
	command.HandlerNote:      handleNote,
	command.HandlerNotes:     handleNotes,
	command.HandlerCheck:     handleCheck,
	command.HandlerUse:       handleUse,
	command.HandlerDrop:      handleDrop,
	command.HandlerInventory: handleInventory,
	command.HandlerTime:      handleTime,
	command.HandlerQuickSave: handleQuickSave,
	command.HandlerQuickLoad: handleQuickLoad,

	command.HandlerFight:     handleFight,
	command.HandlerAct:       handleAct,
	command.HandlerCombatLog: handleCombatLog,

	command.HandlerSettings: handleSettings,
	command.HandlerHelp:     handleHelp,
	command.HandlerQuit:     handleQuit,
}

// Dice

func handleRoll(h *handlerContext) (handlerResult, error) {
	if len(h.parsed.Args) == 0 {
		return handlerResult{}, h.usage()
	}
	r, err := h.c.deps.Engine.RollExpr(h.ctx, strings.Join(h.parsed.Args, ""))
	if err != nil {
		return handlerResult{}, err
	}
	h.say(renderRoll(h.style(), r))
	return handlerResult{}, nil
}

func handleStats(h *handlerContext) (handlerResult, error) {
	st, ok := h.c.deps.Engine.Statistics()
	h.say(renderStats(h.style(), st, ok))
	return handlerResult{}, nil
}

// defaultHistoryLines is how many rolls history shows without a count.
const defaultHistoryLines = 10

func handleHistory(h *handlerContext) (handlerResult, error) {
	n := defaultHistoryLines
	if len(h.parsed.Args) > 0 {
		v, err := h.parsed.IntArg(0)
		if err != nil || v < 1 {
			return handlerResult{}, h.usage()
		}
		n = v
	}
	h.say(renderHistory(h.style(), h.c.deps.Engine.History(), n))
	return handlerResult{}, nil
}

func handleClearHistory(h *handlerContext) (handlerResult, error) {
	h.c.deps.Engine.ClearHistory(h.ctx)
	h.say(h.style().paint(roleMuted, "Roll history cleared."))
	return handlerResult{}, nil
}

// Character creation

func showSheet(h *handlerContext) {
	cr := h.c.deps.Creator
	h.say(renderSheet(h.style(), h.c.deps.Rules, cr.Character(), cr.Remaining()))
}

func handleNew(h *handlerContext) (handlerResult, error) {
	h.c.deps.Creator.Reset(h.ctx)
	h.say(h.style().paint(roleGood, "Started a new character."))
	showSheet(h)
	return handlerResult{}, nil
}

func handleName(h *handlerContext) (handlerResult, error) {
	if h.parsed.RawArgs == "" {
		return handlerResult{}, h.usage()
	}
	h.c.deps.Creator.SetName(h.ctx, h.parsed.RawArgs)
	h.say("Name set to " + h.style().paint(rolePlayer, h.parsed.RawArgs) + ".")
	return handlerResult{}, nil
}

func handleRace(h *handlerContext) (handlerResult, error) {
	id := strings.ToLower(h.parsed.Arg(0))
	if id == "" {
		return handlerResult{}, h.usage()
	}
	if err := h.c.deps.Creator.SetRace(h.ctx, id); err != nil {
		ids := make([]string, 0, len(h.c.deps.Rules.Races))
		for _, r := range h.c.deps.Rules.Races {
			ids = append(ids, r.ID)
		}
		return handlerResult{}, fmt.Errorf("%w; choose one of %s", err, strings.Join(ids, ", "))
	}
	h.say("Race set to " + h.c.deps.Rules.RaceName(id) + ".")
	return handlerResult{}, nil
}

func handleClass(h *handlerContext) (handlerResult, error) {
	id := strings.ToLower(h.parsed.Arg(0))
	if id == "" {
		return handlerResult{}, h.usage()
	}
	if err := h.c.deps.Creator.SetClass(h.ctx, id); err != nil {
		ids := make([]string, 0, len(h.c.deps.Rules.Classes))
		for _, cl := range h.c.deps.Rules.Classes {
			ids = append(ids, cl.ID)
		}
		return handlerResult{}, fmt.Errorf("%w; choose one of %s", err, strings.Join(ids, ", "))
	}
	ch := h.c.deps.Creator.Character()
	h.say(fmt.Sprintf("Class set to %s. HP %d.", h.c.deps.Rules.ClassName(id), ch.MaxHP))
	return handlerResult{}, nil
}

func handleBackground(h *handlerContext) (handlerResult, error) {
	h.c.deps.Creator.SetBackground(h.ctx, h.parsed.RawArgs)
	if h.parsed.RawArgs == "" {
		h.say("Background cleared.")
	} else {
		h.say("Background updated.")
	}
	return handlerResult{}, nil
}

func handleAppearance(h *handlerContext) (handlerResult, error) {
	field := strings.ToLower(h.parsed.Arg(0))
	value := h.parsed.Rest(1)
	if field == "" || value == "" {
		return handlerResult{}, h.usage()
	}
	a := h.c.deps.Creator.Character().Appearance
	number := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%s must be a whole number; got %q", field, value)
		}
		return n, nil
	}
	var err error
	switch field {
	case "gender":
		a.Gender = value
	case "description", "desc":
		a.Description = value
	case "age":
		a.Age, err = number()
	case "height":
		a.Height, err = number()
	case "weight":
		a.Weight, err = number()
	default:
		return handlerResult{}, fmt.Errorf("unknown appearance field %q; use gender, age, height, weight or description", field)
	}
	if err != nil {
		return handlerResult{}, err
	}
	h.c.deps.Creator.SetAppearance(h.ctx, a)
	h.say(fmt.Sprintf("Appearance %s set.", field))
	return handlerResult{}, nil
}

func parseAttributeArg(h *handlerContext) (character.Attribute, error) {
	a, ok := character.ParseAttribute(h.parsed.Arg(0))
	if !ok {
		return "", fmt.Errorf("unknown attribute %q; use str, dex, con, int, wis or cha", h.parsed.Arg(0))
	}
	return a, nil
}

func handleIncrement(h *handlerContext) (handlerResult, error) {
	a, err := parseAttributeArg(h)
	if err != nil {
		return handlerResult{}, err
	}
	cr := h.c.deps.Creator
	if !cr.Increment(h.ctx, a) {
		ch := cr.Character()
		if ch.Attributes.Get(a) >= character.MaxScore {
			return handlerResult{}, fmt.Errorf("%s is already at the maximum of %d", a.Abbrev(), character.MaxScore)
		}
		return handlerResult{}, fmt.Errorf("not enough points to raise %s (%d left, %d needed)",
			a.Abbrev(), cr.Remaining(), character.IncrementCost(ch.Attributes.Get(a)))
	}
	h.say(renderAttributes(h.style(), cr.Character().Attributes, cr.Remaining()))
	return handlerResult{}, nil
}

func handleDecrement(h *handlerContext) (handlerResult, error) {
	a, err := parseAttributeArg(h)
	if err != nil {
		return handlerResult{}, err
	}
	cr := h.c.deps.Creator
	if !cr.Decrement(h.ctx, a) {
		return handlerResult{}, fmt.Errorf("%s is already at the minimum of %d", a.Abbrev(), character.MinScore)
	}
	h.say(renderAttributes(h.style(), cr.Character().Attributes, cr.Remaining()))
	return handlerResult{}, nil
}

func handlePoints(h *handlerContext) (handlerResult, error) {
	cr := h.c.deps.Creator
	h.say(renderAttributes(h.style(), cr.Character().Attributes, cr.Remaining()))
	return handlerResult{}, nil
}

func handleSkill(h *handlerContext) (handlerResult, error) {
	id := strings.ToLower(h.parsed.Arg(0))
	if id == "" {
		return handlerResult{}, h.usage()
	}
	added, err := h.c.deps.Creator.ToggleSkill(h.ctx, id)
	if err != nil {
		return handlerResult{}, err
	}
	skill, _ := h.c.deps.Rules.Skill(id)
	if added {
		h.say(h.style().paint(roleGood, "Proficient in "+skill.Name+"."))
	} else {
		h.say("No longer proficient in " + skill.Name + ".")
	}
	return handlerResult{}, nil
}

// parseItemArgs reads "<name...> [qty] [weight] [type]" from the end of args.
// The name is whatever remains once the optional trailing fields are taken.
func parseItemArgs(args []string) (name string, qty int, weight float64, typ inventory.Type, err error) {
	qty = 1
	typ = inventory.TypeMisc
	rest := args
	if len(rest) > 1 {
		if t, ok := inventory.ParseType(rest[len(rest)-1]); ok {
			typ = t
			rest = rest[:len(rest)-1]
		}
	}
	var nums []string
	for len(rest) > 1 && len(nums) < 2 {
		last := rest[len(rest)-1]
		if _, perr := strconv.ParseFloat(last, 64); perr != nil {
			break
		}
		nums = append([]string{last}, nums...)
		rest = rest[:len(rest)-1]
	}
	if len(nums) > 0 {
		if qty, err = strconv.Atoi(nums[0]); err != nil {
			return "", 0, 0, "", fmt.Errorf("quantity must be a whole number; got %q", nums[0])
		}
	}
	if len(nums) > 1 {
		weight, _ = strconv.ParseFloat(nums[1], 64)
	}
	name = strings.Join(rest, " ")
	return name, qty, weight, typ, nil
}

func handleItem(h *handlerContext) (handlerResult, error) {
	if len(h.parsed.Args) == 0 {
		return handlerResult{}, h.usage()
	}
	name, qty, weight, typ, err := parseItemArgs(h.parsed.Args)
	if err != nil {
		return handlerResult{}, err
	}
	item, err := h.c.deps.Creator.AddItem(h.ctx, name, qty, weight, typ)
	if err != nil {
		return handlerResult{}, err
	}
	h.say(fmt.Sprintf("Added %s x%d.", item.Name, item.Quantity))
	return handlerResult{}, nil
}

// indexArg reads a 1-based position and returns it 0-based.
func indexArg(h *handlerContext) (int, error) {
	n, err := h.parsed.IntArg(0)
	if err != nil || n < 1 {
		return 0, h.usage()
	}
	return n - 1, nil
}

func handleUnitem(h *handlerContext) (handlerResult, error) {
	idx, err := indexArg(h)
	if err != nil {
		return handlerResult{}, err
	}
	item, err := h.c.deps.Creator.RemoveItem(h.ctx, idx)
	if err != nil {
		return handlerResult{}, err
	}
	h.say("Removed " + item.Name + ".")
	return handlerResult{}, nil
}

func handleRandomize(h *handlerContext) (handlerResult, error) {
	h.c.deps.Creator.Randomize(h.ctx)
	showSheet(h)
	return handlerResult{}, nil
}

func handleReset(h *handlerContext) (handlerResult, error) {
	h.c.deps.Creator.Reset(h.ctx)
	h.say("Character reset.")
	return handlerResult{}, nil
}

func handleSheet(h *handlerContext) (handlerResult, error) {
	showSheet(h)
	return handlerResult{}, nil
}

func handleSave(h *handlerContext) (handlerResult, error) {
	res, err := h.c.deps.Creator.Save(h.ctx)
	if err != nil {
		return handlerResult{}, err
	}
	h.say(h.style().paint(roleGood, "Character saved."))
	if res.Unspent > 0 {
		h.say(h.style().paintf(roleWarn, "You still have %d attribute points to spend.", res.Unspent))
	}
	return handlerResult{}, nil
}

func handleExport(h *handlerContext) (handlerResult, error) {
	dir := h.parsed.Arg(0)
	if dir == "" {
		dir = h.c.exportDir
	}
	data, name, err := h.c.deps.Creator.Export()
	if err != nil {
		return handlerResult{}, fmt.Errorf("exporting character: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return handlerResult{}, fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return handlerResult{}, fmt.Errorf("writing export: %w", err)
	}
	h.c.logger.Info("character exported", zap.String("path", path))
	h.say("Exported to " + path + ".")
	return handlerResult{}, nil
}

func handleRoster(h *handlerContext) (handlerResult, error) {
	chars, err := h.c.deps.Roster.List(h.ctx)
	if err != nil {
		return handlerResult{}, fmt.Errorf("listing characters: %w", err)
	}
	h.say(renderRoster(h.style(), h.c.deps.Rules, chars, h.c.now()))
	return handlerResult{}, nil
}

// findCharacter resolves a roster reference: a 1-based position, an ID or a
// case-insensitive name.
func findCharacter(h *handlerContext) (*character.Character, error) {
	ref := h.parsed.RawArgs
	if ref == "" {
		return nil, h.usage()
	}
	chars, err := h.c.deps.Roster.List(h.ctx)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(chars) {
		return chars[n-1], nil
	}
	for _, c := range chars {
		if string(c.ID) == ref {
			return c, nil
		}
	}
	for _, c := range chars {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", character.ErrNotFound, ref)
}

func handleEdit(h *handlerContext) (handlerResult, error) {
	ch, err := findCharacter(h)
	if err != nil {
		return handlerResult{}, err
	}
	if err := h.c.deps.Creator.Edit(h.ctx, ch.ID); err != nil {
		return handlerResult{}, err
	}
	h.say("Editing " + h.style().paint(rolePlayer, ch.Name) + ". Attribute points are already spent.")
	return handlerResult{}, nil
}

func handleDelete(h *handlerContext) (handlerResult, error) {
	ch, err := findCharacter(h)
	if err != nil {
		return handlerResult{}, err
	}
	if err := h.c.deps.Roster.Delete(h.ctx, ch.ID); err != nil {
		return handlerResult{}, fmt.Errorf("deleting character: %w", err)
	}
	h.say("Deleted " + ch.Name + ".")
	return handlerResult{}, nil
}

// Play

func handlePlay(h *handlerContext) (handlerResult, error) {
	ch, err := findCharacter(h)
	if err != nil {
		return handlerResult{}, err
	}
	sess := h.c.deps.Session
	sess.LoadCharacter(h.ctx, ch)
	h.say(h.style().paint(roleGood, sess.Message()))
	h.say(renderLocation(h.style(), sess.Location(), sess.Position()))
	return handlerResult{}, nil
}

func handleLeave(h *handlerContext) (handlerResult, error) {
	sess := h.c.deps.Session
	if sess.Character() == nil {
		return handlerResult{}, session.ErrNoCharacter
	}
	sess.UnloadCharacter()
	h.say(sess.Message() + ".")
	return handlerResult{}, nil
}

func handleMove(h *handlerContext) (handlerResult, error) {
	d, ok := session.ParseDirection(h.cmd.Name)
	if !ok {
		return handlerResult{}, fmt.Errorf("unknown direction %q", h.cmd.Name)
	}
	res, err := h.c.deps.Session.Move(h.ctx, d)
	if err != nil {
		return handlerResult{}, err
	}
	if !res.Moved {
		h.say(h.style().paintf(roleWarn, "You cannot go further %s.", d))
		return handlerResult{}, nil
	}
	h.say(renderLocation(h.style(), res.Location, res.Position))
	if res.Encounter != nil {
		r := roleWarn
		if h.c.deps.Session.State() == session.StateCombat {
			r = roleCombat
		}
		h.say(h.style().paint(r, res.Encounter.Message))
	}
	return handlerResult{}, nil
}

func handleLook(h *handlerContext) (handlerResult, error) {
	sess := h.c.deps.Session
	if sess.Character() == nil {
		return handlerResult{}, session.ErrNoCharacter
	}
	h.say(renderLocation(h.style(), sess.Location(), sess.Position()))
	return handlerResult{}, nil
}

func handleMap(h *handlerContext) (handlerResult, error) {
	h.say(renderMap(h.style(), h.c.deps.Session.Position()))
	return handlerResult{}, nil
}

// adventureLogLines is how many log entries log shows.
const adventureLogLines = 15

func handleLog(h *handlerContext) (handlerResult, error) {
	sess := h.c.deps.Session
	if len(h.parsed.Args) == 0 {
		h.say(renderLog(h.style(), "Adventure log", sess.AdventureLog(), adventureLogLines))
		return handlerResult{}, nil
	}
	typ, msg := session.LogAction, h.parsed.RawArgs
	if t, ok := session.ParseLogType(strings.ToLower(h.parsed.Arg(0))); ok && len(h.parsed.Args) > 1 {
		typ, msg = t, h.parsed.Rest(1)
	}
	if err := sess.AddLog(msg, typ); err != nil {
		return handlerResult{}, err
	}
	h.say(h.style().paint(roleMuted, "Logged."))
	return handlerResult{}, nil
}

func handleNote(h *handlerContext) (handlerResult, error) {
	if _, err := h.c.deps.Session.AddNote(h.parsed.RawArgs); err != nil {
		return handlerResult{}, err
	}
	h.say(h.style().paint(roleMuted, "Noted."))
	return handlerResult{}, nil
}

// recentNotes is how many notes notes shows.
const recentNotes = 5

func handleNotes(h *handlerContext) (handlerResult, error) {
	h.say(renderNotes(h.style(), h.c.deps.Session.Notes(recentNotes)))
	return handlerResult{}, nil
}

func handleCheck(h *handlerContext) (handlerResult, error) {
	id := strings.ToLower(h.parsed.Arg(0))
	if id == "" {
		return handlerResult{}, h.usage()
	}
	res, err := h.c.deps.Session.SkillCheck(h.ctx, id)
	if err != nil {
		return handlerResult{}, err
	}
	h.say(renderSkillCheck(h.style(), res))
	return handlerResult{}, nil
}

func handleUse(h *handlerContext) (handlerResult, error) {
	idx, err := indexArg(h)
	if err != nil {
		return handlerResult{}, err
	}
	if _, err := h.c.deps.Session.UseItem(idx); err != nil {
		return handlerResult{}, err
	}
	h.say(h.c.deps.Session.Message() + ".")
	return handlerResult{}, nil
}

func handleDrop(h *handlerContext) (handlerResult, error) {
	idx, err := indexArg(h)
	if err != nil {
		return handlerResult{}, err
	}
	if _, err := h.c.deps.Session.DropItem(idx); err != nil {
		return handlerResult{}, err
	}
	h.say(h.c.deps.Session.Message() + ".")
	return handlerResult{}, nil
}

func handleInventory(h *handlerContext) (handlerResult, error) {
	ch := h.c.deps.Session.Character()
	if ch == nil {
		return handlerResult{}, session.ErrNoCharacter
	}
	h.say(renderInventory(h.style(), ch))
	return handlerResult{}, nil
}

func handleTime(h *handlerContext) (handlerResult, error) {
	sess := h.c.deps.Session
	h.say(fmt.Sprintf("Game time %s  Session %s",
		h.style().paint(roleValue, sess.GameTimeString()),
		h.style().paint(roleValue, sess.SessionDuration())))
	return handlerResult{}, nil
}

func handleQuickSave(h *handlerContext) (handlerResult, error) {
	if err := h.c.deps.Session.QuickSave(h.ctx); err != nil {
		return handlerResult{}, err
	}
	h.say(h.style().paint(roleGood, "Game saved."))
	return handlerResult{}, nil
}

func handleQuickLoad(h *handlerContext) (handlerResult, error) {
	sess := h.c.deps.Session
	if err := sess.QuickLoad(h.ctx); err != nil {
		return handlerResult{}, err
	}
	h.say(h.style().paint(roleGood, "Game loaded."))
	h.say(renderLocation(h.style(), sess.Location(), sess.Position()))
	return handlerResult{}, nil
}

// Combat

func handleFight(h *handlerContext) (handlerResult, error) {
	sess := h.c.deps.Session
	if sess.Character() == nil {
		return handlerResult{}, session.ErrNoCharacter
	}
	if sess.State() == session.StateCombat {
		return handlerResult{}, errors.New("already in combat")
	}
	sess.StartCombat()
	h.say(h.style().paint(roleCombat, sess.Message()))
	return handlerResult{}, nil
}

func handleAct(h *handlerContext) (handlerResult, error) {
	name, ok := command.CombatAction(h.cmd.Name)
	if !ok {
		return handlerResult{}, fmt.Errorf("%s is not a combat action", h.cmd.Name)
	}
	sess := h.c.deps.Session
	res, err := sess.Act(h.ctx, session.Action(name))
	if err != nil {
		return handlerResult{}, err
	}
	h.say(renderAct(h.style(), res, sess.State()))
	return handlerResult{}, nil
}

func handleCombatLog(h *handlerContext) (handlerResult, error) {
	h.say(renderLog(h.style(), "Combat log", h.c.deps.Session.CombatLog(), 0))
	return handlerResult{}, nil
}

// System

// parseToggle accepts on/off style values.
func parseToggle(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off; got %q", v)
}

func handleSettings(h *handlerContext) (handlerResult, error) {
	store := h.c.deps.Settings
	key := strings.ToLower(h.parsed.Arg(0))
	switch {
	case key == "":
		h.say(renderSettings(h.style(), h.c.Settings()))
		return handlerResult{}, nil
	case key == "reset":
		if err := store.ResetSettings(h.ctx); err != nil {
			return handlerResult{}, fmt.Errorf("resetting settings: %w", err)
		}
		h.c.applySettings(session.DefaultSettings())
		h.say("Settings reset.")
		h.say(renderSettings(h.style(), h.c.Settings()))
		return handlerResult{}, nil
	}

	value := h.parsed.Arg(1)
	if value == "" {
		return handlerResult{}, h.usage()
	}
	s := h.c.Settings()
	var err error
	switch key {
	case "darkmode", "dark":
		s.DarkMode, err = parseToggle(value)
	case "animations":
		s.Animations, err = parseToggle(value)
	case "sounds":
		s.Sounds, err = parseToggle(value)
	case "difficulty":
		s.Difficulty = strings.ToLower(value)
	case "autosave":
		if strings.EqualFold(value, "off") {
			s.AutoSave = 0
			break
		}
		var n int
		n, err = strconv.Atoi(value)
		s.AutoSave = session.Minutes(n)
	default:
		return handlerResult{}, fmt.Errorf("unknown setting %q; use darkmode, animations, sounds, difficulty or autosave", key)
	}
	if err != nil {
		return handlerResult{}, fmt.Errorf("%s: %w", key, err)
	}
	if err := store.SaveSettings(h.ctx, s); err != nil {
		return handlerResult{}, fmt.Errorf("saving settings: %w", err)
	}
	h.c.applySettings(s)
	h.say(renderSettings(h.style(), s))
	return handlerResult{}, nil
}

func handleHelp(h *handlerContext) (handlerResult, error) {
	if name := strings.ToLower(h.parsed.Arg(0)); name != "" {
		cmd, ok := h.c.registry.Resolve(name)
		if !ok {
			return handlerResult{}, fmt.Errorf("no command named %q", name)
		}
		h.say(renderCommandHelp(h.style(), cmd))
		return handlerResult{}, nil
	}
	h.say(renderHelp(h.style(), h.c.registry))
	return handlerResult{}, nil
}

func handleQuit(h *handlerContext) (handlerResult, error) {
	h.say("Farewell, adventurer.")
	return handlerResult{quit: true}, nil
}
