// Package command provides the console command registry, parser, and
// built-in command definitions.
package command

// Categories for organizing commands. Help lists them in this order.
const (
	CategoryDice      = "dice"
	CategoryCharacter = "character"
	CategoryPlay      = "play"
	CategoryCombat    = "combat"
	CategorySystem    = "system"
)

// Categories returns every category in display order.
func Categories() []string {
	return []string{CategoryDice, CategoryCharacter, CategoryPlay, CategoryCombat, CategorySystem}
}

// Handler identifiers mapping commands to console handlers.
const (
	HandlerRoll         = "roll"
	HandlerStats        = "stats"
	HandlerHistory      = "history"
	HandlerClearHistory = "clearhistory"

	HandlerNew        = "new"
	HandlerName       = "name"
	HandlerRace       = "race"
	HandlerClass      = "class"
	HandlerBackground = "background"
	HandlerAppearance = "appearance"
	HandlerIncrement  = "increment"
	HandlerDecrement  = "decrement"
	HandlerPoints     = "points"
	HandlerSkill      = "skill"
	HandlerItem       = "item"
	HandlerUnitem     = "unitem"
	HandlerRandomize  = "randomize"
	HandlerReset      = "reset"
	HandlerSheet      = "sheet"
	HandlerSave       = "save"
	HandlerExport     = "export"
	HandlerRoster     = "roster"
	HandlerEdit       = "edit"
	HandlerDelete     = "delete"

	HandlerPlay      = "play"
	HandlerLeave     = "leave"
	HandlerMove      = "move"
	HandlerLook      = "look"
	HandlerMap       = "map"
	HandlerLog       = "log"
	HandlerNote      = "note"
	HandlerNotes     = "notes"
	HandlerCheck     = "check"
	HandlerUse       = "use"
	HandlerDrop      = "drop"
	HandlerInventory = "inventory"
	HandlerTime      = "time"
	HandlerQuickSave = "quicksave"
	HandlerQuickLoad = "quickload"

	HandlerFight     = "fight"
	HandlerAct       = "act"
	HandlerCombatLog = "combatlog"

	HandlerSettings = "settings"
	HandlerHelp     = "help"
	HandlerQuit     = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, without the command name.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler names the console handler that executes the command.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		// Dice
		{Name: "roll", Aliases: []string{"r"}, Usage: "<NdS[+M]>", Help: "Roll dice, e.g. roll 2d6+3", Category: CategoryDice, Handler: HandlerRoll},
		{Name: "stats", Usage: "", Help: "Show d20 statistics for the roll history", Category: CategoryDice, Handler: HandlerStats},
		{Name: "history", Aliases: []string{"hist"}, Usage: "[count]", Help: "List recent rolls, newest first", Category: CategoryDice, Handler: HandlerHistory},
		{Name: "clear", Usage: "", Help: "Clear the roll history", Category: CategoryDice, Handler: HandlerClearHistory},

		// Character creation
		{Name: "new", Usage: "", Help: "Start a fresh character", Category: CategoryCharacter, Handler: HandlerNew},
		{Name: "name", Usage: "<name>", Help: "Set the character name", Category: CategoryCharacter, Handler: HandlerName},
		{Name: "race", Usage: "<race>", Help: "Set the character race", Category: CategoryCharacter, Handler: HandlerRace},
		{Name: "class", Usage: "<class>", Help: "Set the character class", Category: CategoryCharacter, Handler: HandlerClass},
		{Name: "bg", Aliases: []string{"background"}, Usage: "<text>", Help: "Set the background story", Category: CategoryCharacter, Handler: HandlerBackground},
		{Name: "appearance", Aliases: []string{"app"}, Usage: "<field> <value>", Help: "Set gender, age, height, weight or description", Category: CategoryCharacter, Handler: HandlerAppearance},
		{Name: "inc", Aliases: []string{"+"}, Usage: "<attribute>", Help: "Raise an attribute by one point-buy step", Category: CategoryCharacter, Handler: HandlerIncrement},
		{Name: "dec", Aliases: []string{"-"}, Usage: "<attribute>", Help: "Lower an attribute by one point-buy step", Category: CategoryCharacter, Handler: HandlerDecrement},
		{Name: "points", Aliases: []string{"pts"}, Usage: "", Help: "Show attributes and the remaining point budget", Category: CategoryCharacter, Handler: HandlerPoints},
		{Name: "skill", Aliases: []string{"sk"}, Usage: "<skill>", Help: "Toggle a skill proficiency", Category: CategoryCharacter, Handler: HandlerSkill},
		{Name: "item", Usage: "<name> [qty] [weight] [type]", Help: "Add an item to the inventory", Category: CategoryCharacter, Handler: HandlerItem},
		{Name: "unitem", Usage: "<index>", Help: "Remove an inventory item", Category: CategoryCharacter, Handler: HandlerUnitem},
		{Name: "random", Aliases: []string{"randomize"}, Usage: "", Help: "Randomize race, class and attributes", Category: CategoryCharacter, Handler: HandlerRandomize},
		{Name: "reset", Usage: "", Help: "Reset the character being edited", Category: CategoryCharacter, Handler: HandlerReset},
		{Name: "sheet", Aliases: []string{"char"}, Usage: "", Help: "Show the character being edited", Category: CategoryCharacter, Handler: HandlerSheet},
		{Name: "save", Usage: "", Help: "Save the character to the roster", Category: CategoryCharacter, Handler: HandlerSave},
		{Name: "export", Usage: "[dir]", Help: "Write the character to a JSON file", Category: CategoryCharacter, Handler: HandlerExport},
		{Name: "chars", Aliases: []string{"roster"}, Usage: "", Help: "List saved characters", Category: CategoryCharacter, Handler: HandlerRoster},
		{Name: "edit", Usage: "<index|id>", Help: "Edit a saved character", Category: CategoryCharacter, Handler: HandlerEdit},
		{Name: "delete", Aliases: []string{"del"}, Usage: "<index|id>", Help: "Delete a saved character", Category: CategoryCharacter, Handler: HandlerDelete},

		// Play
		{Name: "play", Usage: "<index|id>", Help: "Start an adventure with a saved character", Category: CategoryPlay, Handler: HandlerPlay},
		{Name: "leave", Usage: "", Help: "Put the character away and end the adventure", Category: CategoryPlay, Handler: HandlerLeave},
		{Name: "north", Aliases: []string{"n"}, Usage: "", Help: "Move north", Category: CategoryPlay, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Usage: "", Help: "Move south", Category: CategoryPlay, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Usage: "", Help: "Move east", Category: CategoryPlay, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Usage: "", Help: "Move west", Category: CategoryPlay, Handler: HandlerMove},
		{Name: "look", Aliases: []string{"l"}, Usage: "", Help: "Describe the current location", Category: CategoryPlay, Handler: HandlerLook},
		{Name: "map", Usage: "", Help: "Draw the map around the character", Category: CategoryPlay, Handler: HandlerMap},
		{Name: "log", Usage: "[type] <message>", Help: "Add an adventure log entry, or show the log", Category: CategoryPlay, Handler: HandlerLog},
		{Name: "note", Usage: "<text>", Help: "Write a note", Category: CategoryPlay, Handler: HandlerNote},
		{Name: "notes", Usage: "", Help: "Show the latest notes", Category: CategoryPlay, Handler: HandlerNotes},
		{Name: "check", Usage: "<skill>", Help: "Roll a skill check", Category: CategoryPlay, Handler: HandlerCheck},
		{Name: "use", Usage: "<index>", Help: "Use an inventory item", Category: CategoryPlay, Handler: HandlerUse},
		{Name: "drop", Usage: "<index>", Help: "Drop an inventory item", Category: CategoryPlay, Handler: HandlerDrop},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Usage: "", Help: "List the character's inventory", Category: CategoryPlay, Handler: HandlerInventory},
		{Name: "time", Usage: "", Help: "Show the game clock and session duration", Category: CategoryPlay, Handler: HandlerTime},
		{Name: "quicksave", Aliases: []string{"qs"}, Usage: "", Help: "Save the adventure", Category: CategoryPlay, Handler: HandlerQuickSave},
		{Name: "quickload", Aliases: []string{"ql"}, Usage: "", Help: "Restore the last quick save", Category: CategoryPlay, Handler: HandlerQuickLoad},

		// Combat
		{Name: "fight", Usage: "", Help: "Start combat", Category: CategoryCombat, Handler: HandlerFight},
		{Name: "attack", Aliases: []string{"att", "a"}, Usage: "", Help: "Attack with 1d20 plus strength", Category: CategoryCombat, Handler: HandlerAct},
		{Name: "defend", Aliases: []string{"def"}, Usage: "", Help: "Take a defensive stance", Category: CategoryCombat, Handler: HandlerAct},
		{Name: "ability", Aliases: []string{"ab"}, Usage: "", Help: "Use a class ability", Category: CategoryCombat, Handler: HandlerAct},
		{Name: "useitem", Aliases: []string{"ui"}, Usage: "", Help: "Use an item in combat", Category: CategoryCombat, Handler: HandlerAct},
		{Name: "magic", Aliases: []string{"cast"}, Usage: "", Help: "Cast a spell with 1d20 plus intelligence", Category: CategoryCombat, Handler: HandlerAct},
		{Name: "flee", Aliases: []string{"run"}, Usage: "", Help: "Flee and end combat", Category: CategoryCombat, Handler: HandlerAct},
		{Name: "clog", Aliases: []string{"combatlog"}, Usage: "", Help: "Show the combat log", Category: CategoryCombat, Handler: HandlerCombatLog},

		// System
		{Name: "settings", Aliases: []string{"set"}, Usage: "[key value|reset]", Help: "Show or change preferences", Category: CategorySystem, Handler: HandlerSettings},
		{Name: "help", Aliases: []string{"?", "h"}, Usage: "[command]", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "", Help: "Leave the companion", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// IsMovementCommand returns true if the command name is a movement direction.
func IsMovementCommand(name string) bool {
	switch name {
	case "north", "south", "east", "west":
		return true
	}
	return false
}

// CombatAction maps a combat command name to the session action it performs.
func CombatAction(name string) (string, bool) {
	switch name {
	case "attack", "defend", "magic", "flee":
		return name, true
	case "ability":
		return "skill", true
	case "useitem":
		return "item", true
	}
	return "", false
}
