package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cory-johannsen/companion/internal/game/character"
	"github.com/cory-johannsen/companion/internal/game/command"
	"github.com/cory-johannsen/companion/internal/game/dice"
	"github.com/cory-johannsen/companion/internal/game/ruleset"
	"github.com/cory-johannsen/companion/internal/game/session"
)

// renderRoll formats one roll as "2d6+3: [4 5] +3 = 12", flagging d20
// criticals and fumbles.
func renderRoll(p palette, r dice.RollResult) string {
	faces := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		faces[i] = fmt.Sprint(d)
	}
	var b strings.Builder
	b.WriteString(p.paint(roleLabel, r.Expression))
	b.WriteString(": [")
	b.WriteString(strings.Join(faces, " "))
	b.WriteString("]")
	if r.Modifier != 0 {
		b.WriteString(" " + character.FormatModifier(r.Modifier))
	}
	b.WriteString(" = ")
	b.WriteString(p.paintf(roleValue, "%d", r.Total))
	switch {
	case r.Critical:
		b.WriteString(" " + p.paint(roleGood, "CRITICAL!"))
	case r.Fumble:
		b.WriteString(" " + p.paint(roleBad, "FUMBLE!"))
	}
	return b.String()
}

// renderHistory lists up to n entries, newest first, with their time of day.
func renderHistory(p palette, entries []dice.RollResult, n int) string {
	if len(entries) == 0 {
		return p.paint(roleMuted, "No rolls yet.")
	}
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	var b strings.Builder
	b.WriteString(p.paintf(roleTitle, "Roll history (%d)", len(entries)))
	for _, r := range entries {
		b.WriteString("\n  ")
		b.WriteString(p.paint(roleMuted, r.Timestamp.Format("15:04:05")))
		b.WriteString("  ")
		b.WriteString(renderRoll(p, r))
	}
	return b.String()
}

// renderStats formats d20 statistics.
func renderStats(p palette, st dice.Stats, ok bool) string {
	if !ok {
		return p.paint(roleMuted, "No d20 rolls yet.")
	}
	var b strings.Builder
	b.WriteString(p.paint(roleTitle, "d20 statistics"))
	row := func(label string, value string) {
		b.WriteString(fmt.Sprintf("\n  %s %s", p.paintf(roleLabel, "%-10s", label), p.paint(roleValue, value)))
	}
	row("Rolls", fmt.Sprintf("%d of %d", st.D20Rolls, st.TotalRolls))
	row("Average", fmt.Sprintf("%.2f", st.Average))
	row("Highest", fmt.Sprint(st.Highest))
	row("Lowest", fmt.Sprint(st.Lowest))
	row("Criticals", fmt.Sprint(st.Criticals))
	row("Fumbles", fmt.Sprint(st.Fumbles))
	return b.String()
}

// renderAttributes lists the six scores with modifiers, and the remaining
// budget when remaining >= 0.
func renderAttributes(p palette, scores character.AbilityScores, remaining int) string {
	var b strings.Builder
	for i, a := range character.Attributes {
		if i > 0 {
			b.WriteString("\n")
		}
		v := scores.Get(a)
		b.WriteString(fmt.Sprintf("  %s %s (%s)",
			p.paintf(roleLabel, "%-4s", a.Abbrev()),
			p.paintf(roleValue, "%2d", v),
			character.FormatModifier(character.Modifier(v))))
	}
	if remaining >= 0 {
		r := roleGood
		if remaining == 0 {
			r = roleMuted
		}
		b.WriteString("\n  " + p.paintf(r, "Points remaining: %d/%d", remaining, character.PointBuyTotal))
	}
	return b.String()
}

// renderSheet formats the full character sheet.
func renderSheet(p palette, rules *ruleset.Ruleset, c *character.Character, remaining int) string {
	var b strings.Builder
	b.WriteString(p.paint(roleTitle, c.Name))
	b.WriteString(p.paintf(roleText, "  Level %d %s %s", c.Level, rules.RaceName(c.Race), rules.ClassName(c.Class)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  HP %s  Mana %s  AC %s  Init %s  Gold %s  XP %s\n",
		p.paintf(roleGood, "%d/%d", c.HP, c.MaxHP),
		p.paintf(rolePlayer, "%d/%d", c.Mana, c.MaxMana),
		p.paintf(roleValue, "%d", c.ArmorClass()),
		p.paint(roleValue, character.FormatModifier(c.Initiative())),
		p.paintf(roleValue, "%d", c.Gold),
		p.paintf(roleValue, "%d", c.XP)))
	b.WriteString(renderAttributes(p, c.Attributes, remaining))
	b.WriteString("\n" + p.paint(roleLabel, "Skills: "))
	if len(c.Skills) == 0 {
		b.WriteString(p.paint(roleMuted, "none"))
	} else {
		names := make([]string, 0, len(c.Skills))
		for _, id := range c.Skills {
			if s, ok := rules.Skill(id); ok {
				names = append(names, s.Name)
			}
		}
		b.WriteString(strings.Join(names, ", "))
	}
	a := c.Appearance
	b.WriteString("\n" + p.paint(roleLabel, "Appearance: "))
	b.WriteString(fmt.Sprintf("%s, %d years, %d cm, %d kg", a.Gender, a.Age, a.Height, a.Weight))
	if a.Description != "" {
		b.WriteString("\n  " + a.Description)
	}
	if c.Background != "" {
		b.WriteString("\n" + p.paint(roleLabel, "Background: ") + c.Background)
	}
	b.WriteString("\n" + renderInventory(p, c))
	return b.String()
}

// renderInventory lists items with 1-based indexes and the carried weight
// against the character's carry capacity.
func renderInventory(p palette, c *character.Character) string {
	var b strings.Builder
	inv := c.Inventory
	weight := p.paintf(roleValue, "%s/%s", humanize.Ftoa(inv.Weight()), humanize.Ftoa(c.CarryCapacity()))
	if c.OverCapacity() {
		weight = p.paintf(roleBad, "%s/%s (overloaded)", humanize.Ftoa(inv.Weight()), humanize.Ftoa(c.CarryCapacity()))
	}
	b.WriteString(p.paint(roleLabel, "Inventory ") + weight)
	if len(inv) == 0 {
		b.WriteString("\n  " + p.paint(roleMuted, "empty"))
	}
	for i, it := range inv {
		b.WriteString(fmt.Sprintf("\n  %2d. %s x%d %s %s",
			i+1, it.Name, it.Quantity,
			p.paintf(roleMuted, "(%s)", it.Type),
			p.paintf(roleMuted, "%s wt", humanize.Ftoa(it.TotalWeight()))))
	}
	return b.String()
}

// renderRoster lists saved characters with 1-based indexes.
func renderRoster(p palette, rules *ruleset.Ruleset, chars []*character.Character, now time.Time) string {
	if len(chars) == 0 {
		return p.paint(roleMuted, "No saved characters.")
	}
	var b strings.Builder
	b.WriteString(p.paintf(roleTitle, "Saved characters (%d)", len(chars)))
	for i, c := range chars {
		b.WriteString(fmt.Sprintf("\n  %2d. %s  Level %d %s %s  %s",
			i+1, p.paint(rolePlayer, c.Name), c.Level,
			rules.RaceName(c.Race), rules.ClassName(c.Class),
			p.paint(roleMuted, "saved "+humanize.RelTime(c.LastModified, now, "ago", "from now"))))
	}
	return b.String()
}

// renderLocation describes where the character stands.
func renderLocation(p palette, loc ruleset.Location, pos session.Position) string {
	return fmt.Sprintf("%s %s\n%s",
		p.paint(roleTitle, loc.Name),
		p.paintf(roleMuted, "(%d,%d %s)", pos.X, pos.Y, session.TerrainAt(pos)),
		p.paint(roleText, loc.Description))
}

var terrainGlyph = map[session.Terrain]string{
	session.Grass:    ".",
	session.Forest:   "T",
	session.Mountain: "^",
}

// renderMap draws the grid with the character as '@'.
func renderMap(p palette, pos session.Position) string {
	var b strings.Builder
	for y := 0; y < session.MapSize; y++ {
		if y > 0 {
			b.WriteString("\n")
		}
		b.WriteString(" ")
		for x := 0; x < session.MapSize; x++ {
			cell := session.Position{X: x, Y: y}
			b.WriteString(" ")
			if cell == pos {
				b.WriteString(p.paint(rolePlayer, "@"))
				continue
			}
			glyph := terrainGlyph[session.TerrainAt(cell)]
			switch session.TerrainAt(cell) {
			case session.Grass:
				b.WriteString(p.paint(roleGood, glyph))
			case session.Forest:
				b.WriteString(p.paint(roleLabel, glyph))
			default:
				b.WriteString(p.paint(roleMuted, glyph))
			}
		}
	}
	return b.String()
}

// renderLog lists the last n entries, oldest first.
func renderLog(p palette, title string, entries []session.LogEntry, n int) string {
	if len(entries) == 0 {
		return p.paintf(roleMuted, "%s is empty.", title)
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	var b strings.Builder
	b.WriteString(p.paint(roleTitle, title))
	for _, e := range entries {
		r := roleText
		switch e.Type {
		case session.LogCombat, session.CombatStart, session.CombatEnd, session.CombatEncounter:
			r = roleCombat
		case session.LogSystem:
			r = roleMuted
		case session.LogLoot:
			r = roleGood
		}
		b.WriteString(fmt.Sprintf("\n  %s %s",
			p.paint(roleMuted, e.Time.Format("15:04:05")),
			p.paint(r, e.Message)))
	}
	return b.String()
}

// renderNotes lists notes, newest first.
func renderNotes(p palette, notes []session.Note) string {
	if len(notes) == 0 {
		return p.paint(roleMuted, "No notes yet.")
	}
	var b strings.Builder
	b.WriteString(p.paint(roleTitle, "Notes"))
	for _, n := range notes {
		b.WriteString(fmt.Sprintf("\n  %s %s", p.paint(roleMuted, n.Timestamp.Format("15:04")), n.Content))
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// renderSettings lists the preferences.
func renderSettings(p palette, s session.Settings) string {
	var b strings.Builder
	b.WriteString(p.paint(roleTitle, "Settings"))
	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("\n  %s %s", p.paintf(roleLabel, "%-11s", label), p.paint(roleValue, value)))
	}
	row("darkmode", onOff(s.DarkMode))
	row("animations", onOff(s.Animations))
	row("sounds", onOff(s.Sounds))
	row("difficulty", s.Difficulty)
	if s.AutoSave == 0 {
		row("autosave", "off")
	} else {
		row("autosave", fmt.Sprintf("every %d min", s.AutoSave))
	}
	return b.String()
}

// renderHelp lists every command by category.
func renderHelp(p palette, reg *command.Registry) string {
	var b strings.Builder
	b.WriteString(p.paint(roleTitle, "Commands"))
	byCat := reg.CommandsByCategory()
	for _, cat := range command.Categories() {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString("\n" + p.paint(roleLabel, strings.ToUpper(cat[:1])+cat[1:]))
		for _, c := range cmds {
			b.WriteString(fmt.Sprintf("\n  %s %s", p.paintf(roleValue, "%-12s", c.Name), c.Help))
		}
	}
	b.WriteString("\n" + p.paint(roleMuted, "Type help <command> for usage."))
	return b.String()
}

// renderCommandHelp shows the usage of one command.
func renderCommandHelp(p palette, c *command.Command) string {
	var b strings.Builder
	usage := c.Name
	if c.Usage != "" {
		usage += " " + c.Usage
	}
	b.WriteString(p.paint(roleValue, usage))
	b.WriteString("\n  " + c.Help)
	if len(c.Aliases) > 0 {
		b.WriteString("\n  " + p.paint(roleMuted, "aliases: "+strings.Join(c.Aliases, ", ")))
	}
	return b.String()
}

// renderSkillCheck formats a skill check outcome.
func renderSkillCheck(p palette, r session.SkillCheckResult) string {
	return fmt.Sprintf("%s check %s: %s",
		p.paint(roleLabel, r.Skill.Name),
		p.paint(roleMuted, character.FormatModifier(r.Modifier)),
		renderRoll(p, r.Roll))
}

// renderAct formats a combat action outcome.
func renderAct(p palette, r session.ActResult, state session.State) string {
	var b strings.Builder
	b.WriteString(p.paint(roleCombat, r.Message))
	if r.Roll != nil {
		b.WriteString("\n  " + renderRoll(p, *r.Roll))
	}
	if state == session.StateCombat {
		b.WriteString("\n  " + p.paintf(roleMuted, "Turn %d", r.Turn))
	} else {
		b.WriteString("\n  " + p.paint(roleMuted, "Combat ended."))
	}
	return b.String()
}

// renderPrompt shows the active character and mode.
func renderPrompt(p palette, name string, state session.State) string {
	switch state {
	case session.StateCombat:
		return p.paintf(roleCombat, "[%s:combat]> ", name)
	case session.StateExploring:
		return p.paintf(rolePlayer, "[%s]> ", name)
	default:
		return p.paint(rolePlayer, "> ")
	}
}
