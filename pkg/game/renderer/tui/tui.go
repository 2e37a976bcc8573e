package tui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"rescuesim/pkg/engine/terminal"
	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/renderer"
	"rescuesim/pkg/game/state"
)

// Edge glyphs. Vertical glyphs separate columns, horizontal ones rows.
const (
	IconCorner       = "·"
	IconOpenV        = " "
	IconOpenH        = " "
	IconWallV        = "┃"
	IconWallH        = "━"
	IconWallDamagedV = "│"
	IconWallDamagedH = "─"
	IconDoorV        = "▯"
	IconDoorH        = "▭"
	IconOutside      = " "
	IconEntrance     = "○"
)

// Space taken around the board, used to decide if the terminal is too small
const (
	statusWidth = 40
	frameHeight = 12
)

// dynamicGet looks up translation keys taken from markup at runtime. A
// function variable keeps vet from treating the key as a format string.
var dynamicGet = gotext.Get

// TUIRenderer implements renderer.Renderer for terminal output
type TUIRenderer struct {
	out   io.Writer
	plain bool

	styles map[renderer.TextStyle]color.Style

	regexpStringFunctions *regexp.Regexp
}

// New creates a new TUI renderer writing to out
func New(out io.Writer) *TUIRenderer {
	return &TUIRenderer{out: out}
}

// Init initializes the styles. Colour is disabled when the output is not a
// terminal.
func (t *TUIRenderer) Init() {
	f, ok := t.out.(*os.File)
	t.plain = !ok || !terminal.IsTerminal(f)

	t.styles = map[renderer.TextStyle]color.Style{
		renderer.StyleCell:          {color.FgGray},
		renderer.StyleOutside:       {color.FgGray},
		renderer.StyleWall:          {color.FgWhite, color.OpBold},
		renderer.StyleWallDamaged:   {color.FgYellow},
		renderer.StyleDoor:          {color.FgYellow, color.OpBold},
		renderer.StyleExit:          {color.FgGreen},
		renderer.StyleSmoke:         {color.FgGray, color.OpBold},
		renderer.StyleFire:          {color.FgRed, color.OpBold},
		renderer.StyleVictim:        {color.FgMagenta, color.OpBold},
		renderer.StyleFalseAlarm:    {color.FgMagenta},
		renderer.StyleAgent:         {color.FgCyan, color.OpBold},
		renderer.StyleAgentCarrying: {color.FgGreen, color.BgBlack, color.OpBold},
		renderer.StyleSubtle:        {color.FgGray},
		renderer.StyleGood:          {color.FgGreen, color.OpBold},
		renderer.StyleDenied:        {color.FgRed, color.OpBold},
	}

	t.regexpStringFunctions = regexp.MustCompile(`([A-Z_]+){([^{}]*)}`)
}

// Clear clears the terminal screen
func (t *TUIRenderer) Clear() {
	if t.plain {
		return
	}
	c := exec.Command("clear")
	c.Stdout = t.out
	c.Run()
}

// StyleText applies a style to text
func (t *TUIRenderer) StyleText(text string, style renderer.TextStyle) string {
	if t.plain {
		return text
	}
	if s, ok := t.styles[style]; ok {
		return s.Sprint(text)
	}
	return text
}

// FormatText formats a message with the markup system. FIRE{..}, SMOKE{..},
// VICTIM{..}, AGENT{..}, GOOD{..} and BAD{..} wrap their operand in the
// matching style. GT{..} translates its operand.
func (t *TUIRenderer) FormatText(msg string, args ...any) string {
	ret := fmt.Sprintf(msg, args...)

	for _, match := range t.regexpStringFunctions.FindAllStringSubmatch(ret, -1) {
		function := match[1]
		operand := match[2]

		var val string
		switch function {
		case "GT":
			val = dynamicGet(operand)
		case "FIRE":
			val = t.StyleText(operand, renderer.StyleFire)
		case "SMOKE":
			val = t.StyleText(operand, renderer.StyleSmoke)
		case "VICTIM":
			val = t.StyleText(operand, renderer.StyleVictim)
		case "AGENT":
			val = t.StyleText(operand, renderer.StyleAgent)
		case "GOOD":
			val = t.StyleText(operand, renderer.StyleGood)
		case "BAD":
			val = t.StyleText(operand, renderer.StyleDenied)
		default:
			continue
		}

		ret = strings.Replace(ret, match[0], val, -1)
	}

	return ret
}

// RenderFrame writes a complete frame
func (t *TUIRenderer) RenderFrame(g *state.Game, s state.Snapshot) {
	fmt.Fprint(t.out, t.Frame(g, s))
}

// Frame renders one turn: counters, the board, agent status and messages
func (t *TUIRenderer) Frame(g *state.Game, s state.Snapshot) string {
	var b strings.Builder

	b.WriteString(t.statusBar(g, s))
	b.WriteString("\n\n")

	grid := g.Grid()
	if !t.plain && t.tooSmall(grid, len(s.Agents)) {
		b.WriteString(t.StyleText(gotext.Get("(terminal smaller than the board)")+"\n", renderer.StyleSubtle))
	}
	b.WriteString(t.board(grid, s))
	b.WriteString("\n")

	for _, a := range s.Agents {
		b.WriteString(t.agentLine(a))
		b.WriteString("\n")
	}

	if len(g.Messages) > 0 {
		b.WriteString("\n")
		for _, msg := range g.Messages {
			b.WriteString("- " + t.FormatText("%s", msg) + "\n")
		}
	}

	if s.Outcome.Ended() {
		b.WriteString("\n")
		b.WriteString(t.outcomeLine(s.Outcome))
		b.WriteString("\n")
	}
	return b.String()
}

// tooSmall reports whether the terminal cannot show a whole frame
func (t *TUIRenderer) tooSmall(grid *world.Grid, agents int) bool {
	return terminal.GetWidth() < 2*grid.Cols()+1+statusWidth ||
		terminal.GetHeight() < 2*grid.Rows()+agents+frameHeight
}

func (t *TUIRenderer) statusBar(g *state.Game, s state.Snapshot) string {
	cfg := g.Config
	damage := fmt.Sprintf("%d", s.DamageLeft)
	if s.DamageLeft <= 0 {
		damage = fmt.Sprintf("BAD{%d}", s.DamageLeft)
	}
	return t.FormatText("%s", gotext.Get("Turn %d   saved GOOD{%d}/%d   lost BAD{%d}/%d   agents down %d   structure %s   FIRE{fire} %d   SMOKE{smoke} %d",
		s.Turn, s.Saved, cfg.SavedLivesGoal, s.Lost, cfg.LostLivesLimit, s.AgentCasualties, damage, len(s.Fire), len(s.Smoke)))
}

func (t *TUIRenderer) outcomeLine(o state.Outcome) string {
	if o.Result == state.Victory {
		return t.FormatText("%s", gotext.Get("GOOD{Victory} after %d turns: %d saved, %d lost", o.Turns, o.Saved, o.Lost))
	}
	return t.FormatText("%s", gotext.Get("BAD{Defeat} (%s) after %d turns: %d saved, %d lost", o.Reason, o.Turns, o.Saved, o.Lost))
}

func (t *TUIRenderer) agentLine(a state.AgentView) string {
	label := fmt.Sprintf("A%d", a.ID)
	if a.Carry == entities.CarryingVictim {
		label = t.StyleText(label, renderer.StyleAgentCarrying)
	} else {
		label = t.StyleText(label, renderer.StyleAgent)
	}
	line := fmt.Sprintf("%s %v AP %d", label, a.Pos, a.AP)
	if a.Carry == entities.CarryingVictim {
		line += " " + gotext.Get("carrying")
	}
	if a.Target != nil {
		line += fmt.Sprintf(" -> %s %v", a.TargetKind, *a.Target)
	}
	return line
}

// board draws cells interleaved with the edges between them
func (t *TUIRenderer) board(grid *world.Grid, s state.Snapshot) string {
	agents := map[world.Position]state.AgentView{}
	for _, a := range s.Agents {
		if prev, ok := agents[a.Pos]; !ok || a.ID < prev.ID {
			agents[a.Pos] = a
		}
	}

	var b strings.Builder
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			cell := grid.GetCell(row, col)
			if col == 0 {
				b.WriteString(IconOpenV)
			}
			b.WriteString(t.cellGlyph(cell, agents))
			if col < grid.Cols()-1 {
				b.WriteString(t.edgeGlyph(cell.Edge(world.East), true))
			}
		}
		b.WriteString("\n")

		if row == grid.Rows()-1 {
			break
		}
		for col := 0; col < grid.Cols(); col++ {
			b.WriteString(t.StyleText(IconCorner, renderer.StyleSubtle))
			b.WriteString(t.edgeGlyph(grid.GetCell(row, col).Edge(world.South), false))
		}
		b.WriteString(t.StyleText(IconCorner, renderer.StyleSubtle))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *TUIRenderer) cellGlyph(c *world.Cell, agents map[world.Position]state.AgentView) string {
	if a, ok := agents[c.Pos()]; ok {
		glyph := fmt.Sprintf("%d", a.ID%10)
		if c.Occupants > 1 {
			glyph = "*"
		}
		if a.Carry == entities.CarryingVictim {
			return t.StyleText(glyph, renderer.StyleAgentCarrying)
		}
		return t.StyleText(glyph, renderer.StyleAgent)
	}
	if c.Outside {
		return t.StyleText(IconOutside, renderer.StyleOutside)
	}
	switch {
	case c.POI == world.POIVictim:
		return t.StyleText(entities.GetPOIIcon(c.POI), renderer.StyleVictim)
	case c.POI == world.POIFalseAlarm:
		return t.StyleText(entities.GetPOIIcon(c.POI), renderer.StyleFalseAlarm)
	case c.Hazard == world.HazardFire:
		return t.StyleText(entities.GetHazardIcon(c.Hazard), renderer.StyleFire)
	case c.Hazard == world.HazardSmoke:
		return t.StyleText(entities.GetHazardIcon(c.Hazard), renderer.StyleSmoke)
	case c.Entrance:
		return t.StyleText(IconEntrance, renderer.StyleExit)
	}
	return t.StyleText(entities.GetHazardIcon(world.HazardNone), renderer.StyleCell)
}

func (t *TUIRenderer) edgeGlyph(e world.Edge, vertical bool) string {
	pick := func(v, h string) string {
		if vertical {
			return v
		}
		return h
	}
	switch {
	case e.IsDoor():
		return t.StyleText(pick(IconDoorV, IconDoorH), renderer.StyleDoor)
	case e.IsWall() && e.Health < world.InitialWallHealth:
		return t.StyleText(pick(IconWallDamagedV, IconWallDamagedH), renderer.StyleWallDamaged)
	case e.IsWall():
		return t.StyleText(pick(IconWallV, IconWallH), renderer.StyleWall)
	}
	return pick(IconOpenV, IconOpenH)
}

// Render returns an uncoloured frame for g
func Render(g *state.Game, s state.Snapshot) string {
	t := New(io.Discard)
	t.Init()
	return t.Frame(g, s)
}
