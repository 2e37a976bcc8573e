package renderer

import (
	"rescuesim/pkg/game/state"
)

// TextStyle represents different text styling options
type TextStyle int

const (
	StyleNormal TextStyle = iota
	StyleCell
	StyleOutside
	StyleWall
	StyleWallDamaged
	StyleDoor
	StyleExit
	StyleSmoke
	StyleFire
	StyleVictim
	StyleFalseAlarm
	StyleAgent
	StyleAgentCarrying
	StyleSubtle
	StyleGood
	StyleDenied
)

// Renderer defines the interface for run display backends
type Renderer interface {
	// Init initializes the renderer (colors, output detection)
	Init()

	// Clear clears the display
	Clear()

	// RenderFrame renders the board, counters, agents and messages for one turn
	RenderFrame(g *state.Game, s state.Snapshot)

	// StyleText applies a style to text and returns the styled string
	StyleText(text string, style TextStyle) string

	// FormatText formats a message with the renderer's markup system
	FormatText(msg string, args ...any) string
}

// Current holds the active renderer instance
var Current Renderer

// SetRenderer sets the active renderer
func SetRenderer(r Renderer) {
	Current = r
}

// Init initializes the current renderer
func Init() {
	if Current != nil {
		Current.Init()
	}
}

// Clear clears the display using the current renderer
func Clear() {
	if Current != nil {
		Current.Clear()
	}
}

// RenderFrame renders a complete frame
func RenderFrame(g *state.Game, s state.Snapshot) {
	if Current != nil {
		Current.RenderFrame(g, s)
	}
}

// StyleText applies a style to text
func StyleText(text string, style TextStyle) string {
	if Current != nil {
		return Current.StyleText(text, style)
	}
	return text
}

// FormatText formats a message with markup
func FormatText(msg string, args ...any) string {
	if Current != nil {
		return Current.FormatText(msg, args...)
	}
	return msg
}
