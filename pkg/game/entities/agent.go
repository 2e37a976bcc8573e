// Package entities contains the actors of a rescue run and the display
// information shared by the renderers.
package entities

import (
	"rescuesim/pkg/engine/world"
)

// Carry multipliers. The value is added to the cost of every step.
const (
	NotCarrying    = 1
	CarryingVictim = 2
)

// TargetKind records why an agent is heading to its target
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPOI
	TargetExit
	TargetFire
)

func (k TargetKind) String() string {
	switch k {
	case TargetPOI:
		return "poi"
	case TargetExit:
		return "exit"
	case TargetFire:
		return "fire"
	default:
		return "none"
	}
}

// Agent is a rescuer. Targets are held by position only.
type Agent struct {
	ID         int
	Pos        world.Position
	Target     *world.Position
	TargetKind TargetKind
	AP         int
	Carry      int
	Path       []world.Position
}

// NewAgent creates an idle agent at pos with the given action points
func NewAgent(id int, pos world.Position, ap int) *Agent {
	return &Agent{
		ID:    id,
		Pos:   pos,
		AP:    ap,
		Carry: NotCarrying,
	}
}

// Idle returns true if the agent has no target
func (a *Agent) Idle() bool {
	return a.Target == nil
}

// Carrying returns true while the agent transports a victim
func (a *Agent) Carrying() bool {
	return a.Carry == CarryingVictim
}

// SetTarget points the agent at p
func (a *Agent) SetTarget(p world.Position, kind TargetKind) {
	a.Target = &p
	a.TargetKind = kind
}

// ClearTarget makes the agent idle and drops its cached path
func (a *Agent) ClearTarget() {
	a.Target = nil
	a.TargetKind = TargetNone
	a.Path = nil
}

// Targets returns true if the agent is heading to p
func (a *Agent) Targets(p world.Position) bool {
	return a.Target != nil && *a.Target == p
}

// AtTarget returns true if the agent stands on its target
func (a *Agent) AtTarget() bool {
	return a.Target != nil && *a.Target == a.Pos
}

// Replenish adds gain action points, capped at limit
func (a *Agent) Replenish(gain, limit int) {
	a.AP = min(a.AP+gain, limit)
}
