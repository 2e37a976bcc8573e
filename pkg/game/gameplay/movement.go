// Package gameplay provides the turn logic of a rescue run: agent movement,
// obstacle clearing, target assignment and the turn sequence.
package gameplay

import (
	"fmt"

	"github.com/leonelquinteros/gotext"
	"github.com/sirupsen/logrus"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/pathing"
	"rescuesim/pkg/game/state"
)

// Execution costs, paid in action points
const (
	DoorCost = 1
	WallCost = 4
	FireCost = 1
)

// logMessage records an event in the game log, translated, and in the debug
// log in English. Untranslated formats are used as they are.
func logMessage(g *state.Game, fields logrus.Fields, format string, args ...any) {
	g.AddMessage(gotext.Get(format, args...))
	g.Log.WithFields(fields).WithField("turn", g.Turn).Debug(fmt.Sprintf(format, args...))
}

// ExecutionCost returns what an agent actually pays to step from one cell
// into an adjacent one, clearing whatever is in the way. Positions outside
// the grid or not adjacent cost 0.
func ExecutionCost(grid *world.Grid, from, to world.Position, carry int) int {
	edge, _, ok := grid.EdgeBetween(from, to)
	if !ok {
		return 0
	}
	cost := 0
	switch edge.Kind {
	case world.EdgeDoor:
		cost += DoorCost
	case world.EdgeWall:
		cost += WallCost
	}
	if grid.At(to).OnFire() {
		cost += FireCost
	}
	return cost + carry
}

// ClearPath removes the door or wall between from and to and puts out any fire
// on to. It returns the execution cost of the step.
func ClearPath(g *state.Game, from, to world.Position, carry int) int {
	cost := ExecutionCost(g.Grid(), from, to, carry)
	edge, dir, ok := g.Grid().EdgeBetween(from, to)
	if !ok {
		return cost
	}
	switch edge.Kind {
	case world.EdgeDoor:
		g.Structure.RemoveDoor(from, dir)
	case world.EdgeWall:
		g.Structure.RemoveWall(from, to)
	}
	if cell := g.Grid().At(to); cell.OnFire() {
		cell.Hazard = world.HazardNone
		g.RemoveFire(to)
	}
	return cost
}

// TakeTurn runs one agent's turn: re-plan toward the target, advance while
// the next step is affordable, resolve arrival and replenish action points.
func TakeTurn(g *state.Game, a *entities.Agent) {
	grid := g.Grid()
	if a.Target != nil {
		a.Path, _ = pathing.Plan(grid, a.Pos, *a.Target, a.Carry)

		for a.AP >= 0 && !a.AtTarget() && len(a.Path) > 0 {
			next := a.Path[0]
			cost := ExecutionCost(grid, a.Pos, next, a.Carry)
			if a.AP < cost {
				break
			}
			ClearPath(g, a.Pos, next, a.Carry)
			a.AP -= cost
			g.MoveAgent(a, next)
			a.Path = a.Path[1:]
		}
	}

	if a.AtTarget() {
		resolveArrival(g, a)
	}

	ap := g.Config.ActionPoints
	a.Replenish(ap.PerTurn, ap.Max)
}

func resolveArrival(g *state.Game, a *entities.Agent) {
	cell := g.Grid().At(a.Pos)
	fields := logrus.Fields{"agent": a.ID, "cell": a.Pos}

	switch {
	case cell.POI == world.POIVictim:
		cell.POI = world.POINone
		g.RemovePOI(a.Pos)
		a.Carry = entities.CarryingVictim
		exit, _, ok := pathing.Nearest(g.Grid(), a.Pos, g.Grid().Exterior(), a.Carry)
		if !ok {
			a.ClearTarget()
			return
		}
		a.SetTarget(exit, entities.TargetExit)
		a.Path, _ = pathing.Plan(g.Grid(), a.Pos, exit, a.Carry)
		logMessage(g, fields, "Agent %d picked up a victim at %v", a.ID, a.Pos)

	case cell.Outside && a.Carrying():
		a.Carry = entities.NotCarrying
		g.Saved++
		a.ClearTarget()
		logMessage(g, fields, "Agent %d brought a victim out at %v", a.ID, a.Pos)

	case cell.POI == world.POIFalseAlarm:
		cell.POI = world.POINone
		g.RemovePOI(a.Pos)
		a.ClearTarget()
		logMessage(g, fields, "Agent %d found a false alarm at %v", a.ID, a.Pos)

	default:
		// Fire targets were put out on entry. Anything else left here has
		// nothing to do.
		a.ClearTarget()
	}
}
