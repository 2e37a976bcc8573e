package gameplay

import (
	"github.com/sirupsen/logrus"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/state"
)

// ResolveCasualties sends every agent standing in fire back to a random
// exterior cell. A victim being carried is lost.
func ResolveCasualties(g *state.Game) {
	for _, a := range g.Agents {
		if !g.Grid().At(a.Pos).OnFire() {
			continue
		}
		fields := logrus.Fields{"agent": a.ID, "cell": a.Pos}
		burnedAt := a.Pos

		g.AgentCasualties++
		if a.Carrying() {
			a.Carry = entities.NotCarrying
			g.Lost++
			a.ClearTarget()
			logMessage(g, fields, "Agent %d was caught in fire at %v and lost a victim", a.ID, burnedAt)
		} else {
			logMessage(g, fields, "Agent %d was caught in fire at %v", a.ID, burnedAt)
		}
		g.MoveAgent(a, g.RandomExterior())
	}
}

// BurnPOIs resolves every active point of interest on a burning cell. Victims
// count as lost; false alarms are simply revealed. Agents heading to a burned
// point are released.
func BurnPOIs(g *state.Game) {
	for _, p := range append([]world.Position{}, g.POIs...) {
		cell := g.Grid().At(p)
		if !cell.OnFire() {
			continue
		}
		fields := logrus.Fields{"cell": p, "kind": cell.POI}
		if cell.POI == world.POIVictim {
			g.Lost++
			logMessage(g, fields, "A victim was lost to fire at %v", p)
		} else {
			logMessage(g, fields, "Fire revealed a false alarm at %v", p)
		}
		cell.POI = world.POINone
		g.RemovePOI(p)

		for _, a := range g.Agents {
			if a.TargetKind == entities.TargetPOI && a.Targets(p) {
				a.ClearTarget()
			}
		}
	}
}
