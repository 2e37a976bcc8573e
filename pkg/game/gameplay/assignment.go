package gameplay

import (
	"math"

	"github.com/zyedidia/generic/mapset"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/pathing"
	"rescuesim/pkg/game/state"
)

// SpawnPOIs tops the active points of interest up to the configured minimum.
// New points land on random interior cells free of POIs, smoke and fire, and
// are victims or false alarms with equal odds. If no cell is eligible nothing
// spawns and the next turn tries again.
func SpawnPOIs(g *state.Game) {
	for len(g.POIs) < g.Config.MinActivePOIs {
		var eligible []world.Position
		for _, p := range g.Grid().Interior() {
			c := g.Grid().At(p)
			if !c.HasPOI() && c.Hazard == world.HazardNone {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			g.Log.WithField("turn", g.Turn).Warn("no eligible cell for a new point of interest")
			return
		}

		p := eligible[g.Rng.Intn(len(eligible))]
		kind := world.POIFalseAlarm
		if g.Rng.Intn(2) == 1 {
			kind = world.POIVictim
		}
		g.Grid().At(p).POI = kind
		g.POIs = append(g.POIs, p)
		g.Log.WithField("turn", g.Turn).WithField("cell", p).Debug("point of interest spawned")
	}
}

func targeted(g *state.Game) mapset.Set[world.Position] {
	set := mapset.New[world.Position]()
	for _, a := range g.Agents {
		if a.Target != nil {
			set.Put(*a.Target)
		}
	}
	return set
}

// AssignPOIs gives every untargeted point of interest to the closest idle
// agent. Agents are considered in activation order and the first one at the
// minimum distance wins.
func AssignPOIs(g *state.Game) {
	taken := targeted(g)
	order := g.ActivationOrder()

	for _, p := range g.POIs {
		if taken.Has(p) {
			continue
		}
		var closest *entities.Agent
		best := math.Inf(1)
		for _, a := range order {
			if !a.Idle() {
				continue
			}
			if d := pathing.Distance(g.Grid(), a.Pos, p, a.Carry); d < best {
				best, closest = d, a
			}
		}
		if closest == nil {
			return
		}
		closest.SetTarget(p, entities.TargetPOI)
		taken.Put(p)
	}
}

// AssignFires sends each remaining idle agent to its nearest untargeted fire,
// one agent per fire. It only acts once the fire count exceeds the configured
// threshold.
func AssignFires(g *state.Game) {
	if len(g.Fires) <= g.Config.FireAssignmentThreshold {
		return
	}
	taken := targeted(g)
	var left []world.Position
	for _, p := range g.Fires {
		if !taken.Has(p) {
			left = append(left, p)
		}
	}

	for _, a := range g.ActivationOrder() {
		if len(left) == 0 {
			return
		}
		if !a.Idle() {
			continue
		}
		fire, _, ok := pathing.Nearest(g.Grid(), a.Pos, left, a.Carry)
		if !ok {
			return
		}
		a.SetTarget(fire, entities.TargetFire)
		for i, p := range left {
			if p == fire {
				left = append(left[:i], left[i+1:]...)
				break
			}
		}
	}
}
