package state

import (
	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/structure"
)

// AgentView is the exported state of one agent
type AgentView struct {
	ID         int             `json:"agent_id"`
	Pos        world.Position  `json:"position"`
	Carry      int             `json:"carry_state"`
	Target     *world.Position `json:"target"`
	TargetKind string          `json:"target_kind"`
	AP         int             `json:"action_points"`
}

// POIView is an active point of interest with its revealed kind
type POIView struct {
	Pos  world.Position `json:"position"`
	Kind string         `json:"type"`
}

// Snapshot is a read-only copy of a run after a turn
type Snapshot struct {
	Turn            int                       `json:"step"`
	Agents          []AgentView               `json:"agents"`
	Fire            []world.Position          `json:"fire"`
	Smoke           []world.Position          `json:"smoke"`
	POIs            []POIView                 `json:"pois"`
	Saved           int                       `json:"saved_lives"`
	Lost            int                       `json:"lost_lives"`
	AgentCasualties int                       `json:"agent_casualties"`
	DamageLeft      int                       `json:"structural_damage_left"`
	DestroyedWalls  []structure.DestroyedWall `json:"destroyed_walls"`
	DestroyedDoors  []structure.DestroyedDoor `json:"destroyed_doors"`
	OpenDoors       [][2]world.Position       `json:"open_doors"`
	Outcome         Outcome                   `json:"outcome"`
}

// TakeSnapshot copies the current state. The structure's removal ledger is
// handed over to the snapshot and cleared.
func (g *Game) TakeSnapshot() Snapshot {
	ledger := g.Structure.TakeLedger()
	s := Snapshot{
		Turn:            g.Turn,
		Fire:            append([]world.Position{}, g.Fires...),
		Smoke:           append([]world.Position{}, g.Smoke...),
		Saved:           g.Saved,
		Lost:            g.Lost,
		AgentCasualties: g.AgentCasualties,
		DamageLeft:      g.Structure.DamageLeft,
		DestroyedWalls:  append([]structure.DestroyedWall{}, ledger.Walls...),
		DestroyedDoors:  append([]structure.DestroyedDoor{}, ledger.Doors...),
		OpenDoors:       g.Structure.OpenDoors(),
		Outcome:         g.Outcome,
	}
	for _, a := range g.Agents {
		s.Agents = append(s.Agents, viewAgent(a))
	}
	for _, p := range g.POIs {
		s.POIs = append(s.POIs, POIView{Pos: p, Kind: g.Grid().At(p).POI.String()})
	}
	return s
}

func viewAgent(a *entities.Agent) AgentView {
	v := AgentView{
		ID:         a.ID,
		Pos:        a.Pos,
		Carry:      a.Carry,
		TargetKind: a.TargetKind.String(),
		AP:         a.AP,
	}
	if a.Target != nil {
		t := *a.Target
		v.Target = &t
	}
	return v
}
