// Package state holds everything a single rescue run mutates.
package state

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/hazard"
	"rescuesim/pkg/game/structure"
)

// Result is the run-level state
type Result int

const (
	Running Result = iota
	Victory
	Defeat
)

func (r Result) String() string {
	switch r {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "running"
	}
}

// MarshalText encodes the result by name
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a result name
func (r *Result) UnmarshalText(b []byte) error {
	switch string(b) {
	case "victory":
		*r = Victory
	case "defeat":
		*r = Defeat
	default:
		*r = Running
	}
	return nil
}

// DefeatReason explains a defeat
type DefeatReason string

const (
	ReasonNone       DefeatReason = ""
	ReasonStructural DefeatReason = "structural_damage"
	ReasonCasualties DefeatReason = "casualties"
	ReasonTurnLimit  DefeatReason = "turn_limit"
)

// Outcome is the verdict of a run
type Outcome struct {
	Result Result       `json:"result"`
	Reason DefeatReason `json:"reason,omitempty"`
	Saved  int          `json:"saved"`
	Lost   int          `json:"lost"`
	Turns  int          `json:"turns"`
}

// Ended returns true once the run has a verdict
func (o Outcome) Ended() bool {
	return o.Result != Running
}

// Game represents the state of one run
type Game struct {
	Config config.Config

	Structure *structure.Structure
	Hazards   *hazard.Propagator

	Agents []*entities.Agent
	Order  []int // activation order, indexes into Agents

	POIs  []world.Position // active points of interest, in discovery order
	Fires []world.Position
	Smoke []world.Position

	Saved           int
	Lost            int
	AgentCasualties int

	Turn    int
	Outcome Outcome

	Messages []string

	Rng *rand.Rand
	Log logrus.FieldLogger
}

// NewGame creates a run over grid. Agents start on random exterior cells and
// the derived sets are read from the grid.
func NewGame(cfg config.Config, grid *world.Grid, rng *rand.Rand, log logrus.FieldLogger) *Game {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := structure.New(grid, cfg.StructuralDamage, log)
	g := &Game{
		Config:    cfg,
		Structure: s,
		Hazards:   hazard.NewPropagator(s, rng, log),
		Messages:  make([]string, 0),
		Rng:       rng,
		Log:       log,
	}

	for i := 0; i < cfg.Agents; i++ {
		g.Agents = append(g.Agents, entities.NewAgent(i, g.RandomExterior(), cfg.ActionPoints.Initial))
		g.Order = append(g.Order, i)
	}

	grid.ForEachCell(func(_, _ int, cell *world.Cell) {
		if cell.HasPOI() {
			g.POIs = append(g.POIs, cell.Pos())
		}
	})
	g.RefreshHazards()
	g.RefreshOccupancy()
	return g
}

// Grid returns the structure grid
func (g *Game) Grid() *world.Grid {
	return g.Structure.Grid
}

// Ended returns true once the run has a verdict
func (g *Game) Ended() bool {
	return g.Outcome.Ended()
}

// RandomExterior returns a uniformly chosen exterior cell
func (g *Game) RandomExterior() world.Position {
	ext := g.Grid().Exterior()
	return ext[g.Rng.Intn(len(ext))]
}

// ShuffleOrder re-randomizes the activation order
func (g *Game) ShuffleOrder() {
	g.Rng.Shuffle(len(g.Order), func(i, j int) {
		g.Order[i], g.Order[j] = g.Order[j], g.Order[i]
	})
}

// ActivationOrder returns the agents in the current activation order
func (g *Game) ActivationOrder() []*entities.Agent {
	agents := make([]*entities.Agent, len(g.Order))
	for i, idx := range g.Order {
		agents[i] = g.Agents[idx]
	}
	return agents
}

// RefreshHazards recomputes the fire and smoke sets from the grid
func (g *Game) RefreshHazards() {
	g.Fires = hazard.Cells(g.Grid(), world.HazardFire)
	g.Smoke = hazard.Cells(g.Grid(), world.HazardSmoke)
}

// RefreshOccupancy recounts the agents on every cell
func (g *Game) RefreshOccupancy() {
	g.Grid().ForEachCell(func(_, _ int, cell *world.Cell) {
		cell.Occupants = 0
	})
	for _, a := range g.Agents {
		g.Grid().At(a.Pos).Occupants++
	}
}

// MoveAgent places a on p and keeps occupancy in step
func (g *Game) MoveAgent(a *entities.Agent, p world.Position) {
	if c := g.Grid().At(a.Pos); c != nil && c.Occupants > 0 {
		c.Occupants--
	}
	a.Pos = p
	g.Grid().At(p).Occupants++
}

// RemovePOI drops p from the active points of interest
func (g *Game) RemovePOI(p world.Position) bool {
	return removePosition(&g.POIs, p)
}

// RemoveFire drops p from the fire set
func (g *Game) RemoveFire(p world.Position) bool {
	return removePosition(&g.Fires, p)
}

func removePosition(list *[]world.Position, p world.Position) bool {
	for i, q := range *list {
		if q == p {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// AddMessage adds a message to the game's event log
func (g *Game) AddMessage(msg string) {
	const maxMessages = 5
	g.Messages = append(g.Messages, msg)

	// Keep only the last maxMessages
	if len(g.Messages) > maxMessages {
		g.Messages = g.Messages[len(g.Messages)-maxMessages:]
	}
}

// ClearMessages clears all messages
func (g *Game) ClearMessages() {
	g.Messages = make([]string, 0)
}
