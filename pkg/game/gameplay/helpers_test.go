package gameplay

import (
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/state"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// walledGrid creates a grid whose interior is sealed from the exterior ring
// by intact walls. All interior edges are open.
func walledGrid(t *testing.T, rows, cols int) *world.Grid {
	t.Helper()
	g := world.NewGrid(rows, cols)
	for _, p := range g.Interior() {
		for _, dir := range world.AllDirections() {
			if n := g.At(p.Step(dir)); n != nil && n.Outside {
				g.SetEdge(p, dir, world.WallEdge())
			}
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	return g
}

// makeGame creates a game over grid with the given number of agents. The rng
// is seeded from the config, so tweak can pick the seed. Callers position
// agents with place.
func makeGame(t *testing.T, grid *world.Grid, agents int, tweak func(*config.Config)) *state.Game {
	t.Helper()
	cfg := config.Default()
	cfg.Agents = agents
	cfg.Seed = 7
	if tweak != nil {
		tweak(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fixture config invalid: %v", err)
	}
	return state.NewGame(cfg, grid, rand.New(rand.NewSource(cfg.Seed)), quietLogger())
}

func place(g *state.Game, a *entities.Agent, p world.Position) {
	g.MoveAgent(a, p)
	g.RefreshOccupancy()
}
