package gameplay

import (
	"context"
	"errors"
	"testing"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/generator"
	"rescuesim/pkg/game/hazard"
	"rescuesim/pkg/game/layout"
	"rescuesim/pkg/game/state"
)

func TestCheckEnd_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		damageLeft int
		lost       int
		saved      int
		turn       int
		wantResult state.Result
		wantReason state.DefeatReason
	}{
		{"running", 24, 0, 0, 0, state.Running, state.ReasonNone},
		{"structural", 0, 0, 0, 0, state.Defeat, state.ReasonStructural},
		{"casualties", 10, 4, 0, 0, state.Defeat, state.ReasonCasualties},
		{"structural before casualties", -2, 4, 0, 0, state.Defeat, state.ReasonStructural},
		{"casualties before victory", 10, 4, 7, 0, state.Defeat, state.ReasonCasualties},
		{"victory", 10, 3, 7, 0, state.Victory, state.ReasonNone},
		{"turn limit", 10, 0, 0, 1000, state.Defeat, state.ReasonTurnLimit},
		{"victory before turn limit", 10, 0, 7, 1000, state.Victory, state.ReasonNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := makeGame(t, world.NewGrid(4, 4), 1, nil)
			g.Structure.DamageLeft = tt.damageLeft
			g.Lost = tt.lost
			g.Saved = tt.saved
			g.Turn = tt.turn

			out := CheckEnd(g)
			if out.Result != tt.wantResult || out.Reason != tt.wantReason {
				t.Errorf("CheckEnd = %v/%q, want %v/%q", out.Result, out.Reason, tt.wantResult, tt.wantReason)
			}
		})
	}
}

func TestBurnScenario_CasualtyThreshold(t *testing.T) {
	grid := world.NewGrid(5, 5)
	grid.At(world.Pos(2, 2)).POI = world.POIVictim
	grid.At(world.Pos(2, 2)).Hazard = world.HazardFire
	g := makeGame(t, grid, 1, func(c *config.Config) { c.MinActivePOIs = 0 })
	place(g, g.Agents[0], world.Pos(0, 0))
	g.Lost = 3

	if _, ended := Step(g); ended {
		t.Fatal("first Step ended the run")
	}
	if g.Lost != 4 {
		t.Fatalf("Lost = %d after burn, want 4", g.Lost)
	}

	out, ended := Step(g)
	if !ended || out.Result != state.Defeat || out.Reason != state.ReasonCasualties {
		t.Errorf("Step = %+v, %v, want defeat by casualties", out, ended)
	}
}

func TestBurnScenario_StructuralReportedFirst(t *testing.T) {
	grid := world.NewGrid(5, 5)
	grid.At(world.Pos(2, 2)).POI = world.POIVictim
	grid.At(world.Pos(2, 2)).Hazard = world.HazardFire
	g := makeGame(t, grid, 1, func(c *config.Config) { c.MinActivePOIs = 0 })
	place(g, g.Agents[0], world.Pos(0, 0))
	g.Lost = 3

	Step(g)
	g.Structure.DamageLeft = 0

	out, ended := Step(g)
	if !ended || out.Reason != state.ReasonStructural {
		t.Errorf("Step = %+v, %v, want defeat by structural collapse", out, ended)
	}
}

func TestStep_EndedRunIsInert(t *testing.T) {
	g := makeGame(t, world.NewGrid(4, 4), 1, nil)
	g.Structure.DamageLeft = 0
	Step(g)
	turn := g.Turn
	if _, ended := Step(g); !ended {
		t.Error("Step after the end returned ended = false")
	}
	if g.Turn != turn {
		t.Errorf("Turn advanced from %d to %d after the end", turn, g.Turn)
	}
}

func TestStep_SkipsHazardOnFirstTurn(t *testing.T) {
	grid := walledGrid(t, 3, 3)
	g := makeGame(t, grid, 1, func(c *config.Config) { c.MinActivePOIs = 0 })
	place(g, g.Agents[0], world.Pos(0, 0))

	Step(g)
	if grid.At(world.Pos(1, 1)).Hazard != world.HazardNone {
		t.Error("snowfall ran on turn 0")
	}
	Step(g)
	if grid.At(world.Pos(1, 1)).Hazard != world.HazardSmoke {
		t.Errorf("hazard after turn 1 = %v, want smoke", grid.At(world.Pos(1, 1)).Hazard)
	}
}

// boardGame builds the board from src and creates a six-agent game seeded
// with seed.
func boardGame(t *testing.T, src layout.Source, seed int64, tweak func(*config.Config)) *state.Game {
	t.Helper()
	l, err := src.Load()
	if err != nil {
		t.Fatalf("%s: %v", src.Name(), err)
	}
	grid, err := l.Build()
	if err != nil {
		t.Fatalf("%s: %v", src.Name(), err)
	}
	return makeGame(t, grid, 6, func(c *config.Config) {
		c.Seed = seed
		if tweak != nil {
			tweak(c)
		}
	})
}

func TestStep_MessagesCoverOneTurn(t *testing.T) {
	grid := world.NewGrid(5, 5)
	grid.At(world.Pos(2, 2)).POI = world.POIVictim
	g := makeGame(t, grid, 1, func(c *config.Config) { c.MinActivePOIs = 1 })
	place(g, g.Agents[0], world.Pos(2, 1))
	g.AddMessage("left over from an earlier turn")

	Step(g)

	want := []string{"Agent 0 picked up a victim at (2,2)"}
	if len(g.Messages) != len(want) || g.Messages[0] != want[0] {
		t.Errorf("Messages = %q, want %q", g.Messages, want)
	}
}

func defaultGame(t *testing.T, seed int64) *state.Game {
	t.Helper()
	return boardGame(t, layout.DefaultSource, seed, nil)
}

// checkTurn verifies the per-turn invariants of a snapshot against the game
func checkTurn(t *testing.T, g *state.Game, s state.Snapshot, prev state.Snapshot) {
	t.Helper()
	if err := g.Grid().Validate(); err != nil {
		t.Fatalf("turn %d: %v", s.Turn, err)
	}
	if s.DamageLeft > prev.DamageLeft {
		t.Errorf("turn %d: budget rose from %d to %d", s.Turn, prev.DamageLeft, s.DamageLeft)
	}
	if got, want := prev.DamageLeft-s.DamageLeft, 2*len(s.DestroyedWalls); got != want {
		t.Errorf("turn %d: budget fell by %d with %d walls destroyed", s.Turn, got, len(s.DestroyedWalls))
	}
	if s.Saved < prev.Saved || s.Lost < prev.Lost || s.AgentCasualties < prev.AgentCasualties {
		t.Errorf("turn %d: counters went down: %d/%d/%d after %d/%d/%d", s.Turn,
			s.Saved, s.Lost, s.AgentCasualties, prev.Saved, prev.Lost, prev.AgentCasualties)
	}

	burning := hazard.Cells(g.Grid(), world.HazardFire)
	if len(s.Fire) != len(burning) {
		t.Errorf("turn %d: fire set has %d cells, grid has %d", s.Turn, len(s.Fire), len(burning))
	}
	for _, p := range s.Fire {
		if !g.Grid().At(p).OnFire() {
			t.Errorf("turn %d: fire set lists %v which is not burning", s.Turn, p)
		}
	}
	for _, poi := range s.POIs {
		c := g.Grid().At(poi.Pos)
		if !c.HasPOI() || c.Outside {
			t.Errorf("turn %d: active point %v missing from the grid", s.Turn, poi.Pos)
		}
	}

	occupants := 0
	g.Grid().ForEachCell(func(_, _ int, c *world.Cell) { occupants += c.Occupants })
	if occupants != len(g.Agents) {
		t.Errorf("turn %d: %d occupants for %d agents", s.Turn, occupants, len(g.Agents))
	}
	for _, a := range s.Agents {
		if a.AP < 0 || a.AP > g.Config.ActionPoints.Max {
			t.Errorf("turn %d: agent %d AP = %d", s.Turn, a.ID, a.AP)
		}
	}
}

func TestRun_InvariantsHoldEveryTurn(t *testing.T) {
	builtin := func(int64) layout.Source { return layout.DefaultSource }
	generated := func(seed int64) layout.Source {
		return generator.Source{Seed: seed, Counts: layout.DefaultCounts}
	}
	tests := []struct {
		name  string
		seeds int64
		src   func(seed int64) layout.Source
		tweak func(*config.Config)
	}{
		{"builtin board", 30, builtin, nil},
		{"generated board", 20, generated, nil},
		{"low budget", 30, builtin, func(c *config.Config) { c.StructuralDamage = 2 }},
		{"generated board low budget", 20, generated, func(c *config.Config) { c.StructuralDamage = 4 }},
	}

	results := map[state.Result]int{}
	reasons := map[state.DefeatReason]int{}
	lost := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= tt.seeds; seed++ {
				g := boardGame(t, tt.src(seed), seed, tt.tweak)
				prev := g.TakeSnapshot()

				out, err := Run(context.Background(), g, func(s state.Snapshot) {
					checkTurn(t, g, s, prev)
					prev = s
				})
				if err != nil {
					t.Fatalf("seed %d: Run: %v", seed, err)
				}
				if !out.Ended() {
					t.Errorf("seed %d: Run returned a running outcome", seed)
				}
				results[out.Result]++
				reasons[out.Reason]++
				lost += out.Lost
			}
		})
	}

	if results[state.Victory] == 0 || results[state.Defeat] == 0 {
		t.Errorf("results = %v, want both victories and defeats", results)
	}
	if reasons[state.ReasonStructural] == 0 {
		t.Errorf("reasons = %v, want at least one structural collapse", reasons)
	}
	if lost == 0 {
		t.Error("no victim was ever lost")
	}
}

func TestRun_SeedChangesTheRun(t *testing.T) {
	starts := map[string]bool{}
	for seed := int64(1); seed <= 5; seed++ {
		g := defaultGame(t, seed)
		key := ""
		for _, a := range g.Agents {
			key += a.Pos.String()
		}
		starts[key] = true
	}
	if len(starts) < 2 {
		t.Errorf("seeds 1..5 gave %d distinct agent starts, want several", len(starts))
	}
}

func TestRun_Deterministic(t *testing.T) {
	a, err := Run(context.Background(), defaultGame(t, 11), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), defaultGame(t, 11), nil)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same seed gave %+v and %+v", a, b)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, defaultGame(t, 1), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}
