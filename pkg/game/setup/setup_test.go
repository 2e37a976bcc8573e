package setup

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/generator"
	"rescuesim/pkg/game/layout"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewRun_Defaults(t *testing.T) {
	cfg := config.Default()
	g, err := NewRun(cfg, layout.DefaultSource, quietLogger())
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if len(g.Agents) != cfg.Agents {
		t.Errorf("len(Agents) = %d, want %d", len(g.Agents), cfg.Agents)
	}
	for _, a := range g.Agents {
		if !g.Grid().At(a.Pos).Outside {
			t.Errorf("agent %d starts at interior %v", a.ID, a.Pos)
		}
		if a.AP != cfg.ActionPoints.Initial {
			t.Errorf("agent %d AP = %d, want %d", a.ID, a.AP, cfg.ActionPoints.Initial)
		}
	}
	if len(g.POIs) != 3 || len(g.Fires) != 10 {
		t.Errorf("pois, fires = %d, %d, want 3, 10", len(g.POIs), len(g.Fires))
	}
	if g.Structure.DamageLeft != 24 {
		t.Errorf("DamageLeft = %d, want 24", g.Structure.DamageLeft)
	}
}

func TestNewRun_SameSeedSameStart(t *testing.T) {
	cfg := config.Default()
	a, err := NewRun(cfg, layout.DefaultSource, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRun(cfg, layout.DefaultSource, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Agents {
		if a.Agents[i].Pos != b.Agents[i].Pos {
			t.Errorf("agent %d: %v vs %v with the same seed", i, a.Agents[i].Pos, b.Agents[i].Pos)
		}
	}
}

func TestNewRun_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Agents = 0
	if _, err := NewRun(cfg, layout.DefaultSource, quietLogger()); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("NewRun error = %v, want ErrInvalid", err)
	}
}

func TestSourceFor(t *testing.T) {
	if _, ok := SourceFor(config.Board{}).(layout.BuiltinSource); !ok {
		t.Error("SourceFor(empty path) is not the builtin board")
	}
	src, ok := SourceFor(config.Board{Path: "x.txt", Rows: 2, Cols: 3}).(layout.FileSource)
	if !ok || src.Path != "x.txt" || src.Counts.Cols != 3 {
		t.Errorf("SourceFor(path) = %#v", src)
	}
	gen, ok := SourceFor(config.Board{Generate: true, Seed: 4, Path: "ignored.txt"}).(generator.Source)
	if !ok || gen.Seed != 4 {
		t.Errorf("SourceFor(generate) = %#v", gen)
	}
}

func TestNewRun_GeneratedBoard(t *testing.T) {
	cfg := config.Default()
	cfg.Board.Generate = true
	cfg.Board.Seed = 9
	g, err := NewRun(cfg, SourceFor(cfg.Board), quietLogger())
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	if got, want := len(g.Fires), cfg.Board.Fires; got != want {
		t.Errorf("len(Fires) = %d, want %d", got, want)
	}
	if len(Sealed(g.Grid())) != 0 {
		t.Error("generated board has sealed cells")
	}
}

func TestSealed(t *testing.T) {
	g := world.NewGrid(3, 4)
	// Seal (1,1) on all sides, leave (1,2) open to the north.
	for _, dir := range world.AllDirections() {
		g.SetEdge(world.Pos(1, 1), dir, world.WallEdge())
	}
	g.SetEdge(world.Pos(1, 2), world.South, world.DoorEdge())

	sealed := Sealed(g)
	if len(sealed) != 1 || sealed[0] != world.Pos(1, 1) {
		t.Errorf("Sealed() = %v, want [(1,1)]", sealed)
	}
}
