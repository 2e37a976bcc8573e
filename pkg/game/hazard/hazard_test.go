package hazard

import (
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/structure"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// makePropagator builds a rows x cols grid whose interior is walled off from
// the exterior ring.
func makePropagator(t *testing.T, rows, cols int) *Propagator {
	t.Helper()
	g := world.NewGrid(rows, cols)
	for _, p := range g.Interior() {
		for _, dir := range world.AllDirections() {
			if n := g.At(p.Step(dir)); n != nil && n.Outside {
				g.SetEdge(p, dir, world.WallEdge())
			}
		}
	}
	s := structure.New(g, 24, quietLogger())
	return NewPropagator(s, rand.New(rand.NewSource(1)), quietLogger())
}

func TestEscalate_Order(t *testing.T) {
	p := makePropagator(t, 3, 3)
	pos := world.Pos(1, 1)
	want := []EventKind{EventSmoke, EventFire, EventAvalanche, EventAvalanche}
	for i, w := range want {
		if got := p.Escalate(pos); got.Kind != w {
			t.Errorf("call %d: Escalate = %v, want %v", i+1, got.Kind, w)
		}
	}
	if h := p.s.Grid.At(pos).Hazard; h != world.HazardFire {
		t.Errorf("hazard after escalations = %v, want fire", h)
	}
}

func TestSnowfall_HitsOnlyInterior(t *testing.T) {
	p := makePropagator(t, 3, 3)
	want := []EventKind{EventSmoke, EventFire, EventAvalanche, EventAvalanche}
	for i, w := range want {
		ev := p.Snowfall()
		if ev.Pos != world.Pos(1, 1) {
			t.Fatalf("call %d: Snowfall hit %v, want (1,1)", i+1, ev.Pos)
		}
		if ev.Kind != w {
			t.Errorf("call %d: Snowfall = %v, want %v", i+1, ev.Kind, w)
		}
	}
	for _, pos := range p.s.Grid.Exterior() {
		if h := p.s.Grid.At(pos).Hazard; h != world.HazardNone {
			t.Errorf("exterior %v hazard = %v, want none", pos, h)
		}
	}
}

func TestAvalanche_Precedence(t *testing.T) {
	p := makePropagator(t, 5, 5)
	g := p.s.Grid
	origin := world.Pos(2, 2)
	g.At(origin).Hazard = world.HazardFire

	g.SetEdge(origin, world.North, world.DoorEdge())
	g.SetEdge(origin, world.West, world.WallEdge())
	// South is open and not burning; East is open and burning.
	g.At(world.Pos(2, 3)).Hazard = world.HazardFire

	p.Avalanche(origin)

	if !g.At(origin).Edge(world.North).IsOpen() {
		t.Error("door north of origin not removed")
	}
	if g.At(world.Pos(1, 2)).OnFire() {
		t.Error("cell behind removed door ignited, want chain to stop")
	}
	if h := g.At(origin).Edge(world.West).Health; h != 1 {
		t.Errorf("west wall health = %d, want 1", h)
	}
	if !g.At(world.Pos(3, 2)).OnFire() {
		t.Error("open south neighbor not ignited")
	}
	if g.At(world.Pos(4, 2)).OnFire() {
		t.Error("ignition continued past the first cell")
	}
	// The chain through (2,3) meets the exterior wall at its east side.
	if h := g.At(world.Pos(2, 3)).Edge(world.East).Health; h != 1 {
		t.Errorf("wall east of burning neighbor health = %d, want 1", h)
	}

	l := p.s.TakeLedger()
	if len(l.Doors) != 1 || len(l.Walls) != 0 {
		t.Errorf("ledger = %+v, want one door and no walls", l)
	}
	if p.s.DamageLeft != 24 {
		t.Errorf("DamageLeft = %d, want 24", p.s.DamageLeft)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestAvalanche_WallCollapseStopsDirection(t *testing.T) {
	p := makePropagator(t, 3, 4)
	g := p.s.Grid
	g.At(world.Pos(1, 1)).Hazard = world.HazardFire
	g.SetEdge(world.Pos(1, 1), world.East, world.Edge{Kind: world.EdgeWall, Health: 1})

	p.Avalanche(world.Pos(1, 1))

	if !g.At(world.Pos(1, 1)).Edge(world.East).IsOpen() {
		t.Error("wall at health 1 did not collapse")
	}
	if g.At(world.Pos(1, 2)).OnFire() {
		t.Error("cell behind collapsed wall ignited")
	}
	if p.s.DamageLeft != 22 {
		t.Errorf("DamageLeft = %d, want 22", p.s.DamageLeft)
	}
}

func TestAvalanche_NeverIgnitesExterior(t *testing.T) {
	p := makePropagator(t, 3, 3)
	g := p.s.Grid
	g.At(world.Pos(1, 1)).Hazard = world.HazardFire
	for _, dir := range world.AllDirections() {
		g.SetEdge(world.Pos(1, 1), dir, world.OpenEdge())
	}

	p.Avalanche(world.Pos(1, 1))

	for _, pos := range g.Exterior() {
		if g.At(pos).Hazard != world.HazardNone {
			t.Errorf("exterior %v ignited", pos)
		}
	}
}

func TestSpreadSmoke_OneHopPerPass(t *testing.T) {
	p := makePropagator(t, 3, 6)
	g := p.s.Grid
	for c := 1; c <= 3; c++ {
		g.At(world.Pos(1, c)).Hazard = world.HazardSmoke
	}
	g.At(world.Pos(1, 4)).Hazard = world.HazardFire

	smoke, fire := p.SpreadSmoke(Cells(g, world.HazardSmoke), Cells(g, world.HazardFire))

	if len(smoke) != 0 {
		t.Errorf("remaining smoke = %v, want none", smoke)
	}
	want := []world.Position{world.Pos(1, 4), world.Pos(1, 3), world.Pos(1, 2), world.Pos(1, 1)}
	if len(fire) != len(want) {
		t.Fatalf("fire = %v, want %v", fire, want)
	}
	for i := range want {
		if fire[i] != want[i] {
			t.Errorf("fire[%d] = %v, want %v", i, fire[i], want[i])
		}
	}
}

func TestSpreadSmoke_BlockedByWallAndDoor(t *testing.T) {
	p := makePropagator(t, 3, 5)
	g := p.s.Grid
	g.At(world.Pos(1, 1)).Hazard = world.HazardSmoke
	g.At(world.Pos(1, 2)).Hazard = world.HazardFire
	g.At(world.Pos(1, 3)).Hazard = world.HazardSmoke
	g.SetEdge(world.Pos(1, 1), world.East, world.WallEdge())
	g.SetEdge(world.Pos(1, 2), world.East, world.DoorEdge())

	smoke, fire := p.SpreadSmoke(Cells(g, world.HazardSmoke), Cells(g, world.HazardFire))
	if len(smoke) != 2 || len(fire) != 1 {
		t.Errorf("smoke = %v, fire = %v, want 2 smoke and 1 fire", smoke, fire)
	}
}
