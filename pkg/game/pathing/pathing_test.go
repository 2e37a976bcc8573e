package pathing

import (
	"math"
	"testing"

	"rescuesim/pkg/engine/world"
)

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

func samePath(a, b []world.Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlan_Degenerate(t *testing.T) {
	g := walledGrid(t, 4, 4)
	tests := []struct {
		name       string
		start, end world.Position
	}{
		{"same cell", world.Pos(1, 1), world.Pos(1, 1)},
		{"start out of bounds", world.Pos(-1, 0), world.Pos(1, 1)},
		{"end out of bounds", world.Pos(1, 1), world.Pos(4, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, cost := Plan(g, tt.start, tt.end, 1)
			if len(path) != 0 || cost != 0 {
				t.Errorf("Plan(%v, %v) = %v, %v, want empty, 0", tt.start, tt.end, path, cost)
			}
		})
	}
}

func TestPlan_OpenCorridor(t *testing.T) {
	g := walledGrid(t, 3, 6)
	path, cost := Plan(g, world.Pos(1, 1), world.Pos(1, 4), 1)
	want := []world.Position{world.Pos(1, 2), world.Pos(1, 3), world.Pos(1, 4)}
	if !samePath(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
	if cost != 3 {
		t.Errorf("cost = %v, want 3", cost)
	}
}

func TestPlan_CarryAndFire(t *testing.T) {
	g := walledGrid(t, 3, 6)
	if _, cost := Plan(g, world.Pos(1, 1), world.Pos(1, 4), 2); cost != 6 {
		t.Errorf("carrying cost = %v, want 6", cost)
	}
	g.GetCell(1, 3).Hazard = world.HazardFire
	if _, cost := Plan(g, world.Pos(1, 1), world.Pos(1, 4), 1); cost != 4 {
		t.Errorf("cost through fire = %v, want 4", cost)
	}
}

func TestPlan_WallIncreasesCost(t *testing.T) {
	g := walledGrid(t, 3, 6)
	_, open := Plan(g, world.Pos(1, 1), world.Pos(1, 4), 1)
	g.SetEdge(world.Pos(1, 2), world.East, world.WallEdge())
	path, walled := Plan(g, world.Pos(1, 1), world.Pos(1, 4), 1)

	if walled <= open {
		t.Errorf("cost with wall = %v, want > %v", walled, open)
	}
	if math.Abs(walled-7.1) > 1e-9 {
		t.Errorf("cost with wall = %v, want 7.1", walled)
	}
	if len(path) != 3 {
		t.Errorf("path = %v, want straight through the wall", path)
	}
}

func TestPlan_RequeuesOnImprovement(t *testing.T) {
	// (1,2) is first reached through the wall at 5.1 and later improved to
	// 3 via the detour below it.
	g := walledGrid(t, 4, 4)
	g.SetEdge(world.Pos(1, 1), world.East, world.WallEdge())

	path, cost := Plan(g, world.Pos(1, 1), world.Pos(1, 2), 1)
	want := []world.Position{world.Pos(2, 1), world.Pos(2, 2), world.Pos(1, 2)}
	if !samePath(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
	if cost != 3 {
		t.Errorf("cost = %v, want 3", cost)
	}
}

func TestPlan_PrefersDoorOverWall(t *testing.T) {
	g := walledGrid(t, 4, 4)
	g.SetEdge(world.Pos(1, 2), world.South, world.WallEdge())
	g.SetEdge(world.Pos(2, 1), world.East, world.DoorEdge())

	path, cost := Plan(g, world.Pos(1, 1), world.Pos(2, 2), 1)
	want := []world.Position{world.Pos(2, 1), world.Pos(2, 2)}
	if !samePath(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
	if cost != 3 {
		t.Errorf("cost = %v, want 3", cost)
	}
}

func TestStepCost(t *testing.T) {
	g := walledGrid(t, 4, 4)
	g.SetEdge(world.Pos(1, 1), world.East, world.DoorEdge())
	g.GetCell(2, 1).Hazard = world.HazardFire

	tests := []struct {
		name     string
		from, to world.Position
		carry    int
		want     float64
	}{
		{"door", world.Pos(1, 1), world.Pos(1, 2), 1, 2},
		{"wall", world.Pos(1, 1), world.Pos(0, 1), 1, 5.1},
		{"fire", world.Pos(1, 1), world.Pos(2, 1), 2, 3},
		{"not adjacent", world.Pos(1, 1), world.Pos(2, 2), 1, 0},
		{"out of bounds", world.Pos(0, 0), world.Pos(-1, 0), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepCost(g, tt.from, tt.to, tt.carry); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("StepCost = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan_CostsNonNegative(t *testing.T) {
	g := walledGrid(t, 5, 6)
	g.SetEdge(world.Pos(2, 2), world.East, world.WallEdge())
	g.SetEdge(world.Pos(1, 3), world.South, world.DoorEdge())
	for _, a := range g.Interior() {
		for _, b := range g.Interior() {
			if _, cost := Plan(g, a, b, 1); cost < 0 {
				t.Errorf("Plan(%v, %v) cost = %v, want >= 0", a, b, cost)
			}
		}
	}
}

func TestNearest_FirstMinimumWins(t *testing.T) {
	g := walledGrid(t, 3, 5)
	candidates := []world.Position{world.Pos(1, 3), world.Pos(1, 1)}

	best, cost, ok := Nearest(g, world.Pos(1, 2), candidates, 1)
	if !ok || best != world.Pos(1, 3) || cost != 1 {
		t.Errorf("Nearest = %v, %v, %v, want (1,3), 1, true", best, cost, ok)
	}

	if _, _, ok := Nearest(g, world.Pos(1, 2), nil, 1); ok {
		t.Error("Nearest(nil candidates) ok = true, want false")
	}
}
