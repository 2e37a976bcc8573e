// Package pathing plans agent routes over the structure grid.
//
// Routes are found by FIFO relaxation: a cell is queued again every time a
// cheaper tentative cost reaches it, so a cell may be expanded more than once.
// Edge weights come from the current state of walls, doors and fire, and the
// estimate deliberately overprices demolition (4.1) against the 4 points an
// agent really pays, so a door route wins a tie with a wall route.
package pathing

import (
	"math"

	"github.com/zyedidia/generic/queue"

	"rescuesim/pkg/engine/world"
)

// Planning weights
const (
	DoorCost      = 1.0
	WallCost      = 4.1
	FireSurcharge = 1.0
)

// StepCost returns the planning weight of moving from one cell into an
// adjacent cell. Positions outside the grid or not adjacent cost 0.
func StepCost(g *world.Grid, from, to world.Position, carry int) float64 {
	edge, _, ok := g.EdgeBetween(from, to)
	if !ok {
		return 0
	}

	cost := 0.0
	switch edge.Kind {
	case world.EdgeDoor:
		cost += DoorCost
	case world.EdgeWall:
		cost += WallCost
	}
	if g.At(to).OnFire() {
		cost += FireSurcharge
	}
	return cost + float64(carry)
}

// Plan returns the cheapest route from start to end, excluding start, and its
// planning cost. If start equals end or either lies outside the grid the path
// is empty and the cost is 0.
func Plan(g *world.Grid, start, end world.Position, carry int) ([]world.Position, float64) {
	if start == end || !g.InBounds(start) || !g.InBounds(end) {
		return nil, 0
	}

	cols := g.Cols()
	index := func(p world.Position) int { return p.Row*cols + p.Col }

	n := g.Rows() * cols
	dist := make([]float64, n)
	prev := make([]int, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[index(start)] = 0
	prev[index(start)] = index(start)

	q := queue.New[world.Position]()
	q.Enqueue(start)
	for !q.Empty() {
		current := q.Dequeue()
		base := dist[index(current)]

		for _, dir := range world.AllDirections() {
			next := current.Step(dir)
			if !g.InBounds(next) {
				continue
			}
			candidate := base + StepCost(g, current, next, carry)
			if candidate < dist[index(next)] {
				dist[index(next)] = candidate
				prev[index(next)] = index(current)
				q.Enqueue(next)
			}
		}
	}

	if prev[index(end)] < 0 {
		return nil, 0
	}

	var path []world.Position
	for at := end; at != start; {
		path = append(path, at)
		p := prev[index(at)]
		at = world.Pos(p/cols, p%cols)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[index(end)]
}

// Distance returns only the planning cost of Plan
func Distance(g *world.Grid, start, end world.Position, carry int) float64 {
	_, cost := Plan(g, start, end, carry)
	return cost
}

// Nearest returns the candidate with the lowest planning cost from from.
// Ties go to the candidate listed first. ok is false when candidates is empty.
func Nearest(g *world.Grid, from world.Position, candidates []world.Position, carry int) (best world.Position, cost float64, ok bool) {
	cost = math.Inf(1)
	for _, c := range candidates {
		d := Distance(g, from, c, carry)
		if d < cost {
			best, cost, ok = c, d, true
		}
	}
	return best, cost, ok
}
