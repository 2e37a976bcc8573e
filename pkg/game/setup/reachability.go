package setup

import (
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"rescuesim/pkg/engine/world"
)

// Reachable returns the cells an agent can reach from the exterior without
// demolishing any wall. Doors count as passable.
func Reachable(grid *world.Grid) mapset.Set[world.Position] {
	reachable := mapset.New[world.Position]()
	q := queue.New[world.Position]()
	for _, p := range grid.Exterior() {
		reachable.Put(p)
		q.Enqueue(p)
	}

	for !q.Empty() {
		current := q.Dequeue()
		cell := grid.At(current)
		for _, dir := range world.AllDirections() {
			next := current.Step(dir)
			if !grid.InBounds(next) || reachable.Has(next) || cell.HasWall(dir) {
				continue
			}
			reachable.Put(next)
			q.Enqueue(next)
		}
	}
	return reachable
}

// Sealed returns the interior cells missing from Reachable, in row-major order
func Sealed(grid *world.Grid) []world.Position {
	reachable := Reachable(grid)
	var sealed []world.Position
	for _, p := range grid.Interior() {
		if !reachable.Has(p) {
			sealed = append(sealed, p)
		}
	}
	return sealed
}
