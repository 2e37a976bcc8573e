package devtools

import (
	"rescuesim/pkg/engine/world"
)

// DevGrid returns a hard-coded 5x7 developer board that exhibits every edge,
// hazard and point of interest kind. Interior cells are rows 1-3, cols 1-5.
//
//	row 1: victim | false alarm | smoke | fire | damaged wall on its right
//	row 2: door below (1,1), wall below (1,3), entrance at (2,1)
//	row 3: a cell walled off on every side at (3,5)
func DevGrid() *world.Grid {
	grid := world.NewGrid(5, 7)

	// Outer wall ring with one entrance on the left
	for _, p := range grid.Interior() {
		for _, dir := range world.AllDirections() {
			if n := grid.At(p.Step(dir)); n != nil && n.Outside {
				grid.SetEdge(p, dir, world.WallEdge())
			}
		}
	}
	grid.SetEdge(world.Pos(2, 1), world.West, world.OpenEdge())
	grid.At(world.Pos(2, 1)).Entrance = true

	grid.SetEdge(world.Pos(1, 1), world.South, world.DoorEdge())
	grid.SetEdge(world.Pos(1, 3), world.South, world.WallEdge())
	grid.SetEdge(world.Pos(1, 4), world.East, world.Edge{Kind: world.EdgeWall, Health: 1})

	// Sealed cell
	grid.SetEdge(world.Pos(3, 5), world.North, world.WallEdge())
	grid.SetEdge(world.Pos(3, 5), world.West, world.WallEdge())

	grid.At(world.Pos(1, 1)).POI = world.POIVictim
	grid.At(world.Pos(1, 2)).POI = world.POIFalseAlarm
	grid.At(world.Pos(1, 3)).Hazard = world.HazardSmoke
	grid.At(world.Pos(1, 4)).Hazard = world.HazardFire

	grid.MustValidate()
	return grid
}
