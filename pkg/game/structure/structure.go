// Package structure wraps the grid with the destructible-structure rules:
// the damage budget, wall and door removal, erosion, and the per-turn ledger
// of everything destroyed.
package structure

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"

	"rescuesim/pkg/engine/world"
)

// WallDamage is charged against the budget for every wall that comes down
const WallDamage = 2

// DestroyedWall records a wall removal. Direction is the wall's side as seen
// from Neighbor.
type DestroyedWall struct {
	Cell      world.Position `json:"cell"`
	Neighbor  world.Position `json:"neighbor"`
	Direction string         `json:"direction"`
}

// DestroyedDoor records a door removal. Direction is the door's side as seen
// from Cell1.
type DestroyedDoor struct {
	Cell1     world.Position `json:"cell1"`
	Cell2     world.Position `json:"cell2"`
	Direction string         `json:"direction"`
}

// Ledger collects the removals of a single turn
type Ledger struct {
	Walls []DestroyedWall
	Doors []DestroyedDoor
}

// Empty returns true if nothing was destroyed
func (l Ledger) Empty() bool {
	return len(l.Walls) == 0 && len(l.Doors) == 0
}

// Structure owns the grid and the structural damage budget
type Structure struct {
	Grid       *world.Grid
	DamageLeft int

	ledger Ledger
	log    logrus.FieldLogger
}

// New creates a structure over grid with the given damage budget
func New(grid *world.Grid, budget int, log logrus.FieldLogger) *Structure {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Structure{
		Grid:       grid,
		DamageLeft: budget,
		log:        log,
	}
}

// Collapsed returns true once the damage budget is spent
func (s *Structure) Collapsed() bool {
	return s.DamageLeft <= 0
}

func (s *Structure) adjacent(from, to world.Position) world.Direction {
	_, dir, ok := s.Grid.EdgeBetween(from, to)
	if !ok {
		panic(fmt.Sprintf("structure: %v and %v are not adjacent cells", from, to))
	}
	return dir
}

// RemoveWall opens the boundary between two adjacent cells and charges the
// damage budget.
func (s *Structure) RemoveWall(from, to world.Position) {
	dir := s.adjacent(from, to)
	s.Grid.SetEdge(from, dir, world.OpenEdge())
	s.DamageLeft -= WallDamage
	s.ledger.Walls = append(s.ledger.Walls, DestroyedWall{
		Cell:      from,
		Neighbor:  to,
		Direction: dir.Opposite().Side(),
	})
	s.log.WithFields(logrus.Fields{
		"cell":        from,
		"neighbor":    to,
		"damage_left": s.DamageLeft,
	}).Debug("wall removed")
}

// RemoveDoor detaches the door on side dir of from. Both sides end up open.
// Doors do not count against the damage budget.
func (s *Structure) RemoveDoor(from world.Position, dir world.Direction) {
	to := from.Step(dir)
	edge, _, ok := s.Grid.EdgeBetween(from, to)
	if !ok || !edge.IsDoor() {
		panic(fmt.Sprintf("structure: no door between %v and %v", from, to))
	}
	s.Grid.SetEdge(from, dir, world.OpenEdge())
	s.ledger.Doors = append(s.ledger.Doors, DestroyedDoor{
		Cell1:     from,
		Cell2:     to,
		Direction: dir.Side(),
	})
	s.log.WithFields(logrus.Fields{
		"cell1": from,
		"cell2": to,
		"side":  dir.Side(),
	}).Debug("door removed")
}

// ErodeWall takes one hit off the wall on side dir of p. When the wall's
// health reaches zero it is removed as by RemoveWall and collapsed is true.
func (s *Structure) ErodeWall(p world.Position, dir world.Direction) (collapsed bool) {
	to := p.Step(dir)
	edge, _, ok := s.Grid.EdgeBetween(p, to)
	if !ok || !edge.IsWall() {
		panic(fmt.Sprintf("structure: no wall between %v and %v", p, to))
	}
	edge.Health--
	if edge.Health < 0 {
		panic(fmt.Sprintf("structure: wall between %v and %v eroded below zero", p, to))
	}
	if edge.Health > 0 {
		s.Grid.SetEdge(p, dir, edge)
		s.log.WithFields(logrus.Fields{"cell": p, "side": dir.Side(), "health": edge.Health}).Debug("wall eroded")
		return false
	}
	s.RemoveWall(p, to)
	return true
}

// OpenDoors returns every intact door as a sorted pair of positions, each
// door listed once.
func (s *Structure) OpenDoors() [][2]world.Position {
	seen := mapset.New[[2]world.Position]()
	s.Grid.ForEachCell(func(_, _ int, cell *world.Cell) {
		for _, dir := range world.AllDirections() {
			if !cell.HasDoor(dir) {
				continue
			}
			a, b := cell.Pos(), cell.Pos().Step(dir)
			if b.Less(a) {
				a, b = b, a
			}
			seen.Put([2]world.Position{a, b})
		}
	})

	doors := make([][2]world.Position, 0, seen.Size())
	seen.Each(func(pair [2]world.Position) {
		doors = append(doors, pair)
	})
	sort.Slice(doors, func(i, j int) bool {
		if doors[i][0] != doors[j][0] {
			return doors[i][0].Less(doors[j][0])
		}
		return doors[i][1].Less(doors[j][1])
	})
	return doors
}

// Ledger returns the removals recorded since the last reset without clearing them
func (s *Structure) Ledger() Ledger {
	return s.ledger
}

// TakeLedger returns the removals recorded since the last reset and clears them
func (s *Structure) TakeLedger() Ledger {
	l := s.ledger
	s.ledger = Ledger{}
	return l
}

// ResetLedger discards any recorded removals
func (s *Structure) ResetLedger() {
	s.ledger = Ledger{}
}
