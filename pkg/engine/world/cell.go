// Package world provides the grid primitives of a rescue structure:
// cells, their tagged edges, and the grid arena that owns them.
package world

// Hazard is the escalation level of a cell
type Hazard int

const (
	HazardNone Hazard = iota
	HazardSmoke
	HazardFire
)

func (h Hazard) String() string {
	switch h {
	case HazardSmoke:
		return "smoke"
	case HazardFire:
		return "fire"
	default:
		return "none"
	}
}

// POI is the kind of point of interest a cell holds
type POI int

const (
	POINone POI = iota
	POIFalseAlarm
	POIVictim
)

func (p POI) String() string {
	switch p {
	case POIFalseAlarm:
		return "false_alarm"
	case POIVictim:
		return "victim"
	default:
		return "none"
	}
}

// Cell represents a single cell in the grid.
type Cell struct {
	// Grid position
	Row int
	Col int

	// Edges holds the boundary toward each neighbor, indexed by Direction
	Edges [4]Edge

	Hazard Hazard
	POI    POI

	// Cell type flags
	Outside  bool // Safe exterior cell
	Entrance bool // Interior cell whose exterior wall was opened at load time

	// Occupants is the number of agents standing on the cell
	Occupants int
}

// NewCell creates a new cell at the given position with all edges open
func NewCell(row, col int) *Cell {
	return &Cell{Row: row, Col: col}
}

// Pos returns the cell's position
func (c *Cell) Pos() Position {
	return Position{Row: c.Row, Col: c.Col}
}

// Edge returns the edge on the given side
func (c *Cell) Edge(dir Direction) Edge {
	if !dir.IsValid() {
		return OpenEdge()
	}
	return c.Edges[dir]
}

// HasWall returns true if a wall without a door stands on the given side
func (c *Cell) HasWall(dir Direction) bool {
	return c.Edge(dir).IsWall()
}

// HasDoor returns true if a door stands on the given side
func (c *Cell) HasDoor(dir Direction) bool {
	return c.Edge(dir).IsDoor()
}

// OnFire returns true if the cell is burning
func (c *Cell) OnFire() bool {
	return c.Hazard == HazardFire
}

// HasPOI returns true if the cell holds an unresolved point of interest
func (c *Cell) HasPOI() bool {
	return c.POI != POINone
}
