package world

// EdgeKind is the state of the boundary between a cell and one neighbor
type EdgeKind int

const (
	EdgeOpen EdgeKind = iota
	EdgeWall
	EdgeDoor
)

// InitialWallHealth is the number of erosion hits a fresh wall absorbs
const InitialWallHealth = 2

func (k EdgeKind) String() string {
	switch k {
	case EdgeOpen:
		return "open"
	case EdgeWall:
		return "wall"
	case EdgeDoor:
		return "door"
	default:
		return "unknown"
	}
}

// Edge is one side of a cell. Health is only meaningful for walls.
type Edge struct {
	Kind   EdgeKind
	Health int
}

// OpenEdge returns a passable edge with nothing in it
func OpenEdge() Edge {
	return Edge{Kind: EdgeOpen}
}

// WallEdge returns an intact wall
func WallEdge() Edge {
	return Edge{Kind: EdgeWall, Health: InitialWallHealth}
}

// DoorEdge returns a closed door set in a wall gap
func DoorEdge() Edge {
	return Edge{Kind: EdgeDoor}
}

// IsOpen returns true if nothing separates the two cells
func (e Edge) IsOpen() bool {
	return e.Kind == EdgeOpen
}

// IsWall returns true for a wall without a door
func (e Edge) IsWall() bool {
	return e.Kind == EdgeWall
}

// IsDoor returns true if a door connects the two cells
func (e Edge) IsDoor() bool {
	return e.Kind == EdgeDoor
}

// consistent reports whether health agrees with the edge kind
func (e Edge) consistent() bool {
	if e.Kind == EdgeWall {
		return e.Health > 0 && e.Health <= InitialWallHealth
	}
	return e.Health == 0
}
