package world

// Direction represents a cardinal direction.
// The order matches the wall code order of a board file: up, left, down, right.
type Direction int

// Direction constants
const (
	North Direction = iota
	West
	South
	East
)

// AllDirections returns all valid directions for iteration, in wall code order
func AllDirections() []Direction {
	return []Direction{North, West, South, East}
}

// String returns the string representation of a direction
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case West:
		return "West"
	case South:
		return "South"
	case East:
		return "East"
	default:
		return "Unknown"
	}
}

// Side returns the wall side name used by exported history documents
func (d Direction) Side() string {
	switch d {
	case North:
		return "up"
	case West:
		return "left"
	case South:
		return "down"
	case East:
		return "right"
	default:
		return ""
	}
}

// IsValid returns true if the direction is a valid cardinal direction
func (d Direction) IsValid() bool {
	return d >= North && d <= East
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return d
	}
}

// Delta returns the row and column offsets for this direction
func (d Direction) Delta() (rowDelta, colDelta int) {
	switch d {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	case West:
		return 0, -1
	default:
		return 0, 0
	}
}

// DirectionBetween returns the direction leading from a to b.
// ok is false when the two positions are not orthogonally adjacent.
func DirectionBetween(a, b Position) (dir Direction, ok bool) {
	for _, d := range AllDirections() {
		if a.Step(d) == b {
			return d, true
		}
	}
	return 0, false
}
