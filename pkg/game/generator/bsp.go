package generator

import (
	"fmt"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/layout"
)

// BSPGenerator partitions the interior into rooms using Binary Space
// Partitioning. Rooms are walled off from each other and joined by doors.
type BSPGenerator struct{}

// Name returns the name of this generator
func (g *BSPGenerator) Name() string {
	return "bsp"
}

// bspNode represents a node in the BSP tree. Leaves are rooms.
type bspNode struct {
	x, y, width, height int
	left, right         *bspNode
	room                int
}

// Constants for BSP generation
const (
	minRoomSize = 2 // Minimum extent of a room along either axis
	maxRoomArea = 9 // Leaves at or below this area are not split further
)

// Generate creates a random layout with the given section counts
func (g *BSPGenerator) Generate(rng *rand.Rand, c layout.Counts) (*layout.Layout, error) {
	if c.Rows <= 0 || c.Cols <= 0 {
		return nil, fmt.Errorf("%w: interior must be positive, got %dx%d", layout.ErrMalformedBoard, c.Rows, c.Cols)
	}
	if c.POIs+c.Fires > c.Rows*c.Cols {
		return nil, fmt.Errorf("%w: %d POIs and %d fires do not fit a %dx%d interior",
			layout.ErrMalformedBoard, c.POIs, c.Fires, c.Rows, c.Cols)
	}

	root := &bspNode{x: 1, y: 1, width: c.Cols, height: c.Rows}
	splitBSP(rng, root)

	rooms := make([][]int, c.Rows+2)
	for i := range rooms {
		rooms[i] = make([]int, c.Cols+2)
		for j := range rooms[i] {
			rooms[i][j] = -1
		}
	}
	next := 0
	carveRooms(root, rooms, &next)

	l := &layout.Layout{Rows: c.Rows, Cols: c.Cols}
	roomOf := func(p world.Position) int { return rooms[p.Row][p.Col] }

	// Walls on every boundary between different rooms or facing the exterior
	for row := 1; row <= c.Rows; row++ {
		for col := 1; col <= c.Cols; col++ {
			p := world.Pos(row, col)
			code := make([]byte, 0, 4)
			for _, dir := range world.AllDirections() {
				if roomOf(p.Step(dir)) != roomOf(p) {
					code = append(code, '1')
				} else {
					code = append(code, '0')
				}
			}
			l.Walls = append(l.Walls, string(code))
		}
	}

	// One door across every split keeps all rooms connected
	doors := mapset.New[[2]world.Position]()
	connectRooms(rng, root, roomOf, l, &doors)

	// Extra doors on random inner walls up to the requested count
	var inner [][2]world.Position
	for row := 1; row <= c.Rows; row++ {
		for col := 1; col <= c.Cols; col++ {
			p := world.Pos(row, col)
			for _, dir := range []world.Direction{world.South, world.East} {
				n := p.Step(dir)
				if roomOf(n) >= 0 && roomOf(n) != roomOf(p) && !doors.Has([2]world.Position{p, n}) {
					inner = append(inner, [2]world.Position{p, n})
				}
			}
		}
	}
	rng.Shuffle(len(inner), func(i, j int) { inner[i], inner[j] = inner[j], inner[i] })
	for _, d := range inner {
		if len(l.Doors) >= c.Doors {
			break
		}
		doors.Put(d)
		l.Doors = append(l.Doors, d)
	}

	// Exits on distinct border cells
	var border []world.Position
	for row := 1; row <= c.Rows; row++ {
		for col := 1; col <= c.Cols; col++ {
			if row == 1 || row == c.Rows || col == 1 || col == c.Cols {
				border = append(border, world.Pos(row, col))
			}
		}
	}
	if c.Exits > len(border) {
		return nil, fmt.Errorf("%w: %d exits do not fit on %d border cells", layout.ErrMalformedBoard, c.Exits, len(border))
	}
	rng.Shuffle(len(border), func(i, j int) { border[i], border[j] = border[j], border[i] })
	l.Exits = append(l.Exits, border[:c.Exits]...)

	// Points of interest and fires on distinct cells
	cells := make([]world.Position, 0, c.Rows*c.Cols)
	for row := 1; row <= c.Rows; row++ {
		for col := 1; col <= c.Cols; col++ {
			cells = append(cells, world.Pos(row, col))
		}
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	for _, p := range cells[:c.POIs] {
		kind := world.POIFalseAlarm
		if rng.Intn(2) == 1 {
			kind = world.POIVictim
		}
		l.POIs = append(l.POIs, layout.POISpec{Pos: p, Kind: kind})
	}
	l.Fires = append(l.Fires, cells[c.POIs:c.POIs+c.Fires]...)

	return l, nil
}

// splitBSP recursively splits a BSP node
func splitBSP(rng *rand.Rand, node *bspNode) {
	if node.width*node.height <= maxRoomArea {
		return
	}
	canSplitRows := node.height >= minRoomSize*2
	canSplitCols := node.width >= minRoomSize*2

	// Decide split direction
	var splitHorizontal bool
	switch {
	case canSplitRows && canSplitCols:
		if node.width == node.height {
			splitHorizontal = rng.Intn(2) == 0
		} else {
			splitHorizontal = node.height > node.width
		}
	case canSplitRows:
		splitHorizontal = true
	case canSplitCols:
		splitHorizontal = false
	default:
		return // Can't split
	}

	if splitHorizontal {
		// Split horizontally (top and bottom)
		splitPoint := minRoomSize + rng.Intn(node.height-minRoomSize*2+1)
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPoint}
		node.right = &bspNode{x: node.x, y: node.y + splitPoint, width: node.width, height: node.height - splitPoint}
	} else {
		// Split vertically (left and right)
		splitPoint := minRoomSize + rng.Intn(node.width-minRoomSize*2+1)
		node.left = &bspNode{x: node.x, y: node.y, width: splitPoint, height: node.height}
		node.right = &bspNode{x: node.x + splitPoint, y: node.y, width: node.width - splitPoint, height: node.height}
	}

	// Recursively split children
	splitBSP(rng, node.left)
	splitBSP(rng, node.right)
}

// carveRooms numbers the leaves and marks their cells
func carveRooms(node *bspNode, rooms [][]int, next *int) {
	if node.left == nil {
		node.room = *next
		*next++
		for row := node.y; row < node.y+node.height; row++ {
			for col := node.x; col < node.x+node.width; col++ {
				rooms[row][col] = node.room
			}
		}
		return
	}
	carveRooms(node.left, rooms, next)
	carveRooms(node.right, rooms, next)
}

// contains reports whether p lies in the node's rectangle
func (n *bspNode) contains(p world.Position) bool {
	return p.Col >= n.x && p.Col < n.x+n.width && p.Row >= n.y && p.Row < n.y+n.height
}

// connectRooms puts a door on a random cell pair straddling each split
func connectRooms(rng *rand.Rand, node *bspNode, roomOf func(world.Position) int, l *layout.Layout, doors *mapset.Set[[2]world.Position]) {
	if node.left == nil {
		return
	}

	var candidates [][2]world.Position
	for row := node.left.y; row < node.left.y+node.left.height; row++ {
		for col := node.left.x; col < node.left.x+node.left.width; col++ {
			p := world.Pos(row, col)
			for _, dir := range []world.Direction{world.South, world.East} {
				n := p.Step(dir)
				if node.right.contains(n) && roomOf(n) != roomOf(p) {
					candidates = append(candidates, [2]world.Position{p, n})
				}
			}
		}
	}
	if len(candidates) > 0 {
		d := candidates[rng.Intn(len(candidates))]
		doors.Put(d)
		l.Doors = append(l.Doors, d)
	}

	// Recursively connect subtrees
	connectRooms(rng, node.left, roomOf, l, doors)
	connectRooms(rng, node.right, roomOf, l, doors)
}
