package world

import (
	"fmt"
)

// Grid represents the structure map with encapsulated cell storage.
// Cells live in a row-major arena and are addressed by coordinate.
type Grid struct {
	cells []*Cell
	rows  int
	cols  int

	interior []Position
	exterior []Position
}

// NewGrid creates a new grid with the given dimensions.
// The perimeter ring is marked as outside; every edge starts open.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{}
	g.Build(rows, cols)
	return g
}

// Rows returns the number of rows in the grid
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns in the grid
func (g *Grid) Cols() int {
	return g.cols
}

// IsValidPosition checks if a row/col position is within grid bounds
func (g *Grid) IsValidPosition(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// InBounds checks if a position is within grid bounds
func (g *Grid) InBounds(p Position) bool {
	return g.IsValidPosition(p.Row, p.Col)
}

// IsPlayablePosition checks if a position is within the interior (not on the perimeter)
func (g *Grid) IsPlayablePosition(row, col int) bool {
	return row >= 1 && row < g.rows-1 && col >= 1 && col < g.cols-1
}

// IsOnPerimeter checks if a position is on the edge of the grid
func (g *Grid) IsOnPerimeter(row, col int) bool {
	return g.IsValidPosition(row, col) && !g.IsPlayablePosition(row, col)
}

// GetCell returns the cell at the given position, or nil if out of bounds
func (g *Grid) GetCell(row, col int) *Cell {
	if !g.IsValidPosition(row, col) {
		return nil
	}
	return g.cells[row*g.cols+col]
}

// At returns the cell at p, or nil if out of bounds
func (g *Grid) At(p Position) *Cell {
	return g.GetCell(p.Row, p.Col)
}

// GetCellRelative returns the cell adjacent to the given cell in the specified direction
func (g *Grid) GetCellRelative(c *Cell, dir Direction) *Cell {
	if c == nil {
		return nil
	}
	if !dir.IsValid() {
		return nil
	}
	rowRel, colRel := dir.Delta()
	return g.GetCell(c.Row+rowRel, c.Col+colRel)
}

// EdgeBetween returns the edge separating two orthogonally adjacent positions.
// ok is false if either position is out of bounds or they are not adjacent.
func (g *Grid) EdgeBetween(a, b Position) (edge Edge, dir Direction, ok bool) {
	if !g.InBounds(a) || !g.InBounds(b) {
		return Edge{}, 0, false
	}
	dir, ok = DirectionBetween(a, b)
	if !ok {
		return Edge{}, 0, false
	}
	return g.At(a).Edge(dir), dir, true
}

// Interior returns the positions of all non-outside cells in row-major order
func (g *Grid) Interior() []Position {
	return g.interior
}

// Exterior returns the positions of all outside cells in row-major order
func (g *Grid) Exterior() []Position {
	return g.exterior
}

// Build initializes the grid with the given dimensions
func (g *Grid) Build(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		panic("Grid dimensions must be positive")
	}

	g.rows = rows
	g.cols = cols
	g.cells = make([]*Cell, rows*cols)
	g.interior = g.interior[:0]
	g.exterior = g.exterior[:0]

	for currentRow := 0; currentRow < rows; currentRow++ {
		for currentCol := 0; currentCol < cols; currentCol++ {
			c := NewCell(currentRow, currentCol)
			c.Outside = g.IsOnPerimeter(currentRow, currentCol)
			g.cells[currentRow*cols+currentCol] = c
			if c.Outside {
				g.exterior = append(g.exterior, c.Pos())
			} else {
				g.interior = append(g.interior, c.Pos())
			}
		}
	}
}

// SetEdge writes the same edge state on both sides of the boundary between p
// and its neighbor in dir. Boundaries facing out of the grid are ignored.
func (g *Grid) SetEdge(p Position, dir Direction, e Edge) bool {
	c := g.At(p)
	adj := g.GetCellRelative(c, dir)
	if c == nil || adj == nil {
		return false
	}
	c.Edges[dir] = e
	adj.Edges[dir.Opposite()] = e
	return true
}

// ForEachCell iterates over all cells in the grid, calling the provided function for each
func (g *Grid) ForEachCell(fn func(row, col int, cell *Cell)) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			fn(row, col, g.cells[row*g.cols+col])
		}
	}
}

// Validate checks edge symmetry and wall health consistency
func (g *Grid) Validate() error {
	if g.rows <= 0 || g.cols <= 0 {
		return fmt.Errorf("grid has invalid dimensions %dx%d", g.rows, g.cols)
	}

	var err error
	g.ForEachCell(func(row, col int, cell *Cell) {
		if err != nil {
			return
		}
		for _, dir := range AllDirections() {
			e := cell.Edges[dir]
			if !e.consistent() {
				err = fmt.Errorf("cell %v %s: %s edge has health %d", cell.Pos(), dir, e.Kind, e.Health)
				return
			}
			adj := g.GetCellRelative(cell, dir)
			if adj == nil {
				continue
			}
			if back := adj.Edges[dir.Opposite()]; back != e {
				err = fmt.Errorf("cell %v %s: %s/%d does not match %v %s: %s/%d",
					cell.Pos(), dir, e.Kind, e.Health, adj.Pos(), dir.Opposite(), back.Kind, back.Health)
				return
			}
		}
	})
	return err
}

// MustValidate panics if the grid invariants do not hold
func (g *Grid) MustValidate() {
	if err := g.Validate(); err != nil {
		panic(err)
	}
}
