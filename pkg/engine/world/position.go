package world

import (
	"encoding/json"
	"fmt"
)

// Position addresses a cell in the grid arena
type Position struct {
	Row int
	Col int
}

// Pos is shorthand for Position{row, col}
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// Step returns the position one cell away in the given direction
func (p Position) Step(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Less orders positions row-major
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// MarshalJSON encodes the position as a [row, col] pair
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Row, p.Col})
}

// UnmarshalJSON decodes a [row, col] pair
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("position %s: %w", data, err)
	}
	p.Row, p.Col = pair[0], pair[1]
	return nil
}
