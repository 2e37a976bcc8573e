// Package layout reads the initial structure of a run from a board file.
//
// A board is a stream of whitespace separated tokens. Lines starting with #
// are comments. Sections appear in a fixed order with fixed counts:
//
//	rows*cols wall codes   four binary digits each: up, left, down, right
//	POIs                   row col v|f
//	fires                  row col
//	doors                  row1 col1 row2 col2, each on a wall
//	exits                  row col
//
// Coordinates are 1-based interior positions. The built grid adds a ring of
// exterior cells around the interior.
package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rescuesim/pkg/engine/world"
)

// ErrMalformedBoard is wrapped by every parse and build failure
var ErrMalformedBoard = errors.New("malformed board")

// Counts gives the size of each board section
type Counts struct {
	Rows  int
	Cols  int
	POIs  int
	Fires int
	Doors int
	Exits int
}

// DefaultCounts matches the built-in board
var DefaultCounts = Counts{Rows: 6, Cols: 8, POIs: 3, Fires: 10, Doors: 8, Exits: 4}

// POISpec places a point of interest
type POISpec struct {
	Pos  world.Position
	Kind world.POI
}

// Layout is a parsed board, not yet built into a grid
type Layout struct {
	Rows  int
	Cols  int
	Walls []string // row-major wall codes
	POIs  []POISpec
	Fires []world.Position
	Doors [][2]world.Position
	Exits []world.Position
}

type tokenizer struct {
	tokens []string
	next   int
}

func (t *tokenizer) take(section string) (string, error) {
	if t.next >= len(t.tokens) {
		return "", fmt.Errorf("%w: unexpected end of input in %s", ErrMalformedBoard, section)
	}
	tok := t.tokens[t.next]
	t.next++
	return tok, nil
}

func (t *tokenizer) int(section string) (int, error) {
	tok, err := t.take(section)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", ErrMalformedBoard, section, tok)
	}
	return n, nil
}

func (t *tokenizer) pos(section string) (world.Position, error) {
	row, err := t.int(section)
	if err != nil {
		return world.Position{}, err
	}
	col, err := t.int(section)
	if err != nil {
		return world.Position{}, err
	}
	return world.Pos(row, col), nil
}

// Parse reads a board with the given section counts
func Parse(r io.Reader, c Counts) (*Layout, error) {
	t := &tokenizer{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		t.tokens = append(t.tokens, strings.Fields(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}

	l := &Layout{Rows: c.Rows, Cols: c.Cols}

	for i := 0; i < c.Rows*c.Cols; i++ {
		code, err := t.take("walls")
		if err != nil {
			return nil, err
		}
		if len(code) != 4 || strings.Trim(code, "01") != "" {
			return nil, fmt.Errorf("%w: walls: bad code %q", ErrMalformedBoard, code)
		}
		l.Walls = append(l.Walls, code)
	}

	for i := 0; i < c.POIs; i++ {
		p, err := t.pos("pois")
		if err != nil {
			return nil, err
		}
		kind, err := t.take("pois")
		if err != nil {
			return nil, err
		}
		switch kind {
		case "v":
			l.POIs = append(l.POIs, POISpec{Pos: p, Kind: world.POIVictim})
		case "f":
			l.POIs = append(l.POIs, POISpec{Pos: p, Kind: world.POIFalseAlarm})
		default:
			return nil, fmt.Errorf("%w: pois: unknown kind %q", ErrMalformedBoard, kind)
		}
	}

	for i := 0; i < c.Fires; i++ {
		p, err := t.pos("fires")
		if err != nil {
			return nil, err
		}
		l.Fires = append(l.Fires, p)
	}

	for i := 0; i < c.Doors; i++ {
		a, err := t.pos("doors")
		if err != nil {
			return nil, err
		}
		b, err := t.pos("doors")
		if err != nil {
			return nil, err
		}
		l.Doors = append(l.Doors, [2]world.Position{a, b})
	}

	for i := 0; i < c.Exits; i++ {
		p, err := t.pos("exits")
		if err != nil {
			return nil, err
		}
		l.Exits = append(l.Exits, p)
	}

	if t.next != len(t.tokens) {
		return nil, fmt.Errorf("%w: %d trailing tokens", ErrMalformedBoard, len(t.tokens)-t.next)
	}
	return l, nil
}

func (l *Layout) interior(p world.Position) bool {
	return p.Row >= 1 && p.Row <= l.Rows && p.Col >= 1 && p.Col <= l.Cols
}

// Build creates the grid described by the layout
func (l *Layout) Build() (*world.Grid, error) {
	if len(l.Walls) != l.Rows*l.Cols {
		return nil, fmt.Errorf("%w: %d wall codes for a %dx%d interior", ErrMalformedBoard, len(l.Walls), l.Rows, l.Cols)
	}
	g := world.NewGrid(l.Rows+2, l.Cols+2)

	for i, code := range l.Walls {
		p := world.Pos(i/l.Cols+1, i%l.Cols+1)
		for d, dir := range world.AllDirections() {
			if code[d] == '1' {
				g.SetEdge(p, dir, world.WallEdge())
			}
		}
	}

	for _, d := range l.Doors {
		if !l.interior(d[0]) || !l.interior(d[1]) {
			return nil, fmt.Errorf("%w: door %v-%v outside the interior", ErrMalformedBoard, d[0], d[1])
		}
		dir, ok := world.DirectionBetween(d[0], d[1])
		if !ok {
			return nil, fmt.Errorf("%w: door %v-%v joins cells that are not adjacent", ErrMalformedBoard, d[0], d[1])
		}
		if !g.At(d[0]).HasWall(dir) {
			return nil, fmt.Errorf("%w: door %v-%v is not set in a wall", ErrMalformedBoard, d[0], d[1])
		}
		g.SetEdge(d[0], dir, world.DoorEdge())
	}

	for _, p := range l.Exits {
		dir, ok := l.exitSide(p)
		if !ok {
			return nil, fmt.Errorf("%w: exit %v is not on the interior border", ErrMalformedBoard, p)
		}
		g.At(p).Entrance = true
		g.SetEdge(p, dir, world.OpenEdge())
	}

	for _, poi := range l.POIs {
		if !l.interior(poi.Pos) {
			return nil, fmt.Errorf("%w: poi %v outside the interior", ErrMalformedBoard, poi.Pos)
		}
		g.At(poi.Pos).POI = poi.Kind
	}

	for _, p := range l.Fires {
		if !l.interior(p) {
			return nil, fmt.Errorf("%w: fire %v outside the interior", ErrMalformedBoard, p)
		}
		g.At(p).Hazard = world.HazardFire
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBoard, err)
	}
	return g, nil
}

// exitSide picks the exterior side an exit opens onto. Top and bottom rows
// win over the side columns.
func (l *Layout) exitSide(p world.Position) (world.Direction, bool) {
	if !l.interior(p) {
		return 0, false
	}
	switch {
	case p.Row == 1:
		return world.North, true
	case p.Row == l.Rows:
		return world.South, true
	case p.Col == 1:
		return world.West, true
	case p.Col == l.Cols:
		return world.East, true
	}
	return 0, false
}
