// Package devtools provides developer tools for testing and debugging.
package devtools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/entities"
	"rescuesim/pkg/game/setup"
	"rescuesim/pkg/game/state"
)

const mapDumpFilename = "map.txt"

// cellSymbol returns the single-character symbol for a cell (no agent overlay).
// Points of interest take precedence over hazards.
func cellSymbol(cell *world.Cell) rune {
	switch {
	case cell == nil:
		return '#'
	case cell.Outside:
		return ' '
	case cell.HasPOI():
		return entities.POITypes[cell.POI].Symbol
	default:
		return entities.HazardTypes[cell.Hazard].Symbol
	}
}

// writeMapGrid writes the grid with agents drawn as their id modulo 10
func writeMapGrid(w io.Writer, g *state.Game) {
	agents := map[world.Position]int{}
	for i := len(g.Agents) - 1; i >= 0; i-- {
		agents[g.Agents[i].Pos] = g.Agents[i].ID
	}
	grid := g.Grid()
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			if id, ok := agents[world.Pos(row, col)]; ok {
				fmt.Fprintf(w, "%d", id%10)
				continue
			}
			cell := grid.GetCell(row, col)
			if cell.Entrance && cellSymbol(cell) == '.' {
				fmt.Fprint(w, "E")
				continue
			}
			fmt.Fprintf(w, "%c", cellSymbol(cell))
		}
		fmt.Fprintln(w)
	}
}

// edges calls fn once for every non-open boundary, seen from the cell above or
// to the left of it
func edges(grid *world.Grid, fn func(p world.Position, dir world.Direction, e world.Edge)) {
	grid.ForEachCell(func(row, col int, cell *world.Cell) {
		for _, dir := range []world.Direction{world.South, world.East} {
			if e := cell.Edge(dir); !e.IsOpen() && grid.InBounds(cell.Pos().Step(dir)) {
				fn(cell.Pos(), dir, e)
			}
		}
	})
}

// DumpMap writes a full debug dump: metadata, legend, map, and detailed
// structure, agent and hazard lists. Format is human- and LLM-readable
// (sections, key: value, consistent structure).
func DumpMap(w io.Writer, g *state.Game) {
	grid := g.Grid()

	// --- Metadata ---
	fmt.Fprintln(w, "=== MAP DUMP DEBUG (structure, agents, hazards) ===")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "--- Metadata ---")
	fmt.Fprintf(w, "seed: %d\n", g.Config.Seed)
	fmt.Fprintf(w, "turn: %d\n", g.Turn)
	fmt.Fprintf(w, "grid_rows: %d\n", grid.Rows())
	fmt.Fprintf(w, "grid_cols: %d\n", grid.Cols())
	fmt.Fprintf(w, "coordinate_system: row,col (0-based, row=vertical, col=horizontal)\n")
	fmt.Fprintf(w, "structural_damage_left: %d\n", g.Structure.DamageLeft)
	fmt.Fprintf(w, "saved: %d\n", g.Saved)
	fmt.Fprintf(w, "lost: %d\n", g.Lost)
	fmt.Fprintf(w, "agent_casualties: %d\n", g.AgentCasualties)
	fmt.Fprintf(w, "result: %s\n", g.Outcome.Result)
	if g.Outcome.Reason != state.ReasonNone {
		fmt.Fprintf(w, "reason: %s\n", g.Outcome.Reason)
	}
	fmt.Fprintln(w, "")

	// --- Legend ---
	fmt.Fprintln(w, "--- Legend (cell symbols) ---")
	fmt.Fprintln(w, ". = clear  s = smoke  F = fire  v = victim  f = false alarm  E = entrance  0-9 = agent id  (blank) = outside")
	fmt.Fprintln(w, "")

	// --- Map ---
	fmt.Fprintln(w, "--- Map ---")
	writeMapGrid(w, g)
	fmt.Fprintln(w, "")

	// --- Structure ---
	fmt.Fprintln(w, "Walls:")
	edges(grid, func(p world.Position, dir world.Direction, e world.Edge) {
		if e.IsWall() {
			fmt.Fprintf(w, "  cell: %d,%d side: %s health: %d\n", p.Row, p.Col, dir.Side(), e.Health)
		}
	})
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "Doors:")
	edges(grid, func(p world.Position, dir world.Direction, e world.Edge) {
		if e.IsDoor() {
			n := p.Step(dir)
			fmt.Fprintf(w, "  cell1: %d,%d cell2: %d,%d\n", p.Row, p.Col, n.Row, n.Col)
		}
	})
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "Entrances:")
	grid.ForEachCell(func(row, col int, cell *world.Cell) {
		if cell.Entrance {
			fmt.Fprintf(w, "  row: %d col: %d\n", row, col)
		}
	})
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "Sealed cells (reachable only by demolition):")
	sealed := setup.Sealed(grid)
	if len(sealed) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range sealed {
		fmt.Fprintf(w, "  row: %d col: %d\n", p.Row, p.Col)
	}
	fmt.Fprintln(w, "")

	// --- Agents ---
	fmt.Fprintln(w, "Agents:")
	for _, a := range g.Agents {
		target := "none"
		if a.Target != nil {
			target = fmt.Sprintf("%d,%d", a.Target.Row, a.Target.Col)
		}
		fmt.Fprintf(w, "  id: %d row: %d col: %d ap: %d carrying: %v target: %s target_kind: %s\n",
			a.ID, a.Pos.Row, a.Pos.Col, a.AP, a.Carrying(), target, a.TargetKind)
	}
	fmt.Fprintln(w, "")

	// --- Points of interest and hazards ---
	fmt.Fprintln(w, "Points of interest:")
	for _, p := range g.POIs {
		info := entities.POITypes[grid.At(p).POI]
		fmt.Fprintf(w, "  row: %d col: %d type: %s\n", p.Row, p.Col, info.Name)
	}
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "Hazards:")
	grid.ForEachCell(func(row, col int, cell *world.Cell) {
		if cell.Hazard == world.HazardNone {
			return
		}
		fmt.Fprintf(w, "  row: %d col: %d type: %s\n", row, col, entities.HazardTypes[cell.Hazard].Name)
	})
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "=== END MAP DUMP ===")
}

// DumpMapToFile writes DumpMap output to map.txt in dir and returns its
// absolute path
func DumpMapToFile(g *state.Game, dir string) (string, error) {
	absPath, err := filepath.Abs(filepath.Join(dir, mapDumpFilename))
	if err != nil {
		return "", err
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	DumpMap(f, g)

	if err := f.Sync(); err != nil {
		return absPath, err
	}
	return absPath, nil
}
