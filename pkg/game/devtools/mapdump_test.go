package devtools

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/state"
)

func devGame(t *testing.T) *state.Game {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := config.Default()
	cfg.Agents = 1
	return state.NewGame(cfg, DevGrid(), rand.New(rand.NewSource(1)), log)
}

func TestDevGrid_Valid(t *testing.T) {
	if err := DevGrid().Validate(); err != nil {
		t.Errorf("DevGrid().Validate() = %v", err)
	}
}

func TestDumpMap(t *testing.T) {
	g := devGame(t)
	var buf bytes.Buffer
	DumpMap(&buf, g)
	out := buf.String()

	for _, want := range []string{
		"grid_rows: 5",
		"cell: 1,4 side: right health: 1",
		"cell1: 1,1 cell2: 2,1",
		"type: Victim",
		"type: False alarm",
		"type: Fire",
		"type: Smoke",
		"id: 0 row:",
		"=== END MAP DUMP ===",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DumpMap() missing %q:\n%s", want, out)
		}
	}

	sealed := out[strings.Index(out, "Sealed cells"):strings.Index(out, "Agents:")]
	if !strings.Contains(sealed, "row: 3 col: 5") {
		t.Errorf("sealed section = %q, want cell 3,5", sealed)
	}
}

func TestDumpMap_Grid(t *testing.T) {
	g := devGame(t)
	g.Agents[0].Pos = g.Grid().Exterior()[0]
	var buf bytes.Buffer
	writeMapGrid(&buf, g)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("map has %d lines, want 5", len(lines))
	}
	if got, want := lines[1], " vfsF. "; got != want {
		t.Errorf("row 1 = %q, want %q", got, want)
	}
	if got := lines[2][1]; got != 'E' {
		t.Errorf("entrance cell = %q, want 'E'", got)
	}
	if got := lines[0][0]; got != '0' {
		t.Errorf("agent cell = %q, want '0'", got)
	}
}

func TestDumpMapToFile(t *testing.T) {
	g := devGame(t)
	path, err := DumpMapToFile(g, t.TempDir())
	if err != nil {
		t.Fatalf("DumpMapToFile() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("=== MAP DUMP DEBUG")) {
		t.Errorf("dump starts with %q", b[:20])
	}
}
