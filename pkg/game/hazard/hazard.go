// Package hazard escalates smoke and fire across the structure.
package hazard

import (
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/stack"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/structure"
)

// EventKind describes what a snowfall did to the cell it hit
type EventKind int

const (
	EventSmoke EventKind = iota
	EventFire
	EventAvalanche
)

func (k EventKind) String() string {
	switch k {
	case EventSmoke:
		return "smoke"
	case EventFire:
		return "fire"
	case EventAvalanche:
		return "avalanche"
	default:
		return "unknown"
	}
}

// Event is the outcome of one escalation
type Event struct {
	Pos  world.Position
	Kind EventKind
}

// Propagator applies hazard rules to a structure
type Propagator struct {
	s   *structure.Structure
	rng *rand.Rand
	log logrus.FieldLogger
}

// NewPropagator creates a propagator drawing randomness from rng
func NewPropagator(s *structure.Structure, rng *rand.Rand, log logrus.FieldLogger) *Propagator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Propagator{s: s, rng: rng, log: log}
}

// Snowfall escalates a uniformly chosen interior cell
func (p *Propagator) Snowfall() Event {
	interior := p.s.Grid.Interior()
	target := interior[p.rng.Intn(len(interior))]
	ev := p.Escalate(target)
	p.log.WithFields(logrus.Fields{"cell": ev.Pos, "result": ev.Kind}).Debug("snowfall")
	return ev
}

// Escalate raises the hazard of one cell by a level. A cell already on fire
// triggers an avalanche instead.
func (p *Propagator) Escalate(pos world.Position) Event {
	cell := p.s.Grid.At(pos)
	switch cell.Hazard {
	case world.HazardNone:
		cell.Hazard = world.HazardSmoke
		return Event{Pos: pos, Kind: EventSmoke}
	case world.HazardSmoke:
		cell.Hazard = world.HazardFire
		return Event{Pos: pos, Kind: EventFire}
	default:
		p.Avalanche(pos)
		return Event{Pos: pos, Kind: EventAvalanche}
	}
}

type frame struct {
	at  world.Position
	dir world.Direction
}

// Avalanche pushes fire outward from origin in every direction. In each
// direction the chain stops at the first door (removed), the first wall
// (eroded), or the first cell not yet burning (ignited). Burning cells
// reached through open edges pass the chain along. Exterior cells end the
// chain untouched.
func (p *Propagator) Avalanche(origin world.Position) {
	g := p.s.Grid
	work := stack.New[frame]()

	dirs := world.AllDirections()
	for i := len(dirs) - 1; i >= 0; i-- {
		work.Push(frame{at: origin, dir: dirs[i]})
	}

	for work.Size() > 0 {
		f := work.Pop()
		cell := g.At(f.at)
		if cell == nil || cell.Outside {
			continue
		}
		if !cell.OnFire() {
			cell.Hazard = world.HazardFire
			p.log.WithField("cell", f.at).Debug("avalanche ignited cell")
			continue
		}

		next := f.at.Step(f.dir)
		if !g.InBounds(next) {
			continue
		}
		switch edge := cell.Edge(f.dir); {
		case edge.IsDoor():
			p.s.RemoveDoor(f.at, f.dir)
		case edge.IsWall():
			p.s.ErodeWall(f.at, f.dir)
		default:
			work.Push(frame{at: next, dir: f.dir})
		}
	}
}

// Cells returns the positions holding the given hazard level in row-major order
func Cells(g *world.Grid, level world.Hazard) []world.Position {
	var out []world.Position
	g.ForEachCell(func(_, _ int, cell *world.Cell) {
		if cell.Hazard == level {
			out = append(out, cell.Pos())
		}
	})
	return out
}

// SpreadSmoke turns smoke into fire where a smoke cell has a burning neighbor
// across an open edge. Only the first such cell converts per pass and the scan
// restarts from the top, so fire advances one hop per pass. It returns the
// remaining smoke and the extended fire list.
func (p *Propagator) SpreadSmoke(smoke, fire []world.Position) ([]world.Position, []world.Position) {
	g := p.s.Grid
	for {
		converted := -1
		for i, pos := range smoke {
			if touchesFire(g, pos) {
				converted = i
				break
			}
		}
		if converted < 0 {
			return smoke, fire
		}

		pos := smoke[converted]
		g.At(pos).Hazard = world.HazardFire
		fire = append(fire, pos)
		smoke = append(smoke[:converted:converted], smoke[converted+1:]...)
		p.log.WithField("cell", pos).Debug("smoke caught fire")
	}
}

func touchesFire(g *world.Grid, pos world.Position) bool {
	cell := g.At(pos)
	for _, dir := range world.AllDirections() {
		n := g.At(pos.Step(dir))
		if n != nil && n.OnFire() && cell.Edge(dir).IsOpen() {
			return true
		}
	}
	return false
}
