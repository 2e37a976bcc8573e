// Package replay records the per-turn history of a run in the document
// format read by visual clients, and reads it back.
package replay

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"rescuesim/pkg/engine/world"
	"rescuesim/pkg/game/state"
	"rescuesim/pkg/game/structure"
)

//go:embed history.schema.json
var historySchema string

// Step wraps one turn's list of entries
type Step[T any] struct {
	Step int `json:"step"`
	Data []T `json:"data"`
}

// StepCount is a per-turn delta
type StepCount struct {
	Step  int `json:"step"`
	Count int `json:"count"`
}

// StepValue is a per-turn absolute value
type StepValue struct {
	Step  int `json:"step"`
	Value int `json:"value"`
}

type AgentEntry struct {
	AgentID    int             `json:"agent_id"`
	Position   world.Position  `json:"position"`
	CarryState int             `json:"carry_state"`
	Target     *world.Position `json:"target"`
}

type HazardEntry struct {
	Position world.Position `json:"position"`
	State    string         `json:"state"`
}

// Document is the full history of a run
type Document struct {
	Agents               []Step[AgentEntry]              `json:"agents"`
	FireExpansion        []Step[HazardEntry]             `json:"fire_expansion"`
	SmokeExpansion       []Step[HazardEntry]             `json:"smoke_expansion"`
	POIs                 []Step[state.POIView]           `json:"pois"`
	VictimsDead          []StepCount                     `json:"victims_dead"`
	AgentsDead           []StepCount                     `json:"agents_dead"`
	SavedLives           []StepCount                     `json:"saved_lifes"`
	StructuralDamageLeft []StepValue                     `json:"structural_damage_left"`
	DestroyedDoors       []Step[structure.DestroyedDoor] `json:"destroyed_doors"`
	DestroyedWalls       []Step[structure.DestroyedWall] `json:"destroyed_walls"`
	OpenDoors            []Step[[2]world.Position]       `json:"open_doors"`
}

// NewDocument returns an empty document whose lists encode as [] rather than null
func NewDocument() *Document {
	return &Document{
		Agents:               []Step[AgentEntry]{},
		FireExpansion:        []Step[HazardEntry]{},
		SmokeExpansion:       []Step[HazardEntry]{},
		POIs:                 []Step[state.POIView]{},
		VictimsDead:          []StepCount{},
		AgentsDead:           []StepCount{},
		SavedLives:           []StepCount{},
		StructuralDamageLeft: []StepValue{},
		DestroyedDoors:       []Step[structure.DestroyedDoor]{},
		DestroyedWalls:       []Step[structure.DestroyedWall]{},
		OpenDoors:            []Step[[2]world.Position]{},
	}
}

// Steps returns the number of recorded turns
func (d *Document) Steps() int {
	return len(d.Agents)
}

// Recorder turns snapshots into a Document
type Recorder struct {
	doc *Document

	lost, casualties, saved int
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{doc: NewDocument()}
}

// Observe appends one turn. Counts are recorded as deltas against the
// previous observation.
func (r *Recorder) Observe(s state.Snapshot) {
	d := r.doc
	step := d.Steps()

	agents := make([]AgentEntry, 0, len(s.Agents))
	for _, a := range s.Agents {
		agents = append(agents, AgentEntry{
			AgentID:    a.ID,
			Position:   a.Pos,
			CarryState: a.Carry,
			Target:     a.Target,
		})
	}
	d.Agents = append(d.Agents, Step[AgentEntry]{Step: step, Data: agents})
	d.FireExpansion = append(d.FireExpansion, Step[HazardEntry]{Step: step, Data: hazardEntries(s.Fire, "fire")})
	d.SmokeExpansion = append(d.SmokeExpansion, Step[HazardEntry]{Step: step, Data: hazardEntries(s.Smoke, "smoke")})
	d.POIs = append(d.POIs, Step[state.POIView]{Step: step, Data: orEmpty(s.POIs)})

	d.VictimsDead = append(d.VictimsDead, StepCount{Step: step, Count: s.Lost - r.lost})
	d.AgentsDead = append(d.AgentsDead, StepCount{Step: step, Count: s.AgentCasualties - r.casualties})
	d.SavedLives = append(d.SavedLives, StepCount{Step: step, Count: s.Saved - r.saved})
	d.StructuralDamageLeft = append(d.StructuralDamageLeft, StepValue{Step: step, Value: s.DamageLeft})
	r.lost, r.casualties, r.saved = s.Lost, s.AgentCasualties, s.Saved

	d.DestroyedDoors = append(d.DestroyedDoors, Step[structure.DestroyedDoor]{Step: step, Data: orEmpty(s.DestroyedDoors)})
	d.DestroyedWalls = append(d.DestroyedWalls, Step[structure.DestroyedWall]{Step: step, Data: orEmpty(s.DestroyedWalls)})
	d.OpenDoors = append(d.OpenDoors, Step[[2]world.Position]{Step: step, Data: orEmpty(s.OpenDoors)})
}

// Document returns the history recorded so far
func (r *Recorder) Document() *Document {
	return r.doc
}

func hazardEntries(cells []world.Position, label string) []HazardEntry {
	out := make([]HazardEntry, 0, len(cells))
	for _, p := range cells {
		out = append(out, HazardEntry{Position: p, State: label})
	}
	return out
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Validate checks an encoded document against the history schema
func Validate(raw []byte) error {
	schema, err := jsonschema.CompileString("history.schema.json", historySchema)
	if err != nil {
		return fmt.Errorf("compile history schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("history does not match schema: %w", err)
	}
	return nil
}
