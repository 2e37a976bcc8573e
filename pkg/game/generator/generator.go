// Package generator creates random boards.
package generator

import (
	"fmt"
	"math/rand"

	"rescuesim/pkg/game/layout"
)

// GridGenerator is an interface for board generation algorithms
type GridGenerator interface {
	Generate(rng *rand.Rand, c layout.Counts) (*layout.Layout, error)
	Name() string
}

// Available generators
var (
	BSP = &BSPGenerator{}
)

// DefaultGenerator is the default board generator
var DefaultGenerator GridGenerator = BSP

// Source serves a generated board. The same seed always yields the same
// board.
type Source struct {
	Seed      int64
	Counts    layout.Counts
	Generator GridGenerator // DefaultGenerator when nil
}

func (s Source) Load() (*layout.Layout, error) {
	gen := s.Generator
	if gen == nil {
		gen = DefaultGenerator
	}
	return gen.Generate(rand.New(rand.NewSource(s.Seed)), s.Counts)
}

func (s Source) Name() string {
	gen := s.Generator
	if gen == nil {
		gen = DefaultGenerator
	}
	return fmt.Sprintf("%s:%d", gen.Name(), s.Seed)
}
