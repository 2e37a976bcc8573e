package layout

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed boards/default.txt
var defaultBoard string

// Source is anything that can produce a layout
type Source interface {
	Load() (*Layout, error)
	Name() string
}

// FileSource reads a board from disk
type FileSource struct {
	Path   string
	Counts Counts
}

func (s FileSource) Load() (*Layout, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	defer f.Close()
	l, err := Parse(f, s.Counts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return l, nil
}

func (s FileSource) Name() string {
	return s.Path
}

// BuiltinSource serves the board compiled into the binary
type BuiltinSource struct{}

func (BuiltinSource) Load() (*Layout, error) {
	return Parse(strings.NewReader(defaultBoard), DefaultCounts)
}

func (BuiltinSource) Name() string {
	return "builtin"
}

// DefaultSource is used when no board file is configured
var DefaultSource Source = BuiltinSource{}
