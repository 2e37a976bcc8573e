// Package config loads run tuning from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Seed     int64 `yaml:"seed"`
	Agents   int   `yaml:"agents"`
	MaxTurns int   `yaml:"max_turns"`

	StructuralDamage int `yaml:"structural_damage"`
	LostLivesLimit   int `yaml:"lost_lives_limit"`
	SavedLivesGoal   int `yaml:"saved_lives_goal"`

	MinActivePOIs           int `yaml:"min_active_pois"`
	FireAssignmentThreshold int `yaml:"fire_assignment_threshold"`

	ActionPoints ActionPoints `yaml:"action_points"`
	Board        Board        `yaml:"board"`

	LogLevel string `yaml:"log_level"`
}

type ActionPoints struct {
	Initial int `yaml:"initial"`
	PerTurn int `yaml:"per_turn"`
	Max     int `yaml:"max"`
}

// Board describes the layout file. An empty Path selects the built-in board
// unless Generate asks for a random board grown from Seed.
type Board struct {
	Path     string `yaml:"path"`
	Generate bool   `yaml:"generate"`
	Seed     int64  `yaml:"seed"`

	Rows  int `yaml:"rows"`
	Cols  int `yaml:"cols"`
	POIs  int `yaml:"pois"`
	Fires int `yaml:"fires"`
	Doors int `yaml:"doors"`
	Exits int `yaml:"exits"`
}

// Default returns the classic rules: six agents, a damage budget of 24, four
// lost lives to lose and seven saved to win on a 6x8 interior.
func Default() Config {
	return Config{
		Seed:                    1,
		Agents:                  6,
		MaxTurns:                1000,
		StructuralDamage:        24,
		LostLivesLimit:          4,
		SavedLivesGoal:          7,
		MinActivePOIs:           3,
		FireAssignmentThreshold: 3,
		ActionPoints: ActionPoints{
			Initial: 4,
			PerTurn: 4,
			Max:     8,
		},
		Board: Board{
			Rows:  6,
			Cols:  8,
			POIs:  3,
			Fires: 10,
			Doors: 8,
			Exits: 4,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks that the tuning describes a playable run
func (c Config) Validate() error {
	switch {
	case c.Agents <= 0:
		return fmt.Errorf("%w: agents must be positive, got %d", ErrInvalid, c.Agents)
	case c.MaxTurns <= 0:
		return fmt.Errorf("%w: max_turns must be positive, got %d", ErrInvalid, c.MaxTurns)
	case c.StructuralDamage <= 0:
		return fmt.Errorf("%w: structural_damage must be positive, got %d", ErrInvalid, c.StructuralDamage)
	case c.LostLivesLimit <= 0 || c.SavedLivesGoal <= 0:
		return fmt.Errorf("%w: lost_lives_limit and saved_lives_goal must be positive", ErrInvalid)
	case c.MinActivePOIs < 0 || c.FireAssignmentThreshold < 0:
		return fmt.Errorf("%w: min_active_pois and fire_assignment_threshold must not be negative", ErrInvalid)
	case c.ActionPoints.Initial < 0 || c.ActionPoints.PerTurn <= 0:
		return fmt.Errorf("%w: action_points initial must be >= 0 and per_turn > 0", ErrInvalid)
	case c.ActionPoints.Max < c.ActionPoints.PerTurn:
		return fmt.Errorf("%w: action_points max %d below per_turn %d", ErrInvalid, c.ActionPoints.Max, c.ActionPoints.PerTurn)
	case c.ActionPoints.Initial > c.ActionPoints.Max:
		return fmt.Errorf("%w: action_points initial %d above max %d", ErrInvalid, c.ActionPoints.Initial, c.ActionPoints.Max)
	case c.Board.Rows <= 0 || c.Board.Cols <= 0:
		return fmt.Errorf("%w: board must have a positive interior, got %dx%d", ErrInvalid, c.Board.Rows, c.Board.Cols)
	case c.Board.POIs < 0 || c.Board.Fires < 0 || c.Board.Doors < 0 || c.Board.Exits <= 0:
		return fmt.Errorf("%w: board section counts must not be negative and exits must be positive", ErrInvalid)
	}
	return nil
}
