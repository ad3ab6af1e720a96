// Package scene describes sandbox scenes in YAML and builds the bodies
// and world they declare.
package scene

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	ShapeBox    = "box"
	ShapeSphere = "sphere"
)

var ErrInvalidScene = errors.New("invalid scene")

// Config is the root of a scene file
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Grids      []GridConfig     `yaml:"grids,omitempty"`
	Bodies     []BodyConfig     `yaml:"bodies,omitempty"`
}

type SimulationConfig struct {
	// Paused defaults to true when omitted
	Paused        *bool   `yaml:"paused,omitempty"`
	Workers       int     `yaml:"workers,omitempty"`
	CellSize      float64 `yaml:"cell_size,omitempty"`
	TimeStep      float64 `yaml:"time_step,omitempty"`
	KickMagnitude float64 `yaml:"kick_magnitude,omitempty"`
	// SpinDegreesPerSecond turns every movable body around the axis from
	// the origin to its position, for display only
	SpinDegreesPerSecond float64 `yaml:"spin_degrees_per_second,omitempty"`
}

// BodyConfig declares a single body
type BodyConfig struct {
	Shape    string          `yaml:"shape"`
	Size     mgl64.Vec3      `yaml:"size,omitempty"`
	Radius   float64         `yaml:"radius,omitempty"`
	Position mgl64.Vec3      `yaml:"position,omitempty"`
	Rotation *RotationConfig `yaml:"rotation,omitempty"`
	// Mass wins over Density; with neither the body keeps a mass of 1
	Mass    float64 `yaml:"mass,omitempty"`
	Density float64 `yaml:"density,omitempty"`
	Static  bool    `yaml:"static,omitempty"`
}

type RotationConfig struct {
	Axis    mgl64.Vec3 `yaml:"axis"`
	Degrees float64    `yaml:"degrees"`
}

// GridConfig fills the integer lattice [Min, Max) with bodies placed at
// Spacing * (x, y, z), alternating boxes on odd x+y+z and spheres on
// even x+y+z.
type GridConfig struct {
	Min          [3]int     `yaml:"min"`
	Max          [3]int     `yaml:"max"`
	Spacing      float64    `yaml:"spacing"`
	BoxSize      mgl64.Vec3 `yaml:"box_size"`
	SphereRadius float64    `yaml:"sphere_radius"`
}

// Load decodes a YAML scene and validates it
func Load(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile opens and loads a YAML scene file
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// IsPaused reports the initial pause state, true when unspecified
func (s SimulationConfig) IsPaused() bool {
	return s.Paused == nil || *s.Paused
}

// Validate checks the structure of the scene. Shape dimensions and
// masses are checked again when the bodies are built.
func (c *Config) Validate() error {
	sim := c.Simulation
	if sim.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidScene, sim.Workers)
	}
	if !nonNegative(sim.CellSize) {
		return fmt.Errorf("%w: cell_size must not be negative, got %v", ErrInvalidScene, sim.CellSize)
	}
	if !nonNegative(sim.TimeStep) {
		return fmt.Errorf("%w: time_step must not be negative, got %v", ErrInvalidScene, sim.TimeStep)
	}
	if !nonNegative(sim.KickMagnitude) {
		return fmt.Errorf("%w: kick_magnitude must not be negative, got %v", ErrInvalidScene, sim.KickMagnitude)
	}

	for i, g := range c.Grids {
		if !(g.Spacing > 0) {
			return fmt.Errorf("%w: grid %d: spacing must be positive, got %v", ErrInvalidScene, i, g.Spacing)
		}
		for axis := 0; axis < 3; axis++ {
			if g.Min[axis] > g.Max[axis] {
				return fmt.Errorf("%w: grid %d: min %v exceeds max %v", ErrInvalidScene, i, g.Min, g.Max)
			}
		}
	}

	for i, b := range c.Bodies {
		switch b.Shape {
		case ShapeBox, ShapeSphere:
		default:
			return fmt.Errorf("%w: body %d: unknown shape %q", ErrInvalidScene, i, b.Shape)
		}
		if !nonNegative(b.Mass) || !nonNegative(b.Density) {
			return fmt.Errorf("%w: body %d: mass and density must not be negative", ErrInvalidScene, i)
		}
		if b.Rotation != nil && b.Rotation.Axis.Len() == 0 {
			return fmt.Errorf("%w: body %d: rotation axis must not be zero", ErrInvalidScene, i)
		}
	}

	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
