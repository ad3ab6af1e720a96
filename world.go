package sandbox

import (
	"math"

	"github.com/akmonengine/sandbox/actor"
	"go.uber.org/zap"
)

const (
	DEFAULT_WORKERS   = 1
	DEFAULT_CELL_SIZE = 4.0
	DEFAULT_GRID_SIZE = 4096
)

// World drives the per-frame simulation of a set of bodies. Bodies do
// not interact with each other: a step integrates each body on its own
// and clears every force accumulator.
type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Paused freezes integration, forces are still cleared every step
	Paused      bool
	Workers     int
	SpatialGrid *SpatialGrid
	Logger      *zap.Logger

	Events Events
}

type Option func(w *World)

func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		w.Logger = logger
	}
}

func WithWorkers(workers int) Option {
	return func(w *World) {
		w.Workers = workers
	}
}

func WithCellSize(cellSize float64) Option {
	return func(w *World) {
		w.SpatialGrid = NewSpatialGrid(cellSize, DEFAULT_GRID_SIZE)
	}
}

func WithPaused(paused bool) Option {
	return func(w *World) {
		w.Paused = paused
	}
}

// NewWorld creates an empty world. Like the interactive sandbox it
// starts paused unless WithPaused(false) is given.
func NewWorld(opts ...Option) *World {
	w := &World{
		Paused:      true,
		Workers:     DEFAULT_WORKERS,
		SpatialGrid: NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_GRID_SIZE),
		Logger:      zap.NewNop(),
		Events:      NewEvents(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}
}

func (w *World) SetPaused(paused bool) {
	if w.Paused != paused {
		w.logger().Info("pause state changed", zap.Bool("paused", paused))
	}
	w.Paused = paused
}

func (w *World) TogglePause() {
	w.SetPaused(!w.Paused)
}

// Step advances the world by dt. When not paused every body is updated;
// then, whatever the pause state, every force and torque accumulator is
// cleared. All updates complete before the first clear.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Events.processPauseEvents(w.Paused)

	if !w.Paused {
		if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
			w.logger().Warn("skipping integration for invalid time step", zap.Float64("dt", dt))
		} else {
			w.integrate(dt)
		}
	}

	w.clearForces()
	w.Events.flush()
}

func (w *World) integrate(dt float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Update(dt)
	})
}

func (w *World) clearForces() {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.ClearForces()
	})
}

func (w *World) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}
