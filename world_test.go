package sandbox

import (
	"math"
	"testing"

	"github.com/akmonengine/sandbox/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func createBox(t testing.TB, position mgl64.Vec3, size mgl64.Vec3) *actor.RigidBody {
	t.Helper()
	body, err := actor.NewBox(size)
	require.NoError(t, err)
	body.Transform.Position = position
	return body
}

func createSphere(t testing.TB, position mgl64.Vec3, radius float64) *actor.RigidBody {
	t.Helper()
	body, err := actor.NewSphere(radius)
	require.NoError(t, err)
	body.Transform.Position = position
	return body
}

func TestNewWorld_Defaults(t *testing.T) {
	world := NewWorld()

	assert.True(t, world.Paused)
	assert.Equal(t, DEFAULT_WORKERS, world.Workers)
	assert.NotNil(t, world.SpatialGrid)
	assert.NotNil(t, world.Logger)
	assert.Empty(t, world.Bodies)
}

func TestNewWorld_Options(t *testing.T) {
	logger := zap.NewExample()
	world := NewWorld(WithPaused(false), WithWorkers(4), WithCellSize(2), WithLogger(logger))

	assert.False(t, world.Paused)
	assert.Equal(t, 4, world.Workers)
	assert.Equal(t, 2.0, world.SpatialGrid.cellSize)
	assert.Same(t, logger, world.Logger)
}

func TestWithCellSize_InvalidFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name     string
		cellSize float64
	}{
		{"zero", 0},
		{"negative", -4},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld(WithCellSize(tt.cellSize))
			require.Equal(t, DEFAULT_CELL_SIZE, world.SpatialGrid.cellSize)

			sphere := createSphere(t, mgl64.Vec3{}, 1)
			world.AddBody(sphere)
			found := world.QueryAABB(actor.AABB{Min: mgl64.Vec3{-2, -2, -2}, Max: mgl64.Vec3{2, 2, 2}})
			assert.Equal(t, []*actor.RigidBody{sphere}, found)
		})
	}
}

func TestWorld_AddRemoveBody(t *testing.T) {
	world := NewWorld()
	a := createSphere(t, mgl64.Vec3{}, 1)
	b := createSphere(t, mgl64.Vec3{}, 1)
	c := createSphere(t, mgl64.Vec3{}, 1)

	world.AddBody(a)
	world.AddBody(b)
	world.AddBody(c)
	world.RemoveBody(b)

	assert.Equal(t, []*actor.RigidBody{a, c}, world.Bodies)

	// Removing an unknown body is a no-op
	world.RemoveBody(b)
	assert.Len(t, world.Bodies, 2)
}

func TestWorld_TogglePause(t *testing.T) {
	world := NewWorld(WithPaused(false))
	world.TogglePause()
	assert.True(t, world.Paused)
	world.SetPaused(false)
	assert.False(t, world.Paused)
}

func TestStep_FreeBodyUnderConstantForce(t *testing.T) {
	const (
		dt   = 0.1
		mass = 2.0
	)
	force := mgl64.Vec3{0, -9.81 * mass, 0}

	world := NewWorld(WithPaused(false))
	body := createSphere(t, mgl64.Vec3{}, 1)
	require.NoError(t, body.SetMass(mass))
	world.AddBody(body)

	body.ApplyForce(body.Position(), force)
	world.Step(dt)

	assert.InDelta(t, force.Y()*dt, body.Momentum.Y(), 1e-12)
	assert.InDelta(t, force.Y()*dt*dt/mass, body.Position().Y(), 1e-12)
	assert.Equal(t, mgl64.Vec3{}, body.Force())
	assert.Equal(t, mgl64.Vec3{}, body.Torque())
}

func TestStep_PausedClearsForcesWithoutMoving(t *testing.T) {
	world := NewWorld(WithPaused(true))
	body := createSphere(t, mgl64.Vec3{1, 2, 3}, 1)
	body.Momentum = mgl64.Vec3{1, 0, 0}
	world.AddBody(body)

	body.ApplyForce(mgl64.Vec3{1, 3, 3}, mgl64.Vec3{10, 0, 0})
	world.Step(1)

	assert.Equal(t, mgl64.Vec3{1, 2, 3}, body.Position())
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, body.Momentum)
	assert.Equal(t, mgl64.Vec3{}, body.Force())
	assert.Equal(t, mgl64.Vec3{}, body.Torque())

	// The force applied while paused must not leak into the next step
	world.SetPaused(false)
	world.Step(1)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, body.Momentum)
	assert.InDelta(t, 2.0, body.Position().X(), 1e-12)
}

func TestStep_ImmovableBody(t *testing.T) {
	world := NewWorld(WithPaused(false))
	ground := createBox(t, mgl64.Vec3{0, -21, 0}, mgl64.Vec3{100, 2, 100})
	ground.BodyType = actor.BodyTypeStatic
	world.AddBody(ground)

	ground.ApplyForce(ground.Position(), mgl64.Vec3{0, 1000, 0})
	world.Step(1)

	assert.Equal(t, mgl64.Vec3{0, -21, 0}, ground.Position())
	assert.Equal(t, mgl64.Vec3{}, ground.Momentum)
}

func TestStep_InvalidTimeStep(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	world := NewWorld(WithPaused(false), WithLogger(zap.New(core)))
	body := createSphere(t, mgl64.Vec3{}, 1)
	body.Momentum = mgl64.Vec3{1, 0, 0}
	world.AddBody(body)

	for _, dt := range []float64{-1, math.NaN(), math.Inf(1)} {
		body.ApplyForce(body.Position(), mgl64.Vec3{1, 0, 0})
		world.Step(dt)

		assert.Equal(t, mgl64.Vec3{}, body.Position())
		assert.Equal(t, mgl64.Vec3{}, body.Force(), "forces are cleared even when integration is skipped")
	}
	assert.Equal(t, 3, logs.FilterMessage("skipping integration for invalid time step").Len())
}

func TestStep_ZeroValueWorld(t *testing.T) {
	world := &World{}
	body := createSphere(t, mgl64.Vec3{}, 1)
	world.AddBody(body)

	body.ApplyForce(body.Position(), mgl64.Vec3{0, 1, 0})
	world.Step(1)

	assert.InDelta(t, 1.0, body.Position().Y(), 1e-12)
	assert.Equal(t, mgl64.Vec3{}, body.Force())
}

func TestStep_WorkersMatchSequential(t *testing.T) {
	build := func(workers int) *World {
		world := NewWorld(WithPaused(false), WithWorkers(workers))
		for i := 0; i < 50; i++ {
			body := createBox(t, mgl64.Vec3{float64(i), 0, 0}, mgl64.Vec3{1, 2, 3})
			body.AngularMomentum = mgl64.Vec3{0.1 * float64(i), 0.2, 0}
			world.AddBody(body)
		}
		return world
	}

	sequential := build(1)
	parallel := build(7)
	for step := 0; step < 20; step++ {
		for i := range sequential.Bodies {
			f := mgl64.Vec3{0, -9.81, float64(i)}
			p := mgl64.Vec3{float64(i), 1, 0}
			sequential.Bodies[i].ApplyForce(p, f)
			parallel.Bodies[i].ApplyForce(p, f)
		}
		sequential.Step(1.0 / 60.0)
		parallel.Step(1.0 / 60.0)
	}

	for i := range sequential.Bodies {
		assert.Equal(t, sequential.Bodies[i].Transform, parallel.Bodies[i].Transform)
		assert.Equal(t, sequential.Bodies[i].Momentum, parallel.Bodies[i].Momentum)
	}
}

func BenchmarkWorldStep(b *testing.B) {
	world := NewWorld(WithPaused(false), WithWorkers(4))
	for x := -5; x < 5; x++ {
		for y := -5; y < 5; y++ {
			for z := -5; z < 5; z++ {
				world.AddBody(createBox(b, mgl64.Vec3{float64(2 * x), float64(2 * y), float64(2 * z)}, mgl64.Vec3{1, 1, 1}))
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, body := range world.Bodies {
			body.ApplyForce(body.Position(), mgl64.Vec3{0, -9.81, 0})
		}
		world.Step(1.0 / 60.0)
	}
}
