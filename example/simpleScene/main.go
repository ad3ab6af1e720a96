package main

import (
	"bytes"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/akmonengine/sandbox"
	"github.com/akmonengine/sandbox/actor"
	"github.com/akmonengine/sandbox/internal/logging"
	"github.com/akmonengine/sandbox/recording"
	"github.com/akmonengine/sandbox/scene"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

//go:embed scene.yaml
var defaultScene []byte

const (
	defaultTimeStep = 1.0 / 60.0
	defaultKick     = 50.0
)

func main() {
	scenePath := flag.String("scene", "", "YAML scene file, the built-in lattice when empty")
	frames := flag.Int("frames", 600, "number of frames to simulate")
	dt := flag.Float64("dt", 0, "time step in seconds, overrides the scene time_step")
	kickFrame := flag.Int("kick-frame", 60, "frame at which the camera ray kicks the body in front of it, negative to disable")
	impulse := flag.Float64("impulse", 0, "impulse added along the camera ray to the kicked body, 0 to disable")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *scenePath, *frames, *dt, *kickFrame, *impulse); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, scenePath string, frames int, dt float64, kickFrame int, impulse float64) error {
	cfg, err := loadScene(scenePath)
	if err != nil {
		return err
	}

	world, err := cfg.NewWorld(scene.NewShapeCache(), sandbox.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	if dt <= 0 {
		dt = cfg.Simulation.TimeStep
	}
	if dt <= 0 {
		dt = defaultTimeStep
	}
	magnitude := cfg.Simulation.KickMagnitude
	if magnitude == 0 {
		magnitude = defaultKick
	}
	spin := mgl64.DegToRad(cfg.Simulation.SpinDegreesPerSecond)

	world.Events.Subscribe(sandbox.KICK, func(event sandbox.Event) {
		kick := event.(sandbox.KickEvent)
		logger.Info("body kicked",
			zap.Stringer("body", kick.Hit.Body.ID),
			zap.String("shape", kick.Hit.Body.Shape.Type().String()),
			zap.Float64("distance", kick.Hit.Distance),
		)
	})

	// Camera on the +Z axis looking at the origin
	camera := actor.Ray{Origin: mgl64.Vec3{0.2, 0.1, 40}, Direction: mgl64.Vec3{0, 0, -1}}

	extent := sceneExtent(world.Bounds())
	logger.Info("scene loaded",
		zap.Int("bodies", len(world.Bodies)),
		zap.Bool("paused", world.Paused),
		zap.Float64("dt", dt),
		zap.Int("frames", frames),
		zap.Any("extent_center", extent.Center()),
		zap.Any("extent_size", extent.Size()),
		zap.Bool("camera_inside_extent", extent.ContainsPoint(camera.Origin)),
	)

	var rec recording.Recording
	for frame := 0; frame < frames; frame++ {
		if frame == kickFrame {
			hit, ok := world.Kick(camera, magnitude)
			if !ok {
				logger.Warn("kick missed", zap.Int("frame", frame))
			} else if impulse != 0 {
				hit.Body.ApplyImpulse(hit.Point, camera.Direction.Normalize().Mul(impulse))
			}
		}

		if !world.Paused && spin != 0 {
			spinBodies(world.Bodies, spin*dt)
		}

		world.Step(dt)
		rec.SaveFrame(world.Bodies)

		if frame%60 == 0 {
			logger.Debug("frame",
				zap.Int("frame", frame),
				zap.Int("overlapping_pairs", len(world.OverlappingPairs())),
				zap.Float64("max_speed", maxSpeed(world.Bodies)),
			)
		}
	}

	// Replay the first recorded frame to check the recording round-trips
	rec.LoadFrame(0, world.Bodies)
	logger.Info("simulation finished",
		zap.Int("recorded_frames", rec.FrameCount()),
		zap.Int("recorded_bodies", rec.BodyCount()),
		zap.Int("overlapping_pairs", len(world.OverlappingPairs())),
	)

	return nil
}

func loadScene(path string) (*scene.Config, error) {
	if path == "" {
		return scene.Load(bytes.NewReader(defaultScene))
	}
	return scene.LoadFile(path)
}

// sceneExtent merges every body bound into one box
func sceneExtent(bounds []actor.AABB) actor.AABB {
	if len(bounds) == 0 {
		return actor.AABB{}
	}

	extent := bounds[0]
	for _, b := range bounds[1:] {
		extent = extent.Merge(b)
	}
	return extent
}

// maxSpeed is the fastest linear speed among the movable bodies
func maxSpeed(bodies []*actor.RigidBody) float64 {
	fastest := 0.0
	for _, body := range bodies {
		if body.IsImmovable() {
			continue
		}
		fastest = max(fastest, body.Velocity().Len())
	}
	return fastest
}

// spinBodies turns every movable body, in its own frame, around the axis
// from the origin to its position.
func spinBodies(bodies []*actor.RigidBody, angle float64) {
	for _, body := range bodies {
		if body.IsImmovable() {
			continue
		}
		axis := body.Position()
		if axis.Len() < 1e-9 {
			continue
		}
		body.Transform.Rotation = body.Transform.Rotation.Mul(mgl64.QuatRotate(angle, axis.Normalize())).Normalize()
	}
}
