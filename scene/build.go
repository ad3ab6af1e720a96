package scene

import (
	"fmt"

	"github.com/akmonengine/sandbox"
	"github.com/akmonengine/sandbox/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ShapeCache hands out one shared shape per distinct set of dimensions.
// It is created by the caller and passed explicitly to every build that
// should share geometry.
type ShapeCache struct {
	boxes   map[mgl64.Vec3]*actor.Box
	spheres map[float64]*actor.Sphere
}

func NewShapeCache() *ShapeCache {
	return &ShapeCache{
		boxes:   make(map[mgl64.Vec3]*actor.Box),
		spheres: make(map[float64]*actor.Sphere),
	}
}

// Box returns the cached box of the given full size
func (c *ShapeCache) Box(size mgl64.Vec3) (*actor.Box, error) {
	if box, ok := c.boxes[size]; ok {
		return box, nil
	}

	box, err := actor.NewBoxShape(size)
	if err != nil {
		return nil, err
	}
	c.boxes[size] = box
	return box, nil
}

func (c *ShapeCache) Sphere(radius float64) (*actor.Sphere, error) {
	if sphere, ok := c.spheres[radius]; ok {
		return sphere, nil
	}

	sphere, err := actor.NewSphereShape(radius)
	if err != nil {
		return nil, err
	}
	c.spheres[radius] = sphere
	return sphere, nil
}

// Len is the number of distinct shapes held
func (c *ShapeCache) Len() int {
	return len(c.boxes) + len(c.spheres)
}

// Build creates the bodies of the scene: grids first, in lattice order,
// then the explicit bodies in file order.
func (c *Config) Build(cache *ShapeCache) ([]*actor.RigidBody, error) {
	if cache == nil {
		cache = NewShapeCache()
	}

	bodies := make([]*actor.RigidBody, 0, c.bodyCount())

	for i, g := range c.Grids {
		for x := g.Min[0]; x < g.Max[0]; x++ {
			for y := g.Min[1]; y < g.Max[1]; y++ {
				for z := g.Min[2]; z < g.Max[2]; z++ {
					var shape actor.Shape
					var err error
					if (x+y+z)%2 != 0 {
						shape, err = cache.Box(g.BoxSize)
					} else {
						shape, err = cache.Sphere(g.SphereRadius)
					}
					if err != nil {
						return nil, fmt.Errorf("grid %d: %w", i, err)
					}

					body := actor.NewRigidBody(shape)
					body.Transform.Position = mgl64.Vec3{float64(x), float64(y), float64(z)}.Mul(g.Spacing)
					bodies = append(bodies, body)
				}
			}
		}
	}

	for i, b := range c.Bodies {
		body, err := b.build(cache)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies = append(bodies, body)
	}

	return bodies, nil
}

func (b BodyConfig) build(cache *ShapeCache) (*actor.RigidBody, error) {
	var shape actor.Shape
	var err error
	switch b.Shape {
	case ShapeBox:
		shape, err = cache.Box(b.Size)
	case ShapeSphere:
		shape, err = cache.Sphere(b.Radius)
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrInvalidScene, b.Shape)
	}
	if err != nil {
		return nil, err
	}

	body := actor.NewRigidBody(shape)
	body.Transform.Position = b.Position
	if b.Rotation != nil {
		body.Transform.Rotation = mgl64.QuatRotate(mgl64.DegToRad(b.Rotation.Degrees), b.Rotation.Axis.Normalize())
	}
	if b.Static {
		body.BodyType = actor.BodyTypeStatic
	}

	switch {
	case b.Mass > 0:
		err = body.SetMass(b.Mass)
	case b.Density > 0:
		err = body.SetMass(shape.ComputeMass(b.Density))
	}
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (c *Config) bodyCount() int {
	n := len(c.Bodies)
	for _, g := range c.Grids {
		n += max(0, g.Max[0]-g.Min[0]) * max(0, g.Max[1]-g.Min[1]) * max(0, g.Max[2]-g.Min[2])
	}
	return n
}

// NewWorld builds the bodies and a world configured from the simulation
// section. Extra options are applied after the scene settings.
func (c *Config) NewWorld(cache *ShapeCache, opts ...sandbox.Option) (*sandbox.World, error) {
	bodies, err := c.Build(cache)
	if err != nil {
		return nil, err
	}

	sceneOpts := []sandbox.Option{sandbox.WithPaused(c.Simulation.IsPaused())}
	if c.Simulation.Workers > 0 {
		sceneOpts = append(sceneOpts, sandbox.WithWorkers(c.Simulation.Workers))
	}
	if c.Simulation.CellSize > 0 {
		sceneOpts = append(sceneOpts, sandbox.WithCellSize(c.Simulation.CellSize))
	}

	world := sandbox.NewWorld(append(sceneOpts, opts...)...)
	for _, body := range bodies {
		world.AddBody(body)
	}
	return world, nil
}
