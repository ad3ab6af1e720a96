package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// parallelEpsilon rejects faces nearly parallel to a ray
	parallelEpsilon = 1e-9
	// directionEpsilon is the shortest usable ray direction or lever arm
	directionEpsilon = 1e-12
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	default:
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}
}

// Shape is the closed set of collision primitives: *Box and *Sphere.
// Shapes only store local geometry and are immutable once built, so a
// single shape may back any number of bodies. Every query takes the
// world pose explicitly.
type Shape interface {
	Type() ShapeType
	// BoundingBox computes the tight world-space AABB at the given transform
	BoundingBox(transform Transform) AABB
	// RayIntersect returns the distance to the nearest hit at or ahead
	// of the ray origin. A miss is reported as false.
	RayIntersect(transform Transform, ray Ray) (float64, bool)
	// ComputeMass calculates mass for the shape given a density
	ComputeMass(density float64) float64

	sealed()
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	halfExtents mgl64.Vec3
}

// NewBoxShape builds a box from its full edge lengths, so a size of
// (2,2,2) spans -1..1 on every axis.
func NewBoxShape(size mgl64.Vec3) (*Box, error) {
	for i := 0; i < 3; i++ {
		if !(size[i] > 0) || math.IsInf(size[i], 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSize, size)
		}
	}

	return &Box{halfExtents: size.Mul(0.5)}, nil
}

func (b *Box) sealed() {}

func (b *Box) Type() ShapeType {
	return ShapeTypeBox
}

func (b *Box) HalfExtents() mgl64.Vec3 {
	return b.halfExtents
}

// Size returns the full edge lengths
func (b *Box) Size() mgl64.Vec3 {
	return b.halfExtents.Mul(2)
}

// corners returns the 8 local corners of the box
func (b *Box) corners() [8]mgl64.Vec3 {
	hx, hy, hz := b.halfExtents.Elem()

	return [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

func (b *Box) BoundingBox(transform Transform) AABB {
	corners := b.corners()

	worldCorner := transform.ToWorld(corners[0])
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = transform.ToWorld(corners[i])

		min[0] = math.Min(min[0], worldCorner[0])
		min[1] = math.Min(min[1], worldCorner[1])
		min[2] = math.Min(min[2], worldCorner[2])

		max[0] = math.Max(max[0], worldCorner[0])
		max[1] = math.Max(max[1], worldCorner[1])
		max[2] = math.Max(max[2], worldCorner[2])
	}

	return AABB{Min: min, Max: max}
}

// boxFaces lists the 6 faces of a unit box as quads of sign vectors,
// each wound in cyclic order.
var boxFaces = [6][4]mgl64.Vec3{
	// +Z
	{{1, 1, 1}, {-1, 1, 1}, {-1, -1, 1}, {1, -1, 1}},
	// -Z
	{{-1, 1, -1}, {1, 1, -1}, {1, -1, -1}, {-1, -1, -1}},
	// +X
	{{1, 1, 1}, {1, -1, 1}, {1, -1, -1}, {1, 1, -1}},
	// -X
	{{-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, -1}},
	// +Y
	{{1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {-1, 1, 1}},
	// -Y
	{{1, -1, -1}, {1, -1, 1}, {-1, -1, 1}, {-1, -1, -1}},
}

func (b *Box) RayIntersect(transform Transform, ray Ray) (float64, bool) {
	dir, ok := ray.unitDirection()
	if !ok {
		return 0, false
	}

	best := math.Inf(1)
	for _, face := range boxFaces {
		var p [4]mgl64.Vec3
		for i, sign := range face {
			local := mgl64.Vec3{
				sign.X() * b.halfExtents.X(),
				sign.Y() * b.halfExtents.Y(),
				sign.Z() * b.halfExtents.Z(),
			}
			p[i] = transform.ToWorld(local)
		}

		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize()
		denom := dir.Dot(n)
		if math.Abs(denom) < parallelEpsilon {
			continue
		}

		t := p[0].Sub(ray.Origin).Dot(n) / denom
		if t < 0 || t >= best {
			continue
		}

		hit := ray.Origin.Add(dir.Mul(t))
		if insideQuad(p, n, hit) {
			best = t
		}
	}

	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// insideQuad reports whether a point on the quad's plane lies on the
// inner side of all four edges.
func insideQuad(p [4]mgl64.Vec3, n mgl64.Vec3, point mgl64.Vec3) bool {
	for i := 0; i < 4; i++ {
		a := p[i]
		b := p[(i+1)%4]
		if b.Sub(a).Cross(point.Sub(a)).Dot(n) < 0 {
			return false
		}
	}
	return true
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.halfExtents.X() * b.halfExtents.Y() * b.halfExtents.Z()

	return density * volume
}

// Sphere represents a spherical collision shape
type Sphere struct {
	radius float64
}

func NewSphereShape(radius float64) (*Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}

	return &Sphere{radius: radius}, nil
}

func (s *Sphere) sealed() {}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

func (s *Sphere) Radius() float64 {
	return s.radius
}

// BoundingBox calculates the axis-aligned bounding box for the sphere
func (s *Sphere) BoundingBox(transform Transform) AABB {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.radius, s.radius, s.radius}

	return AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

// RayIntersect solves |o + t*d - c|² = r² with a unit direction d.
// The entry root wins when it is ahead of the origin, otherwise the
// exit root is used so a ray starting inside the sphere still hits.
func (s *Sphere) RayIntersect(transform Transform, ray Ray) (float64, bool) {
	dir, ok := ray.unitDirection()
	if !ok {
		return 0, false
	}

	oc := ray.Origin.Sub(transform.Position)
	b := 2 * dir.Dot(oc)
	c := oc.Dot(oc) - s.radius*s.radius

	d := b*b - 4*c
	if d < 0 {
		return 0, false
	}

	sqrtD := math.Sqrt(d)
	// t1 <= t2
	t1 := (-b - sqrtD) / 2
	t2 := (-b + sqrtD) / 2
	if t1 >= 0 {
		return t1, true
	}
	if t2 >= 0 {
		return t2, true
	}
	return 0, false
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.radius, 3)

	return density * volume
}
