package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces and integrate every step
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable: forces, impulses and updates
	// are ignored (e.g., ground, walls)
	BodyTypeStatic
)

const defaultMass = 1.0

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	ID uuid.UUID

	// Spatial properties
	Transform Transform

	// Linear motion
	Momentum mgl64.Vec3

	// Angular motion
	AngularMomentum mgl64.Vec3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	mass     float64
	BodyType BodyType // Dynamic or Static

	// Collision shape, shared and read-only
	Shape Shape
}

// NewRigidBody creates a body at the identity pose with zero momentum
// and a mass of 1.
func NewRigidBody(shape Shape) *RigidBody {
	return &RigidBody{
		ID:        uuid.New(),
		Transform: NewTransform(),
		Shape:     shape,
		BodyType:  BodyTypeDynamic,
		mass:      defaultMass,
	}
}

// NewBox creates a dynamic box body from its full edge lengths
func NewBox(size mgl64.Vec3) (*RigidBody, error) {
	shape, err := NewBoxShape(size)
	if err != nil {
		return nil, err
	}

	return NewRigidBody(shape), nil
}

// NewSphere creates a dynamic sphere body
func NewSphere(radius float64) (*RigidBody, error) {
	shape, err := NewSphereShape(radius)
	if err != nil {
		return nil, err
	}

	return NewRigidBody(shape), nil
}

func (rb *RigidBody) Mass() float64 {
	return rb.mass
}

func (rb *RigidBody) SetMass(mass float64) error {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidMass, mass)
	}

	rb.mass = mass
	return nil
}

// IsImmovable reports whether the body ignores forces and integration
func (rb *RigidBody) IsImmovable() bool {
	return rb.BodyType == BodyTypeStatic
}

func (rb *RigidBody) Position() mgl64.Vec3 {
	return rb.Transform.Position
}

func (rb *RigidBody) Rotation() mgl64.Quat {
	return rb.Transform.Rotation
}

// Velocity is the linear velocity derived from momentum
func (rb *RigidBody) Velocity() mgl64.Vec3 {
	return rb.Momentum.Mul(1.0 / rb.mass)
}

func (rb *RigidBody) Force() mgl64.Vec3 {
	return rb.accumulatedForce
}

func (rb *RigidBody) Torque() mgl64.Vec3 {
	return rb.accumulatedTorque
}

// ApplyForce accumulates a force applied at a world-space point. The
// torque uses the unit lever arm, and is skipped when the point is the
// center of mass.
func (rb *RigidBody) ApplyForce(point mgl64.Vec3, force mgl64.Vec3) {
	if rb.IsImmovable() {
		return
	}

	rb.accumulatedForce = rb.accumulatedForce.Add(force)

	arm := point.Sub(rb.Transform.Position)
	if l := arm.Len(); l > directionEpsilon {
		rb.accumulatedTorque = rb.accumulatedTorque.Add(arm.Mul(1.0 / l).Cross(force))
	}
}

// ApplyImpulse changes momentum immediately, bypassing the accumulators
func (rb *RigidBody) ApplyImpulse(point mgl64.Vec3, impulse mgl64.Vec3) {
	if rb.IsImmovable() {
		return
	}

	rb.Momentum = rb.Momentum.Add(impulse)
	rb.AngularMomentum = rb.AngularMomentum.Add(point.Sub(rb.Transform.Position).Cross(impulse))
}

// Update advances the body by dt with semi-implicit Euler: momentum
// first, then position from the new momentum.
//
// The angular part divides angular momentum by mass instead of using an
// inertia tensor. It is an approximation that looks plausible, not a
// physically exact rotation.
func (rb *RigidBody) Update(dt float64) {
	if rb.IsImmovable() {
		return
	}

	// ========== LINEAR ==========
	rb.Momentum = rb.Momentum.Add(rb.accumulatedForce.Mul(dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Momentum.Mul(dt / rb.mass))

	// ========== ANGULAR ==========
	rb.AngularMomentum = rb.AngularMomentum.Add(rb.accumulatedTorque.Mul(dt))

	displacement := rb.AngularMomentum.Mul(dt / rb.mass)
	angle := displacement.Len()
	if angle > 0 {
		rotation := mgl64.QuatRotate(angle, displacement.Mul(1.0/angle))
		rb.Transform.Rotation = rb.Transform.Rotation.Mul(rotation).Normalize()
	}
}

// ClearForces resets the force and torque accumulators
func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// AABB is recomputed from the current pose on every call
func (rb *RigidBody) AABB() AABB {
	return rb.Shape.BoundingBox(rb.Transform)
}

func (rb *RigidBody) RayHit(ray Ray) (float64, bool) {
	return rb.Shape.RayIntersect(rb.Transform, ray)
}
