package actor

import "github.com/go-gl/mathgl/mgl64"

// Ray is a half-line used for picking. Direction does not need to be
// normalized; every distance reported by a ray query is measured along
// the unit direction, so it is a world-space length.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// unitDirection returns the normalized direction, or false for a
// zero-length direction which can never hit anything.
func (r Ray) unitDirection() (mgl64.Vec3, bool) {
	l := r.Direction.Len()
	if l < directionEpsilon {
		return mgl64.Vec3{}, false
	}
	return r.Direction.Mul(1.0 / l), true
}

// At returns the point at distance t along the ray
func (r Ray) At(t float64) mgl64.Vec3 {
	dir, ok := r.unitDirection()
	if !ok {
		return r.Origin
	}
	return r.Origin.Add(dir.Mul(t))
}
