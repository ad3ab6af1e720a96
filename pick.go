package sandbox

import (
	"github.com/akmonengine/sandbox/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Hit is the closest body along a ray
type Hit struct {
	Body *actor.RigidBody
	// Distance along the unit ray direction
	Distance float64
	// Point is the world-space hit position
	Point mgl64.Vec3
}

// Raycast tests the ray against every body and returns the closest hit.
// Ties keep the earliest body in the slice.
func Raycast(ray actor.Ray, bodies []*actor.RigidBody) (Hit, bool) {
	var best Hit
	found := false

	for _, body := range bodies {
		d, ok := body.RayHit(ray)
		if !ok {
			continue
		}
		if !found || d < best.Distance {
			best = Hit{Body: body, Distance: d}
			found = true
		}
	}

	if found {
		best.Point = ray.At(best.Distance)
	}
	return best, found
}

// Raycast picks the closest body of the world and emits a PICK event
func (w *World) Raycast(ray actor.Ray) (Hit, bool) {
	hit, ok := Raycast(ray, w.Bodies)
	if ok {
		w.Events.emit(PickEvent{Hit: hit})
	}
	return hit, ok
}

// Kick picks the closest body and pushes it at the hit point with a
// force of the given magnitude along the ray, balanced by the opposite
// force at the body's center. The net linear force is zero, so a kick
// only spins the body. The forces take effect at the next Step.
func (w *World) Kick(ray actor.Ray, magnitude float64) (Hit, bool) {
	hit, ok := w.Raycast(ray)
	if !ok {
		return hit, false
	}

	force := ray.Direction.Normalize().Mul(magnitude)
	hit.Body.ApplyForce(hit.Point, force)
	hit.Body.ApplyForce(hit.Body.Position(), force.Mul(-1))

	w.Events.emit(KickEvent{Hit: hit, Force: force})
	w.logger().Debug("kick",
		zap.Stringer("body", hit.Body.ID),
		zap.Float64("distance", hit.Distance),
		zap.Float64("magnitude", magnitude),
		zap.Bool("immovable", hit.Body.IsImmovable()),
	)

	return hit, true
}

// Bounds returns the current AABB of every body, in body order
func (w *World) Bounds() []actor.AABB {
	bounds := make([]actor.AABB, len(w.Bodies))
	for i, body := range w.Bodies {
		bounds[i] = body.AABB()
	}
	return bounds
}

// QueryAABB returns the bodies whose current AABB overlaps region
func (w *World) QueryAABB(region actor.AABB) []*actor.RigidBody {
	w.rebuildGrid()

	indices := w.SpatialGrid.Query(region)
	bodies := make([]*actor.RigidBody, len(indices))
	for i, idx := range indices {
		bodies[i] = w.Bodies[idx]
	}
	return bodies
}

// OverlappingPairs lists the bodies whose bounds currently overlap. It
// is meant for highlighting bounds; nothing is resolved.
func (w *World) OverlappingPairs() []Pair {
	w.rebuildGrid()
	return w.SpatialGrid.FindPairs(w.Bodies)
}

func (w *World) rebuildGrid() {
	if w.SpatialGrid == nil {
		w.SpatialGrid = NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_GRID_SIZE)
	}

	w.SpatialGrid.Clear()
	for i, body := range w.Bodies {
		w.SpatialGrid.Insert(i, body.AABB())
	}
	w.SpatialGrid.SortCells()
}
