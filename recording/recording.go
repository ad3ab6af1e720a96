// Package recording captures body poses frame by frame so a run can be
// scrubbed back and replayed.
package recording

import (
	"github.com/akmonengine/sandbox/actor"
	"github.com/go-gl/mathgl/mgl64"
)

type pose struct {
	position mgl64.Vec3
	rotation mgl64.Quat
}

// Recording stores one pose per body per frame. All frames share the
// same body count; saving a frame with a different count starts over.
type Recording struct {
	bodyCount  int
	frameCount int
	data       []pose
}

// SaveFrame appends the current pose of every body
func (r *Recording) SaveFrame(bodies []*actor.RigidBody) {
	if len(bodies) != r.bodyCount {
		r.data = r.data[:0]
		r.frameCount = 0
		r.bodyCount = len(bodies)
	}

	for _, body := range bodies {
		r.data = append(r.data, pose{
			position: body.Transform.Position,
			rotation: body.Transform.Rotation,
		})
	}
	r.frameCount++
}

// LoadFrame writes the poses of a frame back into bodies. The index is
// clamped to the recorded range; nothing happens on an empty recording.
// Only poses are restored, momentum is left untouched.
func (r *Recording) LoadFrame(frameIndex int, bodies []*actor.RigidBody) {
	if r.frameCount == 0 {
		return
	}

	frameIndex = max(0, min(frameIndex, r.LastFrameIndex()))
	frame := r.data[frameIndex*r.bodyCount : (frameIndex+1)*r.bodyCount]
	for i, body := range bodies {
		if i >= len(frame) {
			break
		}
		body.Transform.Position = frame[i].position
		body.Transform.Rotation = frame[i].rotation
	}
}

func (r *Recording) FrameCount() int {
	return r.frameCount
}

func (r *Recording) BodyCount() int {
	return r.bodyCount
}

// LastFrameIndex is 0 for an empty recording
func (r *Recording) LastFrameIndex() int {
	return max(0, r.frameCount-1)
}

func (r *Recording) Clear() {
	r.bodyCount = 0
	r.frameCount = 0
	r.data = r.data[:0]
}
