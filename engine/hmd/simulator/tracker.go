package simulator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/go-gl/mathgl/mgl32"
)

// KeySource reports whether a key is currently held.
type KeySource interface {
	KeyDown(key int) bool
}

const (
	maxPitch = 1.5
	// maxStep caps the integration step so a stalled loop does not teleport the head.
	maxStep = 0.1
)

// Hand rest positions relative to the head, in the head's yaw frame.
var handOffsets = [hmd.HandCount]mgl32.Vec3{
	{-0.2, -0.3, -0.4},
	{0.2, -0.3, -0.4},
}

// tracker integrates keyboard input into a head pose and extrapolates it to future times.
type tracker struct {
	lookSpeed float32
	moveSpeed float32

	yaw      float32
	pitch    float32
	position mgl32.Vec3

	yawRate   float32
	pitchRate float32
	velocity  mgl32.Vec3

	originYaw      float32
	originPosition mgl32.Vec3

	triggers [hmd.HandCount]float32
	buttons  hmd.Button

	lastUpdate float64
	started    bool
}

func newTracker(lookSpeed, moveSpeed float32) *tracker {
	return &tracker{lookSpeed: lookSpeed, moveSpeed: moveSpeed}
}

// update samples keys at now and integrates motion since the previous sample.
func (t *tracker) update(keys KeySource, now float64) {
	dt := float32(0)
	if t.started {
		dt = float32(min(max(now-t.lastUpdate, 0), maxStep))
	}
	t.started = true
	t.lastUpdate = now

	t.yawRate, t.pitchRate = 0, 0
	t.velocity = mgl32.Vec3{}
	t.triggers = [hmd.HandCount]float32{}
	t.buttons = 0
	if keys == nil {
		return
	}

	t.yawRate = t.lookSpeed * (axis(keys, common.KeyLeft) - axis(keys, common.KeyRight))
	t.pitchRate = t.lookSpeed * (axis(keys, common.KeyUp) - axis(keys, common.KeyDown))

	forward := t.yawRotation().Rotate(mgl32.Vec3{0, 0, -1})
	right := t.yawRotation().Rotate(mgl32.Vec3{1, 0, 0})
	up := mgl32.Vec3{0, 1, 0}
	move := forward.Mul(axis(keys, common.KeyW) - axis(keys, common.KeyS)).
		Add(right.Mul(axis(keys, common.KeyD) - axis(keys, common.KeyA))).
		Add(up.Mul(axis(keys, common.KeyE) - axis(keys, common.KeyQ)))
	if move.Len() > 0 {
		t.velocity = move.Normalize().Mul(t.moveSpeed)
	}

	t.triggers[hmd.HandLeft] = axis(keys, common.KeyZ)
	t.triggers[hmd.HandRight] = axis(keys, common.KeyX)
	if keys.KeyDown(common.KeySpace) {
		t.buttons |= hmd.ButtonA
	}

	t.yaw += t.yawRate * dt
	t.pitch = clampPitch(t.pitch + t.pitchRate*dt)
	t.position = t.position.Add(t.velocity.Mul(dt))
}

// head returns the head pose at absTime relative to the tracking origin, extrapolated from the last sample.
func (t *tracker) head(absTime float64) hmd.Pose {
	ahead := float32(max(absTime-t.lastUpdate, 0))
	yaw := t.yaw + t.yawRate*ahead
	pitch := clampPitch(t.pitch + t.pitchRate*ahead)
	position := t.position.Add(t.velocity.Mul(ahead))

	toOrigin := mgl32.QuatRotate(-t.originYaw, mgl32.Vec3{0, 1, 0})
	return hmd.Pose{
		Orientation: mgl32.QuatRotate(yaw-t.originYaw, mgl32.Vec3{0, 1, 0}).
			Mul(mgl32.QuatRotate(pitch, mgl32.Vec3{1, 0, 0})).Normalize(),
		Position: toOrigin.Rotate(position.Sub(t.originPosition)),
	}
}

// hands returns both controller poses at absTime. Controllers follow the head's yaw and point forward.
func (t *tracker) hands(absTime float64) [hmd.HandCount]hmd.Pose {
	head := t.head(absTime)
	yawOnly := hmd.Pose{
		Orientation: mgl32.QuatRotate(t.yaw+t.yawRate*float32(max(absTime-t.lastUpdate, 0))-t.originYaw, mgl32.Vec3{0, 1, 0}),
		Position:    head.Position,
	}

	var out [hmd.HandCount]hmd.Pose
	for h := range hmd.HandCount {
		out[h] = yawOnly.Transform(hmd.Pose{Orientation: mgl32.QuatIdent(), Position: handOffsets[h]})
	}
	return out
}

// recenter makes the current yaw and position the tracking origin. Pitch is kept.
func (t *tracker) recenter() {
	t.originYaw = t.yaw
	t.originPosition = t.position
}

func (t *tracker) yawRotation() mgl32.Quat {
	return mgl32.QuatRotate(t.yaw, mgl32.Vec3{0, 1, 0})
}

func axis(keys KeySource, key int) float32 {
	if keys.KeyDown(key) {
		return 1
	}
	return 0
}

func clampPitch(p float32) float32 {
	return float32(math.Max(-maxPitch, math.Min(maxPitch, float64(p))))
}
