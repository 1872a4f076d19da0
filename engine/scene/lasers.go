package scene

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	laserLength = 20
	laserWidth  = 0.01
)

var (
	laserIdle   = mgl32.Vec4{0, 1, 0, 2}
	laserFiring = mgl32.Vec4{1, 0, 0, 2}
)

// laserInstance returns a thin beam from the hand along its forward axis, red while the trigger is held.
func laserInstance(hand hmd.Pose, trigger float32) gpuInstance {
	model := hand.Matrix().
		Mul4(mgl32.Translate3D(0, 0, -laserLength/2)).
		Mul4(mgl32.Scale3D(laserWidth, laserWidth, laserLength))

	color := laserIdle
	if trigger > hmd.TriggerPressThreshold {
		color = laserFiring
	}
	return gpuInstance{Model: model, Color: color}
}
