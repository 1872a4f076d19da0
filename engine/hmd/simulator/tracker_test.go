package simulator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/go-gl/mathgl/mgl32"
)

type heldKeys map[int]bool

func (k heldKeys) KeyDown(key int) bool { return k[key] }

func TestTrackerYaw(t *testing.T) {
	tr := newTracker(1, 1)
	tr.update(heldKeys{}, 0)
	tr.update(heldKeys{common.KeyLeft: true}, 0.1)

	if !mgl32.FloatEqualThreshold(tr.yaw, 0.1, 1e-6) {
		t.Fatalf("yaw = %v, want 0.1", tr.yaw)
	}
	forward := tr.head(0.1).Orientation.Rotate(mgl32.Vec3{0, 0, -1})
	if forward.X() >= 0 {
		t.Errorf("turning left must swing forward toward -X, got %v", forward)
	}
}

func TestTrackerMoveStepIsCapped(t *testing.T) {
	tr := newTracker(1, 1)
	tr.update(heldKeys{}, 0)
	tr.update(heldKeys{common.KeyW: true}, 5)

	got := tr.head(5).Position
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, -maxStep}, 1e-5) {
		t.Errorf("position = %v, want a single capped step forward", got)
	}
}

func TestTrackerExtrapolates(t *testing.T) {
	tr := newTracker(1, 2)
	tr.update(heldKeys{}, 1)
	tr.update(heldKeys{common.KeyD: true}, 1)

	now := tr.head(1).Position
	later := tr.head(1.5).Position
	if !later.Sub(now).ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("half a second of strafing moved %v, want (1, 0, 0)", later.Sub(now))
	}
	if past := tr.head(0.5).Position; !past.ApproxEqualThreshold(now, 1e-6) {
		t.Errorf("poses are never predicted backwards, got %v want %v", past, now)
	}
}

func TestTrackerInputs(t *testing.T) {
	tr := newTracker(1, 1)
	tr.update(heldKeys{common.KeyZ: true, common.KeySpace: true}, 0)

	if tr.triggers[hmd.HandLeft] <= hmd.TriggerPressThreshold {
		t.Errorf("left trigger = %v, want pressed", tr.triggers[hmd.HandLeft])
	}
	if tr.triggers[hmd.HandRight] != 0 {
		t.Errorf("right trigger = %v, want 0", tr.triggers[hmd.HandRight])
	}
	if tr.buttons&hmd.ButtonA == 0 {
		t.Error("space must hold the A button")
	}

	tr.update(heldKeys{}, 0.01)
	if tr.triggers[hmd.HandLeft] != 0 || tr.buttons != 0 {
		t.Error("released keys must clear the input state")
	}
}

func TestTrackerNilKeys(t *testing.T) {
	tr := newTracker(1, 1)
	tr.update(heldKeys{common.KeyW: true, common.KeyLeft: true}, 0)
	tr.update(nil, 0.05)

	if tr.yawRate != 0 || tr.velocity.Len() != 0 {
		t.Errorf("nil keys must stop motion, got yaw rate %v velocity %v", tr.yawRate, tr.velocity)
	}
}

func TestTrackerPitchClamped(t *testing.T) {
	tr := newTracker(10, 1)
	now := 0.0
	for range 50 {
		tr.update(heldKeys{common.KeyUp: true}, now)
		now += 0.1
	}
	if tr.pitch > maxPitch {
		t.Errorf("pitch = %v, want at most %v", tr.pitch, maxPitch)
	}
}

func TestTrackerRecenter(t *testing.T) {
	tr := newTracker(1, 1)
	tr.update(heldKeys{}, 0)
	tr.update(heldKeys{common.KeyW: true, common.KeyLeft: true}, 0.1)
	tr.update(heldKeys{}, 0.2)

	tr.recenter()
	head := tr.head(0.2)
	if !head.Position.ApproxEqualThreshold(mgl32.Vec3{}, 1e-6) {
		t.Errorf("recentered position = %v, want origin", head.Position)
	}
	forward := head.Orientation.Rotate(mgl32.Vec3{0, 0, -1})
	if !forward.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("recentered forward = %v, want -Z", forward)
	}
}

func TestTrackerHandsFollowHead(t *testing.T) {
	tr := newTracker(1, 1)
	tr.update(heldKeys{}, 0)

	hands := tr.hands(0)
	for h := range hmd.HandCount {
		if !hands[h].Position.ApproxEqualThreshold(handOffsets[h], 1e-6) {
			t.Errorf("hand %d at %v, want %v", h, hands[h].Position, handOffsets[h])
		}
	}
	if hands[hmd.HandLeft].Position.X() >= hands[hmd.HandRight].Position.X() {
		t.Error("left hand must be left of the right hand")
	}
}
