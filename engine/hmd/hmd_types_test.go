package hmd

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEyesOrder(t *testing.T) {
	if Eyes[0] != EyeLeft || Eyes[1] != EyeRight {
		t.Fatalf("Eyes = %v, want [left right]", Eyes)
	}
	if EyeLeft.String() != "left" || EyeRight.String() != "right" {
		t.Errorf("unexpected eye names %q %q", EyeLeft, EyeRight)
	}
}

func TestSizeiDiv(t *testing.T) {
	tests := []struct {
		name    string
		size    Sizei
		divisor int
		want    Sizei
	}{
		{"quarter", Sizei{W: 2664, H: 1586}, 4, Sizei{W: 666, H: 396}},
		{"identity", Sizei{W: 100, H: 50}, 1, Sizei{W: 100, H: 50}},
		{"zero divisor", Sizei{W: 100, H: 50}, 0, Sizei{W: 100, H: 50}},
		{"clamped", Sizei{W: 3, H: 2}, 8, Sizei{W: 1, H: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.size.Div(tt.divisor); got != tt.want {
				t.Errorf("Div(%d) = %+v, want %+v", tt.divisor, got, tt.want)
			}
		})
	}
}

// nearVec3 compares with an absolute tolerance. Relative comparisons fail against exact zeros.
func nearVec3(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() < eps
}

func TestPoseTransform(t *testing.T) {
	head := Pose{
		Orientation: mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}),
		Position:    mgl32.Vec3{1, 2, 3},
	}
	offset := Pose{Orientation: mgl32.QuatIdent(), Position: mgl32.Vec3{1, 0, 0}}

	got := head.Transform(offset)

	// A quarter turn about +Y maps +X onto -Z.
	want := mgl32.Vec3{1, 2, 2}
	if !nearVec3(got.Position, want, 1e-5) {
		t.Errorf("position = %v, want %v", got.Position, want)
	}
	if !got.Orientation.ApproxEqualThreshold(head.Orientation, 1e-5) {
		t.Errorf("orientation = %v, want %v", got.Orientation, head.Orientation)
	}
}

func TestPoseMatrixInverseIsView(t *testing.T) {
	p := Pose{
		Orientation: mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0}),
		Position:    mgl32.Vec3{0.5, 1.6, -2},
	}
	view := p.Matrix().Inv()
	eye := view.Mul4x1(p.Position.Vec4(1))
	if !nearVec3(eye.Vec3(), mgl32.Vec3{}, 1e-5) {
		t.Errorf("view * position = %v, want origin", eye)
	}
}

func TestTriggerPressed(t *testing.T) {
	in := InputState{IndexTrigger: [HandCount]float32{0.5, 0.51}}
	if in.TriggerPressed(HandLeft) {
		t.Error("trigger at exactly the threshold must not count as pressed")
	}
	if !in.TriggerPressed(HandRight) {
		t.Error("trigger past the threshold must count as pressed")
	}
}
