package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func project(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	clip := m.Mul4x1(p.Vec4(1))
	return clip.Vec3().Mul(1 / clip.W())
}

func TestFovProjectionDepthRange(t *testing.T) {
	const near, far = 0.01, 1000

	tests := []struct {
		name     string
		clip     ClipRange
		wantNear float32
		wantFar  float32
	}{
		{"zero to one", ClipRangeZeroToOne, 0, 1},
		{"opengl", ClipRangeOpenGL, -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FovProjection(1, 1, 1, 1, near, far, tt.clip)

			if got := project(m, mgl32.Vec3{0, 0, -near}).Z(); !mgl32.FloatEqualThreshold(got, tt.wantNear, 1e-4) {
				t.Errorf("near depth = %v, want %v", got, tt.wantNear)
			}
			if got := project(m, mgl32.Vec3{0, 0, -far}).Z(); !mgl32.FloatEqualThreshold(got, tt.wantFar, 1e-4) {
				t.Errorf("far depth = %v, want %v", got, tt.wantFar)
			}
		})
	}
}

func TestFovProjectionAsymmetricEdges(t *testing.T) {
	// Left edge at tan 1.0, right edge at tan 0.5: points on each frustum edge must land on x = -1 and x = +1.
	m := FovProjection(1, 1, 1.0, 0.5, 0.1, 100, ClipRangeZeroToOne)

	left := project(m, mgl32.Vec3{-2, 0, -2})
	right := project(m, mgl32.Vec3{1, 0, -2})

	if !mgl32.FloatEqualThreshold(left.X(), -1, 1e-5) {
		t.Errorf("left edge x = %v, want -1", left.X())
	}
	if !mgl32.FloatEqualThreshold(right.X(), 1, 1e-5) {
		t.Errorf("right edge x = %v, want 1", right.X())
	}
}

func TestMidpoint(t *testing.T) {
	got := Midpoint(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{3, 0, 0})
	if got != (mgl32.Vec3{2, 0, 0}) {
		t.Errorf("Midpoint = %v, want (2,0,0)", got)
	}
}

func TestPutMat4(t *testing.T) {
	buf := make([]byte, 64)
	PutMat4(buf, mgl32.Ident4())
	// 1.0f little-endian is 00 00 80 3f.
	for _, i := range []int{0, 5, 10, 15} {
		if buf[i*4+3] != 0x3f || buf[i*4+2] != 0x80 {
			t.Errorf("element %d not 1.0: % x", i, buf[i*4:i*4+4])
		}
	}
}
