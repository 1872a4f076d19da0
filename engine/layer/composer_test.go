package layer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/go-gl/mathgl/mgl32"
)

func TestPackViewports(t *testing.T) {
	tests := []struct {
		name       string
		left       hmd.Sizei
		right      hmd.Sizei
		wantTarget hmd.Sizei
	}{
		{"equal", hmd.Sizei{W: 100, H: 100}, hmd.Sizei{W: 100, H: 100}, hmd.Sizei{W: 200, H: 100}},
		{"cv1", hmd.Sizei{W: 1332, H: 1586}, hmd.Sizei{W: 1332, H: 1586}, hmd.Sizei{W: 2664, H: 1586}},
		{"taller right", hmd.Sizei{W: 640, H: 480}, hmd.Sizei{W: 600, H: 720}, hmd.Sizei{W: 1240, H: 720}},
		{"taller left", hmd.Sizei{W: 17, H: 900}, hmd.Sizei{W: 33, H: 1}, hmd.Sizei{W: 50, H: 900}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp, target := PackViewports([hmd.EyeCount]hmd.Sizei{tt.left, tt.right})

			l, r := vp[hmd.EyeLeft], vp[hmd.EyeRight]
			if l.Pos.X != 0 || l.Pos.Y != 0 {
				t.Errorf("left origin = %+v, want (0,0)", l.Pos)
			}
			if r.Pos.X != l.Size.W {
				t.Errorf("right x = %d, want left width %d", r.Pos.X, l.Size.W)
			}
			if r.Pos.Y != 0 {
				t.Errorf("right y = %d, want 0", r.Pos.Y)
			}
			if l.Size != tt.left || r.Size != tt.right {
				t.Errorf("viewport sizes = %+v/%+v, want %+v/%+v", l.Size, r.Size, tt.left, tt.right)
			}
			if target != tt.wantTarget {
				t.Errorf("target = %+v, want %+v", target, tt.wantTarget)
			}
		})
	}
}

func TestComposerRequiresBothEyes(t *testing.T) {
	fov := hmd.FovPort{UpTan: 1, DownTan: 1, LeftTan: 1, RightTan: 1}
	c := NewComposer([hmd.EyeCount]hmd.FovPort{fov, fov}, [hmd.EyeCount]hmd.Sizei{{W: 10, H: 10}, {W: 10, H: 10}})

	c.BeginFrame()
	if _, err := c.ToSubmission(); !errors.Is(err, ErrPoseNotRecorded) {
		t.Fatalf("no eyes recorded: err = %v, want ErrPoseNotRecorded", err)
	}

	c.RecordPose(hmd.EyeLeft, hmd.IdentityPose(), 1)
	if _, err := c.ToSubmission(); !errors.Is(err, ErrPoseNotRecorded) {
		t.Fatalf("left only: err = %v, want ErrPoseNotRecorded", err)
	}

	c.RecordPose(hmd.EyeRight, hmd.IdentityPose(), 1)
	if _, err := c.ToSubmission(); err != nil {
		t.Fatalf("both eyes: %v", err)
	}

	// A new frame must not reuse last frame's poses.
	c.BeginFrame()
	c.RecordPose(hmd.EyeRight, hmd.IdentityPose(), 2)
	if _, err := c.ToSubmission(); !errors.Is(err, ErrPoseNotRecorded) {
		t.Fatalf("stale left pose accepted: err = %v", err)
	}
}

func TestComposerPayload(t *testing.T) {
	fovL := hmd.FovPort{UpTan: 1.3, DownTan: 1.3, LeftTan: 1.05, RightTan: 1.09}
	fovR := hmd.FovPort{UpTan: 1.3, DownTan: 1.3, LeftTan: 1.09, RightTan: 1.05}
	c := NewComposer([hmd.EyeCount]hmd.FovPort{fovL, fovR}, [hmd.EyeCount]hmd.Sizei{{W: 120, H: 90}, {W: 100, H: 100}},
		WithFlags(hmd.LayerFlagTextureOriginAtBottomLeft))

	left := hmd.Pose{Orientation: mgl32.QuatIdent(), Position: mgl32.Vec3{-0.032, 0, 0}}
	right := hmd.Pose{Orientation: mgl32.QuatIdent(), Position: mgl32.Vec3{0.032, 0, 0}}

	c.BeginFrame()
	c.RecordPose(hmd.EyeLeft, left, 42.5)
	c.RecordPose(hmd.EyeRight, right, 42.5)

	got, err := c.ToSubmission()
	if err != nil {
		t.Fatal(err)
	}
	if got.SensorSampleTime != 42.5 {
		t.Errorf("sample time = %v, want 42.5", got.SensorSampleTime)
	}
	if got.RenderPose[hmd.EyeLeft] != left || got.RenderPose[hmd.EyeRight] != right {
		t.Errorf("render poses = %+v", got.RenderPose)
	}
	if got.Fov[hmd.EyeLeft] != fovL || got.Fov[hmd.EyeRight] != fovR {
		t.Errorf("fov = %+v", got.Fov)
	}
	if got.Viewport[hmd.EyeRight].Pos.X != 120 {
		t.Errorf("right viewport x = %d, want 120", got.Viewport[hmd.EyeRight].Pos.X)
	}
	if got.Flags&hmd.LayerFlagTextureOriginAtBottomLeft == 0 {
		t.Error("layer flag not carried")
	}
	if c.RenderTargetSize() != (hmd.Sizei{W: 220, H: 100}) {
		t.Errorf("render target = %+v, want 220x100", c.RenderTargetSize())
	}
}
