package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

func TestUniformLayout(t *testing.T) {
	u := GPUCameraUniform{EyePosition: [3]float32{1, 2, 3}}
	u.ViewProj[0] = 5
	u.ViewProj[15] = 7

	if u.Size() != GPUCameraUniformSize {
		t.Fatalf("Size = %d, want %d", u.Size(), GPUCameraUniformSize)
	}
	if got := BindGroupLayout.Entries[0].Buffer.MinBindingSize; got != GPUCameraUniformSize {
		t.Errorf("layout MinBindingSize = %d", got)
	}

	buf := u.Marshal()
	read := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
	}
	tests := []struct {
		offset int
		want   float32
	}{
		{0, 5},
		{60, 7},
		{64, 1},
		{68, 2},
		{72, 3},
		{76, 0},
	}
	for _, tt := range tests {
		if got := read(tt.offset); got != tt.want {
			t.Errorf("float at %d = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestEyeCameraUpdate(t *testing.T) {
	c := NewEyeCamera(hmd.EyeRight)
	if c.Eye() != hmd.EyeRight {
		t.Fatalf("Eye = %v", c.Eye())
	}
	if got := c.BindGroupProvider().Label(); got != "camera_right" {
		t.Errorf("provider label = %q", got)
	}
	if c.ViewProjection() != mgl32.Ident4() {
		t.Error("a new camera starts with identity matrices")
	}

	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.Translate3D(0, 0, -2)
	c.Update(proj, view, mgl32.Vec3{0, 1.7, 0})

	if !c.ViewProjection().ApproxEqual(proj.Mul4(view)) {
		t.Error("view projection must be projection * view")
	}
	u := c.Uniform()
	if u.EyePosition != [3]float32{0, 1.7, 0} {
		t.Errorf("uniform eye position = %v", u.EyePosition)
	}
	if mgl32.Mat4(u.ViewProj) != c.ViewProjection() {
		t.Error("uniform must carry the view projection")
	}
}

func TestWithBindGroupProvider(t *testing.T) {
	p := bind_group_provider.NewBindGroupProvider("shared")
	c := NewEyeCamera(hmd.EyeLeft, WithBindGroupProvider(p))
	if c.BindGroupProvider() != p {
		t.Error("option must replace the provider")
	}
	c = NewEyeCamera(hmd.EyeLeft, WithBindGroupProvider(nil))
	if c.BindGroupProvider() == nil {
		t.Error("nil provider must keep the default")
	}
}
