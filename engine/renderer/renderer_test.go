package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd/hmdtest"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestWGPUFormat(t *testing.T) {
	tests := []struct {
		in   hmd.TextureFormat
		want wgpu.TextureFormat
	}{
		{hmd.TextureFormatR8G8B8A8Unorm, wgpu.TextureFormatRGBA8Unorm},
		{hmd.TextureFormatR8G8B8A8UnormSrgb, wgpu.TextureFormatRGBA8UnormSrgb},
		{hmd.TextureFormatB8G8R8A8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb},
		{hmd.TextureFormatUnknown, wgpu.TextureFormatUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := WGPUFormat(tt.in); got != tt.want {
				t.Errorf("WGPUFormat(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		name string
		want PresentMode
	}{
		{"vsync", PresentModeVSync},
		{"immediate", PresentModeUncapped},
		{"", PresentModeUncapped},
	}
	for _, tt := range tests {
		if got := ParsePresentMode(tt.name); got != tt.want {
			t.Errorf("ParsePresentMode(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestViewOfRejectsForeignTextures(t *testing.T) {
	if _, err := viewOf(nil); err == nil {
		t.Error("viewOf(nil) must fail")
	}

	foreign := &hmdtest.Texture{Name: "eye buffer 0"}
	if _, err := viewOf(foreign); err == nil {
		t.Error("viewOf must reject textures that carry no GPU view")
	}
}
